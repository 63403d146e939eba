package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/gocarina/gocsv"
	"gopkg.in/yaml.v3"

	"github.com/Veraticus/finflow/internal/common"
	"github.com/Veraticus/finflow/internal/model"
	"github.com/Veraticus/finflow/internal/table"
)

// Output formats.
const (
	outputTable = "table"
	outputJSON  = "json"
	outputYAML  = "yaml"
	outputCSV   = "csv"
)

func parseOutput(format string) (string, error) {
	switch f := strings.ToLower(strings.TrimSpace(format)); f {
	case "", outputTable:
		return outputTable, nil
	case outputJSON, outputYAML, outputCSV:
		return f, nil
	default:
		return "", common.NewValidationError("output", fmt.Sprintf("unknown output format %q (want table, json, yaml or csv)", format))
	}
}

// render writes rows as a styled table, or their records in a machine format.
func render[T, R any](w io.Writer, format string, cols []table.Column[T], rows []T, record func(T) R) error {
	if format == outputTable {
		_, err := fmt.Fprintln(w, table.Render(cols, rows))
		return err
	}

	records := make([]R, 0, len(rows))
	for _, row := range rows {
		records = append(records, record(row))
	}

	switch format {
	case outputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(records)
	case outputYAML:
		enc := yaml.NewEncoder(w)
		defer func() { _ = enc.Close() }()
		return enc.Encode(records)
	case outputCSV:
		return gocsv.Marshal(&records, w)
	default:
		return fmt.Errorf("%w: output %q", common.ErrInvalidConfig, format)
	}
}

type transactionRecord struct {
	Kind        string `json:"kind" yaml:"kind" csv:"kind"`
	Date        string `json:"date" yaml:"date" csv:"date"`
	Description string `json:"description" yaml:"description" csv:"description"`
	Amount      string `json:"amount" yaml:"amount" csv:"amount"`
	Category    string `json:"category,omitempty" yaml:"category,omitempty" csv:"category"`
	Subcategory string `json:"subcategory,omitempty" yaml:"subcategory,omitempty" csv:"subcategory"`
	ID          int    `json:"id" yaml:"id" csv:"id"`
	Recurring   bool   `json:"recurring" yaml:"recurring" csv:"recurring"`
	Pending     bool   `json:"pending" yaml:"pending" csv:"pending"`
}

func toTransactionRecord(t model.Transaction) transactionRecord {
	r := transactionRecord{
		ID:          t.ID,
		Kind:        string(t.Kind),
		Date:        t.Date,
		Description: t.Description,
		Amount:      t.Amount.StringFixed(2),
		Recurring:   t.Recurring,
		Pending:     t.Pending,
	}
	if t.Category != nil {
		r.Category = t.Category.Name
	}
	if t.Subcategory != nil {
		r.Subcategory = t.Subcategory.Name
	}
	return r
}

type categoryRecord struct {
	Name          string `json:"name" yaml:"name" csv:"name"`
	Type          string `json:"type" yaml:"type" csv:"type"`
	ID            int    `json:"id" yaml:"id" csv:"id"`
	Subcategories int    `json:"subcategories" yaml:"subcategories" csv:"subcategories"`
}

func toCategoryRecord(c model.CategoryWithCount) categoryRecord {
	return categoryRecord{ID: c.ID, Name: c.Name, Type: string(c.Type), Subcategories: c.SubcategoryCount}
}

type subcategoryRecord struct {
	Name       string `json:"name" yaml:"name" csv:"name"`
	ID         int    `json:"id" yaml:"id" csv:"id"`
	CategoryID int    `json:"categoryId,omitempty" yaml:"categoryId,omitempty" csv:"category_id"`
}

func toSubcategoryRecord(s model.Subcategory) subcategoryRecord {
	return subcategoryRecord{ID: s.ID, Name: s.Name, CategoryID: s.ParentID()}
}
