package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Veraticus/finflow/internal/model"
)

// flag is the backend's 0/1 boolean. Decoding also accepts true/false.
type flag bool

func (f flag) MarshalJSON() ([]byte, error) {
	if f {
		return []byte("1"), nil
	}
	return []byte("0"), nil
}

func (f *flag) UnmarshalJSON(data []byte) error {
	switch string(bytes.TrimSpace(data)) {
	case "1", "true":
		*f = true
	case "0", "false", "null":
		*f = false
	default:
		return fmt.Errorf("invalid flag value %s", data)
	}
	return nil
}

// wireTransaction decodes both receita and despesa bodies.
type wireTransaction struct {
	Category    *model.Category    `json:"categoria,omitempty"`
	Subcategory *model.Subcategory `json:"subcategoria,omitempty"`
	Amount      decimal.Decimal    `json:"valor"`
	Description string             `json:"descricao"`
	EntryDate   string             `json:"dataEntrada,omitempty"`
	DueDate     string             `json:"dataVencimento,omitempty"`
	CreatedAt   string             `json:"criadoEm,omitempty"`
	IncomeID    int                `json:"idReceita,omitempty"`
	ExpenseID   int                `json:"idDespesa,omitempty"`
	Recurring   flag               `json:"recorrente"`
	Pending     flag               `json:"pendente"`
}

// wireRequest is the create/update body for both resources.
type wireRequest struct {
	CategoryID    *int            `json:"idCategoria,omitempty"`
	SubcategoryID *int            `json:"idSubcategoria,omitempty"`
	Amount        decimal.Decimal `json:"valor"`
	Description   string          `json:"descricao"`
	EntryDate     string          `json:"dataEntrada,omitempty"`
	DueDate       string          `json:"dataVencimento,omitempty"`
	IncomeID      int             `json:"idReceita,omitempty"`
	ExpenseID     int             `json:"idDespesa,omitempty"`
	Recurring     flag            `json:"recorrente"`
	Pending       flag            `json:"pendente"`
}

type wirePage struct {
	Content       []wireTransaction `json:"content"`
	Number        int               `json:"number"`
	Size          int               `json:"size"`
	TotalPages    int               `json:"totalPages"`
	TotalElements int               `json:"totalElements"`
}

var createdAtLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	model.DateLayout,
}

func parseCreatedAt(s string) time.Time {
	s = strings.TrimSpace(s)
	for _, layout := range createdAtLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

func (w wireTransaction) toModel(kind model.Kind) model.Transaction {
	t := model.Transaction{
		Kind:        kind,
		Description: w.Description,
		Amount:      w.Amount,
		Recurring:   bool(w.Recurring),
		Pending:     bool(w.Pending),
		Category:    w.Category,
		Subcategory: w.Subcategory,
		CreatedAt:   parseCreatedAt(w.CreatedAt),
	}
	if kind == model.KindIncome {
		t.ID = w.IncomeID
		t.Date = w.EntryDate
	} else {
		t.ID = w.ExpenseID
		t.Date = w.DueDate
	}
	return t
}

func newWireRequest(kind model.Kind, id int, d model.TransactionDraft) wireRequest {
	req := wireRequest{
		Description: d.Description,
		Amount:      d.Amount,
		Recurring:   flag(d.Recurring),
		Pending:     flag(d.Pending),
	}
	if d.CategoryID != 0 {
		id := d.CategoryID
		req.CategoryID = &id
	}
	if d.SubcategoryID != 0 {
		id := d.SubcategoryID
		req.SubcategoryID = &id
	}
	if kind == model.KindIncome {
		req.IncomeID = id
		req.EntryDate = d.Date
	} else {
		req.ExpenseID = id
		req.DueDate = d.Date
	}
	return req
}

var _ json.Marshaler = flag(false)
