// Package table renders slices as terminal tables from declarative column
// descriptors.
package table

import (
	"strconv"

	"github.com/charmbracelet/lipgloss"
	lgtable "github.com/charmbracelet/lipgloss/table"

	"github.com/Veraticus/finflow/internal/model"
)

// Column describes one table column.
type Column[T any] struct {
	Format func(T) string
	Key    string
	Header string
}

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#4ECDC4")).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	borderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#666666"))
)

// Headers returns the column headers in order.
func Headers[T any](cols []Column[T]) []string {
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = c.Header
	}
	return out
}

// Cells formats one row.
func Cells[T any](cols []Column[T], row T) []string {
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = c.Format(row)
	}
	return out
}

// Render draws rows as a bordered table.
func Render[T any](cols []Column[T], rows []T) string {
	t := lgtable.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(borderStyle).
		Headers(Headers(cols)...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == lgtable.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
	for _, r := range rows {
		t.Row(Cells(cols, r)...)
	}
	return t.Render()
}

// TransactionColumns are the list columns for one kind.
func TransactionColumns(kind model.Kind) []Column[model.Transaction] {
	dateHeader := "Due date"
	if kind == model.KindIncome {
		dateHeader = "Entry date"
	}
	return []Column[model.Transaction]{
		{Key: "id", Header: "ID", Format: func(t model.Transaction) string { return strconv.Itoa(t.ID) }},
		{Key: "date", Header: dateHeader, Format: func(t model.Transaction) string { return Date(t.Date) }},
		{Key: "description", Header: "Description", Format: func(t model.Transaction) string { return t.Description }},
		{Key: "amount", Header: "Amount", Format: func(t model.Transaction) string { return Currency(t.Amount) }},
		{Key: "category", Header: "Category", Format: func(t model.Transaction) string { return CategoryName(t.Category) }},
		{Key: "subcategory", Header: "Subcategory", Format: func(t model.Transaction) string { return SubcategoryName(t.Subcategory) }},
		{Key: "recurring", Header: "Recurring", Format: func(t model.Transaction) string { return YesNo(t.Recurring) }},
		{Key: "status", Header: "Status", Format: func(t model.Transaction) string { return Status(t.Kind, t.Pending) }},
	}
}

// CategoryColumns are the category list columns.
var CategoryColumns = []Column[model.CategoryWithCount]{
	{Key: "id", Header: "ID", Format: func(c model.CategoryWithCount) string { return strconv.Itoa(c.ID) }},
	{Key: "name", Header: "Name", Format: func(c model.CategoryWithCount) string { return c.Name }},
	{Key: "type", Header: "Type", Format: func(c model.CategoryWithCount) string { return string(c.Type) }},
	{Key: "subcategories", Header: "Subcategories", Format: func(c model.CategoryWithCount) string { return strconv.Itoa(c.SubcategoryCount) }},
}

// SubcategoryColumns are the subcategory list columns.
var SubcategoryColumns = []Column[model.Subcategory]{
	{Key: "id", Header: "ID", Format: func(s model.Subcategory) string { return strconv.Itoa(s.ID) }},
	{Key: "name", Header: "Name", Format: func(s model.Subcategory) string { return s.Name }},
}
