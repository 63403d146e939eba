package table

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/Veraticus/finflow/internal/model"
)

func TestCurrency(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "1234.56", want: "R$ 1.234,56"},
		{in: "0", want: "R$ 0,00"},
		{in: "5", want: "R$ 5,00"},
		{in: "1000000", want: "R$ 1.000.000,00"},
		{in: "99.999", want: "R$ 100,00"},
		{in: "-42.5", want: "-R$ 42,50"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Currency(decimal.RequireFromString(tt.in)))
		})
	}
}

func TestDate(t *testing.T) {
	assert.Equal(t, "05/03/2024", Date("2024-03-05"))
	assert.Equal(t, Placeholder, Date(""))
	assert.Equal(t, "soon", Date("soon"))
}

func TestStatus(t *testing.T) {
	tests := []struct {
		kind    model.Kind
		want    string
		pending bool
	}{
		{kind: model.KindExpense, pending: true, want: "Pendente"},
		{kind: model.KindExpense, pending: false, want: "Paga"},
		{kind: model.KindIncome, pending: true, want: "Pendente"},
		{kind: model.KindIncome, pending: false, want: "Recebida"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Status(tt.kind, tt.pending))
	}
}

func TestCells_MissingCategory(t *testing.T) {
	row := model.Transaction{
		ID:          3,
		Kind:        model.KindExpense,
		Description: "Padaria",
		Amount:      decimal.RequireFromString("12.5"),
		Date:        "2024-01-31",
	}

	got := Cells(TransactionColumns(model.KindExpense), row)

	assert.Equal(t, []string{"3", "31/01/2024", "Padaria", "R$ 12,50", "-", "-", "Não", "Paga"}, got)
}

func TestRender(t *testing.T) {
	rows := []model.CategoryWithCount{
		{Category: model.Category{ID: 1, Name: "Moradia", Type: model.CategoryTypeExpense}, SubcategoryCount: 2},
	}

	out := Render(CategoryColumns, rows)

	for _, want := range []string{"ID", "Name", "Type", "Subcategories", "Moradia", "DESPESA"} {
		assert.Contains(t, out, want)
	}
	assert.Equal(t, 5, len(strings.Split(strings.TrimRight(out, "\n"), "\n")))
}
