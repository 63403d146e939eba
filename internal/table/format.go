package table

import (
	"time"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"

	"github.com/Veraticus/finflow/internal/model"
)

// Placeholder fills cells with no value.
const Placeholder = "-"

// Currency renders an amount as Brazilian reais, e.g. "R$ 1.234,56".
func Currency(d decimal.Decimal) string {
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Neg()
	}
	return sign + "R$ " + humanize.FormatFloat("#.###,##", d.Round(2).InexactFloat64())
}

// Date renders a YYYY-MM-DD date as dd/mm/yyyy. Unparseable input is
// returned unchanged and empty input becomes the placeholder.
func Date(s string) string {
	if s == "" {
		return Placeholder
	}
	t, err := time.Parse(model.DateLayout, s)
	if err != nil {
		return s
	}
	return t.Format("02/01/2006")
}

// Status is the two-state pending badge. Settled expenses read "Paga",
// settled income "Recebida".
func Status(kind model.Kind, pending bool) string {
	switch {
	case pending:
		return "Pendente"
	case kind == model.KindIncome:
		return "Recebida"
	default:
		return "Paga"
	}
}

// YesNo renders a boolean flag.
func YesNo(v bool) string {
	if v {
		return "Sim"
	}
	return "Não"
}

// CategoryName returns the name or the placeholder.
func CategoryName(c *model.Category) string {
	if c == nil || c.Name == "" {
		return Placeholder
	}
	return c.Name
}

// SubcategoryName returns the name or the placeholder.
func SubcategoryName(s *model.Subcategory) string {
	if s == nil || s.Name == "" {
		return Placeholder
	}
	return s.Name
}
