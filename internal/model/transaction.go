package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the fixed-width ISO 8601 calendar date used on the wire.
// Lexicographic comparison of dates in this layout matches chronological order.
const DateLayout = "2006-01-02"

// Kind distinguishes the two transaction variants.
type Kind string

const (
	// KindIncome is a cash inflow (receita); its date is the entry date.
	KindIncome Kind = "RECEITA"
	// KindExpense is a cash outflow (despesa); its date is the due date.
	KindExpense Kind = "DESPESA"
)

// CategoryType returns the category type whose categories apply to this kind.
func (k Kind) CategoryType() CategoryType {
	if k == KindIncome {
		return CategoryTypeIncome
	}
	return CategoryTypeExpense
}

// Label returns a human readable name for the kind.
func (k Kind) Label() string {
	if k == KindIncome {
		return "Income"
	}
	return "Expense"
}

// Transaction represents a single income or expense record.
type Transaction struct {
	CreatedAt   time.Time
	Category    *Category
	Subcategory *Subcategory
	Amount      decimal.Decimal
	Kind        Kind
	Description string
	Date        string // YYYY-MM-DD
	ID          int
	Recurring   bool
	Pending     bool
}

// CategoryID returns the category id or zero when uncategorized.
func (t Transaction) CategoryID() int {
	if t.Category == nil {
		return 0
	}
	return t.Category.ID
}

// TransactionDraft holds validated values for a create or update request.
type TransactionDraft struct {
	Amount        decimal.Decimal
	Description   string
	Date          string
	CategoryID    int
	SubcategoryID int
	Recurring     bool
	Pending       bool
}
