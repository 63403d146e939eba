// Package form implements create and edit flows for transactions and
// categories: fail-fast validation, dependent pickers and post-submit
// navigation.
package form

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/Veraticus/finflow/internal/common"
	"github.com/Veraticus/finflow/internal/model"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Blank passes here and fails positive_decimal.
	_ = v.RegisterValidation("decimal_number", func(fl validator.FieldLevel) bool {
		s := strings.TrimSpace(fl.Field().String())
		if s == "" {
			return true
		}
		_, err := decimal.NewFromString(s)
		return err == nil
	})
	_ = v.RegisterValidation("positive_decimal", func(fl validator.FieldLevel) bool {
		d, err := decimal.NewFromString(strings.TrimSpace(fl.Field().String()))
		return err == nil && d.IsPositive()
	})
	return v
}

// Field order is the order checks are reported in.
type transactionRules struct {
	Description string `validate:"required"`
	Amount      string `validate:"decimal_number,positive_decimal"`
	Date        string `validate:"required,datetime=2006-01-02"`
}

type categoryRules struct {
	Name string `validate:"required"`
	Type string `validate:"required,oneof=RECEITA DESPESA"`
}

var messages = map[string]string{
	"Description.required":    "description is required",
	"Amount.decimal_number":   "amount must be a number",
	"Amount.positive_decimal": "amount must be greater than zero",
	"Date.required":           "date is required",
	"Date.datetime":           "date must be in YYYY-MM-DD format",
	"Name.required":           "name is required",
	"Type.required":           "type is required",
	"Type.oneof":              "type must be RECEITA or DESPESA",
}

// firstError maps the first failed rule to a ValidationError.
func firstError(rules any) error {
	err := validate.Struct(rules)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err
	}
	fe := verrs[0]
	msg, ok := messages[fe.Field()+"."+fe.Tag()]
	if !ok {
		msg = strings.ToLower(fe.Field()) + " is invalid"
	}
	return common.NewValidationError(strings.ToLower(fe.Field()), msg)
}

// TransactionInput is the raw form state of an income or expense.
type TransactionInput struct {
	Description   string
	Amount        string
	Date          string
	CategoryID    int
	SubcategoryID int
	Recurring     bool
	Pending       bool
}

// Validate checks description, amount and date in that order and returns the
// first failure, or the draft ready for submission.
func (in TransactionInput) Validate() (model.TransactionDraft, error) {
	rules := transactionRules{
		Description: strings.TrimSpace(in.Description),
		Amount:      strings.TrimSpace(in.Amount),
		Date:        strings.TrimSpace(in.Date),
	}
	if err := firstError(rules); err != nil {
		return model.TransactionDraft{}, err
	}

	amount, _ := decimal.NewFromString(rules.Amount)
	return model.TransactionDraft{
		Description:   rules.Description,
		Amount:        amount,
		Date:          rules.Date,
		CategoryID:    in.CategoryID,
		SubcategoryID: in.SubcategoryID,
		Recurring:     in.Recurring,
		Pending:       in.Pending,
	}, nil
}

// FromTransaction fills an input from a stored record.
func FromTransaction(t model.Transaction) TransactionInput {
	in := TransactionInput{
		Description: t.Description,
		Amount:      t.Amount.String(),
		Date:        t.Date,
		CategoryID:  t.CategoryID(),
		Recurring:   t.Recurring,
		Pending:     t.Pending,
	}
	if t.Subcategory != nil {
		in.SubcategoryID = t.Subcategory.ID
	}
	return in
}
