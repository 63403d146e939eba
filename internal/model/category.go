// Package model defines the core domain models used throughout the application.
package model

import (
	"fmt"
	"strings"
)

// CategoryType indicates whether a category classifies income or expenses.
type CategoryType string

const (
	// CategoryTypeIncome represents categories for income records (receitas).
	CategoryTypeIncome CategoryType = "RECEITA"
	// CategoryTypeExpense represents categories for expense records (despesas).
	CategoryTypeExpense CategoryType = "DESPESA"
)

// ParseCategoryType accepts the wire names as well as the English aliases.
func ParseCategoryType(s string) (CategoryType, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "RECEITA", "INCOME":
		return CategoryTypeIncome, nil
	case "DESPESA", "EXPENSE":
		return CategoryTypeExpense, nil
	default:
		return "", fmt.Errorf("invalid category type %q (want RECEITA or DESPESA)", s)
	}
}

// Kind returns the transaction kind this category type applies to.
func (t CategoryType) Kind() Kind {
	if t == CategoryTypeIncome {
		return KindIncome
	}
	return KindExpense
}

// Category represents a top-level classification owned by the authenticated user.
type Category struct {
	Name string       `json:"nomeCategoria"`
	Type CategoryType `json:"tipoCategoria"`
	ID   int          `json:"idCategoria"`
}

// Subcategory is a second-level classification owned by exactly one category.
// Category is only populated when the backend embeds the parent.
type Subcategory struct {
	Category *Category `json:"categoria,omitempty"`
	Name     string    `json:"nomeSubcat"`
	ID       int       `json:"idSubcategoria"`
}

// ParentID returns the owning category id, or zero when the parent is unknown.
func (s Subcategory) ParentID() int {
	if s.Category == nil {
		return 0
	}
	return s.Category.ID
}

// CategoryWithCount pairs a category with its materialized subcategory count.
type CategoryWithCount struct {
	Category
	SubcategoryCount int
}
