package testutil

import (
	"github.com/shopspring/decimal"

	"github.com/Veraticus/finflow/internal/model"
)

// Fixture is a predefined category tree for seeding a Backend.
type Fixture struct {
	Name       string
	Categories []FixtureCategory
}

// FixtureCategory is one category and its subcategory names.
type FixtureCategory struct {
	Name          string
	Type          model.CategoryType
	Subcategories []string
}

// Predefined fixtures.
var (
	// FixtureMinimal has one category of each type and no subcategories.
	FixtureMinimal = Fixture{
		Name: "Minimal",
		Categories: []FixtureCategory{
			{Name: "Salário", Type: model.CategoryTypeIncome},
			{Name: "Moradia", Type: model.CategoryTypeExpense},
		},
	}

	// FixtureStandard covers both types, with and without children.
	FixtureStandard = Fixture{
		Name: "Standard",
		Categories: []FixtureCategory{
			{Name: "Salário", Type: model.CategoryTypeIncome},
			{Name: "Freelance", Type: model.CategoryTypeIncome, Subcategories: []string{"Design", "Consultoria"}},
			{Name: "Moradia", Type: model.CategoryTypeExpense, Subcategories: []string{"Aluguel", "Condomínio", "Energia"}},
			{Name: "Alimentação", Type: model.CategoryTypeExpense, Subcategories: []string{"Mercado"}},
			{Name: "Lazer", Type: model.CategoryTypeExpense},
		},
	}
)

// Seeded maps fixture names to the stored entities.
type Seeded struct {
	Categories    map[string]model.Category
	Subcategories map[string]model.Subcategory
}

// Seed stores every category and subcategory of f.
func (b *Backend) Seed(f Fixture) Seeded {
	out := Seeded{
		Categories:    make(map[string]model.Category),
		Subcategories: make(map[string]model.Subcategory),
	}
	for _, fc := range f.Categories {
		c := b.SeedCategory(fc.Name, fc.Type)
		out.Categories[fc.Name] = c
		for _, name := range fc.Subcategories {
			out.Subcategories[name] = b.SeedSubcategory(c.ID, name)
		}
	}
	return out
}

// Income builds an income record for seeding.
func Income(description, amount, date string, pending bool, category *model.Category) model.Transaction {
	return model.Transaction{
		Kind:        model.KindIncome,
		Description: description,
		Amount:      decimal.RequireFromString(amount),
		Date:        date,
		Pending:     pending,
		Category:    category,
	}
}

// Expense builds an expense record for seeding.
func Expense(description, amount, date string, pending bool, category *model.Category) model.Transaction {
	t := Income(description, amount, date, pending, category)
	t.Kind = model.KindExpense
	return t
}
