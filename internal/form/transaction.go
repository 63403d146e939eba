package form

import (
	"context"
	"fmt"

	"github.com/Veraticus/finflow/internal/model"
)

// TransactionStore persists one kind of record.
type TransactionStore interface {
	Kind() model.Kind
	Get(ctx context.Context, id int) (model.Transaction, error)
	Create(ctx context.Context, d model.TransactionDraft) (model.Transaction, error)
	Update(ctx context.Context, id int, d model.TransactionDraft) (model.Transaction, error)
}

// CategorySource lists the categories a picker offers.
type CategorySource interface {
	ListByType(ctx context.Context, t model.CategoryType) ([]model.Category, error)
}

// SubcategorySource lists the children of one category.
type SubcategorySource interface {
	ListByCategory(ctx context.Context, categoryID int) ([]model.Subcategory, error)
}

// TransactionForm is the create/edit flow of an income or expense.
type TransactionForm struct {
	store         TransactionStore
	categories    CategorySource
	subcategories SubcategorySource
	Input         TransactionInput
	Categories    []model.Category
	Subcategories []model.Subcategory
	id            int
}

// NewTransactionForm creates a form in create mode.
func NewTransactionForm(store TransactionStore, categories CategorySource, subcategories SubcategorySource) *TransactionForm {
	return &TransactionForm{store: store, categories: categories, subcategories: subcategories}
}

// Kind returns the record kind being edited.
func (f *TransactionForm) Kind() model.Kind {
	return f.store.Kind()
}

// Editing reports whether the form edits an existing record.
func (f *TransactionForm) Editing() bool {
	return f.id != 0
}

// LoadCategories fills the category picker with categories of the form's
// kind.
func (f *TransactionForm) LoadCategories(ctx context.Context) error {
	cats, err := f.categories.ListByType(ctx, f.Kind().CategoryType())
	if err != nil {
		return fmt.Errorf("failed to load categories: %w", err)
	}
	f.Categories = cats
	return nil
}

// LoadForEdit switches to edit mode for id and fills the inputs.
func (f *TransactionForm) LoadForEdit(ctx context.Context, id int) error {
	t, err := f.store.Get(ctx, id)
	if err != nil {
		return err
	}
	f.id = id
	f.Input = FromTransaction(t)

	if f.Input.CategoryID != 0 {
		subID := f.Input.SubcategoryID
		if err := f.SelectCategory(ctx, f.Input.CategoryID); err != nil {
			return err
		}
		f.Input.SubcategoryID = subID
	}
	return nil
}

// SelectCategory sets the category and reloads the subcategory picker. The
// subcategory selection is always cleared; id 0 clears the category too and
// fetches nothing.
func (f *TransactionForm) SelectCategory(ctx context.Context, id int) error {
	f.Input.CategoryID = id
	f.Input.SubcategoryID = 0
	f.Subcategories = nil
	if id == 0 {
		return nil
	}

	subs, err := f.subcategories.ListByCategory(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to load subcategories: %w", err)
	}
	f.Subcategories = subs
	return nil
}

// Submit validates and saves. On any error the inputs are kept.
func (f *TransactionForm) Submit(ctx context.Context) (model.Transaction, Destination, error) {
	draft, err := f.Input.Validate()
	if err != nil {
		return model.Transaction{}, Destination{}, err
	}

	var saved model.Transaction
	if f.Editing() {
		saved, err = f.store.Update(ctx, f.id, draft)
	} else {
		saved, err = f.store.Create(ctx, draft)
	}
	if err != nil {
		return model.Transaction{}, Destination{}, err
	}
	return saved, ListOf(f.Kind()), nil
}
