package form

import (
	"context"
	"strings"

	"github.com/Veraticus/finflow/internal/category"
	"github.com/Veraticus/finflow/internal/model"
)

// CategoryManager is the part of category.Manager the form uses.
type CategoryManager interface {
	Get(ctx context.Context, id int) (model.Category, error)
	Create(ctx context.Context, name string, t model.CategoryType) (model.Category, error)
	Update(ctx context.Context, id int, name string, t model.CategoryType) (model.Category, error)
	Subcategories(categoryID int) (*category.SubcategoryList, error)
}

// CategoryForm is the create/edit flow of a category.
type CategoryForm struct {
	manager CategoryManager
	Name    string
	Type    model.CategoryType
	id      int
}

// NewCategoryForm creates a form in create mode.
func NewCategoryForm(m CategoryManager) *CategoryForm {
	return &CategoryForm{manager: m}
}

// ID returns the saved category id, zero before the first save.
func (f *CategoryForm) ID() int {
	return f.id
}

// Editing reports whether the form edits a saved category.
func (f *CategoryForm) Editing() bool {
	return f.id != 0
}

// LoadForEdit switches to edit mode for id.
func (f *CategoryForm) LoadForEdit(ctx context.Context, id int) error {
	c, err := f.manager.Get(ctx, id)
	if err != nil {
		return err
	}
	f.id = c.ID
	f.Name = c.Name
	f.Type = c.Type
	return nil
}

// Submit validates and saves. A created category leads to its own edit view
// and the form switches to edit mode; an edit leads back to the list.
func (f *CategoryForm) Submit(ctx context.Context) (model.Category, Destination, error) {
	name := strings.TrimSpace(f.Name)
	if err := firstError(categoryRules{Name: name, Type: string(f.Type)}); err != nil {
		return model.Category{}, Destination{}, err
	}

	if f.Editing() {
		c, err := f.manager.Update(ctx, f.id, name, f.Type)
		if err != nil {
			return model.Category{}, Destination{}, err
		}
		return c, Destination{View: ViewCategoryList}, nil
	}

	c, err := f.manager.Create(ctx, name, f.Type)
	if err != nil {
		return model.Category{}, Destination{}, err
	}
	f.id = c.ID
	f.Name = c.Name
	return c, Destination{View: ViewCategoryEdit, ID: c.ID}, nil
}

// Subcategories returns the inline child list. It fails with
// common.ErrCategoryNotSaved until the category has an id.
func (f *CategoryForm) Subcategories() (*category.SubcategoryList, error) {
	return f.manager.Subcategories(f.id)
}
