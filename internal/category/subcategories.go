package category

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/Veraticus/finflow/internal/common"
	"github.com/Veraticus/finflow/internal/model"
)

// SubcategoryList is the child list of one saved category. Nothing is
// fetched until Load is called.
type SubcategoryList struct {
	api        SubcategoryAPI
	confirmer  Confirmer
	onChange   func(delta int)
	items      []model.Subcategory
	categoryID int
	loaded     bool
}

// CategoryID returns the owning category.
func (l *SubcategoryList) CategoryID() int {
	return l.categoryID
}

// Loaded reports whether Load has succeeded.
func (l *SubcategoryList) Loaded() bool {
	return l.loaded
}

// Load fetches the children once. Later calls are no-ops.
func (l *SubcategoryList) Load(ctx context.Context) error {
	if l.loaded {
		return nil
	}
	items, err := l.api.ListByCategory(ctx, l.categoryID)
	if err != nil {
		return fmt.Errorf("failed to load subcategories: %w", err)
	}
	l.items = items
	l.loaded = true
	return nil
}

// Items returns the loaded children.
func (l *SubcategoryList) Items() []model.Subcategory {
	return slices.Clone(l.items)
}

func subcategoryName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", common.NewValidationError("name", "name is required")
	}
	return name, nil
}

// Add creates a child and appends it.
func (l *SubcategoryList) Add(ctx context.Context, name string) (model.Subcategory, error) {
	name, err := subcategoryName(name)
	if err != nil {
		return model.Subcategory{}, err
	}
	s, err := l.api.Create(ctx, l.categoryID, name)
	if err != nil {
		return model.Subcategory{}, err
	}
	l.items = append(l.items, s)
	l.changed(1)
	return s, nil
}

// Rename changes a child's name in place.
func (l *SubcategoryList) Rename(ctx context.Context, id int, name string) (model.Subcategory, error) {
	name, err := subcategoryName(name)
	if err != nil {
		return model.Subcategory{}, err
	}
	s, err := l.api.Update(ctx, id, name, l.categoryID)
	if err != nil {
		return model.Subcategory{}, err
	}
	if i := l.indexOf(id); i >= 0 {
		l.items[i] = s
	}
	return s, nil
}

// Remove deletes a child after confirmation. It reports false when the user
// declines.
func (l *SubcategoryList) Remove(ctx context.Context, id int) (bool, error) {
	ok, err := l.confirmer.Confirm(ctx, "Delete this subcategory?")
	if err != nil || !ok {
		return false, err
	}
	if err := l.api.Delete(ctx, id); err != nil {
		return false, err
	}
	if i := l.indexOf(id); i >= 0 {
		l.items = slices.Delete(l.items, i, i+1)
	}
	l.changed(-1)
	return true, nil
}

func (l *SubcategoryList) changed(delta int) {
	if l.onChange != nil {
		l.onChange(delta)
	}
}

func (l *SubcategoryList) indexOf(id int) int {
	return slices.IndexFunc(l.items, func(s model.Subcategory) bool { return s.ID == id })
}
