// Package category manages the two-level category hierarchy: categories typed
// as income or expense, and the subcategories each one owns.
package category

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"

	"github.com/Veraticus/finflow/internal/common"
	"github.com/Veraticus/finflow/internal/model"
)

// CategoryAPI is the remote category resource.
type CategoryAPI interface {
	List(ctx context.Context) ([]model.Category, error)
	ListByType(ctx context.Context, t model.CategoryType) ([]model.Category, error)
	Get(ctx context.Context, id int) (model.Category, error)
	Create(ctx context.Context, name string, t model.CategoryType) (model.Category, error)
	Update(ctx context.Context, id int, name string, t model.CategoryType) (model.Category, error)
	Delete(ctx context.Context, id int) error
}

// SubcategoryAPI is the remote subcategory resource.
type SubcategoryAPI interface {
	List(ctx context.Context) ([]model.Subcategory, error)
	ListByCategory(ctx context.Context, categoryID int) ([]model.Subcategory, error)
	Create(ctx context.Context, categoryID int, name string) (model.Subcategory, error)
	Update(ctx context.Context, id int, name string, categoryID int) (model.Subcategory, error)
	Delete(ctx context.Context, id int) error
}

// Confirmer asks the user to approve a destructive action.
type Confirmer interface {
	Confirm(ctx context.Context, prompt string) (bool, error)
}

// Manager holds the loaded category list with subcategory counts and keeps it
// in sync with every mutation it performs.
type Manager struct {
	categories    CategoryAPI
	subcategories SubcategoryAPI
	counter       Counter
	confirmer     Confirmer
	filter        model.CategoryType
	items         []model.CategoryWithCount
	mu            sync.RWMutex
}

// NewManager creates a manager. counter defaults to a BatchCounter.
func NewManager(categories CategoryAPI, subcategories SubcategoryAPI, counter Counter, confirmer Confirmer) *Manager {
	if counter == nil {
		counter = NewCounter("", subcategories, 0)
	}
	return &Manager{
		categories:    categories,
		subcategories: subcategories,
		counter:       counter,
		confirmer:     confirmer,
	}
}

// Load fetches every category and its subcategory count.
func (m *Manager) Load(ctx context.Context) error {
	cats, err := m.categories.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to load categories: %w", err)
	}
	counts, err := m.counter.Count(ctx, cats)
	if err != nil {
		return err
	}

	items := make([]model.CategoryWithCount, 0, len(cats))
	for _, c := range cats {
		items = append(items, model.CategoryWithCount{Category: c, SubcategoryCount: counts[c.ID]})
	}

	m.mu.Lock()
	m.items = items
	m.mu.Unlock()

	slog.Debug("loaded categories", "count", len(items))
	return nil
}

// SetFilter restricts Items to one type. An empty type shows all.
func (m *Manager) SetFilter(t model.CategoryType) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.filter = t
}

// Items returns the loaded categories that pass the type filter.
func (m *Manager) Items() []model.CategoryWithCount {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.filter == "" {
		return slices.Clone(m.items)
	}
	out := make([]model.CategoryWithCount, 0, len(m.items))
	for _, c := range m.items {
		if c.Type == m.filter {
			out = append(out, c)
		}
	}
	return out
}

// ListByType fetches the categories of one type from the backend. Forms use
// it to populate category pickers.
func (m *Manager) ListByType(ctx context.Context, t model.CategoryType) ([]model.Category, error) {
	return m.categories.ListByType(ctx, t)
}

// Get fetches one category. A missing category yields common.ErrNotFound.
func (m *Manager) Get(ctx context.Context, id int) (model.Category, error) {
	return m.categories.Get(ctx, id)
}

func validateCategory(name string, t model.CategoryType) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", common.NewValidationError("name", "name is required")
	}
	if t != model.CategoryTypeIncome && t != model.CategoryTypeExpense {
		return "", common.NewValidationError("type", "type must be RECEITA or DESPESA")
	}
	return name, nil
}

// Create stores a new category and appends it to the list.
func (m *Manager) Create(ctx context.Context, name string, t model.CategoryType) (model.Category, error) {
	name, err := validateCategory(name, t)
	if err != nil {
		return model.Category{}, err
	}

	c, err := m.categories.Create(ctx, name, t)
	if err != nil {
		return model.Category{}, err
	}

	m.mu.Lock()
	m.items = append(m.items, model.CategoryWithCount{Category: c})
	m.mu.Unlock()
	return c, nil
}

// Update renames a category or changes its type.
func (m *Manager) Update(ctx context.Context, id int, name string, t model.CategoryType) (model.Category, error) {
	name, err := validateCategory(name, t)
	if err != nil {
		return model.Category{}, err
	}

	c, err := m.categories.Update(ctx, id, name, t)
	if err != nil {
		return model.Category{}, err
	}

	m.mu.Lock()
	if i := m.indexOf(id); i >= 0 {
		m.items[i].Category = c
	}
	m.mu.Unlock()
	return c, nil
}

// SubcategoryCount returns the count for id, asking the backend when the
// category is not in the loaded list.
func (m *Manager) SubcategoryCount(ctx context.Context, id int) (int, error) {
	m.mu.RLock()
	i := m.indexOf(id)
	var count int
	if i >= 0 {
		count = m.items[i].SubcategoryCount
	}
	m.mu.RUnlock()
	if i >= 0 {
		return count, nil
	}

	subs, err := m.subcategories.ListByCategory(ctx, id)
	if err != nil {
		return 0, fmt.Errorf("failed to count subcategories: %w", err)
	}
	return len(subs), nil
}

// Delete removes a category after confirmation. A category that still owns
// subcategories is refused with common.ErrCategoryHasSubcategories and no
// delete request is sent. It reports false when the user declines.
func (m *Manager) Delete(ctx context.Context, id int) (bool, error) {
	count, err := m.SubcategoryCount(ctx, id)
	if err != nil {
		return false, err
	}
	if count > 0 {
		return false, common.ErrCategoryHasSubcategories
	}

	ok, err := m.confirmer.Confirm(ctx, "Delete this category?")
	if err != nil || !ok {
		return false, err
	}

	if err := m.categories.Delete(ctx, id); err != nil {
		return false, err
	}

	m.mu.Lock()
	if i := m.indexOf(id); i >= 0 {
		m.items = slices.Delete(m.items, i, i+1)
	}
	m.mu.Unlock()
	return true, nil
}

// Subcategories returns the lazily loaded child list of a saved category.
func (m *Manager) Subcategories(categoryID int) (*SubcategoryList, error) {
	if categoryID == 0 {
		return nil, common.ErrCategoryNotSaved
	}
	return &SubcategoryList{
		api:        m.subcategories,
		confirmer:  m.confirmer,
		categoryID: categoryID,
		onChange:   func(delta int) { m.adjustCount(categoryID, delta) },
	}, nil
}

func (m *Manager) adjustCount(id, delta int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if i := m.indexOf(id); i >= 0 {
		m.items[i].SubcategoryCount = max(0, m.items[i].SubcategoryCount+delta)
	}
}

// indexOf must be called with mu held.
func (m *Manager) indexOf(id int) int {
	return slices.IndexFunc(m.items, func(c model.CategoryWithCount) bool { return c.ID == id })
}
