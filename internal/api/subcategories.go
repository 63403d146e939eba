package api

import (
	"context"
	"fmt"

	"github.com/Veraticus/finflow/internal/model"
)

type subcategoryRequest struct {
	Name       string `json:"nomeSubcat"`
	ID         int    `json:"idSubcategoria,omitempty"`
	CategoryID int    `json:"idCategoria"`
}

// SubcategoryService wraps /subcategorias.
type SubcategoryService struct {
	client *Client
}

// NewSubcategoryService creates a SubcategoryService.
func NewSubcategoryService(c *Client) *SubcategoryService {
	return &SubcategoryService{client: c}
}

// List returns every subcategory of the user, with the parent embedded when
// the backend provides it.
func (s *SubcategoryService) List(ctx context.Context) ([]model.Subcategory, error) {
	return get[[]model.Subcategory](ctx, s.client, "/subcategorias")
}

// ListByCategory returns the subcategories owned by one category.
func (s *SubcategoryService) ListByCategory(ctx context.Context, categoryID int) ([]model.Subcategory, error) {
	return get[[]model.Subcategory](ctx, s.client, fmt.Sprintf("/subcategorias/categoria/%d", categoryID))
}

// Get returns one subcategory.
func (s *SubcategoryService) Get(ctx context.Context, id int) (model.Subcategory, error) {
	return get[model.Subcategory](ctx, s.client, fmt.Sprintf("/subcategorias/%d", id))
}

// Create adds a subcategory under categoryID.
func (s *SubcategoryService) Create(ctx context.Context, categoryID int, name string) (model.Subcategory, error) {
	return post[model.Subcategory](ctx, s.client, "/subcategorias", subcategoryRequest{Name: name, CategoryID: categoryID}, true)
}

// Update renames a subcategory.
func (s *SubcategoryService) Update(ctx context.Context, id int, name string, categoryID int) (model.Subcategory, error) {
	return put[model.Subcategory](ctx, s.client, fmt.Sprintf("/subcategorias/%d", id),
		subcategoryRequest{ID: id, Name: name, CategoryID: categoryID})
}

// Delete removes a subcategory.
func (s *SubcategoryService) Delete(ctx context.Context, id int) error {
	return del(ctx, s.client, fmt.Sprintf("/subcategorias/%d", id))
}
