package api

import (
	"context"
	"fmt"

	"github.com/Veraticus/finflow/internal/model"
)

type categoryRequest struct {
	Name string             `json:"nomeCategoria"`
	Type model.CategoryType `json:"tipoCategoria"`
	ID   int                `json:"idCategoria,omitempty"`
}

// CategoryService wraps /categorias.
type CategoryService struct {
	client *Client
}

// NewCategoryService creates a CategoryService.
func NewCategoryService(c *Client) *CategoryService {
	return &CategoryService{client: c}
}

// List returns every category of the user.
func (s *CategoryService) List(ctx context.Context) ([]model.Category, error) {
	return get[[]model.Category](ctx, s.client, "/categorias")
}

// ListByType returns the categories of one type.
func (s *CategoryService) ListByType(ctx context.Context, t model.CategoryType) ([]model.Category, error) {
	return get[[]model.Category](ctx, s.client, "/categorias/tipo/"+string(t))
}

// Get returns one category; a missing id matches common.ErrNotFound.
func (s *CategoryService) Get(ctx context.Context, id int) (model.Category, error) {
	return get[model.Category](ctx, s.client, fmt.Sprintf("/categorias/%d", id))
}

// Create creates a category.
func (s *CategoryService) Create(ctx context.Context, name string, t model.CategoryType) (model.Category, error) {
	return post[model.Category](ctx, s.client, "/categorias", categoryRequest{Name: name, Type: t}, true)
}

// Update replaces a category's name and type.
func (s *CategoryService) Update(ctx context.Context, id int, name string, t model.CategoryType) (model.Category, error) {
	return put[model.Category](ctx, s.client, fmt.Sprintf("/categorias/%d", id), categoryRequest{ID: id, Name: name, Type: t})
}

// Delete removes a category.
func (s *CategoryService) Delete(ctx context.Context, id int) error {
	return del(ctx, s.client, fmt.Sprintf("/categorias/%d", id))
}
