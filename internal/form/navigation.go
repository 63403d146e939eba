package form

import (
	"fmt"

	"github.com/Veraticus/finflow/internal/model"
)

// View names a screen a form can lead to.
type View string

// Views reachable after a submit.
const (
	ViewIncomeList   View = "receitas"
	ViewExpenseList  View = "despesas"
	ViewCategoryList View = "categorias"
	ViewCategoryEdit View = "categorias/editar"
)

// Destination is where the caller should go after a successful submit.
type Destination struct {
	View View
	ID   int
}

// Path renders the destination as a route.
func (d Destination) Path() string {
	if d.View == ViewCategoryEdit {
		return fmt.Sprintf("/categorias/%d/editar", d.ID)
	}
	return "/" + string(d.View)
}

// ListOf returns the list view owning kind.
func ListOf(kind model.Kind) Destination {
	if kind == model.KindIncome {
		return Destination{View: ViewIncomeList}
	}
	return Destination{View: ViewExpenseList}
}
