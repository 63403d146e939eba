package category

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/finflow/internal/api"
	"github.com/Veraticus/finflow/internal/common"
	"github.com/Veraticus/finflow/internal/config"
	"github.com/Veraticus/finflow/internal/model"
	"github.com/Veraticus/finflow/internal/testutil"
)

type stubConfirmer struct {
	err     error
	prompts []string
	answer  bool
}

func (s *stubConfirmer) Confirm(_ context.Context, prompt string) (bool, error) {
	s.prompts = append(s.prompts, prompt)
	return s.answer, s.err
}

type fixture struct {
	backend   *testutil.Backend
	manager   *Manager
	confirmer *stubConfirmer
	seeded    testutil.Seeded
}

func newFixture(t *testing.T, mode string) *fixture {
	t.Helper()
	backend := testutil.NewBackend(t)
	seeded := backend.Seed(testutil.FixtureStandard)
	client := api.NewClient(backend.URL(), backend.TokenSource())
	subs := api.NewSubcategoryService(client)
	confirmer := &stubConfirmer{answer: true}

	m := NewManager(api.NewCategoryService(client), subs, NewCounter(mode, subs, 2), confirmer)
	require.NoError(t, m.Load(context.Background()))
	backend.ResetRequests()

	return &fixture{backend: backend, manager: m, confirmer: confirmer, seeded: seeded}
}

func countsByName(items []model.CategoryWithCount) map[string]int {
	out := make(map[string]int, len(items))
	for _, c := range items {
		out[c.Name] = c.SubcategoryCount
	}
	return out
}

func TestManager_LoadCounts(t *testing.T) {
	want := map[string]int{
		"Salário":     0,
		"Freelance":   2,
		"Moradia":     3,
		"Alimentação": 1,
		"Lazer":       0,
	}

	for _, mode := range []string{config.CountModeBatch, config.CountModeFanout} {
		t.Run(mode, func(t *testing.T) {
			f := newFixture(t, mode)
			assert.Equal(t, want, countsByName(f.manager.Items()))
		})
	}
}

func TestManager_BatchCounterUsesSingleRequest(t *testing.T) {
	backend := testutil.NewBackend(t)
	backend.Seed(testutil.FixtureStandard)
	subs := api.NewSubcategoryService(api.NewClient(backend.URL(), backend.TokenSource()))
	cats := backend.Categories()

	counts, err := NewCounter(config.CountModeBatch, subs, 4).Count(context.Background(), cats)
	require.NoError(t, err)
	assert.Len(t, counts, len(cats))
	assert.Equal(t, 1, backend.CountRequests("GET /subcategorias"))
	assert.Zero(t, backend.CountRequests("GET /subcategorias/categoria"))
}

type orphanSubcategories struct {
	SubcategoryAPI
}

func (orphanSubcategories) List(context.Context) ([]model.Subcategory, error) {
	return []model.Subcategory{{ID: 1, Name: "orphan"}}, nil
}

func (orphanSubcategories) ListByCategory(_ context.Context, id int) ([]model.Subcategory, error) {
	if id == 10 {
		return []model.Subcategory{{ID: 1}}, nil
	}
	return nil, nil
}

func TestBatchCounter_FallsBackWhenParentMissing(t *testing.T) {
	var progressed atomic.Int32
	subs := orphanSubcategories{}
	counter := &BatchCounter{
		Subcategories: subs,
		Fallback:      &FanoutCounter{Subcategories: subs, Progress: func() { progressed.Add(1) }},
	}

	counts, err := counter.Count(context.Background(), []model.Category{{ID: 10}, {ID: 11}})
	require.NoError(t, err)
	assert.Equal(t, map[int]int{10: 1, 11: 0}, counts)
	assert.EqualValues(t, 2, progressed.Load())
}

func TestManager_DeleteRefusedWithSubcategories(t *testing.T) {
	f := newFixture(t, config.CountModeBatch)
	moradia := f.seeded.Categories["Moradia"]

	deleted, err := f.manager.Delete(context.Background(), moradia.ID)

	require.ErrorIs(t, err, common.ErrCategoryHasSubcategories)
	assert.False(t, deleted)
	assert.Empty(t, f.confirmer.prompts)
	assert.Empty(t, f.backend.Requests())
}

func TestManager_DeleteEmptyCategory(t *testing.T) {
	tests := []struct {
		name        string
		answer      bool
		wantDeleted bool
		wantDeletes int
	}{
		{name: "confirmed", answer: true, wantDeleted: true, wantDeletes: 1},
		{name: "declined", answer: false, wantDeleted: false, wantDeletes: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, config.CountModeBatch)
			f.confirmer.answer = tt.answer
			lazer := f.seeded.Categories["Lazer"]

			deleted, err := f.manager.Delete(context.Background(), lazer.ID)
			require.NoError(t, err)

			assert.Equal(t, tt.wantDeleted, deleted)
			assert.Len(t, f.confirmer.prompts, 1)
			assert.Equal(t, tt.wantDeletes, f.backend.CountRequests("DELETE /categorias"))
			_, present := countsByName(f.manager.Items())["Lazer"]
			assert.Equal(t, !tt.wantDeleted, present)
		})
	}
}

func TestManager_DeleteLastSubcategoryThenCategory(t *testing.T) {
	f := newFixture(t, config.CountModeBatch)
	ctx := context.Background()
	food := f.seeded.Categories["Alimentação"]

	list, err := f.manager.Subcategories(food.ID)
	require.NoError(t, err)
	require.NoError(t, list.Load(ctx))
	require.Len(t, list.Items(), 1)

	ok, err := list.Remove(ctx, list.Items()[0].ID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Empty(t, list.Items())
	assert.Equal(t, 0, countsByName(f.manager.Items())["Alimentação"])

	ok, err = f.manager.Delete(ctx, food.ID)
	require.NoError(t, err)
	assert.True(t, ok)
	for _, c := range f.backend.Categories() {
		assert.NotEqual(t, "Alimentação", c.Name)
	}
}

func TestManager_DeleteUnloadedCategoryAsksBackendForCount(t *testing.T) {
	backend := testutil.NewBackend(t)
	seeded := backend.Seed(testutil.FixtureStandard)
	client := api.NewClient(backend.URL(), backend.TokenSource())
	subs := api.NewSubcategoryService(client)
	m := NewManager(api.NewCategoryService(client), subs, nil, &stubConfirmer{answer: true})

	_, err := m.Delete(context.Background(), seeded.Categories["Freelance"].ID)

	require.ErrorIs(t, err, common.ErrCategoryHasSubcategories)
	assert.Equal(t, 1, backend.CountRequests("GET /subcategorias/categoria"))
	assert.Zero(t, backend.CountRequests("DELETE"))
}

func TestManager_CreateAndUpdate(t *testing.T) {
	f := newFixture(t, config.CountModeBatch)
	ctx := context.Background()

	_, err := f.manager.Create(ctx, "   ", model.CategoryTypeIncome)
	require.True(t, common.IsValidation(err))
	assert.Empty(t, f.backend.Requests())

	c, err := f.manager.Create(ctx, "  Investimentos ", model.CategoryTypeIncome)
	require.NoError(t, err)
	assert.Equal(t, "Investimentos", c.Name)
	assert.Contains(t, countsByName(f.manager.Items()), "Investimentos")

	// A type change is allowed.
	updated, err := f.manager.Update(ctx, c.ID, "Investimentos", model.CategoryTypeExpense)
	require.NoError(t, err)
	assert.Equal(t, model.CategoryTypeExpense, updated.Type)

	f.manager.SetFilter(model.CategoryTypeIncome)
	for _, item := range f.manager.Items() {
		assert.Equal(t, model.CategoryTypeIncome, item.Type)
	}
	assert.NotContains(t, countsByName(f.manager.Items()), "Investimentos")

	f.manager.SetFilter("")
	assert.Len(t, f.manager.Items(), 6)
}

func TestManager_GetMissing(t *testing.T) {
	f := newFixture(t, config.CountModeBatch)
	_, err := f.manager.Get(context.Background(), 999)
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestManager_SubcategoriesOfUnsavedCategory(t *testing.T) {
	f := newFixture(t, config.CountModeBatch)

	_, err := f.manager.Subcategories(0)

	require.ErrorIs(t, err, common.ErrCategoryNotSaved)
	assert.Empty(t, f.backend.Requests())
}

func TestSubcategoryList_LazyAddRename(t *testing.T) {
	f := newFixture(t, config.CountModeBatch)
	ctx := context.Background()
	lazer := f.seeded.Categories["Lazer"]

	list, err := f.manager.Subcategories(lazer.ID)
	require.NoError(t, err)
	assert.False(t, list.Loaded())
	assert.Empty(t, f.backend.Requests())

	require.NoError(t, list.Load(ctx))
	require.NoError(t, list.Load(ctx))
	assert.Equal(t, 1, f.backend.CountRequests("GET /subcategorias/categoria"))

	_, err = list.Add(ctx, "")
	require.True(t, common.IsValidation(err))

	s, err := list.Add(ctx, " Cinema ")
	require.NoError(t, err)
	assert.Equal(t, "Cinema", s.Name)
	assert.Equal(t, 1, countsByName(f.manager.Items())["Lazer"])

	renamed, err := list.Rename(ctx, s.ID, "Cinema e teatro")
	require.NoError(t, err)
	assert.Equal(t, "Cinema e teatro", renamed.Name)
	assert.Equal(t, "Cinema e teatro", list.Items()[0].Name)

	ok, err := f.manager.Delete(ctx, lazer.ID)
	require.ErrorIs(t, err, common.ErrCategoryHasSubcategories)
	assert.False(t, ok)
}

func TestSubcategoryList_RemoveErrors(t *testing.T) {
	f := newFixture(t, config.CountModeBatch)
	ctx := context.Background()
	moradia := f.seeded.Categories["Moradia"]
	aluguel := f.seeded.Subcategories["Aluguel"]

	list, err := f.manager.Subcategories(moradia.ID)
	require.NoError(t, err)
	require.NoError(t, list.Load(ctx))

	f.confirmer.err = errors.New("input closed")
	_, err = list.Remove(ctx, aluguel.ID)
	require.Error(t, err)
	assert.Zero(t, f.backend.CountRequests("DELETE"))

	f.confirmer.err = nil
	f.backend.Fail("DELETE /subcategorias/"+strconv.Itoa(aluguel.ID), http.StatusInternalServerError, "")
	_, err = list.Remove(ctx, aluguel.ID)
	require.Error(t, err)
	assert.Equal(t, "error processing request (HTTP 500)", err.Error())
	assert.Len(t, list.Items(), 3)
	assert.Equal(t, 3, countsByName(f.manager.Items())["Moradia"])
}
