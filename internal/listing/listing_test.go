package listing

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/finflow/internal/api"
	"github.com/Veraticus/finflow/internal/config"
	"github.com/Veraticus/finflow/internal/model"
	"github.com/Veraticus/finflow/internal/testutil"
)

var (
	salary    = &model.Category{ID: 1, Name: "Salário", Type: model.CategoryTypeIncome}
	freelance = &model.Category{ID: 2, Name: "Freelance", Type: model.CategoryTypeIncome}
)

func tx(id int, date string, pending bool, c *model.Category) model.Transaction {
	return model.Transaction{
		ID:          id,
		Kind:        model.KindIncome,
		Description: fmt.Sprintf("item %d", id),
		Amount:      decimal.NewFromInt(int64(id * 10)),
		Date:        date,
		Pending:     pending,
		Category:    c,
	}
}

func sample() []model.Transaction {
	return []model.Transaction{
		tx(1, "2024-01-10", false, salary),
		tx(2, "2024-02-10", true, salary),
		tx(3, "2024-01-20", true, freelance),
		tx(4, "2024-03-01", false, nil),
		tx(5, "2024-02-10", false, freelance),
	}
}

func ids(ts []model.Transaction) []int {
	out := make([]int, 0, len(ts))
	for _, t := range ts {
		out = append(out, t.ID)
	}
	return out
}

var filterCases = []struct {
	name     string
	criteria model.FilterCriteria
	want     []int
}{
	{
		name: "no filters sorts newest first and keeps ties stable",
		want: []int{4, 2, 5, 3, 1},
	},
	{
		name:     "start date is inclusive",
		criteria: model.FilterCriteria{StartDate: "2024-02-10"},
		want:     []int{4, 2, 5},
	},
	{
		name:     "end date is inclusive",
		criteria: model.FilterCriteria{EndDate: "2024-01-20"},
		want:     []int{3, 1},
	},
	{
		name:     "category",
		criteria: model.FilterCriteria{CategoryID: salary.ID},
		want:     []int{2, 1},
	},
	{
		name:     "pending",
		criteria: model.FilterCriteria{Status: model.StatusPending},
		want:     []int{2, 3},
	},
	{
		name:     "settled",
		criteria: model.FilterCriteria{Status: model.StatusSettled},
		want:     []int{4, 5, 1},
	},
	{
		name: "combined",
		criteria: model.FilterCriteria{
			StartDate:  "2024-01-15",
			EndDate:    "2024-02-28",
			CategoryID: freelance.ID,
			Status:     model.StatusSettled,
		},
		want: []int{5},
	},
	{
		name:     "nothing matches",
		criteria: model.FilterCriteria{StartDate: "2025-01-01"},
		want:     []int{},
	},
}

func TestApplyFilters(t *testing.T) {
	for _, tt := range filterCases {
		t.Run(tt.name, func(t *testing.T) {
			in := sample()
			got := ApplyFilters(in, tt.criteria)
			assert.Equal(t, tt.want, ids(got))
			assert.Equal(t, []int{1, 2, 3, 4, 5}, ids(in))
		})
	}
}

func TestApplyFilters_Idempotent(t *testing.T) {
	for _, tt := range filterCases {
		t.Run(tt.name, func(t *testing.T) {
			once := ApplyFilters(sample(), tt.criteria)
			twice := ApplyFilters(once, tt.criteria)
			assert.Equal(t, once, twice)
		})
	}
}

// Each active criterion narrows the result on its own; together they keep
// exactly the records every one of them keeps.
func TestApplyFilters_Conjunction(t *testing.T) {
	for _, tt := range filterCases {
		t.Run(tt.name, func(t *testing.T) {
			c := tt.criteria
			singles := []model.FilterCriteria{
				{StartDate: c.StartDate},
				{EndDate: c.EndDate},
				{CategoryID: c.CategoryID},
				{Status: c.Status},
			}

			want := ids(ApplyFilters(sample(), model.FilterCriteria{}))
			for _, single := range singles {
				kept := ids(ApplyFilters(sample(), single))
				want = slices.DeleteFunc(want, func(id int) bool { return !slices.Contains(kept, id) })
			}

			assert.Equal(t, want, ids(ApplyFilters(sample(), c)))
			assert.Equal(t, tt.want, want)
		})
	}
}

func TestSortByDateDesc_Idempotent(t *testing.T) {
	ts := sample()
	SortByDateDesc(ts)
	first := ids(ts)
	assert.Equal(t, []int{4, 2, 5, 3, 1}, first)

	SortByDateDesc(ts)
	assert.Equal(t, first, ids(ts))
}

func TestSortByDateDesc_MixedMonths(t *testing.T) {
	ts := []model.Transaction{
		tx(1, "2024-02-15", false, nil),
		tx(2, "2024-03-01", false, nil),
	}
	SortByDateDesc(ts)
	assert.Equal(t, []string{"2024-03-01", "2024-02-15"}, dates(ts))
}

func TestApplyFilters_CategoryScenario(t *testing.T) {
	in := []model.Transaction{tx(10, "2024-01-01", false, salary)}

	assert.Equal(t, []int{10}, ids(ApplyFilters(in, model.FilterCriteria{CategoryID: 1})))
	assert.Empty(t, ApplyFilters(in, model.FilterCriteria{CategoryID: 2}))
}

func TestSlice(t *testing.T) {
	all := ApplyFilters(sample(), model.FilterCriteria{})

	tests := []struct {
		name      string
		page      int
		size      int
		want      []int
		wantPages int
	}{
		{name: "first page", page: 1, size: 2, want: []int{4, 2}, wantPages: 3},
		{name: "last partial page", page: 3, size: 2, want: []int{1}, wantPages: 3},
		{name: "past the end", page: 4, size: 2, want: []int{}, wantPages: 3},
		{name: "exact fit", page: 1, size: 5, want: []int{4, 2, 5, 3, 1}, wantPages: 1},
		{name: "page zero clamps to one", page: 0, size: 2, want: []int{4, 2}, wantPages: 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Slice(all, tt.page, tt.size)
			assert.Equal(t, tt.want, ids(p.Content))
			assert.Equal(t, tt.wantPages, p.TotalPages)
			assert.Equal(t, 5, p.TotalElements)
		})
	}

	empty := Slice(nil, 1, 10)
	assert.Zero(t, empty.TotalPages)
	assert.Empty(t, empty.Content)
}

type countingLister struct {
	err   error
	items []model.Transaction
	calls int
}

func (c *countingLister) List(context.Context) ([]model.Transaction, error) {
	c.calls++
	return c.items, c.err
}

func TestClientPaginator_FetchesOnce(t *testing.T) {
	src := &countingLister{items: sample()}
	p := NewClientPaginator(src, 2)
	ctx := context.Background()

	page, err := p.Fetch(ctx, model.FilterCriteria{}, 1)
	require.NoError(t, err)
	assert.Equal(t, []int{4, 2}, ids(page.Content))

	page, err = p.Fetch(ctx, model.FilterCriteria{Status: model.StatusPending}, 1)
	require.NoError(t, err)
	assert.Equal(t, []int{2, 3}, ids(page.Content))
	assert.Equal(t, 1, src.calls)

	require.NoError(t, p.Reload(ctx))
	assert.Equal(t, 2, src.calls)

	s := p.Summarize(model.FilterCriteria{CategoryID: salary.ID})
	assert.Equal(t, 2, s.Count)
	assert.True(t, s.Total.Equal(decimal.NewFromInt(30)))
	assert.False(t, s.Partial)
}

func TestClientPaginator_RetriesAfterFailure(t *testing.T) {
	src := &countingLister{err: errors.New("boom")}
	p := NewClientPaginator(src, 2)

	_, err := p.Fetch(context.Background(), model.FilterCriteria{}, 1)
	require.Error(t, err)

	src.err, src.items = nil, sample()
	_, err = p.Fetch(context.Background(), model.FilterCriteria{}, 1)
	require.NoError(t, err)
	assert.Equal(t, 2, src.calls)
}

func TestServerPaginator_AgainstBackend(t *testing.T) {
	backend := testutil.NewBackend(t)
	cat := backend.SeedCategory("Salário", model.CategoryTypeIncome)
	for i := 1; i <= 5; i++ {
		backend.SeedTransaction(testutil.Income("Pagamento", "100", fmt.Sprintf("2024-01-0%d", i), i%2 == 0, &cat))
	}
	svc := api.NewIncomeService(api.NewClient(backend.URL(), backend.TokenSource()))
	view := NewView(NewPaginator(config.PaginationServer, svc, 2))
	ctx := context.Background()

	require.NoError(t, view.Load(ctx, view.SetCriteria(model.FilterCriteria{Status: model.StatusSettled})))
	assert.Equal(t, 0, view.PageIndex())
	assert.Equal(t, 3, view.Current().TotalElements)
	assert.Equal(t, []string{"2024-01-05", "2024-01-03"}, dates(view.Current().Content))

	req, ok := view.Next()
	require.True(t, ok)
	require.NoError(t, view.Load(ctx, req))
	assert.Equal(t, []string{"2024-01-01"}, dates(view.Current().Content))

	_, ok = view.Next()
	assert.False(t, ok)

	requests := backend.Requests()
	require.Len(t, requests, 2)
	assert.Equal(t, "GET /receitas?page=0&pendente=0&size=2", requests[0])
	assert.Equal(t, "GET /receitas?page=1&pendente=0&size=2", requests[1])

	s := view.Summary()
	assert.Equal(t, 3, s.Count)
	assert.True(t, s.Partial)
}

func dates(ts []model.Transaction) []string {
	out := make([]string, 0, len(ts))
	for _, t := range ts {
		out = append(out, t.Date)
	}
	return out
}

func TestView_FilterChangeResetsPage(t *testing.T) {
	for _, mode := range []string{config.PaginationClient, config.PaginationServer} {
		t.Run(mode, func(t *testing.T) {
			backend := testutil.NewBackend(t)
			for i := 1; i <= 6; i++ {
				backend.SeedTransaction(testutil.Expense("Conta", "10", fmt.Sprintf("2024-02-0%d", i), false, nil))
			}
			svc := api.NewExpenseService(api.NewClient(backend.URL(), backend.TokenSource()))
			p := NewPaginator(mode, svc, 2)
			view := NewView(p)
			ctx := context.Background()

			require.NoError(t, view.Load(ctx, view.SetPage(p.FirstPage()+2)))
			assert.Equal(t, p.FirstPage()+2, view.PageIndex())

			require.NoError(t, view.Load(ctx, view.SetCriteria(model.FilterCriteria{StartDate: "2024-02-03"})))
			assert.Equal(t, p.FirstPage(), view.PageIndex())
			page, total := view.Position()
			assert.Equal(t, 1, page)
			assert.Equal(t, 2, total)

			require.NoError(t, view.Load(ctx, view.ClearFilters()))
			assert.True(t, view.Criteria().IsZero())
			assert.Equal(t, 6, view.Current().TotalElements)
		})
	}
}

func TestView_DiscardsStaleResults(t *testing.T) {
	view := NewView(NewClientPaginator(&countingLister{items: sample()}, 2))

	first := view.SetCriteria(model.FilterCriteria{Status: model.StatusPending})
	second := view.SetCriteria(model.FilterCriteria{Status: model.StatusSettled})
	ctx := context.Background()

	newer := view.Fetch(ctx, second)
	older := view.Fetch(ctx, first)

	assert.True(t, view.Apply(newer))
	assert.False(t, view.Apply(older))
	assert.Equal(t, []int{4, 5}, ids(view.Current().Content))
}

func TestView_ErrorClearsList(t *testing.T) {
	src := &countingLister{items: sample()}
	p := NewClientPaginator(src, 10)
	view := NewView(p)
	ctx := context.Background()

	require.NoError(t, view.Load(ctx, view.Refresh()))
	require.Len(t, view.Current().Content, 5)

	backend := testutil.NewBackend(t)
	backend.Fail("GET /receitas", http.StatusServiceUnavailable, "maintenance")
	failing := NewView(NewServerPaginator(api.NewIncomeService(api.NewClient(backend.URL(), backend.TokenSource())), 10))

	err := failing.Load(ctx, failing.Refresh())
	require.EqualError(t, err, "maintenance")
	assert.Empty(t, failing.Current().Content)
	assert.Equal(t, err, failing.Err())
}

func TestView_PrevAtFirstPage(t *testing.T) {
	view := NewView(NewClientPaginator(&countingLister{items: sample()}, 2))
	_, ok := view.Prev()
	assert.False(t, ok)

	require.NoError(t, view.Load(context.Background(), view.SetPage(2)))
	req, ok := view.Prev()
	require.True(t, ok)
	assert.Equal(t, 1, req.Page)
}

func TestView_RemoveIsOptimistic(t *testing.T) {
	src := &countingLister{items: sample()}
	view := NewView(NewClientPaginator(src, 10))
	ctx := context.Background()
	require.NoError(t, view.Load(ctx, view.SetPage(1)))

	view.Remove(2)

	assert.Equal(t, []int{4, 5, 3, 1}, ids(view.Current().Content))
	assert.Equal(t, 4, view.Current().TotalElements)
	assert.Equal(t, 4, view.Summary().Count)
	assert.Equal(t, 1, src.calls)
}

func TestView_RemoveRefillsPage(t *testing.T) {
	tests := []struct {
		name      string
		page      int
		remove    int
		wantPage  int
		wantRows  []int
		wantPages int
	}{
		{name: "next record moves up", page: 1, remove: 4, wantPage: 1, wantRows: []int{2, 5}, wantPages: 2},
		{name: "middle page", page: 2, remove: 5, wantPage: 2, wantRows: []int{3, 1}, wantPages: 2},
		{name: "last record of last page", page: 3, remove: 1, wantPage: 2, wantRows: []int{5, 3}, wantPages: 2},
		{name: "unknown id", page: 1, remove: 99, wantPage: 1, wantRows: []int{4, 2}, wantPages: 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := &countingLister{items: sample()}
			view := NewView(NewClientPaginator(src, 2))
			require.NoError(t, view.Load(context.Background(), view.SetPage(tt.page)))

			view.Remove(tt.remove)

			assert.Equal(t, tt.wantPage, view.PageIndex())
			assert.Equal(t, tt.wantRows, ids(view.Current().Content))
			assert.Equal(t, tt.wantPages, view.Current().TotalPages)
			assert.Equal(t, 1, src.calls)
		})
	}
}

func TestView_RemoveServerRecountsPages(t *testing.T) {
	backend := testutil.NewBackend(t)
	for i := 1; i <= 5; i++ {
		backend.SeedTransaction(testutil.Income("Pagamento", "100", fmt.Sprintf("2024-01-0%d", i), false, nil))
	}
	svc := api.NewIncomeService(api.NewClient(backend.URL(), backend.TokenSource()))
	view := NewView(NewServerPaginator(svc, 2))
	require.NoError(t, view.Load(context.Background(), view.Refresh()))
	require.Equal(t, 3, view.Current().TotalPages)

	view.Remove(view.Current().Content[0].ID)

	assert.Len(t, view.Current().Content, 1)
	assert.Equal(t, 4, view.Current().TotalElements)
	assert.Equal(t, 2, view.Current().TotalPages)
}

func TestView_RefreshReloads(t *testing.T) {
	src := &countingLister{items: sample()}
	view := NewView(NewClientPaginator(src, 10))
	ctx := context.Background()
	require.NoError(t, view.Load(ctx, view.Refresh()))
	require.Equal(t, 1, src.calls)

	src.items = append(slices.Clone(src.items), tx(9, "2024-04-01", false, nil))
	require.NoError(t, view.Load(ctx, view.Refresh()))

	assert.Equal(t, 2, src.calls)
	assert.Equal(t, []int{9, 4, 2, 5, 3, 1}, ids(view.Current().Content))

	require.NoError(t, view.Load(ctx, view.SetPage(1)))
	assert.Equal(t, 2, src.calls)
}

func TestView_RefreshReloadFailure(t *testing.T) {
	src := &countingLister{items: sample()}
	view := NewView(NewClientPaginator(src, 10))
	ctx := context.Background()
	require.NoError(t, view.Load(ctx, view.Refresh()))

	src.err = errors.New("offline")
	err := view.Load(ctx, view.Refresh())
	require.ErrorContains(t, err, "offline")
	assert.Empty(t, view.Current().Content)
}
