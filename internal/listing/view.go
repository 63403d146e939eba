package listing

import (
	"context"
	"slices"
	"sync"

	"github.com/Veraticus/finflow/internal/model"
)

// Request is one fetch issued by a View. Seq orders requests by issue time.
// Reload asks a caching paginator to fetch the collection again first.
type Request struct {
	Criteria model.FilterCriteria
	Page     int
	Seq      uint64
	Reload   bool
}

// Result is the outcome of a Request.
type Result struct {
	Err  error
	Page model.Page[model.Transaction]
	Seq  uint64
}

// View is the state of one list screen: criteria, current page and the last
// applied result. Every criteria or page change returns exactly one Request
// for the caller to run. Requests are never cancelled; a result older than
// the newest one already applied is discarded.
type View struct {
	paginator Paginator
	err       error
	current   model.Page[model.Transaction]
	criteria  model.FilterCriteria
	page      int
	issued    uint64
	applied   uint64
	mu        sync.Mutex
}

// NewView creates a view positioned on the paginator's first page.
func NewView(p Paginator) *View {
	return &View{paginator: p, page: p.FirstPage()}
}

func (v *View) request() Request {
	v.issued++
	return Request{Criteria: v.criteria, Page: v.page, Seq: v.issued}
}

// SetCriteria replaces the filters and resets to the first page.
func (v *View) SetCriteria(c model.FilterCriteria) Request {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.criteria = c
	v.page = v.paginator.FirstPage()
	return v.request()
}

// ClearFilters resets the criteria and the page.
func (v *View) ClearFilters() Request {
	return v.SetCriteria(model.FilterCriteria{})
}

// SetPage moves to page. Pages before the first are clamped.
func (v *View) SetPage(page int) Request {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.page = max(page, v.paginator.FirstPage())
	return v.request()
}

// Next moves forward when a later page exists.
func (v *View) Next() (Request, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	last := v.paginator.FirstPage() + v.current.TotalPages - 1
	if v.page >= last {
		return Request{}, false
	}
	v.page++
	return v.request(), true
}

// Prev moves back when an earlier page exists.
func (v *View) Prev() (Request, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.page <= v.paginator.FirstPage() {
		return Request{}, false
	}
	v.page--
	return v.request(), true
}

// Refresh re-issues the current criteria and page, discarding any cached
// collection.
func (v *View) Refresh() Request {
	v.mu.Lock()
	defer v.mu.Unlock()
	req := v.request()
	req.Reload = true
	return req
}

// reloader is implemented by paginators that cache the collection.
type reloader interface {
	Reload(ctx context.Context) error
}

// Fetch runs req against the paginator. It does not touch view state and may
// run on any goroutine.
func (v *View) Fetch(ctx context.Context, req Request) Result {
	if r, ok := v.paginator.(reloader); ok && req.Reload {
		if err := r.Reload(ctx); err != nil {
			return Result{Seq: req.Seq, Err: err}
		}
	}
	page, err := v.paginator.Fetch(ctx, req.Criteria, req.Page)
	return Result{Seq: req.Seq, Page: page, Err: err}
}

// Apply stores res unless a newer result was already applied. A failed fetch
// clears the list. It reports whether res was applied.
func (v *View) Apply(res Result) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	if res.Seq < v.applied {
		return false
	}
	v.applied = res.Seq
	v.err = res.Err
	if res.Err != nil {
		v.current = model.Page[model.Transaction]{}
		return true
	}
	v.current = res.Page
	return true
}

// Load fetches and applies req synchronously.
func (v *View) Load(ctx context.Context, req Request) error {
	res := v.Fetch(ctx, req)
	v.Apply(res)
	return res.Err
}

// Criteria returns the active filters.
func (v *View) Criteria() model.FilterCriteria {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.criteria
}

// PageIndex returns the requested page number in the paginator's numbering.
func (v *View) PageIndex() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.page
}

// Current returns the last applied page.
func (v *View) Current() model.Page[model.Transaction] {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.current
}

// Err returns the error of the last applied result.
func (v *View) Err() error {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.err
}

// Position returns the 1-based page number and the page count for display.
func (v *View) Position() (page, total int) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.page - v.paginator.FirstPage() + 1, v.current.TotalPages
}

// Summary returns the count and total of the filtered set. Server paging only
// knows the visible page's amounts.
func (v *View) Summary() Summary {
	v.mu.Lock()
	criteria, current := v.criteria, v.current
	v.mu.Unlock()

	if s, ok := v.paginator.(interface{ Summarize(model.FilterCriteria) Summary }); ok {
		return s.Summarize(criteria)
	}
	s := Summarize(current.Content)
	s.Count = current.TotalElements
	s.Partial = current.TotalPages > 1
	return s
}

// Remove drops a deleted record without a refetch. A caching paginator
// re-slices its collection so the page is refilled from the following
// records; otherwise the row is dropped from the visible page. The page
// moves back when it no longer exists.
func (v *View) Remove(id int) {
	c, caching := v.paginator.(cache)
	if caching {
		c.Forget(id)
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	if caching {
		if page, ok := c.Cached(v.criteria, v.page); ok {
			last := v.paginator.FirstPage() + max(page.TotalPages, 1) - 1
			if v.page > last {
				v.page = last
				page, _ = c.Cached(v.criteria, v.page)
			}
			v.current = page
			return
		}
	}

	n := len(v.current.Content)
	v.current.Content = slices.DeleteFunc(slices.Clone(v.current.Content), func(t model.Transaction) bool { return t.ID == id })
	if len(v.current.Content) < n {
		v.current.TotalElements--
		if v.current.Size > 0 {
			v.current.TotalPages = (v.current.TotalElements + v.current.Size - 1) / v.current.Size
		}
	}
}

// cache is implemented by paginators that hold the whole collection.
type cache interface {
	Forget(id int)
	Cached(criteria model.FilterCriteria, page int) (model.Page[model.Transaction], bool)
}
