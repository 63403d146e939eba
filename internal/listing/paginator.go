package listing

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/Veraticus/finflow/internal/config"
	"github.com/Veraticus/finflow/internal/model"
)

// Paginator produces one page of records for a set of criteria. List views
// depend only on this interface.
type Paginator interface {
	// FirstPage is 1 for client-side paging and 0 for server paging.
	FirstPage() int
	Fetch(ctx context.Context, criteria model.FilterCriteria, page int) (model.Page[model.Transaction], error)
}

// Lister returns a full, unfiltered collection.
type Lister interface {
	List(ctx context.Context) ([]model.Transaction, error)
}

// PageLister returns one filtered page computed by the server.
type PageLister interface {
	ListPage(ctx context.Context, criteria model.FilterCriteria, page, size int) (model.Page[model.Transaction], error)
}

// Source can serve both strategies.
type Source interface {
	Lister
	PageLister
}

// NewPaginator returns the strategy selected by mode.
func NewPaginator(mode string, source Source, size int) Paginator {
	if mode == config.PaginationServer {
		return NewServerPaginator(source, size)
	}
	return NewClientPaginator(source, size)
}

// ClientPaginator loads the whole collection once and filters and slices it
// in memory. Pages are numbered from 1.
type ClientPaginator struct {
	source Lister
	all    []model.Transaction
	size   int
	loaded bool
	mu     sync.Mutex
}

// NewClientPaginator creates a client-side paginator.
func NewClientPaginator(source Lister, size int) *ClientPaginator {
	if size <= 0 {
		size = config.DefaultPageSize
	}
	return &ClientPaginator{source: source, size: size}
}

// FirstPage implements Paginator.
func (p *ClientPaginator) FirstPage() int { return 1 }

// Reload discards the cached collection and fetches it again.
func (p *ClientPaginator) Reload(ctx context.Context) error {
	all, err := p.source.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to load records: %w", err)
	}
	p.mu.Lock()
	p.all = all
	p.loaded = true
	p.mu.Unlock()
	return nil
}

func (p *ClientPaginator) snapshot(ctx context.Context) ([]model.Transaction, error) {
	p.mu.Lock()
	loaded, all := p.loaded, p.all
	p.mu.Unlock()
	if loaded {
		return all, nil
	}
	if err := p.Reload(ctx); err != nil {
		return nil, err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.all, nil
}

// Fetch implements Paginator. Only the first call touches the network;
// later calls slice the cache until Reload.
func (p *ClientPaginator) Fetch(ctx context.Context, criteria model.FilterCriteria, page int) (model.Page[model.Transaction], error) {
	all, err := p.snapshot(ctx)
	if err != nil {
		return model.Page[model.Transaction]{}, err
	}
	return Slice(ApplyFilters(all, criteria), page, p.size), nil
}

// Summarize covers the whole filtered set, not only one page.
func (p *ClientPaginator) Summarize(criteria model.FilterCriteria) Summary {
	p.mu.Lock()
	all := p.all
	p.mu.Unlock()
	return Summarize(ApplyFilters(all, criteria))
}

// Cached slices the cached collection without touching the network. It
// reports false when nothing is loaded yet.
func (p *ClientPaginator) Cached(criteria model.FilterCriteria, page int) (model.Page[model.Transaction], bool) {
	p.mu.Lock()
	loaded, all := p.loaded, p.all
	p.mu.Unlock()
	if !loaded {
		return model.Page[model.Transaction]{}, false
	}
	return Slice(ApplyFilters(all, criteria), page, p.size), true
}

// Forget drops a record from the cached collection.
func (p *ClientPaginator) Forget(id int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.all = slices.DeleteFunc(slices.Clone(p.all), func(t model.Transaction) bool { return t.ID == id })
}

// Slice returns the 1-based page of filtered.
func Slice(filtered []model.Transaction, page, size int) model.Page[model.Transaction] {
	if page < 1 {
		page = 1
	}
	start := min((page-1)*size, len(filtered))
	end := min(page*size, len(filtered))
	return model.Page[model.Transaction]{
		Content:       slices.Clone(filtered[start:end]),
		Number:        page,
		Size:          size,
		TotalPages:    (len(filtered) + size - 1) / size,
		TotalElements: len(filtered),
	}
}

// ServerPaginator sends the criteria to the server on every fetch. Pages are
// numbered from 0.
type ServerPaginator struct {
	source PageLister
	size   int
}

// NewServerPaginator creates a server-delegated paginator.
func NewServerPaginator(source PageLister, size int) *ServerPaginator {
	if size <= 0 {
		size = config.DefaultPageSize
	}
	return &ServerPaginator{source: source, size: size}
}

// FirstPage implements Paginator.
func (p *ServerPaginator) FirstPage() int { return 0 }

// Fetch implements Paginator.
func (p *ServerPaginator) Fetch(ctx context.Context, criteria model.FilterCriteria, page int) (model.Page[model.Transaction], error) {
	return p.source.ListPage(ctx, criteria, max(page, 0), p.size)
}
