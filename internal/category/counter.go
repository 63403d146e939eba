package category

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/Veraticus/finflow/internal/config"
	"github.com/Veraticus/finflow/internal/model"
)

// Counter resolves the subcategory count of each category. The returned map
// has an entry for every input category.
type Counter interface {
	Count(ctx context.Context, categories []model.Category) (map[int]int, error)
}

// NewCounter returns the strategy selected by mode.
func NewCounter(mode string, subs SubcategoryAPI, concurrency int) Counter {
	fanout := &FanoutCounter{Subcategories: subs, Concurrency: concurrency}
	if mode == config.CountModeFanout {
		return fanout
	}
	return &BatchCounter{Subcategories: subs, Fallback: fanout}
}

// BatchCounter lists every subcategory once and groups them by the embedded
// parent. If any row lacks its parent it defers to Fallback.
type BatchCounter struct {
	Subcategories SubcategoryAPI
	Fallback      Counter
}

// Count implements Counter.
func (b *BatchCounter) Count(ctx context.Context, categories []model.Category) (map[int]int, error) {
	subs, err := b.Subcategories.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list subcategories: %w", err)
	}

	counts := make(map[int]int, len(categories))
	for _, c := range categories {
		counts[c.ID] = 0
	}
	for _, s := range subs {
		parent := s.ParentID()
		if parent == 0 {
			if b.Fallback == nil {
				return nil, fmt.Errorf("subcategory %d has no parent category", s.ID)
			}
			slog.Debug("subcategory without parent, counting per category", "subcategory_id", s.ID)
			return b.Fallback.Count(ctx, categories)
		}
		if _, ok := counts[parent]; ok {
			counts[parent]++
		}
	}
	return counts, nil
}

// FanoutCounter issues one request per category with bounded concurrency.
type FanoutCounter struct {
	Subcategories SubcategoryAPI
	// Progress, when set, is called once per counted category.
	Progress    func()
	Concurrency int
}

// Count implements Counter.
func (f *FanoutCounter) Count(ctx context.Context, categories []model.Category) (map[int]int, error) {
	limit := f.Concurrency
	if limit <= 0 {
		limit = config.DefaultConcurrency
	}

	var mu sync.Mutex
	counts := make(map[int]int, len(categories))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for _, c := range categories {
		g.Go(func() error {
			subs, err := f.Subcategories.ListByCategory(gctx, c.ID)
			if err != nil {
				return fmt.Errorf("failed to count subcategories of %q: %w", c.Name, err)
			}
			mu.Lock()
			counts[c.ID] = len(subs)
			mu.Unlock()
			if f.Progress != nil {
				f.Progress()
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return counts, nil
}
