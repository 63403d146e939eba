// Package dashboard merges income and expense records into summary totals and
// a recent-activity feed.
package dashboard

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/Veraticus/finflow/internal/listing"
	"github.com/Veraticus/finflow/internal/model"
)

// RecentLimit caps the feed length.
const RecentLimit = 20

// FeedItem is one row of the recent-activity feed.
type FeedItem struct {
	Amount      decimal.Decimal
	Kind        model.Kind
	Description string
	Date        string
	ID          int
	Pending     bool
}

// Summary is the aggregated dashboard.
type Summary struct {
	TotalIncome  decimal.Decimal
	TotalExpense decimal.Decimal
	Balance      decimal.Decimal
	Recent       []FeedItem
}

// Positive reports whether the balance is zero or above.
func (s Summary) Positive() bool {
	return !s.Balance.IsNegative()
}

// Aggregate totals both collections and builds the feed. Incomes precede
// expenses among records sharing a date.
func Aggregate(incomes, expenses []model.Transaction) Summary {
	s := Summary{
		TotalIncome:  sum(incomes),
		TotalExpense: sum(expenses),
	}
	s.Balance = s.TotalIncome.Sub(s.TotalExpense)

	merged := make([]model.Transaction, 0, len(incomes)+len(expenses))
	merged = append(merged, incomes...)
	merged = append(merged, expenses...)
	listing.SortByDateDesc(merged)
	if len(merged) > RecentLimit {
		merged = merged[:RecentLimit]
	}

	s.Recent = make([]FeedItem, 0, len(merged))
	for _, t := range merged {
		s.Recent = append(s.Recent, FeedItem{
			ID:          t.ID,
			Kind:        t.Kind,
			Description: t.Description,
			Amount:      t.Amount,
			Date:        t.Date,
			Pending:     t.Pending,
		})
	}
	return s
}

func sum(ts []model.Transaction) decimal.Decimal {
	total := decimal.Zero
	for _, t := range ts {
		total = total.Add(t.Amount)
	}
	return total
}

// Source is a transaction resource the dashboard can read.
type Source interface {
	List(ctx context.Context) ([]model.Transaction, error)
	ListByPeriod(ctx context.Context, start, end string) ([]model.Transaction, error)
}

// Period restricts loading to [Start, End]. The zero value loads everything.
type Period struct {
	Start string
	End   string
}

// IsZero reports whether no period is set.
func (p Period) IsZero() bool {
	return p.Start == "" && p.End == ""
}

// Validate requires both bounds when either is set.
func (p Period) Validate() error {
	if p.IsZero() {
		return nil
	}
	if p.Start == "" || p.End == "" {
		return fmt.Errorf("a period needs both a start and an end date")
	}
	if strings.Compare(p.Start, p.End) > 0 {
		return fmt.Errorf("period start %s is after end %s", p.Start, p.End)
	}
	return nil
}

// Loader fetches both collections concurrently.
type Loader struct {
	incomes  Source
	expenses Source
}

// NewLoader creates a Loader.
func NewLoader(incomes, expenses Source) *Loader {
	return &Loader{incomes: incomes, expenses: expenses}
}

// Load fetches and aggregates. Either failure fails the whole load.
func (l *Loader) Load(ctx context.Context, period Period) (Summary, error) {
	if err := period.Validate(); err != nil {
		return Summary{}, err
	}

	var incomes, expenses []model.Transaction
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		incomes, err = fetch(gctx, l.incomes, period)
		if err != nil {
			return fmt.Errorf("failed to load income: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		expenses, err = fetch(gctx, l.expenses, period)
		if err != nil {
			return fmt.Errorf("failed to load expenses: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return Summary{}, err
	}
	return Aggregate(incomes, expenses), nil
}

func fetch(ctx context.Context, s Source, p Period) ([]model.Transaction, error) {
	if p.IsZero() {
		return s.List(ctx)
	}
	return s.ListByPeriod(ctx, p.Start, p.End)
}
