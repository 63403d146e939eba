// Package listing filters and paginates income and expense records for the
// list views, either in memory or by delegating to the server.
package listing

import (
	"slices"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/Veraticus/finflow/internal/model"
)

// ApplyFilters returns the records matching c, stable-sorted by date, newest
// first. The input is not modified.
func ApplyFilters(collection []model.Transaction, c model.FilterCriteria) []model.Transaction {
	out := make([]model.Transaction, 0, len(collection))
	for _, t := range collection {
		if c.StartDate != "" && t.Date < c.StartDate {
			continue
		}
		if c.EndDate != "" && t.Date > c.EndDate {
			continue
		}
		if c.CategoryID != 0 && t.CategoryID() != c.CategoryID {
			continue
		}
		switch c.Status {
		case model.StatusPending:
			if !t.Pending {
				continue
			}
		case model.StatusSettled:
			if t.Pending {
				continue
			}
		}
		out = append(out, t)
	}
	SortByDateDesc(out)
	return out
}

// SortByDateDesc sorts in place, newest first, keeping input order for equal
// dates.
func SortByDateDesc(ts []model.Transaction) {
	slices.SortStableFunc(ts, func(a, b model.Transaction) int {
		return strings.Compare(b.Date, a.Date)
	})
}

// Summary is the record count and total amount of a list.
type Summary struct {
	Total decimal.Decimal
	Count int
	// Partial is set when Total only covers the visible page.
	Partial bool
}

// Summarize adds up ts.
func Summarize(ts []model.Transaction) Summary {
	s := Summary{Count: len(ts), Total: decimal.Zero}
	for _, t := range ts {
		s.Total = s.Total.Add(t.Amount)
	}
	return s
}
