package api

import (
	"net/url"
	"strconv"

	"github.com/Veraticus/finflow/internal/model"
)

// EncodeQuery serializes filter criteria and a 0-based page for the
// server-paged list endpoints. Unset filters are omitted.
func EncodeQuery(c model.FilterCriteria, page, size int) url.Values {
	q := url.Values{}
	if c.StartDate != "" {
		q.Set("dataInicio", c.StartDate)
	}
	if c.EndDate != "" {
		q.Set("dataFim", c.EndDate)
	}
	if c.CategoryID != 0 {
		q.Set("idCategoria", strconv.Itoa(c.CategoryID))
	}
	switch c.Status {
	case model.StatusPending:
		q.Set("pendente", "1")
	case model.StatusSettled:
		q.Set("pendente", "0")
	}
	q.Set("page", strconv.Itoa(page))
	q.Set("size", strconv.Itoa(size))
	return q
}
