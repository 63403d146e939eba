package api

import (
	"context"
	"fmt"
	"net/url"

	"github.com/Veraticus/finflow/internal/model"
)

// TransactionService wraps /receitas or /despesas. Both resources share the
// same shape and differ only in the id and date field names.
type TransactionService struct {
	client   *Client
	kind     model.Kind
	resource string
}

// NewIncomeService creates the /receitas service.
func NewIncomeService(c *Client) *TransactionService {
	return &TransactionService{client: c, kind: model.KindIncome, resource: "/receitas"}
}

// NewExpenseService creates the /despesas service.
func NewExpenseService(c *Client) *TransactionService {
	return &TransactionService{client: c, kind: model.KindExpense, resource: "/despesas"}
}

// NewTransactionService returns the service for kind.
func NewTransactionService(c *Client, kind model.Kind) *TransactionService {
	if kind == model.KindIncome {
		return NewIncomeService(c)
	}
	return NewExpenseService(c)
}

// Kind returns which variant this service manages.
func (s *TransactionService) Kind() model.Kind {
	return s.kind
}

func (s *TransactionService) toModels(in []wireTransaction) []model.Transaction {
	out := make([]model.Transaction, 0, len(in))
	for _, w := range in {
		out = append(out, w.toModel(s.kind))
	}
	return out
}

// List returns the full, unfiltered collection.
func (s *TransactionService) List(ctx context.Context) ([]model.Transaction, error) {
	rows, err := get[[]wireTransaction](ctx, s.client, s.resource)
	if err != nil {
		return nil, err
	}
	return s.toModels(rows), nil
}

// Get returns one record.
func (s *TransactionService) Get(ctx context.Context, id int) (model.Transaction, error) {
	row, err := get[wireTransaction](ctx, s.client, fmt.Sprintf("%s/%d", s.resource, id))
	if err != nil {
		return model.Transaction{}, err
	}
	return row.toModel(s.kind), nil
}

// ListByPeriod returns the records dated within [start, end].
func (s *TransactionService) ListByPeriod(ctx context.Context, start, end string) ([]model.Transaction, error) {
	q := url.Values{}
	q.Set("dataInicio", start)
	q.Set("dataFim", end)
	rows, err := get[[]wireTransaction](ctx, s.client, s.resource+"/periodo?"+q.Encode())
	if err != nil {
		return nil, err
	}
	return s.toModels(rows), nil
}

// ListPending returns the records not yet settled.
func (s *TransactionService) ListPending(ctx context.Context) ([]model.Transaction, error) {
	rows, err := get[[]wireTransaction](ctx, s.client, s.resource+"/pendentes")
	if err != nil {
		return nil, err
	}
	return s.toModels(rows), nil
}

// ListPage asks the server for one filtered page. page is 0-based.
func (s *TransactionService) ListPage(ctx context.Context, criteria model.FilterCriteria, page, size int) (model.Page[model.Transaction], error) {
	q := EncodeQuery(criteria, page, size)
	wp, err := get[wirePage](ctx, s.client, s.resource+"?"+q.Encode())
	if err != nil {
		return model.Page[model.Transaction]{}, err
	}

	p := model.Page[model.Transaction]{
		Content:       s.toModels(wp.Content),
		Number:        wp.Number,
		Size:          wp.Size,
		TotalPages:    wp.TotalPages,
		TotalElements: wp.TotalElements,
	}
	if p.Number == 0 {
		p.Number = page
	}
	if p.Size == 0 {
		p.Size = size
	}
	return p, nil
}

// Create stores a new record.
func (s *TransactionService) Create(ctx context.Context, d model.TransactionDraft) (model.Transaction, error) {
	row, err := post[wireTransaction](ctx, s.client, s.resource, newWireRequest(s.kind, 0, d), true)
	if err != nil {
		return model.Transaction{}, err
	}
	return row.toModel(s.kind), nil
}

// Update replaces a record.
func (s *TransactionService) Update(ctx context.Context, id int, d model.TransactionDraft) (model.Transaction, error) {
	row, err := put[wireTransaction](ctx, s.client, fmt.Sprintf("%s/%d", s.resource, id), newWireRequest(s.kind, id, d))
	if err != nil {
		return model.Transaction{}, err
	}
	return row.toModel(s.kind), nil
}

// Delete removes a record.
func (s *TransactionService) Delete(ctx context.Context, id int) error {
	return del(ctx, s.client, fmt.Sprintf("%s/%d", s.resource, id))
}
