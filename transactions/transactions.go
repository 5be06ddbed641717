// Package transactions covers the ledger transaction endpoints,
// including the category-review summary feeding the Form 990 tables.
package transactions

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/Tchaas/Bingo-ledger/api"
	"github.com/pkg/errors"
)

// Status is the review state of a transaction or category.
type Status string

const (
	StatusComplete    Status = "complete"
	StatusNeedsReview Status = "needs-review"
	StatusIncomplete  Status = "incomplete"
)

// Transaction is a single ledger entry.
type Transaction struct {
	ID          int64    `json:"id"`
	Date        string   `json:"date"`
	Description string   `json:"description"`
	Debit       *float64 `json:"debit,omitempty"`
	Credit      *float64 `json:"credit,omitempty"`
	CategoryID  *string  `json:"category_id,omitempty"`
	Status      Status   `json:"status"`
}

// Params carries transaction fields for create and update calls.
type Params struct {
	Date        *string  `json:"date,omitempty"`
	Description *string  `json:"description,omitempty"`
	Debit       *float64 `json:"debit,omitempty"`
	Credit      *float64 `json:"credit,omitempty"`
	CategoryID  *string  `json:"category_id,omitempty"`
	Status      *Status  `json:"status,omitempty"`
}

// Summary is one category row of the review table.
type Summary struct {
	CategoryID       string   `json:"categoryId"`
	TransactionCount int      `json:"transactionCount"`
	TotalAmount      float64  `json:"totalAmount"`
	Status           Status   `json:"status"`
	Trend            string   `json:"trend"`
	TrendPercent     *float64 `json:"trendPercent"`
}

// SummaryQuery filters and orders the category summary.
type SummaryQuery struct {
	Year      int
	Status    Status
	Sort      string // category, count, amount, status
	Direction string // asc, desc
}

// Service issues transaction requests through the pipeline.
type Service struct {
	client *api.Client
}

func NewService(client *api.Client) (*Service, error) {
	if client == nil {
		return nil, errors.New("[transactions.NewService] api client is required")
	}
	return &Service{client: client}, nil
}

// List returns all transactions.
func (s *Service) List(ctx context.Context) ([]Transaction, error) {
	resp, err := s.client.Do(ctx, http.MethodGet, "/transactions")
	if err != nil {
		return nil, err
	}
	var payload struct {
		Transactions []Transaction `json:"transactions"`
	}
	if err := resp.Decode(&payload); err != nil {
		return nil, errors.Wrap(err, "[Service.List] decode")
	}
	return payload.Transactions, nil
}

// Create records a new transaction.
func (s *Service) Create(ctx context.Context, params Params) (*Transaction, error) {
	resp, err := s.client.Do(ctx, http.MethodPost, "/transactions", api.WithJSONBody(params))
	if err != nil {
		return nil, err
	}
	var created Transaction
	if err := resp.Decode(&created); err != nil {
		return nil, errors.Wrap(err, "[Service.Create] decode")
	}
	return &created, nil
}

// Get fetches one transaction.
func (s *Service) Get(ctx context.Context, id int64) (*Transaction, error) {
	resp, err := s.client.Do(ctx, http.MethodGet, fmt.Sprintf("/transactions/%d", id))
	if err != nil {
		return nil, err
	}
	var tx Transaction
	if err := resp.Decode(&tx); err != nil {
		return nil, errors.Wrap(err, "[Service.Get] decode")
	}
	return &tx, nil
}

// Update edits a transaction.
func (s *Service) Update(ctx context.Context, id int64, params Params) (*Transaction, error) {
	resp, err := s.client.Do(ctx, http.MethodPut, fmt.Sprintf("/transactions/%d", id), api.WithJSONBody(params))
	if err != nil {
		return nil, err
	}
	var tx Transaction
	if err := resp.Decode(&tx); err != nil {
		return nil, errors.Wrap(err, "[Service.Update] decode")
	}
	return &tx, nil
}

// Delete removes a transaction. The backend answers 204.
func (s *Service) Delete(ctx context.Context, id int64) error {
	_, err := s.client.Do(ctx, http.MethodDelete, fmt.Sprintf("/transactions/%d", id))
	return err
}

// ImportCSV uploads a CSV export as-is; the payload bypasses JSON
// serialization entirely.
func (s *Service) ImportCSV(ctx context.Context, data []byte) error {
	_, err := s.client.Do(ctx, http.MethodPost, "/transactions/import-csv",
		api.WithRawBody(data, "text/csv"),
	)
	return err
}

// CategorySummary returns the per-category review rows.
func (s *Service) CategorySummary(ctx context.Context, query SummaryQuery) ([]Summary, error) {
	values := url.Values{}
	if query.Year != 0 {
		values.Set("year", strconv.Itoa(query.Year))
	}
	if query.Status != "" {
		values.Set("status", string(query.Status))
	}
	if query.Sort != "" {
		values.Set("sort", query.Sort)
	}
	if query.Direction != "" {
		values.Set("direction", query.Direction)
	}

	resp, err := s.client.Do(ctx, http.MethodGet, "/transactions/category-summary", api.WithQuery(values))
	if err != nil {
		return nil, err
	}
	var payload struct {
		Summaries []Summary `json:"summaries"`
	}
	if err := resp.Decode(&payload); err != nil {
		return nil, errors.Wrap(err, "[Service.CategorySummary] decode")
	}
	return payload.Summaries, nil
}
