// Package accounts covers the chart-of-accounts endpoints.
package accounts

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/Tchaas/Bingo-ledger/api"
	"github.com/pkg/errors"
)

// Account is one chart-of-accounts entry.
type Account struct {
	ID             int64   `json:"id"`
	OrganizationID int64   `json:"organization_id"`
	Code           string  `json:"code"`
	Name           string  `json:"name"`
	AccountType    string  `json:"account_type"`
	CategoryID     *string `json:"category_id,omitempty"`
	Balance        float64 `json:"balance"`
}

// Params carries account fields for create and update calls.
type Params struct {
	OrganizationID *int64   `json:"organization_id,omitempty"`
	Code           *string  `json:"code,omitempty"`
	Name           *string  `json:"name,omitempty"`
	AccountType    *string  `json:"account_type,omitempty"`
	CategoryID     *string  `json:"category_id,omitempty"`
	Balance        *float64 `json:"balance,omitempty"`
}

// Service issues account requests through the pipeline.
type Service struct {
	client *api.Client
}

func NewService(client *api.Client) (*Service, error) {
	if client == nil {
		return nil, errors.New("[accounts.NewService] api client is required")
	}
	return &Service{client: client}, nil
}

// List returns accounts, optionally filtered to one organization
// (organizationID 0 means no filter).
func (s *Service) List(ctx context.Context, organizationID int64) ([]Account, error) {
	values := url.Values{}
	if organizationID != 0 {
		values.Set("organization_id", strconv.FormatInt(organizationID, 10))
	}
	resp, err := s.client.Do(ctx, http.MethodGet, "/accounts", api.WithQuery(values))
	if err != nil {
		return nil, err
	}
	var payload struct {
		Accounts []Account `json:"accounts"`
	}
	if err := resp.Decode(&payload); err != nil {
		return nil, errors.Wrap(err, "[Service.List] decode")
	}
	return payload.Accounts, nil
}

// Create adds an account; the backend returns the stored record.
func (s *Service) Create(ctx context.Context, params Params) (*Account, error) {
	resp, err := s.client.Do(ctx, http.MethodPost, "/accounts", api.WithJSONBody(params))
	if err != nil {
		return nil, err
	}
	var created Account
	if err := resp.Decode(&created); err != nil {
		return nil, errors.Wrap(err, "[Service.Create] decode")
	}
	return &created, nil
}

// Get fetches one account.
func (s *Service) Get(ctx context.Context, id int64) (*Account, error) {
	resp, err := s.client.Do(ctx, http.MethodGet, fmt.Sprintf("/accounts/%d", id))
	if err != nil {
		return nil, err
	}
	var account Account
	if err := resp.Decode(&account); err != nil {
		return nil, errors.Wrap(err, "[Service.Get] decode")
	}
	return &account, nil
}

// Update edits an account.
func (s *Service) Update(ctx context.Context, id int64, params Params) (*Account, error) {
	resp, err := s.client.Do(ctx, http.MethodPut, fmt.Sprintf("/accounts/%d", id), api.WithJSONBody(params))
	if err != nil {
		return nil, err
	}
	var account Account
	if err := resp.Decode(&account); err != nil {
		return nil, errors.Wrap(err, "[Service.Update] decode")
	}
	return &account, nil
}

// Delete removes an account.
func (s *Service) Delete(ctx context.Context, id int64) error {
	_, err := s.client.Do(ctx, http.MethodDelete, fmt.Sprintf("/accounts/%d", id))
	return err
}
