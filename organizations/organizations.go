// Package organizations covers the organization profile endpoints.
package organizations

import (
	"context"
	"fmt"
	"net/http"

	"github.com/Tchaas/Bingo-ledger/api"
	"github.com/pkg/errors"
)

// Organization is the nonprofit's profile record.
type Organization struct {
	ID              int64  `json:"id"`
	Name            string `json:"name"`
	EIN             string `json:"ein"`
	Address         string `json:"address,omitempty"`
	City            string `json:"city,omitempty"`
	State           string `json:"state,omitempty"`
	ZipCode         string `json:"zip_code,omitempty"`
	Phone           string `json:"phone,omitempty"`
	Website         string `json:"website,omitempty"`
	TaxExemptStatus string `json:"tax_exempt_status,omitempty"`
}

// UpdateParams carries the fields to change; nil fields are left
// untouched by the backend.
type UpdateParams struct {
	Name            *string `json:"name,omitempty"`
	EIN             *string `json:"ein,omitempty"`
	Address         *string `json:"address,omitempty"`
	City            *string `json:"city,omitempty"`
	State           *string `json:"state,omitempty"`
	ZipCode         *string `json:"zip_code,omitempty"`
	Phone           *string `json:"phone,omitempty"`
	Website         *string `json:"website,omitempty"`
	TaxExemptStatus *string `json:"tax_exempt_status,omitempty"`
}

// Service issues organization requests through the pipeline.
type Service struct {
	client *api.Client
}

func NewService(client *api.Client) (*Service, error) {
	if client == nil {
		return nil, errors.New("[organizations.NewService] api client is required")
	}
	return &Service{client: client}, nil
}

// Get fetches the organization the authenticated user belongs to.
func (s *Service) Get(ctx context.Context, id int64) (*Organization, error) {
	resp, err := s.client.Do(ctx, http.MethodGet, fmt.Sprintf("/organizations/%d", id))
	if err != nil {
		return nil, err
	}
	return decodeOrganization(resp, "[Service.Get]")
}

// Update edits the organization profile and returns the stored record.
func (s *Service) Update(ctx context.Context, id int64, params UpdateParams) (*Organization, error) {
	resp, err := s.client.Do(ctx, http.MethodPut, fmt.Sprintf("/organizations/%d", id), api.WithJSONBody(params))
	if err != nil {
		return nil, err
	}
	return decodeOrganization(resp, "[Service.Update]")
}

func decodeOrganization(resp *api.Response, wrap string) (*Organization, error) {
	var payload struct {
		Organization *Organization `json:"organization"`
	}
	if err := resp.Decode(&payload); err != nil {
		return nil, errors.Wrap(err, wrap+" decode")
	}
	if payload.Organization == nil {
		return nil, errors.New(wrap + " missing organization in response")
	}
	return payload.Organization, nil
}
