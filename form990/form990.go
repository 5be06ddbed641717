// Package form990 covers the Form 990 filing endpoints. A filing is
// keyed by (organization, tax year); saving is an upsert on that key.
package form990

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/Tchaas/Bingo-ledger/api"
	"github.com/pkg/errors"
)

// Filing is one tax year's Form 990 data set for an organization.
type Filing struct {
	ID             int64                  `json:"id"`
	OrganizationID int64                  `json:"organization_id"`
	TaxYear        int                    `json:"tax_year"`
	Status         string                 `json:"status"`
	Data           map[string]interface{} `json:"data"`
	UpdatedAt      *string                `json:"updated_at,omitempty"`
}

// Params carries the filing payload for save and validate calls.
// Status defaults to "draft" on the backend when omitted.
type Params struct {
	OrganizationID int64                  `json:"organization_id"`
	TaxYear        int                    `json:"tax_year"`
	Status         *string                `json:"status,omitempty"`
	Data           map[string]interface{} `json:"data"`
}

// GenerateResult describes a requested PDF/XML artifact. URL stays nil
// until the artifact is ready.
type GenerateResult struct {
	Status   string `json:"status"`
	Message  string `json:"message"`
	Artifact struct {
		Filename    string  `json:"filename"`
		ContentType string  `json:"content_type"`
		URL         *string `json:"url"`
	} `json:"artifact"`
}

// ValidationResult reports field-level validation findings, keyed by
// field path (e.g. "data.ein").
type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Errors map[string]string `json:"errors"`
}

// Service issues Form 990 requests through the pipeline.
type Service struct {
	client *api.Client
}

func NewService(client *api.Client) (*Service, error) {
	if client == nil {
		return nil, errors.New("[form990.NewService] api client is required")
	}
	return &Service{client: client}, nil
}

// Get fetches the filing for one tax year of one organization.
func (s *Service) Get(ctx context.Context, year int, organizationID int64) (*Filing, error) {
	values := url.Values{}
	values.Set("organization_id", strconv.FormatInt(organizationID, 10))
	resp, err := s.client.Do(ctx, http.MethodGet, fmt.Sprintf("/form990/%d", year), api.WithQuery(values))
	if err != nil {
		return nil, err
	}
	var filing Filing
	if err := resp.Decode(&filing); err != nil {
		return nil, errors.Wrap(err, "[Service.Get] decode")
	}
	return &filing, nil
}

// Save creates or updates the filing keyed by (organization, tax year)
// and returns the stored record.
func (s *Service) Save(ctx context.Context, params Params) (*Filing, error) {
	resp, err := s.client.Do(ctx, http.MethodPost, "/form990/", api.WithJSONBody(params))
	if err != nil {
		return nil, err
	}
	var filing Filing
	if err := resp.Decode(&filing); err != nil {
		return nil, errors.Wrap(err, "[Service.Save] decode")
	}
	return &filing, nil
}

// Generate requests PDF/XML generation for a tax year. The backend
// answers 202 with a pending artifact descriptor.
func (s *Service) Generate(ctx context.Context, taxYear int) (*GenerateResult, error) {
	resp, err := s.client.Do(ctx, http.MethodPost, "/form990/generate",
		api.WithJSONBody(map[string]int{"tax_year": taxYear}),
	)
	if err != nil {
		return nil, err
	}
	var result GenerateResult
	if err := resp.Decode(&result); err != nil {
		return nil, errors.Wrap(err, "[Service.Generate] decode")
	}
	return &result, nil
}

// Validate runs the filing payload through backend validation without
// saving anything.
func (s *Service) Validate(ctx context.Context, params Params) (*ValidationResult, error) {
	resp, err := s.client.Do(ctx, http.MethodPost, "/form990/validate", api.WithJSONBody(params))
	if err != nil {
		return nil, err
	}
	var result ValidationResult
	if err := resp.Decode(&result); err != nil {
		return nil, errors.Wrap(err, "[Service.Validate] decode")
	}
	return &result, nil
}
