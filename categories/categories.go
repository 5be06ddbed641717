// Package categories covers the Form 990 category catalogue.
package categories

import (
	"context"
	"net/http"

	"github.com/Tchaas/Bingo-ledger/api"
	"github.com/pkg/errors"
)

// Category maps a ledger category onto a Form 990 line.
type Category struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Part string `json:"part,omitempty"` // Form 990 part the line belongs to
	Line string `json:"line,omitempty"`
}

// Service issues category requests through the pipeline.
type Service struct {
	client *api.Client
}

func NewService(client *api.Client) (*Service, error) {
	if client == nil {
		return nil, errors.New("[categories.NewService] api client is required")
	}
	return &Service{client: client}, nil
}

// List returns the full category catalogue.
func (s *Service) List(ctx context.Context) ([]Category, error) {
	resp, err := s.client.Do(ctx, http.MethodGet, "/categories")
	if err != nil {
		return nil, err
	}
	var payload struct {
		Categories []Category `json:"categories"`
	}
	if err := resp.Decode(&payload); err != nil {
		return nil, errors.Wrap(err, "[Service.List] decode")
	}
	return payload.Categories, nil
}
