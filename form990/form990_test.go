package form990_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Tchaas/Bingo-ledger/api"
	"github.com/Tchaas/Bingo-ledger/credentials"
	"github.com/Tchaas/Bingo-ledger/credentials/memstore"
	"github.com/Tchaas/Bingo-ledger/form990"
	"github.com/stretchr/testify/require"
)

func newService(t *testing.T, handler http.Handler) *form990.Service {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	store, err := credentials.NewStore(memstore.New(), memstore.New())
	require.NoError(t, err)
	require.NoError(t, store.SetTokens(credentials.TokenPair{AccessToken: "access", RefreshToken: "refresh"}, credentials.LifetimeSession))

	client, err := api.New(server.URL, store)
	require.NoError(t, err)
	service, err := form990.NewService(client)
	require.NoError(t, err)
	return service
}

func TestGetIsKeyedByYearAndOrganization(t *testing.T) {
	service := newService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodGet, r.Method)
		require.Equal(t, "/form990/2024", r.URL.Path)
		require.Equal(t, "3", r.URL.Query().Get("organization_id"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": 11,
			"organization_id": 3,
			"tax_year": 2024,
			"status": "draft",
			"data": {"organization_name": "Bingo Helpers"}
		}`))
	}))

	filing, err := service.Get(context.Background(), 2024, 3)
	require.NoError(t, err)
	require.Equal(t, int64(3), filing.OrganizationID)
	require.Equal(t, 2024, filing.TaxYear)
	require.Equal(t, "draft", filing.Status)
	require.Equal(t, "Bingo Helpers", filing.Data["organization_name"])
}

func TestSaveUpsertsByOrganizationAndYear(t *testing.T) {
	var sawPayload map[string]interface{}
	service := newService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/form990/", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&sawPayload))
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id": 11, "organization_id": 3, "tax_year": 2024, "status": "draft", "data": {}}`))
	}))

	filing, err := service.Save(context.Background(), form990.Params{
		OrganizationID: 3,
		TaxYear:        2024,
		Data:           map[string]interface{}{"ein": "12-3456789"},
	})
	require.NoError(t, err)
	require.Equal(t, int64(11), filing.ID)

	require.Equal(t, float64(3), sawPayload["organization_id"])
	require.Equal(t, float64(2024), sawPayload["tax_year"])
	require.Equal(t, "12-3456789", sawPayload["data"].(map[string]interface{})["ein"])
	// Status is backend-defaulted, so an omitted status stays off the wire.
	_, ok := sawPayload["status"]
	require.False(t, ok)
}

func TestGenerateReturnsPendingArtifact(t *testing.T) {
	service := newService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/form990/generate", r.URL.Path)
		var payload map[string]int
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		require.Equal(t, 2024, payload["tax_year"])
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusAccepted)
		_, _ = w.Write([]byte(`{
			"status": "pending",
			"message": "Form 990 generation is not yet available.",
			"artifact": {"filename": "form990_2024.pdf", "content_type": "application/pdf", "url": null}
		}`))
	}))

	result, err := service.Generate(context.Background(), 2024)
	require.NoError(t, err)
	require.Equal(t, "pending", result.Status)
	require.Equal(t, "form990_2024.pdf", result.Artifact.Filename)
	require.Nil(t, result.Artifact.URL)
}

func TestValidateReportsFieldErrors(t *testing.T) {
	service := newService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/form990/validate", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"valid": false,
			"errors": {"data.ein": "EIN must be in the format 12-3456789."}
		}`))
	}))

	result, err := service.Validate(context.Background(), form990.Params{
		OrganizationID: 3,
		TaxYear:        2024,
		Data:           map[string]interface{}{"ein": "bogus"},
	})
	require.NoError(t, err)
	require.False(t, result.Valid)
	require.Equal(t, "EIN must be in the format 12-3456789.", result.Errors["data.ein"])
}
