package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	apperrors "github.com/Tchaas/Bingo-ledger/internal/errors"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// refresh coalesces concurrent refresh attempts into a single
// in-flight call; every caller observes the same outcome.
func (c *Client) refresh(ctx context.Context) error {
	_, err, _ := c.refreshing.Do("refresh", func() (interface{}, error) {
		return nil, c.doRefresh(ctx)
	})
	return err
}

// doRefresh runs the refresh protocol: the refresh token is the bearer
// of a bodyless POST. A rejected refresh token is a hard session
// termination and wipes the store; a 2xx without an access token leaves
// existing tokens untouched, since the session may still be valid.
func (c *Client) doRefresh(ctx context.Context) error {
	refreshToken, ok := c.store.RefreshToken()
	if !ok {
		return errors.Wrap(apperrors.ErrNoRefreshToken, "[Client.refresh]")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+RefreshPath, nil)
	if err != nil {
		return errors.Wrap(err, "[Client.refresh] new request")
	}
	req.Header.Set("Authorization", "Bearer "+refreshToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errors.Wrap(err, "[Client.refresh] http request")
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		c.store.Clear()
		log.Info().Int("status", resp.StatusCode).Msg("Refresh token rejected, credentials cleared")
		return errors.Wrap(apperrors.ErrSessionExpired, "[Client.refresh]")
	}

	var payload struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.Unmarshal(body, &payload); err != nil || payload.AccessToken == "" {
		return errors.Wrap(apperrors.ErrMalformedResponse, "[Client.refresh] missing access_token")
	}

	if err := c.store.UpdateAccessToken(payload.AccessToken); err != nil {
		return errors.Wrap(err, "[Client.refresh] update access token")
	}
	log.Debug().Msg("Access token refreshed")
	return nil
}
