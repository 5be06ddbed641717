// Package api implements the authenticated request pipeline: every
// outbound call gets its bearer credential attached, a 401 on a
// retry-eligible request triggers a transparent refresh and a single
// re-issue, and every non-2xx response is normalized into an *Error.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Tchaas/Bingo-ledger/credentials"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"
)

// RefreshPath is the one endpoint the pipeline itself calls. Requests
// to it are never retried, which is what breaks the recursion.
const RefreshPath = "/auth/refresh"

const defaultTimeout = 30 * time.Second

// Client executes requests against the ledger backend.
type Client struct {
	baseURL    string
	httpClient *http.Client
	store      *credentials.Store
	refreshing singleflight.Group
}

// Option modifies a Client during construction.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client (primarily for
// custom transports and tests).
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithTimeout sets the per-request timeout of the default HTTP client.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// New initializes a Client. baseURL includes the API prefix; request
// paths are resolved relative to it.
func New(baseURL string, store *credentials.Store, options ...Option) (*Client, error) {
	if strings.TrimSpace(baseURL) == "" {
		return nil, errors.New("[api.New] base URL is required")
	}
	if store == nil {
		return nil, errors.New("[api.New] credentials store is required")
	}

	client := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: defaultTimeout},
		store:      store,
	}
	for _, opt := range options {
		opt(client)
	}
	return client, nil
}

type requestOptions struct {
	body     interface{}
	rawBody  []byte
	header   http.Header
	query    url.Values
	skipAuth bool
}

// RequestOption modifies a single request.
type RequestOption func(*requestOptions)

// WithJSONBody serializes v as the JSON request body.
func WithJSONBody(v interface{}) RequestOption {
	return func(o *requestOptions) {
		o.body = v
	}
}

// WithRawBody sends the payload as-is with the given content type.
func WithRawBody(payload []byte, contentType string) RequestOption {
	return func(o *requestOptions) {
		o.rawBody = payload
		o.header.Set("Content-Type", contentType)
	}
}

// WithHeader sets a request header, overriding any pipeline default.
func WithHeader(key, value string) RequestOption {
	return func(o *requestOptions) {
		o.header.Set(key, value)
	}
}

// WithQuery appends query parameters to the request URL.
func WithQuery(values url.Values) RequestOption {
	return func(o *requestOptions) {
		for key, vs := range values {
			for _, v := range vs {
				o.query.Add(key, v)
			}
		}
	}
}

// WithSkipAuth leaves the Authorization header off. Requests sent with
// it are never refresh-retried.
func WithSkipAuth() RequestOption {
	return func(o *requestOptions) {
		o.skipAuth = true
	}
}

// Do executes one logical request. On a 401 it refreshes the access
// token and re-issues the identical request exactly once; any other
// non-2xx response comes back as an *Error.
func (c *Client) Do(ctx context.Context, method, path string, options ...RequestOption) (*Response, error) {
	opts := &requestOptions{
		header: make(http.Header),
		query:  make(url.Values),
	}
	for _, opt := range options {
		opt(opts)
	}
	return c.do(ctx, method, path, opts, true)
}

func (c *Client) do(ctx context.Context, method, path string, opts *requestOptions, retry bool) (*Response, error) {
	req, err := c.newRequest(ctx, method, path, opts)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "[Client.Do] %s %s", method, path)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrapf(err, "[Client.Do] read body %s %s", method, path)
	}

	log.Debug().
		Str("method", method).
		Str("path", path).
		Int("status", resp.StatusCode).
		Msg("request completed")

	if resp.StatusCode == http.StatusUnauthorized && retry && !opts.skipAuth && path != RefreshPath {
		refreshErr := c.refresh(ctx)
		if refreshErr == nil {
			return c.do(ctx, method, path, opts, false)
		}
		log.Debug().Err(refreshErr).Msg("refresh failed, surfacing original 401")
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		data := map[string]interface{}{}
		// A body that is not JSON leaves the payload empty.
		_ = json.Unmarshal(body, &data)
		return nil, newError(resp.StatusCode, data)
	}

	if resp.StatusCode == http.StatusNoContent {
		return &Response{StatusCode: resp.StatusCode, Header: resp.Header}, nil
	}

	return &Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       body,
		json:       isJSONContentType(resp.Header.Get("Content-Type")),
	}, nil
}

// newRequest assembles one attempt. Called again on retry so the body
// reader and the Authorization header are rebuilt from current state.
func (c *Client) newRequest(ctx context.Context, method, path string, opts *requestOptions) (*http.Request, error) {
	target := c.baseURL + path
	if len(opts.query) > 0 {
		target = target + "?" + opts.query.Encode()
	}

	var reader io.Reader
	contentType := ""
	switch {
	case opts.rawBody != nil:
		reader = bytes.NewReader(opts.rawBody)
	case opts.body != nil:
		raw, err := json.Marshal(opts.body)
		if err != nil {
			return nil, errors.Wrapf(err, "[Client.Do] marshal body %s %s", method, path)
		}
		reader = bytes.NewReader(raw)
		contentType = "application/json"
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, errors.Wrapf(err, "[Client.Do] new request %s %s", method, path)
	}

	for key, values := range opts.header {
		for _, value := range values {
			req.Header.Add(key, value)
		}
	}
	if contentType != "" && req.Header.Get("Content-Type") == "" {
		req.Header.Set("Content-Type", contentType)
	}
	if req.Header.Get("X-Request-ID") == "" {
		req.Header.Set("X-Request-ID", uuid.New().String())
	}
	if !opts.skipAuth {
		if token, ok := c.store.AccessToken(); ok {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}
	return req, nil
}

func isJSONContentType(contentType string) bool {
	return strings.Contains(contentType, "application/json")
}
