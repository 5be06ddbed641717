// Package auth is the session facade: the only surface application
// code talks to for authentication. It owns the in-memory user cache
// and composes the request pipeline and credential store into named
// operations.
package auth

import (
	"context"
	"net/http"
	"sync"

	"github.com/Tchaas/Bingo-ledger/api"
	"github.com/Tchaas/Bingo-ledger/credentials"
	apperrors "github.com/Tchaas/Bingo-ledger/internal/errors"
	"github.com/Tchaas/Bingo-ledger/users"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

const (
	loginPath         = "/auth/login"
	registerPath      = "/auth/register"
	resetPasswordPath = "/auth/reset-password"
	currentUserPath   = "/users/me"
)

// Deps holds the collaborators the session facade drives.
type Deps struct {
	Client      *api.Client
	Credentials *credentials.Store
}

// Session is constructed once at process start. The cached user starts
// as nil and only Session methods ever read or write it.
type Session struct {
	client *api.Client
	store  *credentials.Store

	mu   sync.Mutex
	user *users.User
}

// New initializes a Session with required dependencies.
func New(deps Deps) (*Session, error) {
	if deps.Client == nil {
		return nil, errors.New("[auth.New] api client is required")
	}
	if deps.Credentials == nil {
		return nil, errors.New("[auth.New] credentials store is required")
	}
	return &Session{client: deps.Client, store: deps.Credentials}, nil
}

// authResponse is the payload shape of the login and register
// endpoints.
type authResponse struct {
	User         *users.User `json:"user"`
	AccessToken  string      `json:"access_token"`
	RefreshToken string      `json:"refresh_token"`
}

// Login authenticates with email and password. rememberMe selects the
// Persistent lifetime; otherwise credentials die with the process.
// Pipeline errors (e.g. invalid credentials) propagate unchanged.
func (s *Session) Login(ctx context.Context, email, password string, rememberMe bool) (*users.User, error) {
	resp, err := s.client.Do(ctx, http.MethodPost, loginPath,
		api.WithJSONBody(map[string]string{"email": email, "password": password}),
		api.WithSkipAuth(),
	)
	if err != nil {
		return nil, err
	}

	lifetime := credentials.LifetimeSession
	if rememberMe {
		lifetime = credentials.LifetimePersistent
	}
	user, err := s.establish(resp, lifetime)
	if err != nil {
		return nil, errors.Wrap(err, "[Session.Login]")
	}
	log.Info().Str("email", email).Bool("remember_me", rememberMe).Msg("Logged in")
	return user, nil
}

// Signup registers a new account. New accounts default to remembered
// sessions, so the Persistent lifetime is always selected.
func (s *Session) Signup(ctx context.Context, name, email, password string) (*users.User, error) {
	resp, err := s.client.Do(ctx, http.MethodPost, registerPath,
		api.WithJSONBody(map[string]string{"name": name, "email": email, "password": password}),
		api.WithSkipAuth(),
	)
	if err != nil {
		return nil, err
	}

	user, err := s.establish(resp, credentials.LifetimePersistent)
	if err != nil {
		return nil, errors.Wrap(err, "[Session.Signup]")
	}
	log.Info().Str("email", email).Msg("Signed up")
	return user, nil
}

// Logout clears the cached user and all stored credentials. It always
// succeeds and makes no network call.
func (s *Session) Logout() {
	s.mu.Lock()
	s.user = nil
	s.mu.Unlock()
	s.store.Clear()
	log.Info().Msg("Logged out")
}

// FetchCurrentUser reloads the user record from the backend, updates
// the cache, and persists the snapshot into the active lifetime. With
// no active lifetime the update is memory-only. Without a stored
// access token the call fails fast instead of sending a doomed
// request.
func (s *Session) FetchCurrentUser(ctx context.Context) (*users.User, error) {
	if _, ok := s.store.AccessToken(); !ok {
		return nil, errors.Wrap(apperrors.ErrNotAuthenticated, "[Session.FetchCurrentUser]")
	}
	resp, err := s.client.Do(ctx, http.MethodGet, currentUserPath)
	if err != nil {
		return nil, err
	}

	var payload struct {
		User *users.User `json:"user"`
	}
	if err := resp.Decode(&payload); err != nil {
		return nil, errors.Wrap(err, "[Session.FetchCurrentUser] decode")
	}
	if payload.User == nil {
		return nil, errors.Wrap(apperrors.ErrMalformedResponse, "[Session.FetchCurrentUser] missing user")
	}

	s.mu.Lock()
	s.user = payload.User
	s.mu.Unlock()

	if lifetime, ok := s.store.ActiveLifetime(); ok {
		if err := s.store.SetUser(payload.User, lifetime); err != nil {
			return nil, errors.Wrap(err, "[Session.FetchCurrentUser] persist")
		}
	}
	return payload.User, nil
}

// CurrentUser returns the cached user, hydrating the cache from the
// stored snapshot on first use. Synchronous, never touches the network.
func (s *Session) CurrentUser() *users.User {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.user != nil {
		return s.user
	}
	if user, ok := s.store.User(); ok {
		s.user = user
		return user
	}
	return nil
}

// IsAuthenticated reports whether an access token is stored and a user
// record is available.
func (s *Session) IsAuthenticated() bool {
	if _, ok := s.store.AccessToken(); !ok {
		return false
	}
	return s.CurrentUser() != nil
}

// ResetPassword requests a password-reset email. Errors propagate to
// the caller.
func (s *Session) ResetPassword(ctx context.Context, email string) error {
	_, err := s.client.Do(ctx, http.MethodPost, resetPasswordPath,
		api.WithJSONBody(map[string]string{"email": email}),
		api.WithSkipAuth(),
	)
	return err
}

// SetCurrentUser is the cache-and-persist setter for callers that
// obtained a fresher user record through other endpoints. Passing nil
// clears the cached identity and its persisted snapshot but never
// touches tokens; Logout is the only path that destroys credentials.
func (s *Session) SetCurrentUser(user *users.User) error {
	s.mu.Lock()
	s.user = user
	s.mu.Unlock()

	if user == nil {
		s.store.ClearUser()
		return nil
	}
	if lifetime, ok := s.store.ActiveLifetime(); ok {
		if err := s.store.SetUser(user, lifetime); err != nil {
			return errors.Wrap(err, "[Session.SetCurrentUser] persist")
		}
	}
	return nil
}

// ProfileParams carries the profile fields to change; nil fields are
// left untouched by the backend.
type ProfileParams struct {
	Name  *string `json:"name,omitempty"`
	Email *string `json:"email,omitempty"`
}

// UpdateProfile edits the current user's profile and re-caches the
// record the backend returns.
func (s *Session) UpdateProfile(ctx context.Context, params ProfileParams) (*users.User, error) {
	resp, err := s.client.Do(ctx, http.MethodPut, currentUserPath, api.WithJSONBody(params))
	if err != nil {
		return nil, err
	}

	var payload struct {
		User *users.User `json:"user"`
	}
	if err := resp.Decode(&payload); err != nil {
		return nil, errors.Wrap(err, "[Session.UpdateProfile] decode")
	}
	if payload.User == nil {
		return nil, errors.Wrap(apperrors.ErrMalformedResponse, "[Session.UpdateProfile] missing user")
	}
	if err := s.SetCurrentUser(payload.User); err != nil {
		return nil, errors.Wrap(err, "[Session.UpdateProfile]")
	}
	return payload.User, nil
}

// establish records a fresh authentication: cache the user, write the
// token pair into the selected lifetime, persist the snapshot beside
// it. Write-through, so the cache always matches storage.
func (s *Session) establish(resp *api.Response, lifetime credentials.Lifetime) (*users.User, error) {
	var payload authResponse
	if err := resp.Decode(&payload); err != nil {
		return nil, errors.Wrap(err, "decode")
	}
	if payload.User == nil || payload.AccessToken == "" || payload.RefreshToken == "" {
		return nil, errors.Wrap(apperrors.ErrMalformedResponse, "incomplete auth payload")
	}

	s.mu.Lock()
	s.user = payload.User
	s.mu.Unlock()

	pair := credentials.TokenPair{
		AccessToken:  payload.AccessToken,
		RefreshToken: payload.RefreshToken,
	}
	if err := s.store.SetTokens(pair, lifetime); err != nil {
		return nil, errors.Wrap(err, "store tokens")
	}
	if err := s.store.SetUser(payload.User, lifetime); err != nil {
		return nil, errors.Wrap(err, "store user")
	}
	return payload.User, nil
}
