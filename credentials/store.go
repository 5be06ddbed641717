package credentials

import (
	"encoding/json"
	"sync"

	"github.com/Tchaas/Bingo-ledger/users"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// Store persists tokens and the user snapshot across the two storage
// lifetimes. All operations are atomic with respect to each other: a
// concurrent read can never observe a half-written token pair.
type Store struct {
	mu         sync.RWMutex
	persistent Backend
	session    Backend
}

// NewStore initializes a Store over the two lifetime backends.
func NewStore(persistent, session Backend) (*Store, error) {
	if persistent == nil {
		return nil, errors.New("[NewStore] persistent backend is required")
	}
	if session == nil {
		return nil, errors.New("[NewStore] session backend is required")
	}
	return &Store{persistent: persistent, session: session}, nil
}

// SetTokens writes both tokens into the selected lifetime after
// clearing token state from both, so no stale refresh token survives
// in the non-selected lifetime.
func (s *Store) SetTokens(pair TokenPair, lifetime Lifetime) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.deleteEverywhere(KeyAccessToken, KeyRefreshToken); err != nil {
		return errors.Wrap(err, "[Store.SetTokens] clear")
	}
	backend, err := s.backend(lifetime)
	if err != nil {
		return errors.Wrap(err, "[Store.SetTokens]")
	}
	if err := backend.Set(KeyAccessToken, pair.AccessToken); err != nil {
		return errors.Wrap(err, "[Store.SetTokens] access token")
	}
	if err := backend.Set(KeyRefreshToken, pair.RefreshToken); err != nil {
		return errors.Wrap(err, "[Store.SetTokens] refresh token")
	}
	return nil
}

// SetUser serializes the user snapshot into the selected lifetime,
// removing any previous snapshot from both.
func (s *Store) SetUser(user *users.User, lifetime Lifetime) error {
	if user == nil {
		return errors.New("[Store.SetUser] user is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.deleteEverywhere(KeyUser); err != nil {
		return errors.Wrap(err, "[Store.SetUser] clear")
	}
	backend, err := s.backend(lifetime)
	if err != nil {
		return errors.Wrap(err, "[Store.SetUser]")
	}
	raw, err := json.Marshal(user)
	if err != nil {
		return errors.Wrap(err, "[Store.SetUser] marshal")
	}
	if err := backend.Set(KeyUser, string(raw)); err != nil {
		return errors.Wrap(err, "[Store.SetUser] write")
	}
	return nil
}

// AccessToken returns the stored access token from whichever lifetime
// holds one, Persistent checked first.
func (s *Store) AccessToken() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lookup(KeyAccessToken)
}

// RefreshToken returns the stored refresh token from whichever
// lifetime holds one, Persistent checked first.
func (s *Store) RefreshToken() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lookup(KeyRefreshToken)
}

// ActiveLifetime reports which lifetime currently holds a refresh
// token. In-place updates such as an access-token refresh land there.
func (s *Store) ActiveLifetime() (Lifetime, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.activeLifetime()
}

// User deserializes the stored snapshot from whichever lifetime holds
// it. A malformed snapshot is a cache miss, never an error.
func (s *Store) User() (*users.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	raw, ok := s.lookup(KeyUser)
	if !ok {
		return nil, false
	}
	var user users.User
	if err := json.Unmarshal([]byte(raw), &user); err != nil {
		log.Warn().Err(err).Msg("Discarding malformed user snapshot")
		return nil, false
	}
	return &user, true
}

// Clear removes all credential state from both lifetimes. Safe to call
// when nothing is stored.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.deleteEverywhere(KeyAccessToken, KeyRefreshToken, KeyUser); err != nil {
		log.Err(err).Msg("Failed to clear stored credentials")
	}
}

// ClearUser removes only the persisted user snapshot, leaving tokens
// in place.
func (s *Store) ClearUser() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.deleteEverywhere(KeyUser); err != nil {
		log.Err(err).Msg("Failed to clear stored user snapshot")
	}
}

// UpdateAccessToken replaces only the access token, in whichever
// lifetime is currently active. Without an active lifetime there is no
// session to update and the call is a no-op.
func (s *Store) UpdateAccessToken(token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	lifetime, ok := s.activeLifetime()
	if !ok {
		return nil
	}
	backend, err := s.backend(lifetime)
	if err != nil {
		return errors.Wrap(err, "[Store.UpdateAccessToken]")
	}
	if err := backend.Set(KeyAccessToken, token); err != nil {
		return errors.Wrap(err, "[Store.UpdateAccessToken] write")
	}
	return nil
}

func (s *Store) backend(lifetime Lifetime) (Backend, error) {
	switch lifetime {
	case LifetimePersistent:
		return s.persistent, nil
	case LifetimeSession:
		return s.session, nil
	}
	return nil, errors.Errorf("unknown storage lifetime %q", lifetime)
}

// lookup checks Persistent first, then Session, and returns the first
// non-empty value. Callers must hold at least a read lock.
func (s *Store) lookup(key string) (string, bool) {
	for _, backend := range []Backend{s.persistent, s.session} {
		if value, ok := backend.Get(key); ok && value != "" {
			return value, true
		}
	}
	return "", false
}

func (s *Store) activeLifetime() (Lifetime, bool) {
	if value, ok := s.persistent.Get(KeyRefreshToken); ok && value != "" {
		return LifetimePersistent, true
	}
	if value, ok := s.session.Get(KeyRefreshToken); ok && value != "" {
		return LifetimeSession, true
	}
	return "", false
}

func (s *Store) deleteEverywhere(keys ...string) error {
	for _, backend := range []Backend{s.persistent, s.session} {
		for _, key := range keys {
			if err := backend.Delete(key); err != nil {
				return err
			}
		}
	}
	return nil
}
