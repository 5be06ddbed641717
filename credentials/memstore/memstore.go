// Package memstore is the Session lifetime backend: credentials live
// in process memory only and are gone when the process exits, the same
// way session-scoped browser storage dies with the tab.
package memstore

import (
	"github.com/Tchaas/Bingo-ledger/credentials"
	gocache "github.com/patrickmn/go-cache"
)

var _ credentials.Backend = (*Store)(nil)

// Store implements credentials.Backend over an in-process cache.
type Store struct {
	cache *gocache.Cache
}

func New() *Store {
	return &Store{cache: gocache.New(gocache.NoExpiration, 0)}
}

func (s *Store) Get(key string) (string, bool) {
	value, ok := s.cache.Get(key)
	if !ok {
		return "", false
	}
	str, ok := value.(string)
	return str, ok
}

func (s *Store) Set(key, value string) error {
	s.cache.Set(key, value, gocache.NoExpiration)
	return nil
}

func (s *Store) Delete(key string) error {
	s.cache.Delete(key)
	return nil
}
