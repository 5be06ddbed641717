// Package filestore is the Persistent lifetime backend: one JSON
// document on disk, replaced atomically on every write, optionally
// encrypted at rest with nacl/secretbox.
package filestore

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/Tchaas/Bingo-ledger/credentials"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/nacl/secretbox"
)

const (
	fileName      = "credentials.json"
	filePerm      = fs.FileMode(0o600)
	keyLength     = 32
	nonceLength   = 24
	encodedPrefix = "box:" // marks an encrypted document
)

var _ credentials.Backend = (*Store)(nil)

// Store implements credentials.Backend on top of a single file.
type Store struct {
	path   string
	key    *[keyLength]byte // nil disables at-rest encryption
	mu     sync.Mutex
	values map[string]string
}

// Option modifies a Store during construction.
type Option func(*Store) error

// WithEncryptionKey enables at-rest encryption. The key must be 32
// bytes, base64 encoded (openssl rand -base64 32).
func WithEncryptionKey(base64Key string) Option {
	return func(s *Store) error {
		raw, err := base64.StdEncoding.DecodeString(base64Key)
		if err != nil {
			return errors.Wrap(err, "[WithEncryptionKey] decode")
		}
		if len(raw) != keyLength {
			return errors.Errorf("[WithEncryptionKey] key must decode to %d bytes, got %d", keyLength, len(raw))
		}
		var key [keyLength]byte
		copy(key[:], raw)
		s.key = &key
		return nil
	}
}

// New opens (or starts) the credentials file under dataFolder. An
// unreadable or malformed file is treated as empty rather than fatal:
// the worst case is that the user logs in again.
func New(dataFolder string, options ...Option) (*Store, error) {
	if dataFolder == "" {
		return nil, errors.New("[filestore.New] data folder is required")
	}
	store := &Store{
		path:   filepath.Join(dataFolder, fileName),
		values: make(map[string]string),
	}
	for _, opt := range options {
		if err := opt(store); err != nil {
			return nil, err
		}
	}
	store.load()
	return store, nil
}

func (s *Store) Get(key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	value, ok := s.values[key]
	return value, ok
}

func (s *Store) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	return s.flush()
}

func (s *Store) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.values[key]; !ok {
		return nil
	}
	delete(s.values, key)
	return s.flush()
}

func (s *Store) load() {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Warn().Err(err).Str("path", s.path).Msg("Failed to read credentials file, starting empty")
		}
		return
	}
	if s.key != nil {
		raw, err = s.open(raw)
		if err != nil {
			log.Warn().Err(err).Str("path", s.path).Msg("Failed to decrypt credentials file, starting empty")
			return
		}
	}
	if err := json.Unmarshal(raw, &s.values); err != nil {
		log.Warn().Err(err).Str("path", s.path).Msg("Malformed credentials file, starting empty")
		s.values = make(map[string]string)
	}
}

// flush writes the whole document atomically: temp file, fsync, close,
// chmod, rename. Callers must hold the lock.
func (s *Store) flush() error {
	raw, err := json.Marshal(s.values)
	if err != nil {
		return errors.Wrap(err, "[Store.flush] marshal")
	}
	if s.key != nil {
		raw, err = s.seal(raw)
		if err != nil {
			return errors.Wrap(err, "[Store.flush] seal")
		}
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return errors.Wrapf(err, "[Store.flush] mkdir %s", dir)
	}
	tmp, err := os.CreateTemp(dir, ".credentials-*")
	if err != nil {
		return errors.Wrap(err, "[Store.flush] create temp")
	}
	tmpPath := tmp.Name()
	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
	}()

	if _, err := tmp.Write(raw); err != nil {
		return errors.Wrap(err, "[Store.flush] write temp")
	}
	if err := tmp.Sync(); err != nil {
		return errors.Wrap(err, "[Store.flush] fsync temp")
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrap(err, "[Store.flush] close temp")
	}
	_ = os.Chmod(tmpPath, filePerm)

	if err := os.Rename(tmpPath, s.path); err != nil {
		// Windows can refuse to rename over an existing file.
		_ = os.Remove(s.path)
		if err2 := os.Rename(tmpPath, s.path); err2 != nil {
			return errors.Wrapf(err2, "[Store.flush] rename (first attempt: %v)", err)
		}
	}
	return nil
}

func (s *Store) seal(plaintext []byte) ([]byte, error) {
	var nonce [nonceLength]byte
	if _, err := io.ReadFull(rand.Reader, nonce[:]); err != nil {
		return nil, errors.Wrap(err, "nonce")
	}
	sealed := secretbox.Seal(nonce[:], plaintext, &nonce, s.key)
	return append([]byte(encodedPrefix), []byte(base64.StdEncoding.EncodeToString(sealed))...), nil
}

func (s *Store) open(raw []byte) ([]byte, error) {
	if len(raw) < len(encodedPrefix) || string(raw[:len(encodedPrefix)]) != encodedPrefix {
		return nil, errors.New("not an encrypted document")
	}
	sealed, err := base64.StdEncoding.DecodeString(string(raw[len(encodedPrefix):]))
	if err != nil {
		return nil, errors.Wrap(err, "decode")
	}
	if len(sealed) < nonceLength {
		return nil, errors.New("sealed document too short")
	}
	var nonce [nonceLength]byte
	copy(nonce[:], sealed[:nonceLength])
	plaintext, ok := secretbox.Open(nil, sealed[nonceLength:], &nonce, s.key)
	if !ok {
		return nil, errors.New("secretbox authentication failed")
	}
	return plaintext, nil
}
