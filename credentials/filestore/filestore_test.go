package filestore_test

import (
	"crypto/rand"
	"encoding/base64"
	"os"
	"path/filepath"
	"testing"

	"github.com/Tchaas/Bingo-ledger/credentials/filestore"
	"github.com/stretchr/testify/require"
)

func testKey(t *testing.T) string {
	t.Helper()
	raw := make([]byte, 32)
	_, err := rand.Read(raw)
	require.NoError(t, err)
	return base64.StdEncoding.EncodeToString(raw)
}

func TestSurvivesReopen(t *testing.T) {
	dir := t.TempDir()

	store, err := filestore.New(dir)
	require.NoError(t, err)
	require.NoError(t, store.Set("access_token", "token-123"))
	require.NoError(t, store.Set("user", `{"id":1}`))

	reopened, err := filestore.New(dir)
	require.NoError(t, err)

	value, ok := reopened.Get("access_token")
	require.True(t, ok)
	require.Equal(t, "token-123", value)
	value, ok = reopened.Get("user")
	require.True(t, ok)
	require.Equal(t, `{"id":1}`, value)
}

func TestDeleteRemovesKey(t *testing.T) {
	dir := t.TempDir()

	store, err := filestore.New(dir)
	require.NoError(t, err)
	require.NoError(t, store.Set("refresh_token", "r"))
	require.NoError(t, store.Delete("refresh_token"))
	require.NoError(t, store.Delete("refresh_token")) // absent key is fine

	_, ok := store.Get("refresh_token")
	require.False(t, ok)

	reopened, err := filestore.New(dir)
	require.NoError(t, err)
	_, ok = reopened.Get("refresh_token")
	require.False(t, ok)
}

func TestEncryptedRoundTrip(t *testing.T) {
	dir := t.TempDir()
	key := testKey(t)

	store, err := filestore.New(dir, filestore.WithEncryptionKey(key))
	require.NoError(t, err)
	require.NoError(t, store.Set("access_token", "secret-token"))

	// Nothing readable on disk in the clear.
	raw, err := os.ReadFile(filepath.Join(dir, "credentials.json"))
	require.NoError(t, err)
	require.NotContains(t, string(raw), "secret-token")

	reopened, err := filestore.New(dir, filestore.WithEncryptionKey(key))
	require.NoError(t, err)
	value, ok := reopened.Get("access_token")
	require.True(t, ok)
	require.Equal(t, "secret-token", value)
}

func TestWrongKeyStartsEmpty(t *testing.T) {
	dir := t.TempDir()

	store, err := filestore.New(dir, filestore.WithEncryptionKey(testKey(t)))
	require.NoError(t, err)
	require.NoError(t, store.Set("access_token", "secret-token"))

	reopened, err := filestore.New(dir, filestore.WithEncryptionKey(testKey(t)))
	require.NoError(t, err)
	_, ok := reopened.Get("access_token")
	require.False(t, ok)
}

func TestMalformedFileStartsEmpty(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "credentials.json"), []byte("not json at all"), 0o600))

	store, err := filestore.New(dir)
	require.NoError(t, err)
	_, ok := store.Get("access_token")
	require.False(t, ok)

	// And the store is still writable afterwards.
	require.NoError(t, store.Set("access_token", "fresh"))
	value, ok := store.Get("access_token")
	require.True(t, ok)
	require.Equal(t, "fresh", value)
}

func TestRejectsShortKey(t *testing.T) {
	_, err := filestore.New(t.TempDir(), filestore.WithEncryptionKey(base64.StdEncoding.EncodeToString([]byte("short"))))
	require.Error(t, err)
}
