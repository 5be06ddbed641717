package credentials_test

import (
	"testing"

	"github.com/Tchaas/Bingo-ledger/credentials"
	"github.com/Tchaas/Bingo-ledger/credentials/memstore"
	"github.com/Tchaas/Bingo-ledger/internal/utils"
	"github.com/Tchaas/Bingo-ledger/users"
	"github.com/stretchr/testify/require"
)

// testFixture holds the store plus raw access to both backends so
// tests can verify what each lifetime actually contains.
type testFixture struct {
	store      *credentials.Store
	persistent credentials.Backend
	session    credentials.Backend
}

func setupTestFixture(t *testing.T) *testFixture {
	t.Helper()

	persistent := memstore.New()
	session := memstore.New()
	store, err := credentials.NewStore(persistent, session)
	require.NoError(t, err)

	return &testFixture{store: store, persistent: persistent, session: session}
}

func testUser() *users.User {
	return &users.User{
		ID:             7,
		Name:           "Dana Treasurer",
		Email:          "dana@example.org",
		OrganizationID: utils.Ptr(int64(3)),
	}
}

func TestSetTokensRoundTrip(t *testing.T) {
	for _, lifetime := range []credentials.Lifetime{credentials.LifetimePersistent, credentials.LifetimeSession} {
		t.Run(string(lifetime), func(t *testing.T) {
			f := setupTestFixture(t)
			pair := credentials.TokenPair{AccessToken: "access-1", RefreshToken: "refresh-1"}
			require.NoError(t, f.store.SetTokens(pair, lifetime))

			access, ok := f.store.AccessToken()
			require.True(t, ok)
			require.Equal(t, "access-1", access)

			refresh, ok := f.store.RefreshToken()
			require.True(t, ok)
			require.Equal(t, "refresh-1", refresh)

			active, ok := f.store.ActiveLifetime()
			require.True(t, ok)
			require.Equal(t, lifetime, active)
		})
	}
}

func TestSetTokensClearsOtherLifetime(t *testing.T) {
	f := setupTestFixture(t)

	require.NoError(t, f.store.SetTokens(credentials.TokenPair{AccessToken: "a1", RefreshToken: "r1"}, credentials.LifetimePersistent))
	require.NoError(t, f.store.SetTokens(credentials.TokenPair{AccessToken: "a2", RefreshToken: "r2"}, credentials.LifetimeSession))

	// The non-selected lifetime must hold no tokens at all.
	_, ok := f.persistent.Get(credentials.KeyAccessToken)
	require.False(t, ok)
	_, ok = f.persistent.Get(credentials.KeyRefreshToken)
	require.False(t, ok)

	access, ok := f.store.AccessToken()
	require.True(t, ok)
	require.Equal(t, "a2", access)

	active, ok := f.store.ActiveLifetime()
	require.True(t, ok)
	require.Equal(t, credentials.LifetimeSession, active)
}

func TestClearIsIdempotent(t *testing.T) {
	f := setupTestFixture(t)
	require.NoError(t, f.store.SetTokens(credentials.TokenPair{AccessToken: "a", RefreshToken: "r"}, credentials.LifetimePersistent))
	require.NoError(t, f.store.SetUser(testUser(), credentials.LifetimePersistent))

	f.store.Clear()
	f.store.Clear()

	_, ok := f.store.AccessToken()
	require.False(t, ok)
	_, ok = f.store.RefreshToken()
	require.False(t, ok)
	_, ok = f.store.User()
	require.False(t, ok)
}

func TestUserRoundTrip(t *testing.T) {
	for _, lifetime := range []credentials.Lifetime{credentials.LifetimePersistent, credentials.LifetimeSession} {
		t.Run(string(lifetime), func(t *testing.T) {
			f := setupTestFixture(t)
			want := testUser()
			require.NoError(t, f.store.SetUser(want, lifetime))

			got, ok := f.store.User()
			require.True(t, ok)
			require.Equal(t, want, got)
		})
	}
}

func TestMalformedUserSnapshotIsCacheMiss(t *testing.T) {
	f := setupTestFixture(t)
	require.NoError(t, f.persistent.Set(credentials.KeyUser, "{not json"))

	user, ok := f.store.User()
	require.False(t, ok)
	require.Nil(t, user)
}

func TestUpdateAccessTokenFollowsActiveLifetime(t *testing.T) {
	f := setupTestFixture(t)
	require.NoError(t, f.store.SetTokens(credentials.TokenPair{AccessToken: "old", RefreshToken: "r"}, credentials.LifetimeSession))

	require.NoError(t, f.store.UpdateAccessToken("new"))

	value, ok := f.session.Get(credentials.KeyAccessToken)
	require.True(t, ok)
	require.Equal(t, "new", value)

	// The refresh token is never rotated by an access-token update.
	refresh, ok := f.store.RefreshToken()
	require.True(t, ok)
	require.Equal(t, "r", refresh)
}

func TestUpdateAccessTokenWithoutActiveLifetimeIsNoop(t *testing.T) {
	f := setupTestFixture(t)

	require.NoError(t, f.store.UpdateAccessToken("orphan"))

	_, ok := f.store.AccessToken()
	require.False(t, ok)
	_, ok = f.persistent.Get(credentials.KeyAccessToken)
	require.False(t, ok)
	_, ok = f.session.Get(credentials.KeyAccessToken)
	require.False(t, ok)
}

func TestSetUserClearsOtherLifetimeSnapshot(t *testing.T) {
	f := setupTestFixture(t)
	require.NoError(t, f.store.SetUser(testUser(), credentials.LifetimePersistent))
	require.NoError(t, f.store.SetUser(testUser(), credentials.LifetimeSession))

	_, ok := f.persistent.Get(credentials.KeyUser)
	require.False(t, ok)
	_, ok = f.session.Get(credentials.KeyUser)
	require.True(t, ok)
}
