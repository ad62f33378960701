package session

import (
	"path/filepath"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "session.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func signedToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	// The signing key is irrelevant: the client never verifies.
	signed, err := token.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return signed
}

func TestLoginStoresCredentials(t *testing.T) {
	s := openTestStore(t)

	require.NoError(t, s.Login("access-1", "refresh-1", "amina"))

	assert.True(t, s.IsAuthenticated())
	assert.Equal(t, "access-1", s.AccessToken())
	assert.Equal(t, "refresh-1", s.RefreshToken())
	assert.Equal(t, "amina", s.Identity())
}

func TestLoginOverwritesPreviousSession(t *testing.T) {
	s := openTestStore(t)

	require.NoError(t, s.Login("access-1", "refresh-1", "amina"))
	require.NoError(t, s.Login("access-2", "refresh-2", "bora"))

	assert.Equal(t, "access-2", s.AccessToken())
	assert.Equal(t, "bora", s.Identity())
}

func TestSetUsernameRefreshesIdentity(t *testing.T) {
	s := openTestStore(t)
	require.NoError(t, s.Login("access-1", "refresh-1", ""))
	require.Equal(t, DefaultIdentity, s.Identity())

	require.NoError(t, s.SetUsername("amina"))
	assert.Equal(t, "amina", s.Identity())

	// An empty refresh must not wipe a known name.
	require.NoError(t, s.SetUsername(""))
	assert.Equal(t, "amina", s.Identity())
}

func TestLogoutClearsEverything(t *testing.T) {
	s := openTestStore(t)
	require.NoError(t, s.Login("access-1", "refresh-1", "amina"))

	require.NoError(t, s.Logout())

	assert.False(t, s.IsAuthenticated())
	assert.Empty(t, s.AccessToken())
	assert.Empty(t, s.RefreshToken())
	assert.Equal(t, DefaultIdentity, s.Identity())
}

func TestInvalidateClearsLikeLogout(t *testing.T) {
	s := openTestStore(t)
	require.NoError(t, s.Login("access-1", "refresh-1", "amina"))

	require.NoError(t, s.Invalidate())

	assert.False(t, s.IsAuthenticated())
	assert.Equal(t, DefaultIdentity, s.Identity())
}

func TestIdentityPrefersStoredUsername(t *testing.T) {
	s := openTestStore(t)
	token := signedToken(t, jwt.MapClaims{"username": "token-name"})

	require.NoError(t, s.Login(token, "refresh", "stored-name"))

	assert.Equal(t, "stored-name", s.Identity())
}

func TestIdentityFallsBackToTokenClaims(t *testing.T) {
	s := openTestStore(t)
	token := signedToken(t, jwt.MapClaims{"username": "claimed", "user_id": 42})

	require.NoError(t, s.Login(token, "refresh", ""))

	assert.Equal(t, "claimed", s.Identity())
}

func TestSessionSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.db")

	s, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s.Login("access-1", "refresh-1", "amina"))
	require.NoError(t, s.Close())

	s, err = Open(path)
	require.NoError(t, err)
	defer s.Close()

	assert.True(t, s.IsAuthenticated())
	assert.Equal(t, "access-1", s.AccessToken())
	assert.Equal(t, "amina", s.Identity())
}

func TestUsernameFromToken(t *testing.T) {
	tests := []struct {
		name   string
		claims jwt.MapClaims
		want   string
	}{
		{"username claim", jwt.MapClaims{"username": "amina"}, "amina"},
		{"empty username falls through", jwt.MapClaims{"username": "", "user_id": 7}, "7"},
		{"numeric user_id", jwt.MapClaims{"user_id": 42}, "42"},
		{"string user_id", jwt.MapClaims{"user_id": "abc-123"}, "abc-123"},
		{"no usable claim", jwt.MapClaims{"exp": 1700000000}, DefaultIdentity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token := signedToken(t, tt.claims)
			assert.Equal(t, tt.want, usernameFromToken(token))
		})
	}
}

func TestUsernameFromTokenNeverErrors(t *testing.T) {
	malformed := []string{
		"",
		"not-a-jwt",
		"a.b",
		"!!!.@@@.###",
		"eyJhbGciOiJIUzI1NiJ9.bm90LWpzb24.sig",
	}
	for _, tok := range malformed {
		assert.Equal(t, DefaultIdentity, usernameFromToken(tok), "token %q", tok)
	}
}
