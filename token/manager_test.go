package token_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jrsteele09/go-auth-client/kvstore"
	"github.com/jrsteele09/go-auth-client/token"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

func signedToken(t *testing.T, exp time.Time) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "1",
		"exp": exp.Unix(),
	}).SignedString([]byte("test-key"))
	require.NoError(t, err)
	return s
}

func TestManager_SetAndClear(t *testing.T) {
	ctx := context.Background()
	store := kvstore.NewMemory()
	m := token.New(store)

	require.False(t, m.IsLoggedIn(ctx))

	require.NoError(t, m.SetTokens(ctx, "x", "y"))
	require.NoError(t, store.Set(ctx, token.UserDataKey, `{"username":"a"}`))
	require.True(t, m.IsLoggedIn(ctx))

	access, err := m.AccessToken(ctx)
	require.NoError(t, err)
	require.Equal(t, "x", access)
	refresh, err := m.RefreshToken(ctx)
	require.NoError(t, err)
	require.Equal(t, "y", refresh)

	require.NoError(t, m.Clear(ctx))
	require.False(t, m.IsLoggedIn(ctx))
	require.Equal(t, 0, store.Len())
}

func TestManager_EmptyRefreshKeepsExisting(t *testing.T) {
	ctx := context.Background()
	m := token.New(kvstore.NewMemory())

	require.NoError(t, m.SetTokens(ctx, "a1", "r1"))
	require.NoError(t, m.SetTokens(ctx, "a2", ""))

	s, err := m.Session(ctx)
	require.NoError(t, err)
	require.Equal(t, "a2", s.AccessToken)
	require.Equal(t, "r1", s.RefreshToken)
}

func TestExpiryOf(t *testing.T) {
	exp := time.Now().Add(time.Hour).Truncate(time.Second)

	require.True(t, token.ExpiryOf(signedToken(t, exp)).Equal(exp))
	require.True(t, token.ExpiryOf("opaque-token").IsZero())
	require.True(t, token.ExpiryOf("").IsZero())
}

func TestManager_Expired(t *testing.T) {
	ctx := context.Background()
	m := token.New(kvstore.NewMemory())

	require.NoError(t, m.SetTokens(ctx, signedToken(t, time.Now().Add(-time.Minute)), "r"))
	expired, err := m.Expired(ctx)
	require.NoError(t, err)
	require.True(t, expired)

	require.NoError(t, m.SetTokens(ctx, signedToken(t, time.Now().Add(time.Hour)), ""))
	expired, err = m.Expired(ctx)
	require.NoError(t, err)
	require.False(t, expired)

	require.NoError(t, m.SetTokens(ctx, "opaque", ""))
	expired, err = m.Expired(ctx)
	require.NoError(t, err)
	require.False(t, expired)
}

func TestManager_TokenSource(t *testing.T) {
	ctx := context.Background()
	m := token.New(kvstore.NewMemory())

	_, err := m.Token()
	require.ErrorIs(t, err, token.ErrNoAccessToken)

	require.NoError(t, m.SetTokens(ctx, "access-1", "refresh-1"))

	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	resp, err := oauth2.NewClient(ctx, m).Get(srv.URL)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, "Bearer access-1", gotAuth)
}
