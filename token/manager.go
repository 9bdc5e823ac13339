// Package token keeps the client's access and refresh tokens in a
// kvstore.Store and exposes them as a Session or an oauth2.TokenSource.
package token

import (
	"context"
	"fmt"
	"time"

	autherrors "github.com/jrsteele09/go-auth-client/internal/errors"
	"github.com/jrsteele09/go-auth-client/kvstore"
	"golang.org/x/oauth2"
)

// Storage keys. They match the keys the web frontend keeps in localStorage
// so a store can be shared with it.
const (
	AccessTokenKey  = "access_token"
	RefreshTokenKey = "refresh_token"
	UserDataKey     = "user_data"
)

// ErrNoAccessToken is returned by Token when nothing is stored
var ErrNoAccessToken = fmt.Errorf("no access token: %w", autherrors.ErrUnauthorized)

// Manager reads and writes the session tokens
type Manager struct {
	store   kvstore.Store
	nowFunc func() time.Time
}

var _ oauth2.TokenSource = (*Manager)(nil)

// New creates a token manager over store
func New(store kvstore.Store) *Manager {
	return &Manager{
		store:   store,
		nowFunc: time.Now,
	}
}

// Store returns the underlying key-value store
func (m *Manager) Store() kvstore.Store {
	return m.store
}

// AccessToken returns the stored access token, or "" when there is none
func (m *Manager) AccessToken(ctx context.Context) (string, error) {
	return m.get(ctx, AccessTokenKey)
}

// RefreshToken returns the stored refresh token, or "" when there is none
func (m *Manager) RefreshToken(ctx context.Context) (string, error) {
	return m.get(ctx, RefreshTokenKey)
}

// SetTokens stores a new access token. The refresh token is only replaced
// when refresh is non-empty, so a refresh response carrying just an access
// token keeps the existing refresh token.
func (m *Manager) SetTokens(ctx context.Context, access, refresh string) error {
	if err := m.store.Set(ctx, AccessTokenKey, access); err != nil {
		return fmt.Errorf("store access token: %w", err)
	}
	if refresh != "" {
		if err := m.store.Set(ctx, RefreshTokenKey, refresh); err != nil {
			return fmt.Errorf("store refresh token: %w", err)
		}
	}
	return nil
}

// Clear removes both tokens and the cached user profile
func (m *Manager) Clear(ctx context.Context) error {
	if err := m.store.Delete(ctx, AccessTokenKey, RefreshTokenKey, UserDataKey); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

// IsLoggedIn reports whether an access token is stored. A store error
// counts as logged out.
func (m *Manager) IsLoggedIn(ctx context.Context) bool {
	tok, err := m.AccessToken(ctx)
	return err == nil && tok != ""
}

// Session returns the stored token pair with its implicit expiry
func (m *Manager) Session(ctx context.Context) (Session, error) {
	access, err := m.AccessToken(ctx)
	if err != nil {
		return Session{}, err
	}
	refresh, err := m.RefreshToken(ctx)
	if err != nil {
		return Session{}, err
	}
	return Session{
		AccessToken:  access,
		RefreshToken: refresh,
		Expiry:       ExpiryOf(access),
	}, nil
}

// Token implements oauth2.TokenSource over the stored session so the
// tokens can drive an oauth2.NewClient transport. It never refreshes.
func (m *Manager) Token() (*oauth2.Token, error) {
	s, err := m.Session(context.Background())
	if err != nil {
		return nil, err
	}
	if s.AccessToken == "" {
		return nil, ErrNoAccessToken
	}
	return s.OAuth2(), nil
}

// Expired reports whether the stored access token's exp claim has passed.
// Tokens without a readable expiry are never considered expired.
func (m *Manager) Expired(ctx context.Context) (bool, error) {
	s, err := m.Session(ctx)
	if err != nil {
		return false, err
	}
	return s.ExpiredAt(m.nowFunc()), nil
}

func (m *Manager) get(ctx context.Context, key string) (string, error) {
	v, ok, err := m.store.Get(ctx, key)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", key, err)
	}
	if !ok {
		return "", nil
	}
	return v, nil
}
