package users

import (
	"context"
	"encoding/json"
	"fmt"

	autherrors "github.com/jrsteele09/go-auth-client/internal/errors"
	"github.com/jrsteele09/go-auth-client/kvstore"
	"github.com/jrsteele09/go-auth-client/token"
)

// Cache keeps the signed-in user's profile next to the session tokens
type Cache struct {
	store kvstore.Store
}

func NewCache(store kvstore.Store) *Cache {
	return &Cache{store: store}
}

// Current returns the cached profile, or nil when none is stored
func (c *Cache) Current(ctx context.Context) (*Profile, error) {
	raw, ok, err := c.store.Get(ctx, token.UserDataKey)
	if err != nil {
		return nil, fmt.Errorf("read user data: %w", err)
	}
	if !ok || raw == "" || raw == "null" {
		return nil, nil
	}
	var p Profile
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		return nil, autherrors.Wrapf(autherrors.ErrStoreCorrupt, "decode user data: %v", err)
	}
	return &p, nil
}

// Update replaces the cached profile
func (c *Cache) Update(ctx context.Context, p *Profile) error {
	if p == nil {
		return c.Clear(ctx)
	}
	raw, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("json.Marshal: %w", err)
	}
	if err := c.store.Set(ctx, token.UserDataKey, string(raw)); err != nil {
		return fmt.Errorf("store user data: %w", err)
	}
	return nil
}

func (c *Cache) Clear(ctx context.Context) error {
	return c.store.Delete(ctx, token.UserDataKey)
}

// IsApproved reports whether a cached user exists and is approved
func (c *Cache) IsApproved(ctx context.Context) bool {
	p, err := c.Current(ctx)
	return err == nil && p != nil && p.IsApproved
}

// UserType returns the cached user's type, or "" when nobody is cached
func (c *Cache) UserType(ctx context.Context) UserType {
	p, err := c.Current(ctx)
	if err != nil || p == nil {
		return ""
	}
	return p.UserType
}

// DisplayName returns the cached user's display name, "Guest" if none
func (c *Cache) DisplayName(ctx context.Context) string {
	p, err := c.Current(ctx)
	if err != nil {
		return DisplayName(nil)
	}
	return DisplayName(p)
}
