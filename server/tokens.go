package server

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var errInvalidToken = errors.New("token is invalid or expired")

type refreshGrant struct {
	username  string
	expiresAt time.Time
}

// issueAccessToken signs a simplejwt-shaped access token for acc.
// Callers must hold s.mu.
func (s *Server) issueAccessToken(acc *account) (string, error) {
	now := s.opts.Clock()
	claims := jwt.MapClaims{
		"token_type": "access",
		"user_id":    acc.profile.ID,
		"username":   acc.profile.Username,
		"gen":        s.generation,
		"iat":        now.Unix(),
		"exp":        now.Add(s.opts.AccessTokenTTL).Unix(),
		"jti":        uuid.New().String(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.opts.SigningKey))
	if err != nil {
		return "", fmt.Errorf("failed to sign access token: %w", err)
	}
	return signed, nil
}

// issueRefreshToken creates an opaque refresh grant. Callers must hold s.mu.
func (s *Server) issueRefreshToken(acc *account) string {
	tok := uuid.New().String()
	s.refreshGrants[tok] = refreshGrant{
		username:  acc.profile.Username,
		expiresAt: s.opts.Clock().Add(s.opts.RefreshTokenTTL),
	}
	return tok
}

// parseAccessToken validates signature, expiry and generation. Callers
// must hold s.mu.
func (s *Server) parseAccessToken(raw string) (*account, error) {
	claims := jwt.MapClaims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		return []byte(s.opts.SigningKey), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(s.opts.Clock), jwt.WithExpirationRequired())
	if err != nil {
		return nil, errInvalidToken
	}
	if claims["token_type"] != "access" {
		return nil, errInvalidToken
	}
	if gen, ok := claims["gen"].(float64); !ok || int(gen) != s.generation {
		return nil, errInvalidToken
	}
	username, _ := claims["username"].(string)
	acc, ok := s.accounts[username]
	if !ok {
		return nil, errInvalidToken
	}
	return acc, nil
}

func (s *Server) accountFromAccessToken(raw string) (*account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.parseAccessToken(raw)
}

// redeemRefreshToken returns the account a live grant belongs to. Callers
// must hold s.mu.
func (s *Server) redeemRefreshToken(tok string) (*account, error) {
	grant, ok := s.refreshGrants[tok]
	if !ok {
		return nil, errInvalidToken
	}
	if !s.opts.Clock().Before(grant.expiresAt) {
		delete(s.refreshGrants, tok)
		return nil, errInvalidToken
	}
	acc, ok := s.accounts[grant.username]
	if !ok {
		return nil, errInvalidToken
	}
	return acc, nil
}
