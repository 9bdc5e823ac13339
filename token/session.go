package token

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/oauth2"
)

// Session is the token pair representing an authenticated user. Expiry is
// zero when the access token carries no readable exp claim.
type Session struct {
	AccessToken  string
	RefreshToken string
	Expiry       time.Time
}

// ExpiredAt reports whether the access token had expired at now
func (s Session) ExpiredAt(now time.Time) bool {
	return !s.Expiry.IsZero() && !now.Before(s.Expiry)
}

func (s Session) OAuth2() *oauth2.Token {
	return &oauth2.Token{
		AccessToken:  s.AccessToken,
		TokenType:    "Bearer",
		RefreshToken: s.RefreshToken,
		Expiry:       s.Expiry,
	}
}

// ExpiryOf reads the exp claim from a JWT access token without verifying
// its signature. The client cannot verify tokens; the server does that on
// every call. Opaque or malformed tokens yield the zero time.
func ExpiryOf(accessToken string) time.Time {
	if accessToken == "" {
		return time.Time{}
	}
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(accessToken, claims); err != nil {
		return time.Time{}
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}
	}
	return exp.Time
}
