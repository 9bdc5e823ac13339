// Package auth implements the account flows (login, registration, profile
// management, logout) on top of the request client. A Service is the
// session context: it owns the client, the token manager and the cached
// profile, and carries no global state.
package auth

import (
	"context"
	"fmt"
	"net/http"

	"github.com/jrsteele09/go-auth-client/apiclient"
	"github.com/jrsteele09/go-auth-client/apimodel"
	"github.com/jrsteele09/go-auth-client/token"
	"github.com/jrsteele09/go-auth-client/users"
	"github.com/rs/zerolog"
)

type Credentials = apimodel.Credentials

type Service struct {
	client *apiclient.Client
	tokens *token.Manager
	users  *users.Cache
	logger zerolog.Logger
}

// NewService builds a Service around client. The profile cache shares the
// client's token store.
func NewService(client *apiclient.Client, logger zerolog.Logger) *Service {
	tokens := client.Tokens()
	return &Service{
		client: client,
		tokens: tokens,
		users:  users.NewCache(tokens.Store()),
		logger: logger,
	}
}

func (s *Service) Client() *apiclient.Client {
	return s.client
}

func (s *Service) Tokens() *token.Manager {
	return s.tokens
}

func (s *Service) Users() *users.Cache {
	return s.users
}

// IsLoggedIn reports whether an access token is stored
func (s *Service) IsLoggedIn(ctx context.Context) bool {
	return s.tokens.IsLoggedIn(ctx)
}

// CurrentUser returns the cached profile, nil when signed out
func (s *Service) CurrentUser(ctx context.Context) (*users.Profile, error) {
	return s.users.Current(ctx)
}

// Login authenticates and persists the returned tokens and profile. Server
// rejections are returned as the *apiclient.RequestError unchanged.
func (s *Service) Login(ctx context.Context, creds Credentials) (*users.Profile, error) {
	if !users.Required(creds.Username) || !users.Required(creds.Password) {
		return nil, ErrMissingCredentials
	}

	var resp apimodel.LoginResponse
	if err := s.client.Send(ctx, apiclient.EndpointLogin, http.MethodPost, creds, &resp, apiclient.Public()); err != nil {
		return nil, err
	}
	if resp.Access == "" || resp.Refresh == "" {
		return nil, ErrNoTokensInResponse
	}

	if err := s.tokens.SetTokens(ctx, resp.Access, resp.Refresh); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}
	profile := resp.User
	if profile == nil {
		profile = &users.Profile{Username: creds.Username}
	}
	if err := s.users.Update(ctx, profile); err != nil {
		return nil, fmt.Errorf("save profile: %w", err)
	}

	s.logger.Info().Str("username", profile.Username).Bool("approved", profile.IsApproved).Msg("logged in")
	return profile, nil
}

// Register validates reg locally, then submits it. A field-keyed rejection
// is returned as a *FieldError naming the first offending field.
func (s *Service) Register(ctx context.Context, reg users.Registration) error {
	reg = reg.Normalize()
	if err := reg.Validate(); err != nil {
		return err
	}

	if err := s.client.Send(ctx, apiclient.EndpointRegister, http.MethodPost, reg, nil, apiclient.Public()); err != nil {
		return fieldErrorFrom(err)
	}

	s.logger.Info().Str("username", reg.Username).Str("user_type", string(reg.UserType)).Msg("registered")
	return nil
}

// Profile fetches the signed-in user's profile and refreshes the cache
func (s *Service) Profile(ctx context.Context) (*users.Profile, error) {
	var p users.Profile
	if err := s.client.Send(ctx, apiclient.EndpointProfile, http.MethodGet, nil, &p); err != nil {
		return nil, err
	}
	if err := s.users.Update(ctx, &p); err != nil {
		return nil, fmt.Errorf("save profile: %w", err)
	}
	return &p, nil
}

// UpdateProfile saves the editable fields and caches the server's copy
func (s *Service) UpdateProfile(ctx context.Context, update users.ProfileUpdate) (*users.Profile, error) {
	var p users.Profile
	if err := s.client.Send(ctx, apiclient.EndpointProfile, http.MethodPut, update.Trim(), &p); err != nil {
		return nil, fieldErrorFrom(err)
	}
	if err := s.users.Update(ctx, &p); err != nil {
		return nil, fmt.Errorf("save profile: %w", err)
	}
	return &p, nil
}

// SendInvitation asks the server to email an invitation to email
func (s *Service) SendInvitation(ctx context.Context, email string) error {
	if !users.ValidEmail(email) {
		return ErrInvalidEmail
	}
	if err := s.client.Send(ctx, apiclient.EndpointSendInvitation, http.MethodPost, apimodel.InvitationRequest{Email: email}, nil); err != nil {
		return fieldErrorFrom(err)
	}
	s.logger.Info().Str("email", email).Msg("invitation sent")
	return nil
}

// Logout tells the server to blacklist the refresh token, then clears the
// local session. The server call is best effort: its failure is logged and
// the local session is cleared regardless.
func (s *Service) Logout(ctx context.Context) error {
	refresh, err := s.tokens.RefreshToken(ctx)
	if err != nil {
		s.logger.Warn().Err(err).Msg("could not read refresh token")
	}
	if refresh != "" {
		if err := s.client.Send(ctx, apiclient.EndpointLogout, http.MethodPost, apimodel.RefreshRequest{Refresh: refresh}, nil); err != nil {
			s.logger.Warn().Err(err).Msg("logout request failed")
		}
	}
	return s.tokens.Clear(ctx)
}

// CheckAuthStatus reports whether the stored session is usable, refreshing
// the access token if the server no longer accepts it. A session that
// cannot be recovered is cleared.
func (s *Service) CheckAuthStatus(ctx context.Context) bool {
	if !s.tokens.IsLoggedIn(ctx) {
		return false
	}

	// A token whose exp has already passed cannot verify, skip the round trip
	expired, err := s.tokens.Expired(ctx)
	if err == nil && !expired && s.client.VerifyToken(ctx) {
		return true
	}

	if _, err := s.client.RefreshAccessToken(ctx); err != nil {
		s.logger.Debug().Err(err).Msg("session could not be refreshed")
		if clearErr := s.tokens.Clear(ctx); clearErr != nil {
			s.logger.Error().Err(clearErr).Msg("failed to clear session")
		}
		return false
	}
	return true
}
