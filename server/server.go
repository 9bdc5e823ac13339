// Package server is an in-memory implementation of the account API the
// client talks to. It speaks the same JSON shapes (DRF style errors,
// simplejwt style tokens) and exists for tests and local development;
// it is not a production auth service.
package server

import (
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/jrsteele09/go-auth-client/internal/config"
	"github.com/rs/zerolog"
)

const DefaultPathPrefix = "/api"

type Options struct {
	Env                 string        // "DEV" enables route logging
	SigningKey          string        // HS256 key for access tokens
	AccessTokenTTL      time.Duration // Lifetime of access tokens
	RefreshTokenTTL     time.Duration // Lifetime of refresh tokens
	PathPrefix          string        // Mount point, DefaultPathPrefix when empty
	RotateRefreshTokens bool          // Issue a new refresh token on every refresh
	Logger              zerolog.Logger
	Clock               func() time.Time
}

// OptionsFromConfig maps the dev server section of the config
func OptionsFromConfig(c config.Config, logger zerolog.Logger) Options {
	return Options{
		Env:             c.GetEnv(),
		SigningKey:      c.GetSigningKey(),
		AccessTokenTTL:  c.GetAccessTokenTTL(),
		RefreshTokenTTL: c.GetRefreshTokenTTL(),
		Logger:          logger,
	}
}

type Server struct {
	opts   Options
	router *mux.Router

	mu            sync.Mutex
	accounts      map[string]*account // username -> account
	nextID        int64
	refreshGrants map[string]refreshGrant
	generation    int
	failures      map[string]int // endpoint -> forced status
	calls         map[string]int // endpoint -> request count
	invitations   []string
}

func New(opts Options) *Server {
	if opts.PathPrefix == "" {
		opts.PathPrefix = DefaultPathPrefix
	}
	if opts.SigningKey == "" {
		opts.SigningKey = "dev-signing-key"
	}
	if opts.AccessTokenTTL == 0 {
		opts.AccessTokenTTL = 5 * time.Minute
	}
	if opts.RefreshTokenTTL == 0 {
		opts.RefreshTokenTTL = 24 * time.Hour
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}

	s := &Server{
		opts:          opts,
		router:        mux.NewRouter(),
		accounts:      make(map[string]*account),
		refreshGrants: make(map[string]refreshGrant),
		failures:      make(map[string]int),
		calls:         make(map[string]int),
	}
	s.initRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// PathPrefix returns the mount point, to be appended to the server URL to
// form the client's base URL
func (s *Server) PathPrefix() string {
	return s.opts.PathPrefix
}

// Calls returns how many requests endpoint (e.g. "/auth/login/") received
func (s *Server) Calls(endpoint string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[endpoint]
}

// SetFailure makes endpoint answer status with a generic error body until
// ClearFailures is called
func (s *Server) SetFailure(endpoint string, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[endpoint] = status
}

func (s *Server) ClearFailures() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures = make(map[string]int)
}

// InvalidateAccessTokens rejects every access token issued so far, as if
// they had all expired. Refresh tokens stay valid.
func (s *Server) InvalidateAccessTokens() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.generation++
}

// RevokeRefreshTokens forgets every refresh grant
func (s *Server) RevokeRefreshTokens() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.refreshGrants = make(map[string]refreshGrant)
}

// Invitations returns the addresses invitations were sent to
func (s *Server) Invitations() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.invitations...)
}

func (s *Server) endpointOf(r *http.Request) string {
	return strings.TrimPrefix(r.URL.Path, s.opts.PathPrefix)
}
