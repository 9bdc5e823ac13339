package server

import (
	"fmt"
	"net/http"

	"github.com/jrsteele09/go-auth-client/apiclient"
	"github.com/jrsteele09/go-auth-client/internal/ansi"
)

func (s *Server) initRoutes() {
	api := s.router.PathPrefix(s.opts.PathPrefix).Subrouter()
	api.Use(s.LoggingMiddleware, s.CountingMiddleware, s.FailureMiddleware)

	// Public
	api.HandleFunc(apiclient.EndpointRegister, s.RegisterHandler()).Methods(http.MethodPost)
	api.HandleFunc(apiclient.EndpointLogin, s.LoginHandler()).Methods(http.MethodPost)
	api.HandleFunc(apiclient.EndpointLogout, s.LogoutHandler()).Methods(http.MethodPost)
	api.HandleFunc(apiclient.EndpointTokenRefresh, s.RefreshHandler()).Methods(http.MethodPost)
	api.HandleFunc(apiclient.EndpointTokenVerify, s.VerifyHandler()).Methods(http.MethodPost)

	// Bearer protected
	api.HandleFunc(apiclient.EndpointProfile, ChainMiddleware(s.ProfileGetHandler(), s.RequireAccessToken)).Methods(http.MethodGet)
	api.HandleFunc(apiclient.EndpointProfile, ChainMiddleware(s.ProfileUpdateHandler(), s.RequireAccessToken)).Methods(http.MethodPut)
	api.HandleFunc(apiclient.EndpointSendInvitation, ChainMiddleware(s.InvitationHandler(), s.RequireAccessToken)).Methods(http.MethodPost)

	api.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeDetail(w, http.StatusNotFound, "Not found.")
	})
	api.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeDetail(w, http.StatusMethodNotAllowed, fmt.Sprintf("Method \"%s\" not allowed.", r.Method))
	})

	s.logRoutes()
}

func (s *Server) logRoutes() {
	if s.opts.Env != "DEV" {
		return // Skip logging in non-development environments
	}
	routes := []struct{ method, endpoint string }{
		{http.MethodPost, apiclient.EndpointRegister},
		{http.MethodPost, apiclient.EndpointLogin},
		{http.MethodPost, apiclient.EndpointLogout},
		{http.MethodGet, apiclient.EndpointProfile},
		{http.MethodPut, apiclient.EndpointProfile},
		{http.MethodPost, apiclient.EndpointTokenRefresh},
		{http.MethodPost, apiclient.EndpointTokenVerify},
		{http.MethodPost, apiclient.EndpointSendInvitation},
	}
	for _, r := range routes {
		s.logRoute(r.method, s.opts.PathPrefix+r.endpoint, 0)
	}
}

func (s *Server) logRoute(method, path string, status int) {
	colour, ok := ansi.MethodColors[method]
	if !ok {
		colour = ansi.Gray
	}
	displayMethod := ansi.Wrap(true, colour, fmt.Sprintf(" %-7s", method))
	if status == 0 {
		s.opts.Logger.Info().Msgf("[%-19s] %s", displayMethod, path)
		return
	}
	statusColour := ansi.Green
	if status >= http.StatusBadRequest {
		statusColour = ansi.Red
	}
	s.opts.Logger.Info().Msgf("[%-19s] %s %s", displayMethod, path, ansi.Wrap(true, statusColour, fmt.Sprint(status)))
}
