package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/jrsteele09/go-auth-client/apimodel"
	"github.com/jrsteele09/go-auth-client/users"
)

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(body)
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, apimodel.Message{Detail: detail})
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeDetail(w, http.StatusBadRequest, fmt.Sprintf("JSON parse error - %v", err))
		return false
	}
	return true
}

func (s *Server) RegisterHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var reg users.Registration
		if !decodeBody(w, r, &reg) {
			return
		}

		s.mu.Lock()
		defer s.mu.Unlock()

		if errs := s.validateRegistration(reg); len(errs) > 0 {
			writeJSON(w, http.StatusBadRequest, errs)
			return
		}
		acc, err := s.createAccount(reg)
		if err != nil {
			s.opts.Logger.Error().Err(err).Msg("register")
			writeJSON(w, http.StatusInternalServerError, apimodel.Message{Error: "Registration failed"})
			return
		}
		writeJSON(w, http.StatusCreated, acc.profile)
	}
}

func (s *Server) LoginHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var creds apimodel.Credentials
		if !decodeBody(w, r, &creds) {
			return
		}
		var errs fieldErrors
		if creds.Username == "" {
			errs.add("username", requiredFieldMessage)
		}
		if creds.Password == "" {
			errs.add("password", requiredFieldMessage)
		}
		if len(errs) > 0 {
			writeJSON(w, http.StatusBadRequest, errs)
			return
		}

		s.mu.Lock()
		defer s.mu.Unlock()

		acc, ok := s.accounts[creds.Username]
		if !ok || !CheckPasswordHash(creds.Password, acc.passwordHash) {
			writeDetail(w, http.StatusUnauthorized, "No active account found with the given credentials")
			return
		}
		access, err := s.issueAccessToken(acc)
		if err != nil {
			s.opts.Logger.Error().Err(err).Msg("login")
			writeJSON(w, http.StatusInternalServerError, apimodel.Message{Error: "Login failed"})
			return
		}
		profile := acc.profile
		writeJSON(w, http.StatusOK, apimodel.LoginResponse{
			Access:  access,
			Refresh: s.issueRefreshToken(acc),
			User:    &profile,
		})
	}
}

func (s *Server) LogoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req apimodel.RefreshRequest
		if !decodeBody(w, r, &req) {
			return
		}
		if req.Refresh == "" {
			writeJSON(w, http.StatusBadRequest, fieldErrors{{field: "refresh", messages: []string{requiredFieldMessage}}})
			return
		}

		s.mu.Lock()
		defer s.mu.Unlock()

		if _, ok := s.refreshGrants[req.Refresh]; !ok {
			writeDetail(w, http.StatusBadRequest, "Token is invalid or expired")
			return
		}
		delete(s.refreshGrants, req.Refresh)
		w.WriteHeader(http.StatusNoContent)
	}
}

func (s *Server) RefreshHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req apimodel.RefreshRequest
		if !decodeBody(w, r, &req) {
			return
		}
		if req.Refresh == "" {
			writeJSON(w, http.StatusBadRequest, fieldErrors{{field: "refresh", messages: []string{requiredFieldMessage}}})
			return
		}

		s.mu.Lock()
		defer s.mu.Unlock()

		acc, err := s.redeemRefreshToken(req.Refresh)
		if err != nil {
			writeJSON(w, http.StatusUnauthorized, map[string]string{
				"detail": "Token is invalid or expired",
				"code":   "token_not_valid",
			})
			return
		}
		access, err := s.issueAccessToken(acc)
		if err != nil {
			s.opts.Logger.Error().Err(err).Msg("refresh")
			writeJSON(w, http.StatusInternalServerError, apimodel.Message{Error: "Refresh failed"})
			return
		}
		resp := apimodel.RefreshResponse{Access: access}
		if s.opts.RotateRefreshTokens {
			delete(s.refreshGrants, req.Refresh)
			resp.Refresh = s.issueRefreshToken(acc)
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func (s *Server) VerifyHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req apimodel.VerifyRequest
		if !decodeBody(w, r, &req) {
			return
		}
		if _, err := s.accountFromAccessToken(req.Token); err != nil {
			writeJSON(w, http.StatusUnauthorized, map[string]string{
				"detail": "Token is invalid or expired",
				"code":   "token_not_valid",
			})
			return
		}
		writeJSON(w, http.StatusOK, struct{}{})
	}
}

func (s *Server) ProfileGetHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		acc := accountFrom(r.Context())

		s.mu.Lock()
		profile := acc.profile
		s.mu.Unlock()

		writeJSON(w, http.StatusOK, profile)
	}
}

func (s *Server) ProfileUpdateHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var update users.ProfileUpdate
		if !decodeBody(w, r, &update) {
			return
		}
		update = update.Trim()

		var errs fieldErrors
		if update.FirstName == "" {
			errs.add("first_name", "This field may not be blank.")
		}
		if update.LastName == "" {
			errs.add("last_name", "This field may not be blank.")
		}
		if update.Gender != "" {
			if _, ok := validGenders[update.Gender]; !ok {
				errs.add("gender", fmt.Sprintf("%q is not a valid choice.", update.Gender))
			}
		}
		if len(errs) > 0 {
			writeJSON(w, http.StatusBadRequest, errs)
			return
		}

		acc := accountFrom(r.Context())

		s.mu.Lock()
		acc.profile.FirstName = update.FirstName
		acc.profile.LastName = update.LastName
		acc.profile.Birthday = update.Birthday
		acc.profile.Gender = update.Gender
		profile := acc.profile
		s.mu.Unlock()

		writeJSON(w, http.StatusOK, profile)
	}
}

func (s *Server) InvitationHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req apimodel.InvitationRequest
		if !decodeBody(w, r, &req) {
			return
		}
		email := strings.TrimSpace(req.Email)
		if !users.ValidEmail(email) {
			writeJSON(w, http.StatusBadRequest, fieldErrors{{field: "email", messages: []string{"Enter a valid email address."}}})
			return
		}

		acc := accountFrom(r.Context())

		s.mu.Lock()
		defer s.mu.Unlock()
		if acc.profile.UserType != users.UserTypeCustomer {
			writeDetail(w, http.StatusForbidden, "Only customer accounts can send invitations.")
			return
		}
		s.invitations = append(s.invitations, email)
		writeDetail(w, http.StatusOK, fmt.Sprintf("Invitation sent to %s.", email))
	}
}
