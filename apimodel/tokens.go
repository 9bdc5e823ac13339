// Package apimodel holds the JSON bodies exchanged with the account API.
package apimodel

import "github.com/jrsteele09/go-auth-client/users"

// Credentials is the login request body
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse is returned by the login endpoint.
type LoginResponse struct {
	// Access is the short-lived JWT sent as "Authorization: Bearer <access>".
	Access string `json:"access,omitempty"`

	// Refresh is the longer-lived token posted to the refresh endpoint to
	// mint new access tokens.
	Refresh string `json:"refresh,omitempty"`

	// User is the signed-in user's profile, cached under user_data.
	User *users.Profile `json:"user,omitempty"`
}

// RefreshRequest is posted to the token refresh and logout endpoints
type RefreshRequest struct {
	Refresh string `json:"refresh"`
}

// RefreshResponse carries the new access token. Refresh is only present
// when the server rotates refresh tokens.
type RefreshResponse struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh,omitempty"`
}

// VerifyRequest is posted to the token verify endpoint
type VerifyRequest struct {
	Token string `json:"token"`
}

// InvitationRequest is posted to the send-invitation endpoint
type InvitationRequest struct {
	Email string `json:"email"`
}

// Message is the generic acknowledgement shape, e.g. {"detail": "..."}
type Message struct {
	Detail  string `json:"detail,omitempty"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Text returns whichever of the fields is set
func (m Message) Text() string {
	switch {
	case m.Error != "":
		return m.Error
	case m.Detail != "":
		return m.Detail
	default:
		return m.Message
	}
}
