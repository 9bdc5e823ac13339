package users

import (
	"strings"
	"time"
)

// UserType is the account kind chosen at registration
type UserType string

const (
	UserTypeCustomer     UserType = "CUSTOMER"      // Top-level customer account
	UserTypeCustomerUser UserType = "CUSTOMER_USER" // Account belonging to a parent customer
)

func (t UserType) Valid() bool {
	return t == UserTypeCustomer || t == UserTypeCustomerUser
}

// Label is the human readable account type shown in the UI
func (t UserType) Label() string {
	if t == UserTypeCustomer {
		return "Customer"
	}
	return "Customer User"
}

// Profile is the user object returned by the login and profile endpoints.
// It is cached JSON-encoded under the user_data key.
type Profile struct {
	ID               int64     `json:"id,omitempty"`                 // Server side identifier
	Username         string    `json:"username,omitempty"`           // Unique username
	Email            string    `json:"email,omitempty"`              // User's email address
	FirstName        string    `json:"first_name,omitempty"`         // First name of the user
	LastName         string    `json:"last_name,omitempty"`          // Last name of the user
	UserType         UserType  `json:"user_type,omitempty"`          // CUSTOMER or CUSTOMER_USER
	IsApproved       bool      `json:"is_approved"`                  // Approved by the customer administrator
	DateJoined       time.Time `json:"date_joined,omitempty"`        // Date and time when the user registered
	Birthday         string    `json:"birthday,omitempty"`           // YYYY-MM-DD, optional
	Gender           string    `json:"gender,omitempty"`             // Male, Female or Other, optional
	ParentCustomerID string    `json:"parent_customer_id,omitempty"` // Set for CUSTOMER_USER accounts
}

// DisplayName returns "First Last" when both names are known, otherwise
// the username. A nil profile is a guest.
func DisplayName(p *Profile) string {
	if p == nil {
		return "Guest"
	}
	if p.FirstName != "" && p.LastName != "" {
		return p.FirstName + " " + p.LastName
	}
	return p.Username
}

// Greeting is the dashboard welcome line
func (p *Profile) Greeting() string {
	name := p.FirstName
	if name == "" {
		name = p.Username
	}
	return "Welcome, " + name + "!"
}

func (p *Profile) StatusLabel() string {
	if p.IsApproved {
		return "Approved"
	}
	return "Pending Approval"
}

// JoinDate formats DateJoined as a short local date, or "" when unknown
func (p *Profile) JoinDate() string {
	if p.DateJoined.IsZero() {
		return ""
	}
	return p.DateJoined.Local().Format("2006-01-02")
}

// ProfileUpdate carries the editable profile fields. Username and email
// are read-only on the server and deliberately absent.
type ProfileUpdate struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Birthday  string `json:"birthday,omitempty"`
	Gender    string `json:"gender,omitempty"`
}

// Trim removes surrounding whitespace from every field
func (u ProfileUpdate) Trim() ProfileUpdate {
	return ProfileUpdate{
		FirstName: strings.TrimSpace(u.FirstName),
		LastName:  strings.TrimSpace(u.LastName),
		Birthday:  strings.TrimSpace(u.Birthday),
		Gender:    strings.TrimSpace(u.Gender),
	}
}
