package users

import "strings"

// Registration is the body sent to the register endpoint. Optional fields
// left empty are omitted from the JSON.
type Registration struct {
	Username         string   `json:"username"`
	Email            string   `json:"email"`
	Password         string   `json:"password"`
	ConfirmPassword  string   `json:"confirm_password"`
	FirstName        string   `json:"first_name"`
	LastName         string   `json:"last_name"`
	UserType         UserType `json:"user_type"`
	ParentCustomerID string   `json:"parent_customer_id,omitempty"`
	Birthday         string   `json:"birthday,omitempty"`
	Gender           string   `json:"gender,omitempty"`
}

// Normalize trims the optional fields and drops parent_customer_id for
// CUSTOMER accounts, which never belong to a parent.
func (r Registration) Normalize() Registration {
	r.ParentCustomerID = strings.TrimSpace(r.ParentCustomerID)
	r.Birthday = strings.TrimSpace(r.Birthday)
	r.Gender = strings.TrimSpace(r.Gender)
	if r.UserType == UserTypeCustomer {
		r.ParentCustomerID = ""
	}
	return r
}

// Validate runs the local registration checks in the order the form
// presents them and returns the first failure as a *ValidationError.
func (r Registration) Validate() error {
	required := []struct {
		field string
		value string
	}{
		{"username", r.Username},
		{"email", r.Email},
		{"password", r.Password},
		{"confirm_password", r.ConfirmPassword},
		{"first_name", r.FirstName},
		{"last_name", r.LastName},
		{"user_type", string(r.UserType)},
	}
	for _, f := range required {
		if !Required(f.value) {
			return &ValidationError{Field: f.field, Message: requiredMessage(f.field)}
		}
	}

	if !r.UserType.Valid() {
		return &ValidationError{Field: "user_type", Message: "Please select a valid account type"}
	}
	if !ValidEmail(r.Email) {
		return &ValidationError{Field: "email", Message: "Please enter a valid email address"}
	}
	if !ValidUsername(r.Username) {
		return &ValidationError{Field: "username", Message: "Username must be 3-30 characters, letters, numbers, and underscores only"}
	}
	if !CheckPassword(r.Password).Valid() {
		return &ValidationError{Field: "password", Message: "Password must be at least 8 characters with letters and numbers"}
	}
	if r.Password != r.ConfirmPassword {
		return &ValidationError{Field: "confirm_password", Message: "Passwords do not match"}
	}
	if r.UserType == UserTypeCustomerUser && !Required(r.ParentCustomerID) {
		return &ValidationError{Field: "parent_customer_id", Message: "Customer ID is required for Customer User accounts"}
	}
	return nil
}
