package auth

import (
	"errors"
	"fmt"

	"github.com/jrsteele09/go-auth-client/apiclient"
	"github.com/jrsteele09/go-auth-client/users"
)

// Local validation failures. They carry the text shown to the user.
var (
	ErrMissingCredentials error = &users.ValidationError{Field: "username", Message: "Please fill in all required fields"}
	ErrInvalidEmail       error = &users.ValidationError{Field: "email", Message: "Please enter a valid email address"}
)

var ErrNoTokensInResponse = errors.New("login response did not include tokens")

// FieldError is the first server-side validation error of a rejected
// registration. The underlying *apiclient.RequestError is reachable with
// errors.As.
type FieldError struct {
	Field   string
	Message string
	Err     error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *FieldError) Unwrap() error {
	return e.Err
}

// IsValidation reports whether err was raised by local input checks,
// before anything was sent.
func IsValidation(err error) bool {
	var verr *users.ValidationError
	return errors.As(err, &verr)
}

// fieldErrorFrom converts a field-keyed 4xx body into a FieldError. Errors
// without such a body are returned unchanged.
func fieldErrorFrom(err error) error {
	reqErr, ok := apiclient.AsRequestError(err)
	if !ok || reqErr.Kind() != apiclient.KindValidation {
		return err
	}
	first, ok := reqErr.FirstFieldError()
	if !ok {
		return err
	}
	return &FieldError{Field: first.Field, Message: first.Message, Err: err}
}
