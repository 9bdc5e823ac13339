package errors

import (
	"errors"
	"fmt"
)

// Common error types shared by the client packages
var (
	// Session errors
	ErrSessionExpired = errors.New("session expired")
	ErrNoRefreshToken = errors.New("no refresh token available")
	ErrRefreshFailed  = errors.New("token refresh failed")

	// Input errors
	ErrValidation = errors.New("validation failed")

	// Storage errors
	ErrStoreUnavailable = errors.New("token store unavailable")
	ErrStoreCorrupt     = errors.New("token store corrupt")

	// General errors
	ErrNotFound     = errors.New("not found")
	ErrUnauthorized = errors.New("unauthorized")
)

// Wrapf wraps an error with context using fmt.Errorf
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}

// Is reports whether any error in err's chain matches target
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// Join returns an error wrapping all non-nil errs
func Join(errs ...error) error {
	return errors.Join(errs...)
}
