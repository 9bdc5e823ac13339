package users

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

var (
	emailPattern    = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_]{3,30}$`)
	letterPattern   = regexp.MustCompile(`[a-zA-Z]`)
	digitPattern    = regexp.MustCompile(`[0-9]`)
)

const minPasswordLength = 8

// ValidationError reports the first input field that failed a local check
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func ValidEmail(email string) bool {
	return emailPattern.MatchString(email)
}

// ValidUsername accepts 3-30 ASCII letters, digits and underscores
func ValidUsername(username string) bool {
	return usernamePattern.MatchString(username)
}

// Required reports whether value has non-whitespace content
func Required(value string) bool {
	return strings.TrimSpace(value) != ""
}

// PasswordCheck holds the outcome of each password rule
type PasswordCheck struct {
	MinLength bool
	HasLetter bool
	HasNumber bool
}

func (c PasswordCheck) Valid() bool {
	return c.MinLength && c.HasLetter && c.HasNumber
}

// Problems lists the failing rules in display order
func (c PasswordCheck) Problems() []string {
	var problems []string
	if !c.MinLength {
		problems = append(problems, "At least 8 characters.")
	}
	if !c.HasLetter {
		problems = append(problems, "Must contain letters.")
	}
	if !c.HasNumber {
		problems = append(problems, "Must contain numbers.")
	}
	return problems
}

// CheckPassword requires at least 8 characters with an ASCII letter and a digit
func CheckPassword(password string) PasswordCheck {
	return PasswordCheck{
		MinLength: utf8.RuneCountInString(password) >= minPasswordLength,
		HasLetter: letterPattern.MatchString(password),
		HasNumber: digitPattern.MatchString(password),
	}
}

// requiredMessage turns a wire field name into "first name is required".
// Only the first underscore is replaced.
func requiredMessage(field string) string {
	return strings.Replace(field, "_", " ", 1) + " is required"
}
