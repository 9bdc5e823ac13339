package ui

import (
	"strings"

	"github.com/jrsteele09/go-auth-client/users"
)

type FeedbackState int

const (
	FeedbackNeutral FeedbackState = iota // empty field, no styling
	FeedbackValid
	FeedbackInvalid
)

// Feedback is the live validation state of one form field
type Feedback struct {
	State   FeedbackState
	Message string // set when State is FeedbackInvalid
}

func feedback(value string, valid bool, message string) Feedback {
	if strings.TrimSpace(value) == "" {
		return Feedback{State: FeedbackNeutral}
	}
	if valid {
		return Feedback{State: FeedbackValid}
	}
	return Feedback{State: FeedbackInvalid, Message: message}
}

func EmailFeedback(email string) Feedback {
	return feedback(email, users.ValidEmail(email), "Please enter a valid email address")
}

// PasswordFeedback lists every failing rule, e.g. "At least 8 characters.
// Must contain numbers."
func PasswordFeedback(password string) Feedback {
	check := users.CheckPassword(password)
	return feedback(password, check.Valid(), strings.Join(check.Problems(), " "))
}

func ConfirmPasswordFeedback(password, confirm string) Feedback {
	return feedback(confirm, confirm == password, "Passwords do not match")
}

func UsernameFeedback(username string) Feedback {
	return feedback(username, users.ValidUsername(username), "3-30 characters, letters, numbers, and underscores only")
}
