// Package ui is the presentation layer of the client: screens, toasts,
// verification notices and field feedback. A Controller drives a Shell in
// response to user actions; the Shell decides how to render.
package ui

import (
	"fmt"

	"github.com/jrsteele09/go-auth-client/users"
)

type Screen string

const (
	ScreenHome         Screen = "home"
	ScreenLogin        Screen = "login"
	ScreenRegister     Screen = "register"
	ScreenDashboard    Screen = "dashboard"
	ScreenProfile      Screen = "profile"
	ScreenVerification Screen = "verification"
)

// Title is the heading shown above a screen
func (s Screen) Title() string {
	switch s {
	case ScreenHome:
		return "Home"
	case ScreenLogin:
		return "Login"
	case ScreenRegister:
		return "Register"
	case ScreenDashboard:
		return "Dashboard"
	case ScreenProfile:
		return "Profile"
	case ScreenVerification:
		return "Verification"
	default:
		return string(s)
	}
}

type ToastKind string

const (
	ToastSuccess ToastKind = "success"
	ToastError   ToastKind = "error"
	ToastWarning ToastKind = "warning"
	ToastInfo    ToastKind = "info"
)

type Toast struct {
	Kind    ToastKind
	Title   string
	Message string
}

func (t Toast) String() string {
	return fmt.Sprintf("%s: %s", t.Title, t.Message)
}

// NoticeIcon identifies the glyph shown with a verification notice
type NoticeIcon string

const (
	IconEnvelope NoticeIcon = "envelope"
	IconClock    NoticeIcon = "clock"
)

// Notice is the content of the verification screen
type Notice struct {
	Icon    NoticeIcon
	Title   string
	Message string
}

// EmailVerificationNotice is shown after a successful registration
func EmailVerificationNotice(email string) Notice {
	return Notice{
		Icon:    IconEnvelope,
		Title:   "Email Verification Required",
		Message: fmt.Sprintf("We've sent a verification email to %s. Please check your inbox and click the verification link to activate your account.", email),
	}
}

// ApprovalPendingNotice is shown when an unapproved user signs in
func ApprovalPendingNotice() Notice {
	return Notice{
		Icon:    IconClock,
		Title:   "Approval Pending",
		Message: "Your account is pending approval from your customer administrator. You will receive an email once your account is approved.",
	}
}

// Shell renders what the Controller asks for. Implementations must be safe
// to call from the goroutine running the Controller.
type Shell interface {
	ShowScreen(Screen)
	ShowLoading()
	HideLoading()
	ShowToast(Toast)
	ShowVerification(Notice)
	// SetLoggedIn toggles the navigation between Login/Register and Logout
	SetLoggedIn(bool)
	// ShowUser fills the dashboard and profile views with p
	ShowUser(p *users.Profile)
}
