package ui

import (
	"context"
	"errors"
	"fmt"

	"github.com/jrsteele09/go-auth-client/apiclient"
	"github.com/jrsteele09/go-auth-client/auth"
	"github.com/jrsteele09/go-auth-client/users"
	"github.com/rs/zerolog"
)

const unexpectedErrorMessage = "An unexpected error occurred"

// Controller runs the account flows against an auth.Service and reports
// progress and outcomes to a Shell. Handlers show their own failure toast
// and also return the error so callers can set an exit status.
type Controller struct {
	svc    *auth.Service
	shell  Shell
	logger zerolog.Logger
}

func NewController(svc *auth.Service, shell Shell, logger zerolog.Logger) *Controller {
	return &Controller{svc: svc, shell: shell, logger: logger}
}

func (c *Controller) Service() *auth.Service {
	return c.svc
}

// CheckInitialAuthState restores a stored session. A usable session opens
// the dashboard, a stale one the login screen, and no session the home
// screen.
func (c *Controller) CheckInitialAuthState(ctx context.Context) bool {
	if !c.svc.IsLoggedIn(ctx) {
		c.shell.ShowScreen(ScreenHome)
		return false
	}
	if !c.svc.CheckAuthStatus(ctx) {
		c.shell.SetLoggedIn(false)
		c.shell.ShowScreen(ScreenLogin)
		return false
	}
	c.shell.ShowScreen(ScreenDashboard)
	c.LoadUserProfile(ctx)
	return true
}

func (c *Controller) HandleLogin(ctx context.Context, creds auth.Credentials) error {
	c.shell.ShowLoading()
	profile, err := c.svc.Login(ctx, creds)
	c.shell.HideLoading()
	if err != nil {
		c.logger.Error().Err(err).Msg("login failed")
		c.shell.ShowToast(Toast{Kind: ToastError, Title: "Login Failed", Message: errorMessage(err)})
		return err
	}

	c.shell.ShowToast(Toast{Kind: ToastSuccess, Title: "Login Successful", Message: "Welcome back!"})
	if !profile.IsApproved {
		c.shell.ShowVerification(ApprovalPendingNotice())
		return nil
	}
	c.shell.ShowScreen(ScreenDashboard)
	c.LoadUserProfile(ctx)
	return nil
}

func (c *Controller) HandleRegister(ctx context.Context, reg users.Registration) error {
	c.shell.ShowLoading()
	err := c.svc.Register(ctx, reg)
	c.shell.HideLoading()
	if err != nil {
		c.logger.Error().Err(err).Msg("registration failed")
		c.shell.ShowToast(Toast{Kind: ToastError, Title: "Registration Failed", Message: registrationMessage(err)})
		return err
	}

	c.shell.ShowToast(Toast{Kind: ToastSuccess, Title: "Registration Successful", Message: "Please check your email for verification instructions."})
	c.shell.ShowVerification(EmailVerificationNotice(reg.Email))
	return nil
}

func (c *Controller) HandleProfileUpdate(ctx context.Context, update users.ProfileUpdate) error {
	c.shell.ShowLoading()
	profile, err := c.svc.UpdateProfile(ctx, update)
	c.shell.HideLoading()
	if err != nil {
		c.logger.Error().Err(err).Msg("profile update failed")
		c.shell.ShowToast(Toast{Kind: ToastError, Title: "Update Failed", Message: "Failed to update profile. Please try again."})
		return err
	}

	c.shell.ShowUser(profile)
	c.shell.ShowToast(Toast{Kind: ToastSuccess, Title: "Profile Updated", Message: "Your profile has been updated successfully."})
	return nil
}

func (c *Controller) HandleInvite(ctx context.Context, email string) error {
	c.shell.ShowLoading()
	err := c.svc.SendInvitation(ctx, email)
	c.shell.HideLoading()
	if err != nil {
		c.logger.Error().Err(err).Msg("invitation failed")
		c.shell.ShowToast(Toast{Kind: ToastError, Title: "Invitation Failed", Message: errorMessage(err)})
		return err
	}
	c.shell.ShowToast(Toast{Kind: ToastSuccess, Title: "Invitation Sent", Message: fmt.Sprintf("An invitation was sent to %s.", email)})
	return nil
}

// HandleLogout always ends on the home screen with the navigation reset,
// whatever happened to the server call.
func (c *Controller) HandleLogout(ctx context.Context) error {
	err := c.svc.Logout(ctx)
	if err != nil {
		c.logger.Error().Err(err).Msg("logout failed")
	} else {
		c.shell.ShowToast(Toast{Kind: ToastSuccess, Title: "Logged Out", Message: "You have been successfully logged out."})
	}
	c.shell.ShowScreen(ScreenHome)
	c.shell.SetLoggedIn(false)
	return err
}

// LoadUserProfile fetches the profile and shows it. Failures are logged,
// the cached profile is shown instead when there is one.
func (c *Controller) LoadUserProfile(ctx context.Context) {
	profile, err := c.svc.Profile(ctx)
	if err != nil {
		c.logger.Error().Err(err).Msg("failed to load profile")
		if errors.Is(err, apiclient.ErrSessionExpired) {
			c.shell.SetLoggedIn(false)
			c.shell.ShowToast(Toast{Kind: ToastWarning, Title: "Session Expired", Message: errorMessage(err)})
			c.shell.ShowScreen(ScreenLogin)
			return
		}
		if profile, err = c.svc.CurrentUser(ctx); err != nil || profile == nil {
			return
		}
	}
	c.shell.ShowUser(profile)
	c.shell.SetLoggedIn(true)
}

// errorMessage picks the text shown for a failed action: the server's
// detail, then the error's own message for request and validation errors.
func errorMessage(err error) string {
	if reqErr, ok := apiclient.AsRequestError(err); ok {
		if detail := reqErr.Detail(); detail != "" {
			return detail
		}
		return reqErr.Message
	}
	if auth.IsValidation(err) {
		return err.Error()
	}
	return unexpectedErrorMessage
}

// registrationMessage reports the first failing field as "field: message"
func registrationMessage(err error) string {
	var fieldErr *auth.FieldError
	if errors.As(err, &fieldErr) {
		return fieldErr.Error()
	}
	return errorMessage(err)
}
