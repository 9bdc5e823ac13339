package main

import (
	"context"
	"flag"
	"fmt"
	"time"

	"github.com/jrsteele09/go-auth-client/auth"
	"github.com/jrsteele09/go-auth-client/ui"
	"github.com/jrsteele09/go-auth-client/users"
)

type command struct {
	summary string
	run     func(ctx context.Context, ctrl *ui.Controller, args []string) error
}

var commandOrder = []string{"login", "register", "logout", "profile", "update-profile", "invite", "status"}

var commands = map[string]command{
	"login":          {"sign in and store the session", loginCmd},
	"register":       {"create an account", registerCmd},
	"logout":         {"end the session", logoutCmd},
	"profile":        {"show the signed-in user", profileCmd},
	"update-profile": {"change name, birthday or gender", updateProfileCmd},
	"invite":         {"invite a user to your customer account", inviteCmd},
	"status":         {"check whether the stored session is still valid", statusCmd},
}

func loginCmd(ctx context.Context, ctrl *ui.Controller, args []string) error {
	fs := flag.NewFlagSet("login", flag.ContinueOnError)
	username := fs.String("username", "", "username")
	password := fs.String("password", "", "password")
	if err := fs.Parse(args); err != nil {
		return err
	}
	return ctrl.HandleLogin(ctx, auth.Credentials{Username: *username, Password: *password})
}

func registerCmd(ctx context.Context, ctrl *ui.Controller, args []string) error {
	var reg users.Registration
	var userType string
	fs := flag.NewFlagSet("register", flag.ContinueOnError)
	fs.StringVar(&reg.Username, "username", "", "3-30 letters, numbers or underscores")
	fs.StringVar(&reg.Email, "email", "", "email address")
	fs.StringVar(&reg.Password, "password", "", "at least 8 characters with letters and numbers")
	fs.StringVar(&reg.ConfirmPassword, "confirm-password", "", "repeat the password")
	fs.StringVar(&reg.FirstName, "first-name", "", "first name")
	fs.StringVar(&reg.LastName, "last-name", "", "last name")
	fs.StringVar(&userType, "type", string(users.UserTypeCustomer), "CUSTOMER or CUSTOMER_USER")
	fs.StringVar(&reg.ParentCustomerID, "customer-id", "", "parent customer id, required for CUSTOMER_USER")
	fs.StringVar(&reg.Birthday, "birthday", "", "YYYY-MM-DD")
	fs.StringVar(&reg.Gender, "gender", "", "Male, Female or Other")
	if err := fs.Parse(args); err != nil {
		return err
	}
	reg.UserType = users.UserType(userType)
	return ctrl.HandleRegister(ctx, reg)
}

func logoutCmd(ctx context.Context, ctrl *ui.Controller, _ []string) error {
	return ctrl.HandleLogout(ctx)
}

func profileCmd(ctx context.Context, ctrl *ui.Controller, _ []string) error {
	if !ctrl.CheckInitialAuthState(ctx) {
		return fmt.Errorf("not logged in")
	}
	return nil
}

func updateProfileCmd(ctx context.Context, ctrl *ui.Controller, args []string) error {
	current, err := ctrl.Service().CurrentUser(ctx)
	if err != nil {
		return err
	}
	var update users.ProfileUpdate
	if current != nil {
		update = users.ProfileUpdate{FirstName: current.FirstName, LastName: current.LastName, Birthday: current.Birthday, Gender: current.Gender}
	}

	fs := flag.NewFlagSet("update-profile", flag.ContinueOnError)
	fs.StringVar(&update.FirstName, "first-name", update.FirstName, "first name")
	fs.StringVar(&update.LastName, "last-name", update.LastName, "last name")
	fs.StringVar(&update.Birthday, "birthday", update.Birthday, "YYYY-MM-DD")
	fs.StringVar(&update.Gender, "gender", update.Gender, "Male, Female or Other")
	if err := fs.Parse(args); err != nil {
		return err
	}
	return ctrl.HandleProfileUpdate(ctx, update)
}

func inviteCmd(ctx context.Context, ctrl *ui.Controller, args []string) error {
	fs := flag.NewFlagSet("invite", flag.ContinueOnError)
	email := fs.String("email", "", "address to invite")
	if err := fs.Parse(args); err != nil {
		return err
	}
	return ctrl.HandleInvite(ctx, *email)
}

func statusCmd(ctx context.Context, ctrl *ui.Controller, _ []string) error {
	svc := ctrl.Service()
	if !svc.CheckAuthStatus(ctx) {
		fmt.Println("Not logged in")
		return fmt.Errorf("not logged in")
	}
	fmt.Printf("Logged in as %s\n", svc.Users().DisplayName(ctx))
	if tok, err := svc.Tokens().Token(); err == nil && !tok.Expiry.IsZero() {
		fmt.Printf("Access token expires %s\n", tok.Expiry.Local().Format(time.RFC1123))
	}
	return nil
}
