package main

import (
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/jrsteele09/go-auth-client/server"
	"github.com/jrsteele09/go-auth-client/users"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

type cliFixture struct {
	api       *server.Server
	baseURL   string
	tokenFile string
}

func setupCLIFixture(t *testing.T) *cliFixture {
	api := server.New(server.Options{Env: "TEST", Logger: zerolog.Nop()})
	httpSrv := httptest.NewServer(api)
	t.Cleanup(httpSrv.Close)

	_, err := api.CreateUser(users.Registration{
		Username:        "bob",
		Email:           "bob@example.com",
		Password:        "validpass1",
		ConfirmPassword: "validpass1",
		FirstName:       "Bob",
		LastName:        "Jones",
		UserType:        users.UserTypeCustomer,
	}, true)
	require.NoError(t, err)

	tokenFile := filepath.Join(t.TempDir(), "session.json")
	t.Setenv("TOKEN_STORE", "file")
	t.Setenv("TOKEN_FILE", tokenFile)
	t.Setenv("TOKEN_PASSPHRASE", "")
	t.Setenv("LOG_LEVEL", "disabled")

	return &cliFixture{api: api, baseURL: httpSrv.URL + api.PathPrefix(), tokenFile: tokenFile}
}

func (f *cliFixture) run(args ...string) int {
	return run(append([]string{"-q", "-no-color", "-api", f.baseURL}, args...))
}

func TestRun_SessionLifecycle(t *testing.T) {
	f := setupCLIFixture(t)

	require.Equal(t, 1, f.run("status"))
	require.Equal(t, 1, f.run("login", "-username", "bob", "-password", "wrongpass1"))
	_, err := os.Stat(f.tokenFile)
	require.ErrorIs(t, err, os.ErrNotExist)

	require.Equal(t, 0, f.run("login", "-username", "bob", "-password", "validpass1"))
	require.FileExists(t, f.tokenFile)
	require.Equal(t, 0, f.run("status"))
	require.Equal(t, 0, f.run("profile"))
	require.Equal(t, 0, f.run("update-profile", "-first-name", "Robert"))

	updated, ok := f.api.User("bob")
	require.True(t, ok)
	require.Equal(t, "Robert", updated.FirstName)
	require.Equal(t, "Jones", updated.LastName)

	require.Equal(t, 0, f.run("logout"))
	require.Equal(t, 1, f.run("status"))
}

func TestRun_Register(t *testing.T) {
	f := setupCLIFixture(t)

	require.Equal(t, 0, f.run("register",
		"-username", "carol", "-email", "carol@example.com",
		"-password", "validpass1", "-confirm-password", "validpass1",
		"-first-name", "Carol", "-last-name", "White"))

	stored, ok := f.api.User("carol")
	require.True(t, ok)
	require.Equal(t, users.UserTypeCustomer, stored.UserType)
	require.False(t, stored.IsApproved)

	require.Equal(t, 1, f.run("register", "-username", "carol"))
}

func TestRun_Usage(t *testing.T) {
	f := setupCLIFixture(t)

	tests := []struct {
		name string
		args []string
		want int
	}{
		{"no command", nil, 2},
		{"unknown command", []string{"frobnicate"}, 2},
		{"unknown global flag", []string{"-nope", "status"}, 2},
		{"bad command flag", []string{"login", "-nope"}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, f.run(tt.args...))
		})
	}
}
