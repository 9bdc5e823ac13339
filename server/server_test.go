package server_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/jrsteele09/go-auth-client/apiclient"
	"github.com/jrsteele09/go-auth-client/server"
	"github.com/jrsteele09/go-auth-client/users"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type fixture struct {
	srv   *server.Server
	http  *httptest.Server
	clock *clock
}

func setupFixture(t *testing.T, rotate bool) *fixture {
	f := &fixture{clock: &clock{now: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)}}
	f.srv = server.New(server.Options{
		Env:                 "TEST",
		SigningKey:          "test-key",
		AccessTokenTTL:      time.Minute,
		RefreshTokenTTL:     time.Hour,
		RotateRefreshTokens: rotate,
		Logger:              zerolog.Nop(),
		Clock:               f.clock.Now,
	})
	f.http = httptest.NewServer(f.srv)
	t.Cleanup(f.http.Close)
	return f
}

func (f *fixture) post(t *testing.T, endpoint string, body any, bearer string) (int, []byte) {
	return f.call(t, http.MethodPost, endpoint, body, bearer)
}

func (f *fixture) call(t *testing.T, method, endpoint string, body any, bearer string) (int, []byte) {
	var payload io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		payload = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, f.http.URL+f.srv.PathPrefix()+endpoint, payload)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	resp, err := f.http.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, raw
}

func customer() users.Registration {
	return users.Registration{
		Username:        "alice",
		Email:           "alice@example.com",
		Password:        "validpass1",
		ConfirmPassword: "validpass1",
		FirstName:       "Alice",
		LastName:        "Smith",
		UserType:        users.UserTypeCustomer,
	}
}

type loginBody struct {
	Access  string         `json:"access"`
	Refresh string         `json:"refresh"`
	User    *users.Profile `json:"user"`
}

func (f *fixture) login(t *testing.T) loginBody {
	status, raw := f.post(t, apiclient.EndpointLogin, map[string]string{"username": "alice", "password": "validpass1"}, "")
	require.Equal(t, http.StatusOK, status, string(raw))
	var body loginBody
	require.NoError(t, json.Unmarshal(raw, &body))
	return body
}

func TestRegister(t *testing.T) {
	f := setupFixture(t, false)

	status, raw := f.post(t, apiclient.EndpointRegister, customer(), "")
	require.Equal(t, http.StatusCreated, status, string(raw))

	var profile users.Profile
	require.NoError(t, json.Unmarshal(raw, &profile))
	require.Equal(t, "alice", profile.Username)
	require.False(t, profile.IsApproved)
	require.True(t, f.clock.Now().Equal(profile.DateJoined))

	status, raw = f.post(t, apiclient.EndpointRegister, customer(), "")
	require.Equal(t, http.StatusBadRequest, status)
	require.JSONEq(t, `{"username":["A user with that username already exists."],"email":["user with this email already exists."]}`, string(raw))
}

func TestRegister_FieldErrorsKeepOrder(t *testing.T) {
	f := setupFixture(t, false)

	reg := customer()
	reg.Username = ""
	reg.Email = "bad"
	status, raw := f.post(t, apiclient.EndpointRegister, reg, "")
	require.Equal(t, http.StatusBadRequest, status)
	require.Equal(t, `{"username":["This field is required."],"email":["Enter a valid email address."]}`+"\n", string(raw))
}

func TestRegister_PasswordMismatch(t *testing.T) {
	f := setupFixture(t, false)

	reg := customer()
	reg.ConfirmPassword = "different1"
	status, raw := f.post(t, apiclient.EndpointRegister, reg, "")
	require.Equal(t, http.StatusBadRequest, status)
	require.JSONEq(t, `{"confirm_password":["Passwords do not match."]}`, string(raw))
}

func TestLogin(t *testing.T) {
	f := setupFixture(t, false)
	_, err := f.srv.CreateUser(customer(), true)
	require.NoError(t, err)

	body := f.login(t)
	require.NotEmpty(t, body.Access)
	require.NotEmpty(t, body.Refresh)
	require.Equal(t, "alice", body.User.Username)
	require.True(t, body.User.IsApproved)

	status, raw := f.post(t, apiclient.EndpointLogin, map[string]string{"username": "alice", "password": "wrongpass1"}, "")
	require.Equal(t, http.StatusUnauthorized, status)
	require.JSONEq(t, `{"detail":"No active account found with the given credentials"}`, string(raw))

	status, raw = f.post(t, apiclient.EndpointLogin, map[string]string{"username": "alice"}, "")
	require.Equal(t, http.StatusBadRequest, status)
	require.JSONEq(t, `{"password":["This field is required."]}`, string(raw))
}

func TestProfile(t *testing.T) {
	f := setupFixture(t, false)
	_, err := f.srv.CreateUser(customer(), false)
	require.NoError(t, err)
	tokens := f.login(t)

	status, raw := f.call(t, http.MethodGet, apiclient.EndpointProfile, nil, "")
	require.Equal(t, http.StatusUnauthorized, status)
	require.JSONEq(t, `{"detail":"Authentication credentials were not provided."}`, string(raw))

	status, _ = f.call(t, http.MethodGet, apiclient.EndpointProfile, nil, tokens.Access)
	require.Equal(t, http.StatusOK, status)

	status, raw = f.call(t, http.MethodPut, apiclient.EndpointProfile, users.ProfileUpdate{FirstName: "Al", LastName: "Smith", Gender: "Other"}, tokens.Access)
	require.Equal(t, http.StatusOK, status, string(raw))
	stored, ok := f.srv.User("alice")
	require.True(t, ok)
	require.Equal(t, "Al", stored.FirstName)
	require.Equal(t, "Other", stored.Gender)

	status, raw = f.call(t, http.MethodPut, apiclient.EndpointProfile, users.ProfileUpdate{FirstName: "Al", LastName: "Smith", Gender: "Robot"}, tokens.Access)
	require.Equal(t, http.StatusBadRequest, status)
	require.JSONEq(t, `{"gender":["\"Robot\" is not a valid choice."]}`, string(raw))
}

func TestAccessTokenExpiry(t *testing.T) {
	f := setupFixture(t, false)
	_, err := f.srv.CreateUser(customer(), true)
	require.NoError(t, err)
	tokens := f.login(t)

	f.clock.Advance(2 * time.Minute)
	status, raw := f.call(t, http.MethodGet, apiclient.EndpointProfile, nil, tokens.Access)
	require.Equal(t, http.StatusUnauthorized, status)
	require.Contains(t, string(raw), "token_not_valid")

	status, raw = f.post(t, apiclient.EndpointTokenRefresh, map[string]string{"refresh": tokens.Refresh}, "")
	require.Equal(t, http.StatusOK, status, string(raw))
	var refreshed struct {
		Access  string `json:"access"`
		Refresh string `json:"refresh"`
	}
	require.NoError(t, json.Unmarshal(raw, &refreshed))
	require.Empty(t, refreshed.Refresh)

	status, _ = f.call(t, http.MethodGet, apiclient.EndpointProfile, nil, refreshed.Access)
	require.Equal(t, http.StatusOK, status)
}

func TestRefresh_Rotation(t *testing.T) {
	f := setupFixture(t, true)
	_, err := f.srv.CreateUser(customer(), true)
	require.NoError(t, err)
	tokens := f.login(t)

	status, raw := f.post(t, apiclient.EndpointTokenRefresh, map[string]string{"refresh": tokens.Refresh}, "")
	require.Equal(t, http.StatusOK, status)
	var refreshed struct {
		Refresh string `json:"refresh"`
	}
	require.NoError(t, json.Unmarshal(raw, &refreshed))
	require.NotEmpty(t, refreshed.Refresh)
	require.NotEqual(t, tokens.Refresh, refreshed.Refresh)

	status, _ = f.post(t, apiclient.EndpointTokenRefresh, map[string]string{"refresh": tokens.Refresh}, "")
	require.Equal(t, http.StatusUnauthorized, status)
}

func TestInvalidateAndRevoke(t *testing.T) {
	f := setupFixture(t, false)
	_, err := f.srv.CreateUser(customer(), true)
	require.NoError(t, err)
	tokens := f.login(t)

	status, _ := f.post(t, apiclient.EndpointTokenVerify, map[string]string{"token": tokens.Access}, "")
	require.Equal(t, http.StatusOK, status)

	f.srv.InvalidateAccessTokens()
	status, _ = f.post(t, apiclient.EndpointTokenVerify, map[string]string{"token": tokens.Access}, "")
	require.Equal(t, http.StatusUnauthorized, status)

	f.srv.RevokeRefreshTokens()
	status, raw := f.post(t, apiclient.EndpointTokenRefresh, map[string]string{"refresh": tokens.Refresh}, "")
	require.Equal(t, http.StatusUnauthorized, status)
	require.Contains(t, string(raw), "Token is invalid or expired")
}

func TestLogout(t *testing.T) {
	f := setupFixture(t, false)
	_, err := f.srv.CreateUser(customer(), true)
	require.NoError(t, err)
	tokens := f.login(t)

	status, _ := f.post(t, apiclient.EndpointLogout, map[string]string{"refresh": tokens.Refresh}, "")
	require.Equal(t, http.StatusNoContent, status)

	status, _ = f.post(t, apiclient.EndpointTokenRefresh, map[string]string{"refresh": tokens.Refresh}, "")
	require.Equal(t, http.StatusUnauthorized, status)

	status, _ = f.post(t, apiclient.EndpointLogout, map[string]string{"refresh": tokens.Refresh}, "")
	require.Equal(t, http.StatusBadRequest, status)
}

func TestInvitation(t *testing.T) {
	f := setupFixture(t, false)
	_, err := f.srv.CreateUser(customer(), true)
	require.NoError(t, err)
	tokens := f.login(t)

	status, raw := f.post(t, apiclient.EndpointSendInvitation, map[string]string{"email": "bob@example.com"}, tokens.Access)
	require.Equal(t, http.StatusOK, status)
	require.JSONEq(t, `{"detail":"Invitation sent to bob@example.com."}`, string(raw))
	require.Equal(t, []string{"bob@example.com"}, f.srv.Invitations())

	status, _ = f.post(t, apiclient.EndpointSendInvitation, map[string]string{"email": "nope"}, tokens.Access)
	require.Equal(t, http.StatusBadRequest, status)
}

func TestFailureInjectionAndCounting(t *testing.T) {
	f := setupFixture(t, false)

	f.srv.SetFailure(apiclient.EndpointLogin, http.StatusInternalServerError)
	status, raw := f.post(t, apiclient.EndpointLogin, map[string]string{"username": "a", "password": "b"}, "")
	require.Equal(t, http.StatusInternalServerError, status)
	require.JSONEq(t, `{"error":"Internal Server Error"}`, string(raw))
	require.Equal(t, 1, f.srv.Calls(apiclient.EndpointLogin))

	f.srv.ClearFailures()
	status, _ = f.post(t, apiclient.EndpointLogin, map[string]string{"username": "a", "password": "b"}, "")
	require.Equal(t, http.StatusUnauthorized, status)
	require.Equal(t, 2, f.srv.Calls(apiclient.EndpointLogin))
}

func TestUnknownRoute(t *testing.T) {
	f := setupFixture(t, false)

	status, raw := f.call(t, http.MethodGet, "/nope/", nil, "")
	require.Equal(t, http.StatusNotFound, status)
	require.JSONEq(t, `{"detail":"Not found."}`, string(raw))
}
