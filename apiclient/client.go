// Package apiclient sends JSON requests to the account API, attaching the
// stored bearer token and refreshing it once when the server answers 401.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/jrsteele09/go-auth-client/apimodel"
	autherrors "github.com/jrsteele09/go-auth-client/internal/errors"
	"github.com/jrsteele09/go-auth-client/token"
	"github.com/rs/zerolog"
	"golang.org/x/oauth2"
)

const RequestIDHeader = "X-Request-ID"

// Client is safe for concurrent use. Concurrent calls that each hit a 401
// refresh independently; refreshes are not coalesced.
type Client struct {
	baseURL    string
	httpClient *http.Client
	tokens     *token.Manager
	logger     zerolog.Logger
	requestID  func() string
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

func WithLogger(logger zerolog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// New creates a client for the API rooted at baseURL, e.g.
// "http://localhost:8000/api".
func New(baseURL string, tokens *token.Manager, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: http.DefaultClient,
		tokens:     tokens,
		logger:     zerolog.Nop(),
		requestID:  func() string { return uuid.New().String() },
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Tokens returns the token manager the client reads credentials from
func (c *Client) Tokens() *token.Manager {
	return c.tokens
}

type callOptions struct {
	public bool
}

type CallOption func(*callOptions)

// Public sends the request without a bearer token and skips the refresh
// path. Used for login, registration and the token endpoints.
func Public() CallOption {
	return func(o *callOptions) {
		o.public = true
	}
}

type response struct {
	status int
	body   []byte
}

func (r response) ok() bool {
	return r.status >= 200 && r.status < 300
}

// Send issues method against endpoint with body encoded as JSON (nil for
// no body) and decodes a successful response into out (nil to discard).
//
// A 401 on an authenticated call, with a refresh token stored, triggers one
// refresh. If it succeeds the request is retried once with the new access
// token; if it fails the stored credentials are cleared and the returned
// RequestError wraps ErrSessionExpired. Every failure is a *RequestError.
func (c *Client) Send(ctx context.Context, endpoint, method string, body, out any, opts ...CallOption) error {
	var call callOptions
	for _, opt := range opts {
		opt(&call)
	}

	payload, err := encodeBody(body)
	if err != nil {
		return newLocalError(err)
	}

	var access string
	if !call.public {
		if access, err = c.tokens.AccessToken(ctx); err != nil {
			return newLocalError(err)
		}
	}

	resp, err := c.do(ctx, method, endpoint, payload, access)
	if err != nil {
		return newNetworkError(err)
	}

	if resp.status == http.StatusUnauthorized && !call.public {
		refresh, err := c.tokens.RefreshToken(ctx)
		if err != nil {
			return newLocalError(err)
		}
		if refresh != "" {
			access, err = c.refresh(ctx, refresh)
			if err != nil {
				c.logger.Warn().Err(err).Str("path", endpoint).Msg("token refresh failed, clearing session")
				if clearErr := c.tokens.Clear(ctx); clearErr != nil {
					c.logger.Error().Err(clearErr).Msg("failed to clear session")
				}
				return newSessionExpiredError(err)
			}
			if resp, err = c.do(ctx, method, endpoint, payload, access); err != nil {
				return newNetworkError(err)
			}
		}
	}

	if !resp.ok() {
		c.logger.Error().
			Int("status", resp.status).
			Str("method", method).
			Str("url", c.baseURL+endpoint).
			Str("body", string(resp.body)).
			Msg("api error response")
		return newResponseError(resp.status, resp.body)
	}

	if out == nil || len(bytes.TrimSpace(resp.body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(resp.body, out); err != nil {
		return &RequestError{
			Message:    "Invalid response from server",
			StatusCode: resp.status,
			Raw:        resp.body,
			Err:        fmt.Errorf("decode response: %w", err),
		}
	}
	return nil
}

// RefreshAccessToken exchanges the stored refresh token for a new access
// token and stores it. On failure every stored credential is cleared.
func (c *Client) RefreshAccessToken(ctx context.Context) (string, error) {
	refresh, err := c.tokens.RefreshToken(ctx)
	if err != nil {
		return "", err
	}
	if refresh == "" {
		return "", autherrors.ErrNoRefreshToken
	}
	access, err := c.refresh(ctx, refresh)
	if err != nil {
		if clearErr := c.tokens.Clear(ctx); clearErr != nil {
			c.logger.Error().Err(clearErr).Msg("failed to clear session")
		}
		return "", err
	}
	return access, nil
}

// VerifyToken asks the server whether the stored access token is still
// valid. Missing tokens, rejections and network errors all report false.
func (c *Client) VerifyToken(ctx context.Context) bool {
	access, err := c.tokens.AccessToken(ctx)
	if err != nil || access == "" {
		return false
	}
	payload, err := encodeBody(apimodel.VerifyRequest{Token: access})
	if err != nil {
		return false
	}
	resp, err := c.do(ctx, http.MethodPost, EndpointTokenVerify, payload, "")
	if err != nil {
		c.logger.Debug().Err(err).Msg("token verify failed")
		return false
	}
	return resp.ok()
}

// refresh posts the refresh token and stores the returned access token,
// plus the refresh token when the server rotates it.
func (c *Client) refresh(ctx context.Context, refresh string) (string, error) {
	payload, err := encodeBody(apimodel.RefreshRequest{Refresh: refresh})
	if err != nil {
		return "", err
	}
	resp, err := c.do(ctx, http.MethodPost, EndpointTokenRefresh, payload, "")
	if err != nil {
		return "", autherrors.Wrapf(autherrors.ErrRefreshFailed, "refresh request: %v", err)
	}
	if !resp.ok() {
		return "", autherrors.Wrapf(autherrors.ErrRefreshFailed, "refresh status %d", resp.status)
	}

	var tokens apimodel.RefreshResponse
	if err := json.Unmarshal(resp.body, &tokens); err != nil {
		return "", autherrors.Wrapf(autherrors.ErrRefreshFailed, "decode refresh response: %v", err)
	}
	if tokens.Access == "" {
		return "", autherrors.Wrapf(autherrors.ErrRefreshFailed, "refresh response has no access token")
	}
	if err := c.tokens.SetTokens(ctx, tokens.Access, tokens.Refresh); err != nil {
		return "", err
	}
	return tokens.Access, nil
}

func (c *Client) do(ctx context.Context, method, endpoint string, payload []byte, access string) (response, error) {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, body)
	if err != nil {
		return response{}, fmt.Errorf("http.NewRequest: %w", err)
	}

	requestID := c.requestID()
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set(RequestIDHeader, requestID)
	if access != "" {
		(&oauth2.Token{AccessToken: access, TokenType: "Bearer"}).SetAuthHeader(req)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return response{}, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return response{}, fmt.Errorf("read response: %w", err)
	}

	c.logger.Debug().
		Str("method", method).
		Str("path", endpoint).
		Int("status", resp.StatusCode).
		Str("request_id", requestID).
		Bool("auth", access != "").
		Msg("api request")

	return response{status: resp.StatusCode, body: raw}, nil
}

func encodeBody(body any) ([]byte, error) {
	if body == nil {
		return nil, nil
	}
	b, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("json.Marshal: %w", err)
	}
	return b, nil
}
