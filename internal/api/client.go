// Package api provides the authenticated HTTP client for the CarValueAI
// backend. Every authenticated call in the application goes through this
// client; no other component talks to the backend directly.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/carvalueai/client-go/internal/session"
	"github.com/carvalueai/client-go/pkg/logging"
)

var (
	// ErrNoSession indicates no token was present; the call was never issued.
	ErrNoSession = errors.New("api: no session")
	// ErrSessionExpired indicates the backend rejected the token. The session
	// has already been cleared when this is returned.
	ErrSessionExpired = errors.New("api: session expired")
)

// Error is a backend-reported failure: the HTTP exchange succeeded but the
// response body carried a non-success status discriminator.
type Error struct {
	Message string
}

func (e *Error) Error() string { return e.Message }

// envelope is the uniform response contract: a status discriminator plus an
// error string on failure. Endpoint payloads are decoded separately.
type envelope struct {
	Status string `json:"status"`
	Error  string `json:"error"`
}

// UserInfo is the payload of GET /auth/me.
type UserInfo struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Client wraps outbound HTTP calls with the bearer token, uniformly detects
// authentication failure, and fires the auth-expired hook on expiry.
type Client struct {
	baseURL       string
	httpClient    *http.Client
	sessions      session.Store
	logger        *logging.Logger
	onAuthExpired func()
}

// Option is a functional option for configuring the Client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.httpClient = client
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *logging.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithAuthExpiredHook registers a callback fired whenever a call is refused
// for lack of a token or the backend answers 401. The hook is where the UI
// sends the user back to the login screen.
func WithAuthExpiredHook(fn func()) Option {
	return func(c *Client) {
		c.onAuthExpired = fn
	}
}

// NewClient creates an authenticated client for the backend at baseURL.
func NewClient(baseURL string, sessions session.Store, opts ...Option) *Client {
	c := &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		sessions: sessions,
		logger:   logging.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) authExpired() {
	if c.onAuthExpired != nil {
		c.onAuthExpired()
	}
}

// Do issues an authenticated request. It fails closed: with no stored token
// the call is never issued and ErrNoSession is returned. A 401 from the
// backend clears the session and returns ErrSessionExpired, unifying
// "expired" and "invalid" token handling. Transport failures are returned
// wrapped, never swallowed.
//
// Authorization and Content-Type are set first and caller headers are applied
// after, so a caller can override them. That mirrors the historical behavior
// of this client and callers rely on it for the logout path.
func (c *Client) Do(ctx context.Context, method, path string, body io.Reader, headers map[string]string) (*http.Response, error) {
	sess, err := c.sessions.Get(ctx)
	if err != nil || sess.Token == "" {
		c.logger.Error("no authentication token found", "path", path)
		c.authExpired()
		return nil, ErrNoSession
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("api: create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+sess.Token)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("api: request failed: %w", err)
	}

	if resp.StatusCode == http.StatusUnauthorized {
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
		c.logger.Warn("session rejected by backend, clearing", "path", path)
		if err := c.sessions.Clear(ctx); err != nil {
			c.logger.Error("failed to clear session", "error", err)
		}
		c.authExpired()
		return nil, ErrSessionExpired
	}

	return resp, nil
}

// PostJSON issues an authenticated JSON POST and decodes the uniform
// envelope. Logical success is decided by the body-level status
// discriminator, not the HTTP status: a non-"success" body with HTTP 200 is a
// failure and its error string is surfaced as *Error. On success the full
// body is decoded into out when out is non-nil.
func (c *Client) PostJSON(ctx context.Context, path string, payload any, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("api: marshal request: %w", err)
	}

	resp, err := c.Do(ctx, http.MethodPost, path, bytes.NewReader(body), nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	return c.decode(resp, path, out)
}

// GetJSON issues an authenticated GET and decodes the uniform envelope.
func (c *Client) GetJSON(ctx context.Context, path string, out any) error {
	resp, err := c.Do(ctx, http.MethodGet, path, nil, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	return c.decode(resp, path, out)
}

func (c *Client) decode(resp *http.Response, path string, out any) error {
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("api: read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return fmt.Errorf("api: %s returned HTTP %d: %s", path, resp.StatusCode, string(raw))
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return fmt.Errorf("api: decode response: %w", err)
	}
	if env.Status != "success" {
		msg := env.Error
		if msg == "" {
			msg = "request failed"
		}
		return &Error{Message: msg}
	}

	if out != nil {
		if err := json.Unmarshal(raw, out); err != nil {
			return fmt.Errorf("api: decode payload: %w", err)
		}
	}
	return nil
}

// Me fetches the authenticated user's profile.
func (c *Client) Me(ctx context.Context) (*UserInfo, error) {
	var info UserInfo
	if err := c.GetJSON(ctx, "/auth/me", &info); err != nil {
		return nil, err
	}
	return &info, nil
}

// Logout tells the backend to invalidate the token, then clears the local
// session regardless of whether that call succeeded.
func (c *Client) Logout(ctx context.Context) error {
	resp, err := c.Do(ctx, http.MethodPost, "/auth/logout", nil, nil)
	if err != nil {
		if !errors.Is(err, ErrNoSession) && !errors.Is(err, ErrSessionExpired) {
			c.logger.Warn("logout request failed", "error", err)
		}
	} else {
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
	}
	if err := c.sessions.Clear(ctx); err != nil {
		return fmt.Errorf("api: clear session: %w", err)
	}
	c.authExpired()
	return nil
}
