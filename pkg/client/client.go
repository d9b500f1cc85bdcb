// Package client is a Go client for the PairPay REST API.
//
// A Client holds at most one Session. Every call carries the session's
// access token; when the server answers 401 the client refreshes the token
// once and replays the request. Concurrent 401s share a single refresh call.
// A failed refresh ends the session.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

var (
	// ErrNoSession is returned by calls that need a signed-in user.
	ErrNoSession = errors.New("client: not signed in")
	// ErrSessionExpired is returned when the refresh token was rejected.
	ErrSessionExpired = errors.New("client: session expired")
)

// APIError is an error response from the server.
type APIError struct {
	Status  int
	Code    string `json:"code"`
	Reason  string `json:"reason"`
	Message string `json:"message"`
}

func (e *APIError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("%d %s (%s): %s", e.Status, e.Code, e.Reason, e.Message)
	}
	return fmt.Sprintf("%d %s: %s", e.Status, e.Code, e.Message)
}

// Session is a signed-in user with their tokens.
type Session struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	User         User   `json:"user"`
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets the HTTP client used for requests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// WithSession starts the client with an existing session.
func WithSession(s *Session) Option {
	return func(c *Client) { c.session = s }
}

// Client talks to one PairPay server.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *slog.Logger

	mu      sync.RWMutex
	session *Session

	refreshes singleflight.Group
}

// New creates a client for the server at baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 30 * time.Second},
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Session returns a copy of the current session, or nil when signed out.
func (c *Client) Session() *Session {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.session == nil {
		return nil
	}
	s := *c.session
	return &s
}

func (c *Client) setSession(s *Session) {
	c.mu.Lock()
	c.session = s
	c.mu.Unlock()
}

func (c *Client) tokens() (access, refresh string, ok bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.session == nil {
		return "", "", false
	}
	return c.session.AccessToken, c.session.RefreshToken, true
}

// Login signs in and starts a new session.
func (c *Client) Login(ctx context.Context, mail, password string) (*Session, error) {
	var s Session
	body := map[string]string{"mail": mail, "password": password}
	if err := c.send(ctx, http.MethodPost, "/api/login", "", body, &s); err != nil {
		return nil, err
	}
	c.setSession(&s)
	return c.Session(), nil
}

// Register creates an account and starts a session for it.
func (c *Client) Register(ctx context.Context, name, surname, mail, password string) (*Session, error) {
	var s Session
	body := map[string]string{"name": name, "surname": surname, "mail": mail, "password": password}
	if err := c.send(ctx, http.MethodPost, "/api/register", "", body, &s); err != nil {
		return nil, err
	}
	c.setSession(&s)
	return c.Session(), nil
}

// Logout revokes the session's refresh tokens and ends the session.
// The session ends even when the server call fails.
func (c *Client) Logout(ctx context.Context) error {
	err := c.do(ctx, http.MethodDelete, "/api/logout", nil, nil)
	c.setSession(nil)
	return err
}

// refresh exchanges the refresh token for a new access token. Callers
// holding the same refresh token share one request.
func (c *Client) refresh(ctx context.Context, refreshToken string) (string, error) {
	v, err, shared := c.refreshes.Do(refreshToken, func() (any, error) {
		var resp struct {
			AccessToken string `json:"access_token"`
		}
		if err := c.send(ctx, http.MethodPost, "/api/refresh", refreshToken, nil, &resp); err != nil {
			return "", err
		}

		c.mu.Lock()
		if c.session != nil && c.session.RefreshToken == refreshToken {
			c.session.AccessToken = resp.AccessToken
		}
		c.mu.Unlock()
		return resp.AccessToken, nil
	})
	if err != nil {
		return "", err
	}
	c.logger.Debug("Access token refreshed", "shared", shared)
	return v.(string), nil
}

// do performs an authenticated call, refreshing the access token once on 401.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	access, refresh, ok := c.tokens()
	if !ok {
		return ErrNoSession
	}

	err := c.send(ctx, method, path, access, body, out)
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.Status != http.StatusUnauthorized {
		return err
	}

	// Another call may have refreshed while this one was in flight.
	if current, _, ok := c.tokens(); ok && current != access {
		return c.send(ctx, method, path, current, body, out)
	}

	access, err = c.refresh(ctx, refresh)
	if err != nil {
		if errors.As(err, &apiErr) && apiErr.Status == http.StatusUnauthorized {
			c.logger.Warn("Refresh rejected, ending session", "path", path)
			c.setSession(nil)
			return ErrSessionExpired
		}
		return err
	}
	return c.send(ctx, method, path, access, body, out)
}

// send performs one HTTP round trip.
func (c *Client) send(ctx context.Context, method, path, token string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		apiErr := &APIError{Status: resp.StatusCode}
		if err := json.NewDecoder(resp.Body).Decode(apiErr); err != nil {
			apiErr.Message = http.StatusText(resp.StatusCode)
		}
		return apiErr
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode %s %s response: %w", method, path, err)
	}
	return nil
}
