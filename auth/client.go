package auth

import (
	"context"
	"log/slog"
	"net/http"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/Selfdb-io/selfdb-go/internal/httpapi"
)

// Client implements the SelfDB auth API. It owns the current session
// and hands the access token to the shared REST transport, so every
// request made after Login carries the bearer header.
type Client struct {
	api    *httpapi.Client
	apiKey string
	logger *slog.Logger

	mu      sync.RWMutex
	session *Session

	// Collapses concurrent Refresh calls into a single round trip.
	refreshGroup singleflight.Group
}

// NewClient creates an auth client bound to the given transport.
func NewClient(api *httpapi.Client, apiKey string, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	c := &Client{
		api:    api,
		apiKey: apiKey,
		logger: logger,
	}
	api.SetTokenFunc(c.AccessToken)
	return c
}

// Register creates a new user account. It does not log the user in.
func (c *Client) Register(ctx context.Context, email, password string) (*User, error) {
	body := map[string]string{
		"email":    email,
		"password": password,
	}
	var user User
	if err := c.api.DoJSON(ctx, http.MethodPost, "/api/v1/auth/register", nil, body, &user); err != nil {
		return nil, err
	}
	c.logger.Debug("registered user", "email", email)
	return &user, nil
}

// Login authenticates with email and password and stores the returned
// session for subsequent requests.
func (c *Client) Login(ctx context.Context, email, password string) (*Session, error) {
	body := map[string]string{
		"email":    email,
		"password": password,
	}
	var session Session
	if err := c.api.DoJSON(ctx, http.MethodPost, "/api/v1/auth/login", nil, body, &session); err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.session = &session
	c.mu.Unlock()

	c.logger.Debug("logged in", "email", email)
	return &session, nil
}

// Refresh exchanges the refresh token for a new session. Concurrent
// callers share one round trip; all of them observe the same result.
func (c *Client) Refresh(ctx context.Context) (*Session, error) {
	result, err, _ := c.refreshGroup.Do("refresh", func() (any, error) {
		c.mu.RLock()
		session := c.session
		c.mu.RUnlock()
		if session == nil {
			return nil, ErrNoSession
		}

		body := map[string]string{
			"refresh_token": session.RefreshToken,
		}
		var refreshed Session
		if err := c.api.DoJSON(ctx, http.MethodPost, "/api/v1/auth/refresh", nil, body, &refreshed); err != nil {
			return nil, err
		}
		if refreshed.RefreshToken == "" {
			// Some backends rotate only the access token.
			refreshed.RefreshToken = session.RefreshToken
		}

		c.mu.Lock()
		c.session = &refreshed
		c.mu.Unlock()

		c.logger.Debug("refreshed session")
		return &refreshed, nil
	})
	if err != nil {
		return nil, err
	}
	return result.(*Session), nil
}

// Logout invalidates the refresh token on the server and clears the
// local session. The local session is cleared even when the server
// call fails, so the client never keeps tokens it tried to discard.
func (c *Client) Logout(ctx context.Context) error {
	c.mu.Lock()
	session := c.session
	c.session = nil
	c.mu.Unlock()

	if session == nil {
		return nil
	}

	body := map[string]string{
		"refresh_token": session.RefreshToken,
	}
	if err := c.api.DoJSON(ctx, http.MethodPost, "/api/v1/auth/logout", nil, body, nil); err != nil {
		c.logger.Warn("server-side logout failed", "error", err)
		return err
	}
	return nil
}

// CurrentUser returns the account the active session belongs to.
func (c *Client) CurrentUser(ctx context.Context) (*User, error) {
	if c.AccessToken() == "" {
		return nil, ErrNoSession
	}
	var user User
	if err := c.api.DoJSON(ctx, http.MethodGet, "/api/v1/auth/me", nil, nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// AccessToken returns the current access token, or "" when logged out.
func (c *Client) AccessToken() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.session == nil {
		return ""
	}
	return c.session.AccessToken
}

// IsAuthenticated reports whether a session is active.
func (c *Client) IsAuthenticated() bool {
	return c.AccessToken() != ""
}

// Headers returns the auth headers for a connection attempt: the
// project API key plus, when logged in, the bearer token. The realtime
// manager calls this on every dial so reconnects pick up refreshed
// tokens.
func (c *Client) Headers(ctx context.Context) (map[string]string, error) {
	headers := make(map[string]string, 2)
	if c.apiKey != "" {
		headers["apikey"] = c.apiKey
	}
	if tok := c.AccessToken(); tok != "" {
		headers["Authorization"] = "Bearer " + tok
	}
	return headers, nil
}
