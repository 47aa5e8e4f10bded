package httpapi

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/Selfdb-io/selfdb-go/internal/version"
)

// TokenFunc returns the current access token, or "" when no session is
// active. It is consulted on every request so token refreshes take
// effect without rebuilding the client.
type TokenFunc func() string

// Client provides access to a SelfDB REST API.
type Client struct {
	baseURL    string
	apiKey     string
	token      TokenFunc
	httpClient *http.Client
	logger     *slog.Logger

	maxTries      int
	retryInterval time.Duration
	userAgent     string
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// NewClient creates a new REST API client for the given base URL.
func NewClient(baseURL, apiKey string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger:        slog.Default(),
		maxTries:      4,
		retryInterval: time.Second,
		userAgent:     "selfdb-go/" + version.Version,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// WithTimeout sets the HTTP client timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

// WithRetries sets the retry configuration. maxRetries is the number of
// retries after the first attempt; a positive interval seeds the
// backoff.
func WithRetries(maxRetries int, interval time.Duration) ClientOption {
	return func(c *Client) {
		c.maxTries = maxRetries + 1
		if interval > 0 {
			c.retryInterval = interval
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithTokenFunc sets the access-token source.
func WithTokenFunc(fn TokenFunc) ClientOption {
	return func(c *Client) {
		c.token = fn
	}
}

// SetTokenFunc replaces the access-token source after construction.
// The auth client uses this to hand its session to the shared transport.
func (c *Client) SetTokenFunc(fn TokenFunc) {
	c.token = fn
}

// BaseURL returns the API base URL the client was built with.
func (c *Client) BaseURL() string {
	return c.baseURL
}
