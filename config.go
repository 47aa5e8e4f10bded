package selfdb

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Selfdb-io/selfdb-go/realtime"
)

// Config configures a SelfDB client.
type Config struct {
	// BaseURL is the HTTP(S) URL of the SelfDB backend. Required.
	BaseURL string

	// APIKey is the project API key sent as the apikey header.
	APIKey string

	// RealtimeURL overrides the websocket endpoint. When empty it is
	// derived from BaseURL via RealtimeEndpoint.
	RealtimeURL string

	// Timeout bounds each REST request. Defaults to 30s.
	Timeout time.Duration

	// MaxRetries is the number of REST retries after the first
	// attempt. Defaults to 3.
	MaxRetries int

	// HeartbeatInterval between realtime pings. Defaults to 30s.
	HeartbeatInterval time.Duration

	// ReconnectPolicy drives realtime reconnection. Zero value uses
	// realtime.DefaultReconnectPolicy.
	ReconnectPolicy realtime.ReconnectPolicy

	// DisableAutoReconnect turns off automatic realtime reconnection.
	DisableAutoReconnect bool

	// Logger receives SDK logs. Defaults to slog.Default().
	Logger *slog.Logger

	// HTTPClient overrides the REST HTTP client.
	HTTPClient *http.Client
}

func (c *Config) applyDefaults() {
	if c.Timeout == 0 {
		c.Timeout = 30 * time.Second
	}
	if c.MaxRetries == 0 {
		c.MaxRetries = 3
	}
	if c.HeartbeatInterval == 0 {
		c.HeartbeatInterval = 30 * time.Second
	}
	if c.ReconnectPolicy == (realtime.ReconnectPolicy{}) {
		c.ReconnectPolicy = realtime.DefaultReconnectPolicy()
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return errors.New("base URL is required")
	}
	u, err := url.Parse(c.BaseURL)
	if err != nil {
		return fmt.Errorf("invalid base URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("base URL scheme must be http or https, got %q", u.Scheme)
	}
	if u.Host == "" {
		return errors.New("base URL has no host")
	}
	if c.RealtimeURL != "" {
		ru, err := url.Parse(c.RealtimeURL)
		if err != nil {
			return fmt.Errorf("invalid realtime URL: %w", err)
		}
		if ru.Scheme != "ws" && ru.Scheme != "wss" {
			return fmt.Errorf("realtime URL scheme must be ws or wss, got %q", ru.Scheme)
		}
	}
	return nil
}

// RealtimeEndpoint derives the websocket endpoint from an HTTP base
// URL: http becomes ws, https becomes wss, and the /realtime path is
// appended.
func RealtimeEndpoint(baseURL string) (string, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return "", fmt.Errorf("parse base URL: %w", err)
	}
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	default:
		return "", fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	u.Path = strings.TrimSuffix(u.Path, "/") + "/realtime"
	return u.String(), nil
}
