// Package selfdb is the entry point to the SelfDB Go SDK. It wires the
// auth, database, storage and realtime clients behind a single Config.
package selfdb

import (
	"fmt"

	"github.com/Selfdb-io/selfdb-go/auth"
	"github.com/Selfdb-io/selfdb-go/database"
	"github.com/Selfdb-io/selfdb-go/internal/httpapi"
	"github.com/Selfdb-io/selfdb-go/realtime"
	"github.com/Selfdb-io/selfdb-go/storage"
)

// Client bundles the SelfDB service clients. All of them share one
// REST transport, so a Login on Auth authenticates Database and
// Storage calls, and realtime dials pick up the session token.
type Client struct {
	Auth     *auth.Client
	Database *database.Client
	Storage  *storage.Client
	Realtime *realtime.Manager
}

// New creates a SelfDB client from the given configuration.
func New(cfg Config) (*Client, error) {
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	apiOpts := []httpapi.ClientOption{
		httpapi.WithLogger(cfg.Logger),
		httpapi.WithTimeout(cfg.Timeout),
		httpapi.WithRetries(cfg.MaxRetries, 0),
	}
	if cfg.HTTPClient != nil {
		apiOpts = append(apiOpts, httpapi.WithHTTPClient(cfg.HTTPClient))
	}
	api := httpapi.NewClient(cfg.BaseURL, cfg.APIKey, apiOpts...)

	authClient := auth.NewClient(api, cfg.APIKey, cfg.Logger)

	realtimeURL := cfg.RealtimeURL
	if realtimeURL == "" {
		var err error
		realtimeURL, err = RealtimeEndpoint(cfg.BaseURL)
		if err != nil {
			return nil, fmt.Errorf("derive realtime endpoint: %w", err)
		}
	}

	rtCfg := realtime.DefaultConfig()
	rtCfg.URL = realtimeURL
	rtCfg.Headers = authClient.Headers
	rtCfg.AutoReconnect = !cfg.DisableAutoReconnect
	rtCfg.Policy = cfg.ReconnectPolicy
	rtCfg.HeartbeatInterval = cfg.HeartbeatInterval

	return &Client{
		Auth:     authClient,
		Database: database.NewClient(api, cfg.Logger),
		Storage:  storage.NewClient(api, cfg.Logger),
		Realtime: realtime.NewManager(rtCfg, cfg.Logger),
	}, nil
}
