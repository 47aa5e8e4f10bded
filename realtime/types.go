package realtime

import (
	"context"
	"errors"
	"time"
)

// Errors
var (
	ErrNotConnected     = errors.New("not connected")
	ErrAlreadyClosed    = errors.New("already closed")
	ErrMalformedMessage = errors.New("malformed message")
)

// State is the connection state of a Manager. Exactly one state holds at any
// instant; transitions are driven only by the Manager.
type State string

const (
	StateDisconnected State = "disconnected"
	StateConnecting   State = "connecting"
	StateConnected    State = "connected"
	StateReconnecting State = "reconnecting"
)

// HeaderProvider supplies authentication headers for a connection attempt.
// It is called on every dial, so rotated tokens are picked up on reconnect.
type HeaderProvider func(ctx context.Context) (map[string]string, error)

// Callback receives the payload of every message matching a subscription.
type Callback func(payload Value)

// Config holds Manager settings.
type Config struct {
	// URL is the realtime WebSocket endpoint (ws:// or wss://).
	URL string

	// Headers supplies auth headers at connect time. Optional.
	Headers HeaderProvider

	// AutoReconnect enables the reconnect loop after a post-connection
	// transport drop. Initial Connect failures never start the loop.
	AutoReconnect bool

	// Policy drives the reconnect backoff schedule and retry ceiling.
	Policy ReconnectPolicy

	HeartbeatInterval time.Duration // Interval between keep-alive pings
	HandshakeTimeout  time.Duration // Max wait for the handshake pong
	DialTimeout       time.Duration // WebSocket dial timeout
	WriteTimeout      time.Duration // Per-frame write deadline
	BufferSize        int           // Inbound frame buffer size

	// SocketFactory overrides the transport, for tests. Nil uses the
	// gorilla/websocket transport.
	SocketFactory SocketFactory
}

// DefaultConfig returns a Config with production defaults. URL and Headers
// must still be set by the caller.
func DefaultConfig() Config {
	return Config{
		AutoReconnect:     true,
		Policy:            DefaultReconnectPolicy(),
		HeartbeatInterval: 30 * time.Second,
		HandshakeTimeout:  3 * time.Second,
		DialTimeout:       10 * time.Second,
		WriteTimeout:      5 * time.Second,
		BufferSize:        256,
	}
}

func (c *Config) applyDefaults() {
	def := DefaultConfig()
	if c.Policy == (ReconnectPolicy{}) {
		c.Policy = def.Policy
	}
	if c.HeartbeatInterval == 0 {
		c.HeartbeatInterval = def.HeartbeatInterval
	}
	if c.HandshakeTimeout == 0 {
		c.HandshakeTimeout = def.HandshakeTimeout
	}
	if c.DialTimeout == 0 {
		c.DialTimeout = def.DialTimeout
	}
	if c.WriteTimeout == 0 {
		c.WriteTimeout = def.WriteTimeout
	}
	if c.BufferSize == 0 {
		c.BufferSize = def.BufferSize
	}
}
