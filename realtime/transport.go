package realtime

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Socket is a minimal duplex, message-oriented transport. It carries no
// retry or reconnection logic; the Manager owns that. A Socket is used for
// exactly one connection: after a close or error it is discarded.
type Socket interface {
	// Open establishes the connection. It may fail.
	Open(ctx context.Context) error

	// Send writes one text frame. Fails with ErrNotConnected once the
	// socket is closed.
	Send(data []byte) error

	// Messages returns the inbound frame channel.
	Messages() <-chan []byte

	// Errors returns a channel that yields the terminal transport error.
	Errors() <-chan error

	// Close tears the connection down. Idempotent.
	Close() error
}

// SocketFactory creates a Socket for one connection attempt.
type SocketFactory func(cfg SocketConfig) Socket

// SocketConfig holds per-connection transport settings.
type SocketConfig struct {
	URL          string
	Header       http.Header
	DialTimeout  time.Duration
	WriteTimeout time.Duration
	BufferSize   int
}

// wsSocket implements Socket over gorilla/websocket.
type wsSocket struct {
	cfg SocketConfig

	conn *websocket.Conn

	messages chan []byte
	errors   chan error
	done     chan struct{}

	// Write serialization
	writeMu sync.Mutex

	// State
	mu        sync.RWMutex
	connected bool
	closed    bool
}

// NewSocket creates an unopened WebSocket transport.
func NewSocket(cfg SocketConfig) Socket {
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = 256
	}
	return &wsSocket{
		cfg:      cfg,
		messages: make(chan []byte, cfg.BufferSize),
		errors:   make(chan error, 1),
		done:     make(chan struct{}),
	}
}

// Open dials the endpoint and starts the read pump.
func (s *wsSocket) Open(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrAlreadyClosed
	}
	s.mu.Unlock()

	dialer := websocket.Dialer{
		HandshakeTimeout: s.cfg.DialTimeout,
	}

	conn, _, err := dialer.DialContext(ctx, s.cfg.URL, s.cfg.Header)
	if err != nil {
		return err
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		conn.Close()
		return ErrAlreadyClosed
	}
	s.conn = conn
	s.connected = true
	s.mu.Unlock()

	go s.readLoop(conn)

	return nil
}

// readLoop pumps inbound frames until the connection dies. Text and binary
// frames are both forwarded; the terminal read error goes to the errors
// channel for the Manager to observe.
func (s *wsSocket) readLoop(conn *websocket.Conn) {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			s.mu.Lock()
			s.connected = false
			s.mu.Unlock()

			select {
			case s.errors <- err:
			default:
			}
			return
		}

		// The done case keeps this goroutine from leaking when the
		// Manager has abandoned the socket without draining it.
		select {
		case s.messages <- data:
		case <-s.done:
			return
		}
	}
}

// Send writes a single text frame.
func (s *wsSocket) Send(data []byte) error {
	s.mu.RLock()
	connected := s.connected
	conn := s.conn
	s.mu.RUnlock()

	if !connected || conn == nil {
		return ErrNotConnected
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if s.cfg.WriteTimeout > 0 {
		conn.SetWriteDeadline(time.Now().Add(s.cfg.WriteTimeout))
	}
	return conn.WriteMessage(websocket.TextMessage, data)
}

// Messages returns the inbound frame channel.
func (s *wsSocket) Messages() <-chan []byte {
	return s.messages
}

// Errors returns the terminal error channel.
func (s *wsSocket) Errors() <-chan error {
	return s.errors
}

// Close tears down the connection. Safe to call more than once.
func (s *wsSocket) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.connected = false
	conn := s.conn
	close(s.done)
	s.mu.Unlock()

	if conn == nil {
		return nil
	}

	// Best-effort close frame; the peer may already be gone.
	s.writeMu.Lock()
	conn.WriteControl(
		websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second),
	)
	s.writeMu.Unlock()

	return conn.Close()
}
