package realtime

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"
)

// Manager owns one logical realtime connection: the state machine, the
// reconnect loop, the heartbeat, and the routing of inbound messages to
// subscribers. The active socket is owned exclusively by the Manager.
type Manager struct {
	cfg    Config
	logger *slog.Logger

	registry  *Registry
	heartbeat *heartbeat

	// mu serializes every mutation of the connection state: state
	// transitions, the retry counter, the active socket and the pending
	// reconnect timer.
	mu             sync.Mutex
	state          State
	sock           Socket
	retries        int
	gen            uint64 // Connection generation; stale read loops bail out
	reconnectTimer *time.Timer
	pongCh         chan struct{}
	failCh         chan error
}

// NewManager creates a Manager. The configuration is copied; zero tuning
// fields get defaults. Note that the zero Config disables auto-reconnect —
// start from DefaultConfig to get the reconnect loop.
func NewManager(cfg Config, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	cfg.applyDefaults()
	if cfg.SocketFactory == nil {
		cfg.SocketFactory = NewSocket
	}

	return &Manager{
		cfg:       cfg,
		logger:    logger,
		registry:  NewRegistry(),
		heartbeat: newHeartbeat(cfg.HeartbeatInterval, logger),
		state:     StateDisconnected,
	}
}

// State returns the current connection state.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// IsConnected reports whether the manager is currently connected.
func (m *Manager) IsConnected() bool {
	return m.State() == StateConnected
}

// Subscriptions returns the number of registered subscriptions.
func (m *Manager) Subscriptions() int {
	return m.registry.Len()
}

// Connect opens the connection and completes the handshake. It is a no-op
// when already connecting or connected. A failure leaves the manager
// disconnected and does not start the reconnect loop; the caller decides
// whether to call Connect again.
func (m *Manager) Connect(ctx context.Context) error {
	m.mu.Lock()
	switch m.state {
	case StateConnecting, StateConnected:
		m.mu.Unlock()
		return nil
	case StateReconnecting:
		// An explicit Connect takes over from the pending timer.
		m.cancelReconnectTimer()
	}
	m.state = StateConnecting
	m.gen++
	gen := m.gen
	m.mu.Unlock()

	if err := m.establish(ctx, gen); err != nil {
		m.mu.Lock()
		if m.gen == gen && m.state == StateConnecting {
			m.state = StateDisconnected
		}
		m.mu.Unlock()
		return err
	}
	return nil
}

// Disconnect tears the connection down and returns the manager to the
// disconnected state: the pending reconnect timer is cancelled, the
// heartbeat stopped, the socket closed and the retry counter cleared. An
// explicit Disconnect also clears the subscription registry — unlike a
// transport drop, it means the caller is done with this manager.
func (m *Manager) Disconnect() {
	m.mu.Lock()
	m.cancelReconnectTimer()
	m.heartbeat.Stop()
	sock := m.sock
	m.sock = nil
	m.gen++
	m.state = StateDisconnected
	m.retries = 0
	m.mu.Unlock()

	if sock != nil {
		sock.Close()
	}
	m.registry.Clear()

	m.logger.Info("realtime disconnected")
}

// SubscribeOption configures a subscription.
type SubscribeOption func(*subscribeOptions)

type subscribeOptions struct {
	event string
}

// WithEvent restricts a subscription to a single event name instead of the
// default wildcard.
func WithEvent(event string) SubscribeOption {
	return func(o *subscribeOptions) {
		o.event = event
	}
}

// Subscription is the caller's handle on a registered subscription.
type Subscription struct {
	m       *Manager
	id      string
	channel string
	event   string
}

// ID returns the client-generated subscription id.
func (s *Subscription) ID() string {
	return s.id
}

// Channel returns the subscribed channel name.
func (s *Subscription) Channel() string {
	return s.channel
}

// Unsubscribe removes the registry entry and, when connected, tells the
// server. Safe to call while disconnected.
func (s *Subscription) Unsubscribe() {
	s.m.mu.Lock()
	s.m.registry.Remove(s.id)
	connected := s.m.state == StateConnected
	s.m.mu.Unlock()

	if connected {
		if err := s.m.sendMessage(unsubscribeMessage(s.channel, s.event)); err != nil {
			s.m.logger.Debug("unsubscribe send deferred",
				"channel", s.channel,
				"error", err,
			)
		}
	}
}

// Subscribe registers a callback for a channel, regardless of connection
// state. When connected the subscribe message goes out immediately;
// otherwise it is replayed on the next successful connect. The callback is
// invoked with the payload of every matching inbound message.
func (m *Manager) Subscribe(channel string, cb Callback, opts ...SubscribeOption) *Subscription {
	var o subscribeOptions
	for _, opt := range opts {
		opt(&o)
	}

	// Registering and reading the state happen under one lock so that a
	// concurrent connect either replays this entry or leaves the direct
	// send to us, never both.
	m.mu.Lock()
	id := m.registry.Add(channel, o.event, cb)
	connected := m.state == StateConnected
	m.mu.Unlock()

	if connected {
		if err := m.sendMessage(subscribeMessage(channel, o.event)); err != nil {
			// The entry stays registered; replay picks it up after
			// the next connect.
			m.logger.Debug("subscribe send deferred",
				"channel", channel,
				"error", err,
			)
		}
	}

	m.logger.Debug("subscription added",
		"id", id,
		"channel", channel,
		"event", o.event,
	)

	return &Subscription{m: m, id: id, channel: channel, event: o.event}
}

// establish runs one connection attempt: headers, dial, handshake, then the
// transition to connected with heartbeat start and subscription replay.
func (m *Manager) establish(ctx context.Context, gen uint64) error {
	header := http.Header{}
	if m.cfg.Headers != nil {
		auth, err := m.cfg.Headers(ctx)
		if err != nil {
			return fmt.Errorf("auth headers: %w", err)
		}
		for k, v := range auth {
			header.Set(k, v)
		}
	}

	sock := m.cfg.SocketFactory(SocketConfig{
		URL:          m.cfg.URL,
		Header:       header,
		DialTimeout:  m.cfg.DialTimeout,
		WriteTimeout: m.cfg.WriteTimeout,
		BufferSize:   m.cfg.BufferSize,
	})

	if err := sock.Open(ctx); err != nil {
		return fmt.Errorf("open socket: %w", err)
	}

	pong := make(chan struct{}, 1)
	failed := make(chan error, 1)

	m.mu.Lock()
	if m.gen != gen {
		m.mu.Unlock()
		sock.Close()
		return fmt.Errorf("connection attempt superseded")
	}
	m.sock = sock
	m.pongCh = pong
	m.failCh = failed
	m.mu.Unlock()

	// The read loop must run during the handshake so the pong can arrive.
	go m.readLoop(sock, gen)

	if err := m.handshake(ctx, sock, pong, failed); err != nil {
		m.mu.Lock()
		if m.gen == gen {
			m.sock = nil
			m.pongCh = nil
			m.failCh = nil
		}
		m.mu.Unlock()
		sock.Close()
		return err
	}

	m.mu.Lock()
	if m.gen != gen {
		m.mu.Unlock()
		sock.Close()
		return fmt.Errorf("connection attempt superseded")
	}
	// The transport may have died after the pong but before this point;
	// the read loop has already exited then, so a "connected" here would
	// be permanent. Re-check before committing.
	select {
	case err := <-failed:
		m.sock = nil
		m.pongCh = nil
		m.failCh = nil
		m.mu.Unlock()
		sock.Close()
		return fmt.Errorf("transport lost during handshake: %w", err)
	default:
	}
	m.state = StateConnected
	m.retries = 0
	m.failCh = nil

	// Heartbeat start and the replay snapshot stay inside the same
	// critical section as the state flip: a drop racing us sees either
	// connecting (and fails the attempt) or a fully connected manager,
	// and a concurrent Subscribe lands in exactly one of snapshot or
	// direct send.
	m.heartbeat.Start(func() error {
		return m.sendMessage(pingMessage())
	})
	snapshot := m.registry.Snapshot()
	m.mu.Unlock()

	m.replaySubscriptions(snapshot)

	m.logger.Info("realtime connected", "url", m.cfg.URL)
	return nil
}

// handshake confirms a freshly opened socket: send one application ping and
// wait for either a pong or a timed pause. Both count as success; a failed
// send, a transport error or a cancelled context fails the attempt.
func (m *Manager) handshake(ctx context.Context, sock Socket, pong <-chan struct{}, failed <-chan error) error {
	data, err := EncodeMessage(pingMessage())
	if err != nil {
		return err
	}
	if err := sock.Send(data); err != nil {
		return fmt.Errorf("handshake ping: %w", err)
	}

	timer := time.NewTimer(m.cfg.HandshakeTimeout)
	defer timer.Stop()

	select {
	case <-pong:
	case <-timer.C:
	case err := <-failed:
		return fmt.Errorf("transport lost during handshake: %w", err)
	case <-ctx.Done():
		return ctx.Err()
	}
	return nil
}

// replaySubscriptions sends a subscribe message for every snapshot entry.
// Called exactly once per successful connection establishment, with a
// snapshot taken when the state flipped to connected.
func (m *Manager) replaySubscriptions(snapshot []ChannelFilter) {
	for _, cf := range snapshot {
		if err := m.sendMessage(subscribeMessage(cf.Channel, cf.Event)); err != nil {
			m.logger.Warn("subscription replay failed",
				"channel", cf.Channel,
				"event", cf.Event,
				"error", err,
			)
		}
	}
	if len(snapshot) > 0 {
		m.logger.Debug("subscriptions replayed", "count", len(snapshot))
	}
}

// readLoop routes inbound frames for one connection generation and hands
// transport failures to the drop path.
func (m *Manager) readLoop(sock Socket, gen uint64) {
	for {
		select {
		case data := <-sock.Messages():
			m.handleFrame(data)
		case err := <-sock.Errors():
			m.handleDrop(gen, err)
			return
		}
	}
}

// handleFrame decodes and routes one inbound frame. Malformed frames are
// dropped and logged; they never reach subscribers or kill the connection.
func (m *Manager) handleFrame(data []byte) {
	msg, err := DecodeMessage(data)
	if err != nil {
		m.logger.Warn("dropping malformed frame", "error", err)
		return
	}

	switch msg.Type {
	case MessageTypePing:
		if err := m.sendMessage(pongMessage()); err != nil {
			m.logger.Debug("pong reply failed", "error", err)
		}
	case MessageTypePong:
		m.mu.Lock()
		pong := m.pongCh
		m.mu.Unlock()
		if pong != nil {
			select {
			case pong <- struct{}{}:
			default:
			}
		}
	default:
		delivered := m.registry.ForEachMatching(msg)
		m.logger.Debug("event routed",
			"type", msg.Type,
			"channel", msg.Channel,
			"event", msg.Event,
			"subscribers", delivered,
		)
	}
}

// handleDrop reacts to a transport failure while connected: stop the
// heartbeat, keep the registry untouched, and either schedule a reconnect
// or settle into disconnected. A failure during the handshake window is
// handed to the in-flight connection attempt instead, which owns the
// cleanup. Stale generations (an explicit Disconnect or a newer connection
// already happened) are ignored.
func (m *Manager) handleDrop(gen uint64, cause error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.gen != gen {
		return
	}

	if m.state == StateConnecting {
		if m.failCh != nil {
			select {
			case m.failCh <- cause:
			default:
			}
		}
		return
	}

	if m.state != StateConnected {
		return
	}

	m.gen++
	m.heartbeat.Stop()
	sock := m.sock
	m.sock = nil
	if sock != nil {
		sock.Close()
	}

	if m.cfg.AutoReconnect && m.cfg.Policy.ShouldRetry(m.retries) {
		delay := m.cfg.Policy.NextDelay(m.retries)
		m.state = StateReconnecting
		m.scheduleReconnectLocked(delay)
		m.logger.Warn("connection lost, reconnecting",
			"error", cause,
			"delay", delay,
		)
	} else {
		m.state = StateDisconnected
		m.logger.Warn("connection lost", "error", cause)
	}
}

// scheduleReconnectLocked arms the reconnect timer. Caller holds mu.
func (m *Manager) scheduleReconnectLocked(delay time.Duration) {
	m.reconnectTimer = time.AfterFunc(delay, m.attemptReconnect)
}

// cancelReconnectTimer stops any pending reconnect timer. Caller holds mu.
func (m *Manager) cancelReconnectTimer() {
	if m.reconnectTimer != nil {
		m.reconnectTimer.Stop()
		m.reconnectTimer = nil
	}
}

// attemptReconnect fires when a backoff delay elapses: increment the retry
// counter, move to connecting and run one attempt. On failure either arm
// the next timer or, at the ceiling, give up.
func (m *Manager) attemptReconnect() {
	m.mu.Lock()
	if m.state != StateReconnecting {
		// Disconnect (or an explicit Connect) won the race.
		m.mu.Unlock()
		return
	}
	m.retries++
	m.state = StateConnecting
	m.gen++
	gen := m.gen
	attempt := m.retries
	m.mu.Unlock()

	m.logger.Info("reconnect attempt", "attempt", attempt)

	ctx, cancel := context.WithTimeout(context.Background(),
		m.cfg.DialTimeout+m.cfg.HandshakeTimeout)
	defer cancel()

	err := m.establish(ctx, gen)
	if err == nil {
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.gen != gen || m.state != StateConnecting {
		return
	}

	if m.cfg.Policy.ShouldRetry(m.retries) {
		delay := m.cfg.Policy.NextDelay(m.retries)
		m.state = StateReconnecting
		m.scheduleReconnectLocked(delay)
		m.logger.Warn("reconnect failed",
			"attempt", attempt,
			"delay", delay,
			"error", err,
		)
	} else {
		m.state = StateDisconnected
		m.logger.Error("reconnect retries exhausted",
			"attempts", attempt,
			"error", err,
		)
	}
}

// sendMessage encodes and sends one envelope over the active socket. Fails
// with ErrNotConnected when there is no active connection; such failures
// never tear the manager down.
func (m *Manager) sendMessage(msg Message) error {
	m.mu.Lock()
	sock := m.sock
	m.mu.Unlock()

	if sock == nil {
		return ErrNotConnected
	}

	data, err := EncodeMessage(msg)
	if err != nil {
		return err
	}
	return sock.Send(data)
}
