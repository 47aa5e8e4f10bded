package realtime

import (
	"log/slog"
	"sync"
	"time"
)

// heartbeat sends keep-alive pings at a fixed interval while the connection
// is up. It never decides liveness itself: a missing pong does not trigger a
// disconnect, the transport's close/error signal does.
type heartbeat struct {
	interval time.Duration
	logger   *slog.Logger

	mu   sync.Mutex
	stop chan struct{}
}

func newHeartbeat(interval time.Duration, logger *slog.Logger) *heartbeat {
	return &heartbeat{
		interval: interval,
		logger:   logger,
	}
}

// Start launches the ping loop. Calling Start while already running is a
// no-op; every Start is balanced by a Stop on each exit from the connected
// state so no periodic task is left dangling.
func (h *heartbeat) Start(send func() error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.stop != nil {
		return
	}
	stop := make(chan struct{})
	h.stop = stop

	go h.run(send, stop)
}

// Stop cancels the ping loop. Idempotent.
func (h *heartbeat) Stop() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.stop != nil {
		close(h.stop)
		h.stop = nil
	}
}

func (h *heartbeat) run(send func() error, stop chan struct{}) {
	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			if err := send(); err != nil {
				// The transport surfaces the real failure; this
				// send just missed the window.
				h.logger.Debug("heartbeat send failed", "error", err)
			}
		}
	}
}
