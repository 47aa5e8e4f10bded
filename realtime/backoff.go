package realtime

import "time"

// ReconnectPolicy computes the delay schedule between reconnect attempts.
// Both methods are pure, so the schedule is testable without a socket.
type ReconnectPolicy struct {
	// BaseDelay is the delay before the first reconnect attempt.
	BaseDelay time.Duration

	// MaxDelay caps the exponential growth.
	MaxDelay time.Duration

	// MaxRetries is the retry ceiling. Once this many consecutive
	// attempts have failed the manager settles into disconnected.
	MaxRetries int
}

// DefaultReconnectPolicy returns the standard schedule: 1s doubling up to
// 60s, for at most 10 attempts.
func DefaultReconnectPolicy() ReconnectPolicy {
	return ReconnectPolicy{
		BaseDelay:  time.Second,
		MaxDelay:   60 * time.Second,
		MaxRetries: 10,
	}
}

// NextDelay returns min(BaseDelay * 2^attempt, MaxDelay). Attempts are
// zero-indexed: NextDelay(0) == BaseDelay.
func (p ReconnectPolicy) NextDelay(attempt int) time.Duration {
	d := p.BaseDelay
	for i := 0; i < attempt; i++ {
		d *= 2
		// Doubling a Duration can wrap negative; treat that as capped.
		if d >= p.MaxDelay || d <= 0 {
			return p.MaxDelay
		}
	}
	if d > p.MaxDelay {
		return p.MaxDelay
	}
	return d
}

// ShouldRetry reports whether another attempt is allowed after the given
// number of consecutive failures.
func (p ReconnectPolicy) ShouldRetry(attempt int) bool {
	return attempt < p.MaxRetries
}
