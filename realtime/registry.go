package realtime

import (
	"sync"

	"github.com/google/uuid"
)

// ChannelFilter is a (channel, event filter) pair, as replayed after a
// reconnect.
type ChannelFilter struct {
	Channel string
	Event   string
}

// subscription is one registered subscriber.
type subscription struct {
	id       string
	channel  string
	event    string // "" or "*" matches every event on the channel
	callback Callback
}

// Registry is the in-memory table of active subscriptions. Entries are
// owned by the registry and live independently of the physical connection:
// a transport drop leaves them untouched so the Manager can replay them.
//
// Add/Remove may be called from arbitrary goroutines while ForEachMatching
// is delivering on the read path.
type Registry struct {
	mu   sync.RWMutex
	subs map[string]*subscription
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		subs: make(map[string]*subscription),
	}
}

// Add stores a subscription and returns its freshly generated id.
func (r *Registry) Add(channel, event string, cb Callback) string {
	id := uuid.NewString()

	r.mu.Lock()
	r.subs[id] = &subscription{
		id:       id,
		channel:  channel,
		event:    event,
		callback: cb,
	}
	r.mu.Unlock()

	return id
}

// Remove deletes a subscription. Removing an unknown id is a no-op.
func (r *Registry) Remove(id string) {
	r.mu.Lock()
	delete(r.subs, id)
	r.mu.Unlock()
}

// Len returns the number of registered subscriptions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.subs)
}

// Clear removes every subscription.
func (r *Registry) Clear() {
	r.mu.Lock()
	r.subs = make(map[string]*subscription)
	r.mu.Unlock()
}

// Snapshot returns the (channel, filter) pair of every subscription, for
// rebuilding subscribe messages after a reconnect. Order is unspecified.
func (r *Registry) Snapshot() []ChannelFilter {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]ChannelFilter, 0, len(r.subs))
	for _, sub := range r.subs {
		out = append(out, ChannelFilter{Channel: sub.channel, Event: sub.event})
	}
	return out
}

// ForEachMatching invokes the callback of every subscription matching the
// message with the message payload, and returns how many fired. A
// subscription matches when its channel equals the message channel and its
// filter is empty, "*", or equal to the message event.
//
// Callbacks run outside the registry lock, so a callback may itself
// subscribe or unsubscribe.
func (r *Registry) ForEachMatching(msg Message) int {
	r.mu.RLock()
	var matched []Callback
	for _, sub := range r.subs {
		if sub.channel != msg.Channel {
			continue
		}
		if sub.event != "" && sub.event != EventAny && sub.event != msg.Event {
			continue
		}
		matched = append(matched, sub.callback)
	}
	r.mu.RUnlock()

	for _, cb := range matched {
		cb(msg.Payload)
	}
	return len(matched)
}
