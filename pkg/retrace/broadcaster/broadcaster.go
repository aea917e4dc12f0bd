// Package broadcaster fans applied-change notifications out to
// subscribers, so UIs can render "what changed" without polling the
// journal.
package broadcaster

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jamesainslie/retrace/pkg/retrace/change"
	"github.com/jamesainslie/retrace/pkg/retrace/vfs"
)

// Event describes one change applied to (or reverted on) the tree.
type Event struct {
	Seq      int
	Kind     change.Kind
	Path     vfs.Path
	Reverted bool
	Time     time.Time
}

// Subscriber receives events whose path falls under its prefix.
type Subscriber struct {
	ID     string
	Prefix vfs.Path
	Events chan *Event
}

// Broadcaster manages subscribers and distributes change events.
type Broadcaster struct {
	mu          sync.RWMutex
	subscribers map[string]*Subscriber
	closed      bool
}

// New creates a Broadcaster.
func New() *Broadcaster {
	return &Broadcaster{subscribers: make(map[string]*Subscriber)}
}

// Subscribe registers interest in changes under prefix (nil means the
// whole tree). Returns nil after Close.
func (b *Broadcaster) Subscribe(prefix vfs.Path) *Subscriber {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil
	}
	sub := &Subscriber{
		ID:     uuid.New().String(),
		Prefix: prefix,
		Events: make(chan *Event, 100),
	}
	b.subscribers[sub.ID] = sub
	return sub
}

// Unsubscribe removes a subscription and closes its channel.
func (b *Broadcaster) Unsubscribe(id string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if sub, ok := b.subscribers[id]; ok {
		close(sub.Events)
		delete(b.subscribers, id)
	}
}

// Notify delivers an event to all matching subscribers. Slow
// subscribers lose events rather than blocking the journal path.
func (b *Broadcaster) Notify(event *Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return
	}
	if event.Time.IsZero() {
		event.Time = time.Now()
	}
	for _, sub := range b.subscribers {
		if !matches(sub.Prefix, event.Path) {
			continue
		}
		select {
		case sub.Events <- event:
		default:
			// Channel full, event dropped
		}
	}
}

// matches reports whether path is at or under prefix, segment-wise.
func matches(prefix, path vfs.Path) bool {
	if len(prefix) > len(path) {
		return false
	}
	for i := range prefix {
		if path[i] != prefix[i] {
			return false
		}
	}
	return true
}

// Close closes the broadcaster and all subscriptions.
func (b *Broadcaster) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	b.closed = true
	for _, sub := range b.subscribers {
		close(sub.Events)
	}
	b.subscribers = make(map[string]*Subscriber)
}

// SubscriberCount returns the number of active subscribers.
func (b *Broadcaster) SubscriberCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscribers)
}
