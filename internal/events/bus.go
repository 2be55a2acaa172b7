package events

import (
	"sync"
	"time"
)

// Type identifies a unit lifecycle event.
type Type string

const (
	TypeUnitLoading   Type = "unit_loading"
	TypeUnitLoaded    Type = "unit_loaded"
	TypeUnitFailed    Type = "unit_failed"
	TypeGateDenied    Type = "gate_denied"
	TypePreloadQueued Type = "preload_queued"
)

// Event describes one unit lifecycle transition.
type Event struct {
	Type       Type      `json:"type"`
	UnitID     string    `json:"unit_id"`
	TriggerKey string    `json:"trigger_key,omitempty"`
	Redirect   string    `json:"redirect,omitempty"`
	Error      string    `json:"error,omitempty"`
	Time       time.Time `json:"time"`
}

// Bus fans unit lifecycle events out to subscribers. Publishing never
// blocks; slow subscribers drop events.
type Bus struct {
	mu   sync.Mutex
	subs map[int]chan Event
	next int
}

// NewBus creates an event bus.
func NewBus() *Bus {
	return &Bus{subs: make(map[int]chan Event)}
}

// Subscribe registers a subscriber. The returned cancel function removes
// the subscription and closes the channel.
func (b *Bus) Subscribe() (<-chan Event, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.next
	b.next++
	ch := make(chan Event, 64)
	b.subs[id] = ch

	cancel := func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if sub, ok := b.subs[id]; ok {
			delete(b.subs, id)
			close(sub)
		}
	}
	return ch, cancel
}

// Publish delivers an event to all subscribers.
func (b *Bus) Publish(ev Event) {
	if ev.Time.IsZero() {
		ev.Time = time.Now()
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	for _, ch := range b.subs {
		select {
		case ch <- ev:
		default:
			// Subscriber buffer full; drop rather than block the publisher
		}
	}
}

// Subscribers returns the current subscriber count.
func (b *Bus) Subscribers() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}
