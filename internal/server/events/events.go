// Package events publishes the engine's public notifications
// (UserRegistered, MatchRequested, ...) to external observers. The core
// never consumes its own events; publishing is strictly observational, so
// failures are logged by implementations and never surfaced to callers.
package events

import (
	"context"
	"sync"
	"time"
)

// Event names emitted by the engine.
const (
	UserRegistered        = "UserRegistered"
	ProfileUpdated        = "ProfileUpdated"
	MatchRequested        = "MatchRequested"
	MutualMatchFound      = "MutualMatchFound"
	ChatRoomCreated       = "ChatRoomCreated"
	MessageSent           = "MessageSent"
	CompatibilityRevealed = "CompatibilityRevealed"
)

// Event is a single public notification.
type Event struct {
	Name   string         `json:"name"`
	At     time.Time      `json:"at"`
	Fields map[string]any `json:"fields,omitempty"`
}

// Publisher delivers events to external observers.
type Publisher interface {
	Publish(ctx context.Context, e Event)
}

// MemoryPublisher keeps events in memory. Used in tests and when no broker
// is configured.
type MemoryPublisher struct {
	mu     sync.Mutex
	events []Event
}

func NewMemoryPublisher() *MemoryPublisher {
	return &MemoryPublisher{}
}

func (p *MemoryPublisher) Publish(ctx context.Context, e Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
}

// Events returns a copy of everything published so far, in order.
func (p *MemoryPublisher) Events() []Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]Event(nil), p.events...)
}

// Named returns published events with the given name, in order.
func (p *MemoryPublisher) Named(name string) []Event {
	p.mu.Lock()
	defer p.mu.Unlock()

	var out []Event
	for _, e := range p.events {
		if e.Name == name {
			out = append(out, e)
		}
	}
	return out
}
