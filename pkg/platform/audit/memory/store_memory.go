// Package memory provides an in-memory audit publisher for tests and for
// running without Kafka.
package memory

import (
	"context"
	"sync"

	"capture-gateway/pkg/platform/audit"
)

// Publisher records events in memory.
type Publisher struct {
	mu     sync.RWMutex
	events []audit.Event
}

func New() *Publisher {
	return &Publisher{}
}

func (p *Publisher) Emit(_ context.Context, event audit.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

// Events returns a copy of everything emitted so far.
func (p *Publisher) Events() []audit.Event {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]audit.Event, len(p.events))
	copy(out, p.events)
	return out
}

// ByAction filters recorded events by action name.
func (p *Publisher) ByAction(action string) []audit.Event {
	p.mu.RLock()
	defer p.mu.RUnlock()
	var out []audit.Event
	for _, e := range p.events {
		if e.Action == action {
			out = append(out, e)
		}
	}
	return out
}
