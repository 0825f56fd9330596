package outbox

import (
	"context"
	"errors"
	"sync"

	"github.com/servana/eventrelay/internal/domain/event"
)

// Handler consumes one dispatched event. Handlers may perform I/O; the bus
// awaits every handler before Publish returns.
type Handler func(ctx context.Context, ev event.Event) error

// Subscription identifies one registered handler so it can be removed later.
type Subscription struct {
	id        uint64
	eventType string
	fn        Handler
}

// Bus is an in-process publish/subscribe registry keyed by event type. One
// instance is constructed at startup and shared by reference; there is no
// package-level registry.
type Bus struct {
	mu       sync.RWMutex
	nextID   uint64
	handlers map[string][]*Subscription
}

func NewBus() *Bus {
	return &Bus{handlers: make(map[string][]*Subscription)}
}

func (b *Bus) Subscribe(eventType string, fn Handler) *Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	sub := &Subscription{id: b.nextID, eventType: eventType, fn: fn}
	b.handlers[eventType] = append(b.handlers[eventType], sub)
	return sub
}

func (b *Bus) Unsubscribe(sub *Subscription) bool {
	if sub == nil {
		return false
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	subs := b.handlers[sub.eventType]
	for i, s := range subs {
		if s.id == sub.id {
			b.handlers[sub.eventType] = append(subs[:i], subs[i+1:]...)
			if len(b.handlers[sub.eventType]) == 0 {
				delete(b.handlers, sub.eventType)
			}
			return true
		}
	}
	return false
}

func (b *Bus) HasHandlers(eventType string) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.handlers[eventType]) > 0
}

func (b *Bus) Types() []string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	types := make([]string, 0, len(b.handlers))
	for t := range b.handlers {
		types = append(types, t)
	}
	return types
}

// Publish fans the event out to every handler registered for its type and
// waits for all of them. No handlers is a successful no-op. Every handler is
// attempted even when a sibling fails; the joined error is returned so the
// caller can retry the whole dispatch.
func (b *Bus) Publish(ctx context.Context, ev event.Event) error {
	b.mu.RLock()
	subs := make([]*Subscription, len(b.handlers[ev.EventType]))
	copy(subs, b.handlers[ev.EventType])
	b.mu.RUnlock()

	if len(subs) == 0 {
		return nil
	}

	errs := make([]error, len(subs))
	var wg sync.WaitGroup
	for i, sub := range subs {
		wg.Add(1)
		go func(i int, sub *Subscription) {
			defer wg.Done()
			errs[i] = sub.fn(ctx, ev)
		}(i, sub)
	}
	wg.Wait()

	return errors.Join(errs...)
}
