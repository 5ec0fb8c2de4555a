// ABOUTME: Typed event bus carrying hook diagnostics to host subscribers
// ABOUTME: Delivery follows subscription order so notice logs stay deterministic

package eventbus

import "sync"

// Handler is a callback function for events.
type Handler[T any] func(T)

// Bus delivers events to registered handlers in subscription order.
// Safe for concurrent use.
type Bus[T any] struct {
	mu     sync.RWMutex
	subs   []subscriber[T]
	nextID int
}

type subscriber[T any] struct {
	id int
	fn Handler[T]
}

// New creates an empty bus.
func New[T any]() *Bus[T] {
	return &Bus[T]{}
}

// Subscribe registers a handler and returns an unsubscribe function.
func (b *Bus[T]) Subscribe(handler Handler[T]) func() {
	b.mu.Lock()
	id := b.nextID
	b.nextID++
	b.subs = append(b.subs, subscriber[T]{id: id, fn: handler})
	b.mu.Unlock()

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		for i, s := range b.subs {
			if s.id == id {
				b.subs = append(b.subs[:i], b.subs[i+1:]...)
				return
			}
		}
	}
}

// Publish sends an event to all registered handlers synchronously, oldest
// subscription first. Handlers run outside the lock so they may subscribe
// or unsubscribe.
func (b *Bus[T]) Publish(event T) {
	b.mu.RLock()
	snapshot := make([]Handler[T], len(b.subs))
	for i, s := range b.subs {
		snapshot[i] = s.fn
	}
	b.mu.RUnlock()

	for _, h := range snapshot {
		h(event)
	}
}
