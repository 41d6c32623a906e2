// Package event provides a small synchronous event dispatcher.
//
// Services fire domain events after a successful write; listeners react
// (logging, metrics, cache invalidation) without the service knowing them.
package event

import (
	"context"
	"fmt"
	"sync"

	"github.com/tradebridge/tradebridge/pkg/logger"
)

// Handler receives an event payload.
type Handler func(ctx context.Context, payload any)

// Bus holds the listeners of each event name. The zero value is ready to use,
// and a nil *Bus drops every event.
type Bus struct {
	mu       sync.RWMutex
	handlers map[string][]Handler
}

// NewBus returns an empty bus.
func NewBus() *Bus {
	return &Bus{handlers: map[string][]Handler{}}
}

// Listen registers a handler for the given event name.
func (b *Bus) Listen(event string, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.handlers == nil {
		b.handlers = map[string][]Handler{}
	}
	b.handlers[event] = append(b.handlers[event], handler)
}

// Fire dispatches an event synchronously to all registered listeners, in
// registration order. A panicking listener is logged and skipped; it never
// fails the operation that fired the event.
func (b *Bus) Fire(ctx context.Context, event string, payload any) {
	if b == nil {
		return
	}
	b.mu.RLock()
	hs := make([]Handler, len(b.handlers[event]))
	copy(hs, b.handlers[event])
	b.mu.RUnlock()

	for _, h := range hs {
		b.call(ctx, event, h, payload)
	}
}

func (b *Bus) call(ctx context.Context, event string, h Handler, payload any) {
	defer func() {
		if rec := recover(); rec != nil {
			logger.WithCtx(ctx).Error("event: listener panicked", "event", event, "error", fmt.Sprint(rec))
		}
	}()
	h(ctx, payload)
}

// Count returns the number of listeners for event.
func (b *Bus) Count(event string) int {
	if b == nil {
		return 0
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.handlers[event])
}
