// Package event provides a synchronous in-process bus for domain events.
//
// Handlers run inline on the publishing goroutine and receive the caller's
// database handle, so a handler registered inside a transaction sees the
// uncommitted writes that triggered the event and its own writes commit or
// roll back together with them.
package event

import (
	"context"
	"reflect"
	"sync"

	"github.com/royalboe/commercia/pkg/database"
)

// OrderItemsChanged is published after the order_items rows of an order are
// inserted, updated, or deleted.
type OrderItemsChanged struct {
	OrderID string
}

// ReviewsChanged is published after a review for a product is created,
// updated, or deleted.
type ReviewsChanged struct {
	ProductID string
}

// Handler reacts to a published event using the publisher's database handle.
type Handler func(ctx context.Context, q database.Querier, e any) error

// Bus dispatches events to handlers registered for the event's type.
// Subscribe calls are expected at startup; Publish is safe for concurrent use.
type Bus struct {
	mu       sync.RWMutex
	handlers map[reflect.Type][]Handler
}

func NewBus() *Bus {
	return &Bus{handlers: make(map[reflect.Type][]Handler)}
}

// Subscribe registers h for events of the same concrete type as prototype.
func (b *Bus) Subscribe(prototype any, h Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	t := reflect.TypeOf(prototype)
	b.handlers[t] = append(b.handlers[t], h)
}

// Publish runs every handler registered for e's type, in registration order.
// The first handler error aborts the dispatch and is returned to the caller.
func (b *Bus) Publish(ctx context.Context, q database.Querier, e any) error {
	b.mu.RLock()
	hs := b.handlers[reflect.TypeOf(e)]
	b.mu.RUnlock()

	for _, h := range hs {
		if err := h(ctx, q, e); err != nil {
			return err
		}
	}
	return nil
}
