package events

import (
	"context"
	"sync"

	"github.com/spec-kit/identity-service/internal/domain"
)

// EventHandler handles a published lifecycle event.
type EventHandler func(context.Context, domain.Event) error

// Subscription identifies a registered handler so it can be removed.
type Subscription struct {
	eventType domain.EventType
	id        int
}

// Dispatcher allows event publication and subscription. It satisfies
// domain.Publisher so it can be handed to entity transitions directly.
type Dispatcher interface {
	domain.Publisher
	Subscribe(eventType domain.EventType, handler EventHandler) Subscription
	Unsubscribe(sub Subscription)
}

// inMemoryDispatcher is a simple synchronous dispatcher.
type inMemoryDispatcher struct {
	mu        sync.RWMutex
	nextID    int
	listeners map[domain.EventType]map[int]EventHandler
}

// NewInMemoryDispatcher creates a dispatcher instance.
func NewInMemoryDispatcher() Dispatcher {
	return &inMemoryDispatcher{
		listeners: make(map[domain.EventType]map[int]EventHandler),
	}
}

// Publish synchronously invokes handlers for the given event. A failing
// handler does not stop delivery to the remaining handlers; listeners own
// their retries.
func (d *inMemoryDispatcher) Publish(ctx context.Context, event domain.Event) error {
	d.mu.RLock()
	handlers := make([]EventHandler, 0, len(d.listeners[event.Type]))
	for _, handler := range d.listeners[event.Type] {
		handlers = append(handlers, handler)
	}
	d.mu.RUnlock()

	for _, handler := range handlers {
		if err := handler(ctx, event); err != nil {
			// continue processing other handlers despite errors
		}
	}
	return nil
}

// Subscribe registers a handler for the given event type.
func (d *inMemoryDispatcher) Subscribe(eventType domain.EventType, handler EventHandler) Subscription {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.listeners[eventType] == nil {
		d.listeners[eventType] = make(map[int]EventHandler)
	}
	d.nextID++
	d.listeners[eventType][d.nextID] = handler
	return Subscription{eventType: eventType, id: d.nextID}
}

// Unsubscribe removes a previously registered handler.
func (d *inMemoryDispatcher) Unsubscribe(sub Subscription) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.listeners[sub.eventType], sub.id)
}
