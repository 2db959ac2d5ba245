package events

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// EventHandler handles a published event.
type EventHandler func(context.Context, Event) error

// Dispatcher interface allows event publication/subscription.
type Dispatcher interface {
	Publish(ctx context.Context, event Event) error
	Subscribe(eventType EventType, handler EventHandler)
}

// DispatcherOption customises the in-memory dispatcher.
type DispatcherOption func(*inMemoryDispatcher)

// WithClock sets the clock used to stamp events published without a timestamp.
func WithClock(now func() time.Time) DispatcherOption {
	return func(d *inMemoryDispatcher) {
		d.now = now
	}
}

// inMemoryDispatcher runs handlers synchronously on the publishing goroutine.
type inMemoryDispatcher struct {
	mu        sync.RWMutex
	listeners map[EventType][]EventHandler
	now       func() time.Time
}

// NewInMemoryDispatcher creates a dispatcher instance.
func NewInMemoryDispatcher(opts ...DispatcherOption) Dispatcher {
	d := &inMemoryDispatcher{
		listeners: make(map[EventType][]EventHandler),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Publish fills in a missing ID or timestamp and invokes every handler for the
// event type. A failing or panicking handler does not stop the others; their
// errors are joined into the result.
func (d *inMemoryDispatcher) Publish(ctx context.Context, event Event) error {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = d.now()
	}

	d.mu.RLock()
	handlers := append([]EventHandler{}, d.listeners[event.Type]...)
	d.mu.RUnlock()

	var errs []error
	for _, handler := range handlers {
		if err := invoke(ctx, handler, event); err != nil {
			errs = append(errs, fmt.Errorf("%s handler: %w", event.Type, err))
		}
	}
	return errors.Join(errs...)
}

// Subscribe registers a handler for the given event type.
func (d *inMemoryDispatcher) Subscribe(eventType EventType, handler EventHandler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.listeners[eventType] = append(d.listeners[eventType], handler)
}

func invoke(ctx context.Context, handler EventHandler, event Event) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return handler(ctx, event)
}
