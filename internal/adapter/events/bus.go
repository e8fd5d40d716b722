// Package events fans committed ledger events out to observers.
package events

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"palma-lending/internal/core/domain"
)

// Listener handles one event. A listener error does not stop delivery to
// the remaining listeners.
type Listener func(ctx context.Context, event *domain.Event) error

type subscription struct {
	name     string
	listener Listener
}

// Bus implements ports.EventPublisher by calling every listener subscribed
// to the event's type, plus every listener subscribed to all types.
type Bus struct {
	mx        sync.RWMutex
	byType    map[domain.EventType][]subscription
	wildcards []subscription
}

// NewBus creates a bus without listeners.
func NewBus() *Bus {
	return &Bus{
		byType: make(map[domain.EventType][]subscription),
	}
}

// Subscribe registers listener for the given types, or for all types when
// none are given.
func (b *Bus) Subscribe(name string, listener Listener, types ...domain.EventType) *Bus {
	b.mx.Lock()
	defer b.mx.Unlock()

	sub := subscription{name: name, listener: listener}
	if len(types) == 0 {
		b.wildcards = append(b.wildcards, sub)
		return b
	}
	for _, t := range types {
		b.byType[t] = append(b.byType[t], sub)
	}
	return b
}

// Publish delivers event to its listeners in subscription order, wildcard
// listeners first, and joins their errors.
func (b *Bus) Publish(ctx context.Context, event *domain.Event) error {
	b.mx.RLock()
	subs := make([]subscription, 0, len(b.wildcards)+len(b.byType[event.Type]))
	subs = append(subs, b.wildcards...)
	subs = append(subs, b.byType[event.Type]...)
	b.mx.RUnlock()

	var errs []error
	for _, s := range subs {
		if err := s.listener(ctx, event); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", s.name, err))
		}
	}
	return errors.Join(errs...)
}
