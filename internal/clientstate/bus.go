package clientstate

import (
	"context"
	"sync"
)

// Change announces that a storage key was rewritten by the view named Origin.
type Change struct {
	Key    string `json:"key"`
	Value  string `json:"value"`
	Origin string `json:"origin"`
}

// Bus fans change notifications out to every view of the same client.
type Bus interface {
	Publish(ctx context.Context, change Change) error
	// Subscribe registers handler for every published change. The returned cancel stops
	// delivery.
	Subscribe(handler func(Change)) (cancel func(), err error)
}

// LocalBus delivers changes synchronously to subscribers in the same process.
type LocalBus struct {
	mu     sync.RWMutex
	nextID int
	subs   map[int]func(Change)
}

// NewLocalBus creates an in-process bus.
func NewLocalBus() *LocalBus {
	return &LocalBus{subs: make(map[int]func(Change))}
}

func (b *LocalBus) Publish(_ context.Context, change Change) error {
	b.mu.RLock()
	handlers := make([]func(Change), 0, len(b.subs))
	for _, h := range b.subs {
		handlers = append(handlers, h)
	}
	b.mu.RUnlock()

	for _, h := range handlers {
		h(change)
	}
	return nil
}

func (b *LocalBus) Subscribe(handler func(Change)) (func(), error) {
	b.mu.Lock()
	id := b.nextID
	b.nextID++
	b.subs[id] = handler
	b.mu.Unlock()

	return func() {
		b.mu.Lock()
		delete(b.subs, id)
		b.mu.Unlock()
	}, nil
}
