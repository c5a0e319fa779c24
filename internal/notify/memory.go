package notify

import (
	"context"
	"sync"
)

// MemoryBus is an in-process Backend. Every subscriber on a channel receives
// every published payload, which makes two stores sharing one bus behave like
// two browser tabs sharing one localStorage.
type MemoryBus struct {
	mu          sync.Mutex
	subscribers map[string][]chan []byte
	closed      bool
}

// NewMemoryBus constructs an empty in-process bus.
func NewMemoryBus() *MemoryBus {
	return &MemoryBus{subscribers: make(map[string][]chan []byte)}
}

// Publish delivers the payload to every current subscriber on the channel.
func (b *MemoryBus) Publish(_ context.Context, channel string, data []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil
	}
	for _, ch := range b.subscribers[channel] {
		// Drop rather than block when a subscriber falls behind.
		select {
		case ch <- data:
		default:
		}
	}
	return nil
}

// Subscribe delivers payloads to the handler until ctx is done.
func (b *MemoryBus) Subscribe(ctx context.Context, channel string, handler func(ctx context.Context, data []byte) error) error {
	ch := make(chan []byte, 64)

	b.mu.Lock()
	b.subscribers[channel] = append(b.subscribers[channel], ch)
	b.mu.Unlock()

	defer func() {
		b.mu.Lock()
		subs := b.subscribers[channel]
		for i, c := range subs {
			if c == ch {
				b.subscribers[channel] = append(subs[:i], subs[i+1:]...)
				break
			}
		}
		b.mu.Unlock()
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case data := <-ch:
			_ = handler(ctx, data)
		}
	}
}

// Close marks the bus closed; subsequent publishes are no-ops.
func (b *MemoryBus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	return nil
}
