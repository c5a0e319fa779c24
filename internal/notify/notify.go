// Package notify carries key-change events between execution contexts that
// share the same durable store, the way a browser's storage event fans out
// localStorage writes to other tabs. Backends are interchangeable; an
// in-memory bus stands in for a broker in tests and single-node deployments.
package notify

import (
	"context"
	"encoding/json"
)

// Op describes what happened to a key.
type Op string

const (
	OpSet    Op = "set"
	OpRemove Op = "remove"
)

// Event describes a single key mutation in some execution context.
type Event struct {
	// Key is the store key that changed.
	Key string `json:"key"`

	// Op is the kind of mutation.
	Op Op `json:"op"`

	// Origin identifies the store instance that performed the mutation.
	// Subscribers use it to ignore their own writes.
	Origin string `json:"origin"`
}

// Handler processes an event. Return an error to signal a redelivery where
// the backend supports it.
type Handler func(ctx context.Context, event Event) error

// Backend defines the broker-agnostic operations used by the store.
type Backend interface {
	Publish(ctx context.Context, channel string, data []byte) error
	Subscribe(ctx context.Context, channel string, handler func(ctx context.Context, data []byte) error) error
	Close() error
}

// Notifier wraps a backend with a typed API over a fixed channel.
type Notifier struct {
	backend Backend
	channel string
}

// New constructs a Notifier for the provided backend and channel.
func New(backend Backend, channel string) *Notifier {
	return &Notifier{backend: backend, channel: channel}
}

// Publish broadcasts an event to every other context on the channel.
func (n *Notifier) Publish(ctx context.Context, event Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return n.backend.Publish(ctx, n.channel, data)
}

// Subscribe consumes events from the channel until ctx is done. Payloads
// that do not decode as events are dropped.
func (n *Notifier) Subscribe(ctx context.Context, handler Handler) error {
	return n.backend.Subscribe(ctx, n.channel, func(ctx context.Context, data []byte) error {
		var event Event
		if err := json.Unmarshal(data, &event); err != nil {
			return nil
		}
		return handler(ctx, event)
	})
}

// Close closes the underlying backend.
func (n *Notifier) Close() error {
	return n.backend.Close()
}
