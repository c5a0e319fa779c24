// Package kvstore provides the durable key-value store backing the user
// directory, the active session, and the gallery. Values are whole JSON
// documents replaced on every write (last-write-wins); there are no
// cross-key transactions. Subscriptions observe mutations made by other
// execution contexts sharing the same durable medium.
package kvstore

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/trendai/apiserver/internal/notify"
)

// ErrNotFound is returned when a key is unset.
var ErrNotFound = errors.New("key not found")

// Backend defines the durable-medium operations used by the store.
type Backend interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Subscriber receives a key's value. ok is false when the key is absent.
type Subscriber func(value []byte, ok bool)

// Store wraps a durable backend and a change notifier with a stable API.
type Store struct {
	backend  Backend
	notifier *notify.Notifier
	origin   string
	logger   *slog.Logger

	mu     sync.Mutex
	nextID int
	subs   map[string]map[int]Subscriber
}

// New constructs a Store over the provided backend and notifier. Each Store
// gets a unique origin id so its own writes are never echoed back to its
// subscribers.
func New(backend Backend, notifier *notify.Notifier, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		backend:  backend,
		notifier: notifier,
		origin:   uuid.NewString(),
		logger:   logger,
		subs:     make(map[string]map[int]Subscriber),
	}
}

// Origin returns this store instance's origin id.
func (s *Store) Origin() string {
	return s.origin
}

// Get returns the stored value for key, or ErrNotFound if unset.
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	return s.backend.Get(ctx, key)
}

// Set durably stores value under key, fully replacing any prior value, and
// broadcasts the change to other contexts. A broadcast failure is logged but
// not returned: the write itself is already durable.
func (s *Store) Set(ctx context.Context, key string, value []byte) error {
	if err := s.backend.Set(ctx, key, value); err != nil {
		return err
	}
	s.publish(ctx, notify.Event{Key: key, Op: notify.OpSet, Origin: s.origin})
	return nil
}

// Remove deletes key and broadcasts the change to other contexts. Removing
// an unset key is not an error.
func (s *Store) Remove(ctx context.Context, key string) error {
	if err := s.backend.Delete(ctx, key); err != nil && !errors.Is(err, ErrNotFound) {
		return err
	}
	s.publish(ctx, notify.Event{Key: key, Op: notify.OpRemove, Origin: s.origin})
	return nil
}

// Subscribe registers fn for key. fn is invoked once immediately with the
// key's current value (absent delivered as ok=false), and again whenever
// another context mutates the key. The returned function stops future
// notifications.
func (s *Store) Subscribe(ctx context.Context, key string, fn Subscriber) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	if s.subs[key] == nil {
		s.subs[key] = make(map[int]Subscriber)
	}
	s.subs[key][id] = fn
	s.mu.Unlock()

	// Initial delivery so the consumer has a state without racing the
	// first external change. Read failures degrade to absent.
	value, err := s.backend.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			s.logger.Warn("kvstore: initial read failed, treating as absent", "key", key, "error", err)
		}
		fn(nil, false)
	} else {
		fn(value, true)
	}

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subs[key], id)
		if len(s.subs[key]) == 0 {
			delete(s.subs, key)
		}
	}
}

// Listen consumes change events from other contexts and dispatches them to
// subscribers until ctx is done. Events originating from this store are
// skipped; the caller already observed its own writes synchronously.
func (s *Store) Listen(ctx context.Context) error {
	if s.notifier == nil {
		<-ctx.Done()
		return ctx.Err()
	}
	return s.notifier.Subscribe(ctx, func(ctx context.Context, event notify.Event) error {
		if event.Origin == s.origin {
			return nil
		}
		s.dispatch(ctx, event.Key)
		return nil
	})
}

// Close closes the underlying backend and notifier.
func (s *Store) Close() error {
	if s.notifier != nil {
		_ = s.notifier.Close()
	}
	return s.backend.Close()
}

func (s *Store) publish(ctx context.Context, event notify.Event) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Publish(ctx, event); err != nil {
		s.logger.Warn("kvstore: change broadcast failed", "key", event.Key, "error", err)
	}
}

func (s *Store) dispatch(ctx context.Context, key string) {
	s.mu.Lock()
	fns := make([]Subscriber, 0, len(s.subs[key]))
	for _, fn := range s.subs[key] {
		fns = append(fns, fn)
	}
	s.mu.Unlock()

	if len(fns) == 0 {
		return
	}

	value, err := s.backend.Get(ctx, key)
	ok := err == nil
	if err != nil && !errors.Is(err, ErrNotFound) {
		s.logger.Warn("kvstore: read after change failed, treating as absent", "key", key, "error", err)
	}
	if !ok {
		value = nil
	}
	for _, fn := range fns {
		fn(value, ok)
	}
}
