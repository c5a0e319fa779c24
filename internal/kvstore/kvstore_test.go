package kvstore

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/trendai/apiserver/internal/notify"
)

func TestMemoryBackendRoundTrip(t *testing.T) {
	ctx := context.Background()
	backend := NewMemoryBackend()

	_, err := backend.Get(ctx, "missing")
	require.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, backend.Set(ctx, "k", []byte(`{"a":1}`)))
	got, err := backend.Get(ctx, "k")
	require.NoError(t, err)
	require.Equal(t, []byte(`{"a":1}`), got)

	require.NoError(t, backend.Set(ctx, "k", []byte(`{"a":2}`)))
	got, err = backend.Get(ctx, "k")
	require.NoError(t, err)
	require.Equal(t, []byte(`{"a":2}`), got)

	require.NoError(t, backend.Delete(ctx, "k"))
	_, err = backend.Get(ctx, "k")
	require.ErrorIs(t, err, ErrNotFound)

	// Deleting an unset key is a no-op.
	require.NoError(t, backend.Delete(ctx, "k"))
}

func TestSubscribeInitialDelivery(t *testing.T) {
	ctx := context.Background()
	store := New(NewMemoryBackend(), nil, nil)

	var (
		mu     sync.Mutex
		values [][]byte
		oks    []bool
	)
	record := func(value []byte, ok bool) {
		mu.Lock()
		defer mu.Unlock()
		values = append(values, value)
		oks = append(oks, ok)
	}

	// Absent key still delivers an initial "no value".
	unsub := store.Subscribe(ctx, "k", record)
	defer unsub()

	mu.Lock()
	require.Len(t, values, 1)
	require.False(t, oks[0])
	require.Nil(t, values[0])
	mu.Unlock()

	// A present key delivers its current value.
	require.NoError(t, store.Set(ctx, "k", []byte("v")))
	unsub2 := store.Subscribe(ctx, "k", record)
	defer unsub2()

	mu.Lock()
	require.Len(t, values, 2)
	require.True(t, oks[1])
	require.Equal(t, []byte("v"), values[1])
	mu.Unlock()
}

func TestSubscribeIgnoresOwnWrites(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	bus := notify.NewMemoryBus()
	backend := NewMemoryBackend()
	store := New(backend, notify.New(bus, "events"), nil)
	go func() { _ = store.Listen(ctx) }()

	calls := make(chan []byte, 8)
	unsub := store.Subscribe(ctx, "k", func(value []byte, ok bool) {
		calls <- value
	})
	defer unsub()

	// Initial delivery.
	require.Nil(t, <-calls)

	// The store's own write is observed synchronously by its caller and
	// must not be echoed back through the notification path.
	require.NoError(t, store.Set(ctx, "k", []byte("own")))

	select {
	case v := <-calls:
		t.Fatalf("own write echoed to subscriber: %q", v)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestSubscribeSeesOtherContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Two stores over one durable medium and one bus model two tabs.
	bus := notify.NewMemoryBus()
	backend := NewMemoryBackend()
	tabA := New(backend, notify.New(bus, "events"), nil)
	tabB := New(backend, notify.New(bus, "events"), nil)
	go func() { _ = tabA.Listen(ctx) }()
	go func() { _ = tabB.Listen(ctx) }()

	// Give the listeners a beat to register with the bus.
	time.Sleep(20 * time.Millisecond)

	calls := make(chan []byte, 8)
	unsub := tabA.Subscribe(ctx, "k", func(value []byte, ok bool) {
		calls <- value
	})
	defer unsub()

	require.Nil(t, <-calls) // initial

	require.NoError(t, tabB.Set(ctx, "k", []byte("from-b")))
	select {
	case v := <-calls:
		require.Equal(t, []byte("from-b"), v)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for cross-context notification")
	}

	require.NoError(t, tabB.Remove(ctx, "k"))
	select {
	case v := <-calls:
		require.Nil(t, v)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for cross-context removal")
	}
}

func TestUnsubscribeStopsNotifications(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	bus := notify.NewMemoryBus()
	backend := NewMemoryBackend()
	tabA := New(backend, notify.New(bus, "events"), nil)
	tabB := New(backend, notify.New(bus, "events"), nil)
	go func() { _ = tabA.Listen(ctx) }()

	time.Sleep(20 * time.Millisecond)

	calls := make(chan []byte, 8)
	unsub := tabA.Subscribe(ctx, "k", func(value []byte, ok bool) {
		calls <- value
	})
	<-calls // initial

	unsub()

	require.NoError(t, tabB.Set(ctx, "k", []byte("late")))
	select {
	case v := <-calls:
		t.Fatalf("notification after unsubscribe: %q", v)
	case <-time.After(100 * time.Millisecond):
	}
}
