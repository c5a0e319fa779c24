package notify

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestMemoryBusFansOutToAllSubscribers(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	bus := NewMemoryBus()
	a := make(chan Event, 4)
	b := make(chan Event, 4)

	subscribe := func(out chan Event) {
		notifier := New(bus, "events")
		go func() {
			_ = notifier.Subscribe(ctx, func(_ context.Context, event Event) error {
				out <- event
				return nil
			})
		}()
	}
	subscribe(a)
	subscribe(b)

	time.Sleep(20 * time.Millisecond)

	publisher := New(bus, "events")
	require.NoError(t, publisher.Publish(ctx, Event{Key: "k", Op: OpSet, Origin: "tab-1"}))

	for _, out := range []chan Event{a, b} {
		select {
		case event := <-out:
			require.Equal(t, "k", event.Key)
			require.Equal(t, OpSet, event.Op)
			require.Equal(t, "tab-1", event.Origin)
		case <-time.After(2 * time.Second):
			t.Fatal("timed out waiting for event")
		}
	}
}

func TestMemoryBusChannelsAreIsolated(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	bus := NewMemoryBus()
	out := make(chan Event, 4)
	go func() {
		_ = New(bus, "one").Subscribe(ctx, func(_ context.Context, event Event) error {
			out <- event
			return nil
		})
	}()

	time.Sleep(20 * time.Millisecond)

	require.NoError(t, New(bus, "two").Publish(ctx, Event{Key: "k", Op: OpSet, Origin: "x"}))
	select {
	case event := <-out:
		t.Fatalf("event leaked across channels: %+v", event)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestNotifierDropsUndecodablePayloads(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	bus := NewMemoryBus()
	out := make(chan Event, 4)
	go func() {
		_ = New(bus, "events").Subscribe(ctx, func(_ context.Context, event Event) error {
			out <- event
			return nil
		})
	}()

	time.Sleep(20 * time.Millisecond)

	require.NoError(t, bus.Publish(ctx, "events", []byte("not json")))
	require.NoError(t, New(bus, "events").Publish(ctx, Event{Key: "k", Op: OpRemove, Origin: "x"}))

	select {
	case event := <-out:
		// Only the well-formed event arrives.
		require.Equal(t, "k", event.Key)
		require.Equal(t, OpRemove, event.Op)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event")
	}
}
