package ws

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) (*Hub, *websocket.Conn) {
	t.Helper()

	hub := NewHub()
	go hub.Run()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ServeWS(hub, w, r)
	}))
	t.Cleanup(server.Close)

	url := "ws" + strings.TrimPrefix(server.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	// Give the hub a moment to process the registration.
	time.Sleep(20 * time.Millisecond)
	return hub, conn
}

func readEvent(t *testing.T, conn *websocket.Conn) StoreEvent {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, msg, err := conn.ReadMessage()
	require.NoError(t, err)

	var event StoreEvent
	require.NoError(t, json.Unmarshal(msg, &event))
	return event
}

func TestBroadcastReachesClient(t *testing.T) {
	hub, conn := newTestServer(t)

	hub.Broadcast("trendai-gallery", []byte(`[{"id":"trendai-1"}]`))

	event := readEvent(t, conn)
	require.Equal(t, "trendai-gallery", event.Key)
	require.JSONEq(t, `[{"id":"trendai-1"}]`, string(event.Value))
}

func TestBroadcastAbsentValue(t *testing.T) {
	hub, conn := newTestServer(t)

	hub.Broadcast("trendai-user-session", nil)

	event := readEvent(t, conn)
	require.Equal(t, "trendai-user-session", event.Key)
	require.JSONEq(t, `null`, string(event.Value))
}

func TestBroadcastOrdering(t *testing.T) {
	hub, conn := newTestServer(t)

	hub.Broadcast("k", []byte(`1`))
	hub.Broadcast("k", []byte(`2`))
	hub.Broadcast("k", []byte(`3`))

	for i, want := range []string{"1", "2", "3"} {
		event := readEvent(t, conn)
		require.Equal(t, want, string(event.Value), "event %d", i)
	}
}
