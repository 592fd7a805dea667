package ws_test

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	memeventbus "github.com/alanyang/polybus/internal/adapter/memory/eventbus"
	"github.com/alanyang/polybus/internal/domain/event"
	eventssvc "github.com/alanyang/polybus/internal/service/events"
	"github.com/alanyang/polybus/internal/transport/ws"
)

func init() { gin.SetMode(gin.TestMode) }

// ── helpers ───────────────────────────────────────────────────────────────────

func newServer(t *testing.T) (*memeventbus.Bus, *ws.Hub, string) {
	t.Helper()
	bus := memeventbus.New()
	hub := ws.NewHub(bus, eventssvc.NewService(bus, bus, false))
	r := gin.New()
	hub.Register(r.Group("/ws"))
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return bus, hub, "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
}

func dial(t *testing.T, url string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func keyboardBindings(bus *memeventbus.Bus) int {
	for _, s := range bus.Categories() {
		if s.Name == event.NameKeyboard {
			return s.Bindings
		}
	}
	return 0
}

func readJSON(t *testing.T, conn *websocket.Conn) map[string]any {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)
	var msg map[string]any
	require.NoError(t, json.Unmarshal(data, &msg))
	return msg
}

type keyCounter struct{ n atomic.Int64 }

func (l *keyCounter) OnKeyboard(event.Keyboard) { l.n.Add(1) }

// ── Tests ─────────────────────────────────────────────────────────────────────

func TestHub_StreamsBusEvents(t *testing.T) {
	bus, hub, url := newServer(t)
	conn := dial(t, url)

	require.Eventually(t, func() bool { return hub.Clients() == 1 }, 2*time.Second, 5*time.Millisecond)
	assert.Equal(t, 1, keyboardBindings(bus))

	require.NoError(t, bus.Post(event.Keyboard{Key: "Z", Action: event.KeyPressed}))

	msg := readJSON(t, conn)
	assert.Equal(t, "event", msg["type"])
	rec, ok := msg["record"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, event.NameKeyboard, rec["category"])
	assert.Equal(t, map[string]any{"key": "Z", "action": "pressed"}, rec["payload"])
}

func TestHub_DoesNotStreamFrames(t *testing.T) {
	bus, hub, url := newServer(t)
	conn := dial(t, url)
	require.Eventually(t, func() bool { return hub.Clients() == 1 }, 2*time.Second, 5*time.Millisecond)

	require.NoError(t, bus.Post(event.UpdateFrame{DeltaTime: 0.016}))
	require.NoError(t, bus.Post(event.LoadGame{}))

	msg := readJSON(t, conn)
	rec := msg["record"].(map[string]any)
	assert.Equal(t, event.NameLoadGame, rec["category"], "the frame is skipped")
}

func TestHub_Broadcast(t *testing.T) {
	_, hub, url := newServer(t)
	a := dial(t, url)
	b := dial(t, url)
	require.Eventually(t, func() bool { return hub.Clients() == 2 }, 2*time.Second, 5*time.Millisecond)

	hub.Broadcast(map[string]any{"type": "overlay_batch", "frame": 7})

	for _, conn := range []*websocket.Conn{a, b} {
		msg := readJSON(t, conn)
		assert.Equal(t, "overlay_batch", msg["type"])
		assert.InDelta(t, 7, msg["frame"], 0)
	}
}

func TestHub_InboundMessagesArePosted(t *testing.T) {
	bus, hub, url := newServer(t)
	counter := &keyCounter{}
	require.NoError(t, bus.Subscribe(counter))
	conn := dial(t, url)
	require.Eventually(t, func() bool { return hub.Clients() == 1 }, 2*time.Second, 5*time.Millisecond)

	require.NoError(t, conn.WriteJSON(map[string]any{
		"category": event.NameKeyboard,
		"payload":  map[string]any{"key": "Q", "action": "released"},
	}))

	require.Eventually(t, func() bool { return counter.n.Load() == 1 }, 2*time.Second, 5*time.Millisecond)

	// The posting client is also a listener, so it sees its own event.
	msg := readJSON(t, conn)
	assert.Equal(t, "event", msg["type"])
}

func TestHub_InboundErrorsAreReported(t *testing.T) {
	_, hub, url := newServer(t)
	conn := dial(t, url)
	require.Eventually(t, func() bool { return hub.Clients() == 1 }, 2*time.Second, 5*time.Millisecond)

	require.NoError(t, conn.WriteJSON(map[string]any{"category": "teleport"}))

	msg := readJSON(t, conn)
	assert.Equal(t, "error", msg["type"])
	assert.Contains(t, msg["error"], "unknown category")
}

func TestHub_DisconnectUnsubscribes(t *testing.T) {
	bus, hub, url := newServer(t)
	conn := dial(t, url)
	require.Eventually(t, func() bool { return hub.Clients() == 1 }, 2*time.Second, 5*time.Millisecond)

	require.NoError(t, conn.Close())

	require.Eventually(t, func() bool { return hub.Clients() == 0 }, 2*time.Second, 5*time.Millisecond)
	assert.Equal(t, 0, keyboardBindings(bus))
	assert.NoError(t, bus.Post(event.Keyboard{Key: "A"}))
}

func TestHub_CloseEndsConnections(t *testing.T) {
	bus, hub, url := newServer(t)
	conn := dial(t, url)
	require.Eventually(t, func() bool { return hub.Clients() == 1 }, 2*time.Second, 5*time.Millisecond)

	hub.Close()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err := conn.ReadMessage()
	assert.True(t, websocket.IsCloseError(err, websocket.CloseNormalClosure), "got %v", err)

	require.Eventually(t, func() bool { return hub.Clients() == 0 }, 2*time.Second, 5*time.Millisecond)
	assert.Zero(t, keyboardBindings(bus), "a closed client is unsubscribed")
}
