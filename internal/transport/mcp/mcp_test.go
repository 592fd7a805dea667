package mcp

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	mcpmcp "github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alanyang/polybus/internal/adapter/memory"
	memeventbus "github.com/alanyang/polybus/internal/adapter/memory/eventbus"
	"github.com/alanyang/polybus/internal/domain/event"
	eventssvc "github.com/alanyang/polybus/internal/service/events"
	journalsvc "github.com/alanyang/polybus/internal/service/journal"
	overlaysvc "github.com/alanyang/polybus/internal/service/overlay"
	"github.com/alanyang/polybus/internal/testutil"
)

// ── helpers ───────────────────────────────────────────────────────────────────

type fakeSession struct {
	id    string
	notes chan mcpmcp.JSONRPCNotification
}

func newFakeSession(id string) *fakeSession {
	return &fakeSession{id: id, notes: make(chan mcpmcp.JSONRPCNotification, 16)}
}

func (s *fakeSession) Initialize()       {}
func (s *fakeSession) Initialized() bool { return true }
func (s *fakeSession) SessionID() string { return s.id }

func (s *fakeSession) NotificationChannel() chan<- mcpmcp.JSONRPCNotification {
	return s.notes
}

type fixture struct {
	bus     *memeventbus.Bus
	srv     *Server
	overlay *overlaysvc.Service
	journal *journalsvc.Service
	keys    *keyCounter
}

type keyCounter struct{ n int }

func (l *keyCounter) OnKeyboard(event.Keyboard) { l.n++ }

func newFixture(t *testing.T) fixture {
	t.Helper()
	bus := memeventbus.New()
	overlay := overlaysvc.NewService(&testutil.RecordingBroadcaster{})
	journal := journalsvc.NewService(memory.NewJournal(32), false)
	keys := &keyCounter{}
	require.NoError(t, bus.Subscribe(overlay))
	require.NoError(t, bus.Subscribe(journal))
	require.NoError(t, bus.Subscribe(keys))

	srv := New(bus, Services{
		Events:  eventssvc.NewService(bus, bus, false),
		Journal: journal,
		Overlay: overlay,
	})
	return fixture{bus: bus, srv: srv, overlay: overlay, journal: journal, keys: keys}
}

func makeReq(args map[string]any) mcpmcp.CallToolRequest {
	var req mcpmcp.CallToolRequest
	req.Params.Arguments = args
	return req
}

func resultText(r *mcpmcp.CallToolResult) string {
	if r == nil || len(r.Content) == 0 {
		return ""
	}
	b, _ := json.Marshal(r.Content[0])
	var m map[string]interface{}
	json.Unmarshal(b, &m) //nolint:errcheck
	if t, ok := m["text"].(string); ok {
		return t
	}
	return ""
}

func (f fixture) sessionCtx(t *testing.T, s *fakeSession) context.Context {
	t.Helper()
	mcpSrv := f.srv.reg.mcpSrv
	ctx := context.Background()
	require.NoError(t, mcpSrv.RegisterSession(ctx, s))
	return mcpSrv.WithContext(ctx, s)
}

func nextNote(t *testing.T, s *fakeSession) mcpmcp.JSONRPCNotification {
	t.Helper()
	select {
	case n := <-s.notes:
		return n
	case <-time.After(time.Second):
		t.Fatal("no notification delivered")
		return mcpmcp.JSONRPCNotification{}
	}
}

// ── post_event ────────────────────────────────────────────────────────────────

func TestPostEventHandler(t *testing.T) {
	tests := []struct {
		name         string
		args         map[string]any
		wantContains string
		wantKeys     int
	}{
		{
			name:         "keyboard posted",
			args:         map[string]any{"category": "keyboard", "payload": `{"key":"A","action":"pressed"}`},
			wantContains: `"category":"keyboard"`,
			wantKeys:     1,
		},
		{
			name:         "unknown category",
			args:         map[string]any{"category": "teleport"},
			wantContains: "error: event: unknown category",
		},
		{
			name:         "invalid payload",
			args:         map[string]any{"category": "keyboard", "payload": `{"key":`},
			wantContains: "error: event: invalid payload",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			h := postEventHandler(eventssvc.NewService(f.bus, f.bus, false))

			res, err := h(context.Background(), makeReq(tt.args))
			require.NoError(t, err)
			assert.Contains(t, resultText(res), tt.wantContains)
			assert.Equal(t, tt.wantKeys, f.keys.n)
		})
	}
}

// ── list_categories / recent_events ───────────────────────────────────────────

func TestListCategoriesHandler(t *testing.T) {
	f := newFixture(t)
	h := listCategoriesHandler(eventssvc.NewService(f.bus, f.bus, false))

	res, err := h(context.Background(), makeReq(nil))
	require.NoError(t, err)

	var got struct {
		Known    []string              `json:"known"`
		Registry []event.CategoryStats `json:"registry"`
	}
	require.NoError(t, json.Unmarshal([]byte(resultText(res)), &got))
	assert.Equal(t, event.Names(), got.Known)
	assert.NotEmpty(t, got.Registry)
}

func TestRecentEventsHandler(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.bus.Post(event.LoadGame{}))
	require.NoError(t, f.bus.Post(event.MouseMove{X: 1}))
	h := recentEventsHandler(f.journal)

	res, err := h(context.Background(), makeReq(map[string]any{"limit": 1}))
	require.NoError(t, err)

	var got []event.Record
	require.NoError(t, json.Unmarshal([]byte(resultText(res)), &got))
	require.Len(t, got, 1)
	assert.Equal(t, event.NameMouseMove, got[0].Category)
}

func TestRecentEventsHandler_EmptyIsArray(t *testing.T) {
	f := newFixture(t)
	res, err := recentEventsHandler(f.journal)(context.Background(), makeReq(nil))
	require.NoError(t, err)
	assert.Equal(t, "[]", resultText(res))
}

// ── draw_text ─────────────────────────────────────────────────────────────────

func TestDrawTextHandler(t *testing.T) {
	f := newFixture(t)
	h := drawTextHandler(f.overlay)
	args := map[string]any{"text": "hello", "x": 5, "y": 5}

	res, err := h(context.Background(), makeReq(args))
	require.NoError(t, err)
	assert.Contains(t, resultText(res), "not ready")

	require.NoError(t, f.bus.Post(event.LoadGame{}))
	res, err = h(context.Background(), makeReq(args))
	require.NoError(t, err)
	assert.Equal(t, `{"queued":true}`, resultText(res))
	assert.Equal(t, 1, f.overlay.Pending())

	res, err = h(context.Background(), makeReq(map[string]any{"text": ""}))
	require.NoError(t, err)
	assert.Contains(t, resultText(res), "error:")
}

// ── watch_events ──────────────────────────────────────────────────────────────

func TestWatchEvents_StreamsUntilSessionCloses(t *testing.T) {
	f := newFixture(t)
	s := newFakeSession("session-1")
	ctx := f.sessionCtx(t, s)

	res, err := watchEventsHandler(f.srv.reg)(ctx, makeReq(map[string]any{"categories": "keyboard, resize_window"}))
	require.NoError(t, err)
	assert.JSONEq(t, `{"watching":["keyboard","resize_window"]}`, resultText(res))

	require.NoError(t, f.bus.Post(event.MouseMove{}))
	require.NoError(t, f.bus.Post(event.Keyboard{Key: "W", Action: event.KeyPressed}))

	note := nextNote(t, s)
	assert.Equal(t, notificationMethod, note.Method)
	assert.Equal(t, event.NameKeyboard, note.Params.AdditionalFields["category"])
	assert.Empty(t, s.notes, "mouse_move was not watched")

	f.srv.reg.mcpSrv.UnregisterSession(context.Background(), s.id)

	assert.Nil(t, f.srv.reg.Watching(s.id))
	require.NoError(t, f.bus.Post(event.Keyboard{Key: "W"}))
	assert.Empty(t, s.notes)
}

func TestWatchEvents_DefaultSkipsFrames(t *testing.T) {
	f := newFixture(t)
	s := newFakeSession("session-2")
	ctx := f.sessionCtx(t, s)

	_, err := watchEventsHandler(f.srv.reg)(ctx, makeReq(nil))
	require.NoError(t, err)
	assert.Equal(t, DefaultWatch, f.srv.reg.Watching(s.id))

	require.NoError(t, f.bus.Post(event.UpdateFrame{}))
	require.NoError(t, f.bus.Post(event.LoadGame{}))

	note := nextNote(t, s)
	assert.Equal(t, event.NameLoadGame, note.Params.AdditionalFields["category"])
}

func TestWatchEvents_RewatchReplaces(t *testing.T) {
	f := newFixture(t)
	s := newFakeSession("session-3")
	ctx := f.sessionCtx(t, s)
	h := watchEventsHandler(f.srv.reg)

	_, err := h(ctx, makeReq(map[string]any{"categories": "keyboard"}))
	require.NoError(t, err)
	_, err = h(ctx, makeReq(map[string]any{"categories": "keyboard"}))
	require.NoError(t, err)

	require.NoError(t, f.bus.Post(event.Keyboard{}))
	nextNote(t, s)
	assert.Empty(t, s.notes, "only one watcher is bound per session")
}

func TestWatchEvents_UnknownCategory(t *testing.T) {
	f := newFixture(t)
	ctx := f.sessionCtx(t, newFakeSession("session-4"))

	res, err := watchEventsHandler(f.srv.reg)(ctx, makeReq(map[string]any{"categories": "keyboard,teleport"}))
	require.NoError(t, err)
	assert.Contains(t, resultText(res), "unknown category")
	assert.Nil(t, f.srv.reg.Watching("session-4"))
}

func TestWatchEvents_NoSession(t *testing.T) {
	f := newFixture(t)

	res, err := watchEventsHandler(f.srv.reg)(context.Background(), makeReq(nil))
	require.NoError(t, err)
	assert.Equal(t, "error: no session", resultText(res))
}

func TestUnwatchEvents(t *testing.T) {
	f := newFixture(t)
	s := newFakeSession("session-5")
	ctx := f.sessionCtx(t, s)

	_, err := watchEventsHandler(f.srv.reg)(ctx, makeReq(nil))
	require.NoError(t, err)

	res, err := unwatchEventsHandler(f.srv.reg)(ctx, makeReq(nil))
	require.NoError(t, err)
	assert.JSONEq(t, `{"removed":true}`, resultText(res))

	require.NoError(t, f.bus.Post(event.LoadGame{}))
	assert.Empty(t, s.notes)
}

// ── WatchRegistry ─────────────────────────────────────────────────────────────

func TestWatchRegistry_UndeliverableNotificationDoesNotFailPost(t *testing.T) {
	bus := memeventbus.New()
	reg := NewWatchRegistry(bus)

	_, err := reg.Watch("ghost", []string{event.NameKeyboard})
	require.NoError(t, err)

	assert.NoError(t, bus.Post(event.Keyboard{}), "mcp server not set; the post still succeeds")
}

func TestWatchRegistry_UnwatchUnknown(t *testing.T) {
	reg := NewWatchRegistry(memeventbus.New())
	assert.False(t, reg.Unwatch("nope"))
}
