package mcp

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"

	mcpserver "github.com/mark3labs/mcp-go/server"

	memeventbus "github.com/alanyang/polybus/internal/adapter/memory/eventbus"
	"github.com/alanyang/polybus/internal/domain/event"
	porteventbus "github.com/alanyang/polybus/internal/port/eventbus"
)

const notificationMethod = "notifications/message"

// watchable maps the catalog names a session may watch to a handler constructor.
var watchable = map[string]func(*watcher) memeventbus.Handler{
	event.NameUpdateFrame:  func(w *watcher) memeventbus.Handler { return memeventbus.On(notify[event.UpdateFrame](w)) },
	event.NameKeyboard:     func(w *watcher) memeventbus.Handler { return memeventbus.On(notify[event.Keyboard](w)) },
	event.NameMouseMove:    func(w *watcher) memeventbus.Handler { return memeventbus.On(notify[event.MouseMove](w)) },
	event.NameMouseButton:  func(w *watcher) memeventbus.Handler { return memeventbus.On(notify[event.MouseButton](w)) },
	event.NameLoadGame:     func(w *watcher) memeventbus.Handler { return memeventbus.On(notify[event.LoadGame](w)) },
	event.NameResizeWindow: func(w *watcher) memeventbus.Handler { return memeventbus.On(notify[event.ResizeWindow](w)) },
}

// DefaultWatch is every catalog category except frames.
var DefaultWatch = func() []string {
	var names []string
	for _, n := range event.Names() {
		if n != event.NameUpdateFrame {
			names = append(names, n)
		}
	}
	return names
}()

// WatchRegistry keeps one bus listener per MCP session that asked to watch events.
// Each watcher forwards the events it receives to its session as notifications.
//
// [SRP] Session-to-listener bookkeeping and notification dispatch only.
type WatchRegistry struct {
	bus porteventbus.EventBus

	mu       sync.Mutex
	watchers map[string]*watcher

	// mcpSrv is set after the MCP server is constructed (avoids circular init dependency).
	mcpMu  sync.RWMutex
	mcpSrv *mcpserver.MCPServer
	send   func(sessionID string, params map[string]any) error
}

func NewWatchRegistry(bus porteventbus.EventBus) *WatchRegistry {
	r := &WatchRegistry{
		bus:      bus,
		watchers: make(map[string]*watcher),
	}
	r.send = r.sendToSession
	return r
}

// SetMCPServer injects the mcp-go server after construction (breaks the init cycle).
func (r *WatchRegistry) SetMCPServer(s *mcpserver.MCPServer) {
	r.mcpMu.Lock()
	r.mcpSrv = s
	r.mcpMu.Unlock()
}

// Watch subscribes a listener for sessionID covering names, replacing any previous
// watcher for the session. An empty names list means DefaultWatch.
func (r *WatchRegistry) Watch(sessionID string, names []string) ([]string, error) {
	if len(names) == 0 {
		names = DefaultWatch
	}
	set := make(map[string]bool, len(names))
	for _, n := range names {
		n = strings.TrimSpace(n)
		if _, ok := watchable[n]; !ok {
			return nil, fmt.Errorf("%w: %q", event.ErrUnknownCategory, n)
		}
		set[n] = true
	}

	w := &watcher{sessionID: sessionID, reg: r}
	for n := range set {
		w.names = append(w.names, n)
	}
	sort.Strings(w.names)

	r.mu.Lock()
	defer r.mu.Unlock()
	if old, ok := r.watchers[sessionID]; ok {
		r.bus.Unsubscribe(old)
		delete(r.watchers, sessionID)
	}
	if err := r.bus.Subscribe(w); err != nil {
		return nil, fmt.Errorf("subscribing watcher: %w", err)
	}
	r.watchers[sessionID] = w
	return w.names, nil
}

// Unwatch removes the session's watcher. It reports whether one existed.
func (r *WatchRegistry) Unwatch(sessionID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	w, ok := r.watchers[sessionID]
	if !ok {
		return false
	}
	r.bus.Unsubscribe(w)
	delete(r.watchers, sessionID)
	return true
}

// Watching returns the categories the session watches, or nil.
func (r *WatchRegistry) Watching(sessionID string) []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if w, ok := r.watchers[sessionID]; ok {
		return append([]string(nil), w.names...)
	}
	return nil
}

func (r *WatchRegistry) sendToSession(sessionID string, params map[string]any) error {
	r.mcpMu.RLock()
	srv := r.mcpSrv
	r.mcpMu.RUnlock()

	if srv == nil {
		return fmt.Errorf("mcp server not initialized")
	}
	return srv.SendNotificationToSpecificClient(sessionID, notificationMethod, params)
}

// ── watcher ───────────────────────────────────────────────────────────────────

type watcher struct {
	sessionID string
	names     []string
	reg       *WatchRegistry
}

func (w *watcher) Handlers() []memeventbus.Handler {
	hs := make([]memeventbus.Handler, 0, len(w.names))
	for _, n := range w.names {
		hs = append(hs, watchable[n](w))
	}
	return hs
}

// notify never fails the post: a session that cannot be reached is logged and skipped.
func notify[E any](w *watcher) func(E) error {
	return func(e E) error {
		rec, err := event.NewRecord(e)
		if err != nil {
			return err
		}
		params, err := toParams(rec)
		if err != nil {
			return fmt.Errorf("serialize notification: %w", err)
		}
		if err := w.reg.send(w.sessionID, params); err != nil {
			slog.Warn("mcp: notification not delivered", "session_id", w.sessionID, "category", rec.Category, "error", err)
		}
		return nil
	}
}

func toParams(v any) (map[string]any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var params map[string]any
	if err := json.Unmarshal(data, &params); err != nil {
		return map[string]any{"data": v}, nil
	}
	return params, nil
}
