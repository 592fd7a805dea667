package mcp

import (
	"context"
	"log/slog"
	"net/http"

	mcpserver "github.com/mark3labs/mcp-go/server"

	porteventbus "github.com/alanyang/polybus/internal/port/eventbus"
	eventssvc "github.com/alanyang/polybus/internal/service/events"
	journalsvc "github.com/alanyang/polybus/internal/service/journal"
	overlaysvc "github.com/alanyang/polybus/internal/service/overlay"
)

// Server wraps the mark3labs/mcp-go MCPServer and its StreamableHTTPServer.
// [SRP] HTTP server lifecycle and session close only.
//
//	Tools are registered in tools.go, session watchers live in registry.go.
type Server struct {
	httpSrv *mcpserver.StreamableHTTPServer
	reg     *WatchRegistry
}

// Services groups what the tools call into.
type Services struct {
	Events  *eventssvc.Service
	Journal *journalsvc.Service
	Overlay *overlaysvc.Service
}

func New(bus porteventbus.EventBus, svcs Services) *Server {
	reg := NewWatchRegistry(bus)
	s := &Server{reg: reg}

	hooks := &mcpserver.Hooks{}
	hooks.OnUnregisterSession = append(hooks.OnUnregisterSession, s.onSessionClose)

	mcpSrv := mcpserver.NewMCPServer(
		"polybus",
		"1.0.0",
		mcpserver.WithToolCapabilities(true),
		mcpserver.WithHooks(hooks),
	)

	reg.SetMCPServer(mcpSrv)
	RegisterTools(mcpSrv, reg, svcs)

	s.httpSrv = mcpserver.NewStreamableHTTPServer(mcpSrv)
	return s
}

// Handler returns an http.Handler that serves the MCP endpoint.
func (s *Server) Handler() http.Handler {
	return s.httpSrv
}

func (s *Server) Registry() *WatchRegistry {
	return s.reg
}

// Shutdown closes every open session.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpSrv.Shutdown(ctx)
}

func (s *Server) onSessionClose(ctx context.Context, session mcpserver.ClientSession) {
	if s.reg.Unwatch(session.SessionID()) {
		slog.InfoContext(ctx, "mcp: session closed, watcher removed", "session_id", session.SessionID())
	}
}
