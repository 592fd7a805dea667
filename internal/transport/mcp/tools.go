package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	mcpmcp "github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/alanyang/polybus/internal/domain/event"
	eventssvc "github.com/alanyang/polybus/internal/service/events"
	journalsvc "github.com/alanyang/polybus/internal/service/journal"
	overlaysvc "github.com/alanyang/polybus/internal/service/overlay"
)

// RegisterTools registers all MCP tools on the server.
// [OCP] Add a new tool by adding a new AddTool call; server.go never changes.
func RegisterTools(s *mcpserver.MCPServer, reg *WatchRegistry, svcs Services) {
	names := strings.Join(event.Names(), ", ")

	s.AddTool(mcpmcp.NewTool("post_event",
		mcpmcp.WithDescription("Post an event to the bus. Handlers run before this call returns; a failing handler is reported as an error."),
		mcpmcp.WithString("category", mcpmcp.Required(), mcpmcp.Description("Event category, one of: "+names)),
		mcpmcp.WithString("payload", mcpmcp.Description("JSON object with the event fields. Omit for events without fields.")),
	), postEventHandler(svcs.Events))

	s.AddTool(mcpmcp.NewTool("list_categories",
		mcpmcp.WithDescription("List the known event categories and how many handlers are bound to each."),
	), listCategoriesHandler(svcs.Events))

	s.AddTool(mcpmcp.NewTool("recent_events",
		mcpmcp.WithDescription("Return the most recently journaled events, newest first."),
		mcpmcp.WithNumber("limit", mcpmcp.Description("Maximum number of events (default 50)")),
	), recentEventsHandler(svcs.Journal))

	s.AddTool(mcpmcp.NewTool("draw_text",
		mcpmcp.WithDescription("Queue text on the overlay for the next frame. Fails until the game has loaded."),
		mcpmcp.WithString("text", mcpmcp.Required(), mcpmcp.Description("Text to draw")),
		mcpmcp.WithNumber("x", mcpmcp.Description("Baseline x in pixels from the left edge")),
		mcpmcp.WithNumber("y", mcpmcp.Description("Baseline y in pixels from the bottom edge")),
		mcpmcp.WithNumber("scale", mcpmcp.Description("Scale factor (default 1)")),
	), drawTextHandler(svcs.Overlay))

	s.AddTool(mcpmcp.NewTool("watch_events",
		mcpmcp.WithDescription("Stream events to this session as notifications until it closes or unwatch_events is called. Replaces any earlier watch."),
		mcpmcp.WithString("categories", mcpmcp.Description("Comma-separated categories. Defaults to every category except update_frame.")),
	), watchEventsHandler(reg))

	s.AddTool(mcpmcp.NewTool("unwatch_events",
		mcpmcp.WithDescription("Stop streaming events to this session."),
	), unwatchEventsHandler(reg))
}

// ── Tool handlers ─────────────────────────────────────────────────────────

func postEventHandler(svc *eventssvc.Service) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, req mcpmcp.CallToolRequest) (*mcpmcp.CallToolResult, error) {
		category := mcpmcp.ParseString(req, "category", "")
		payload := mcpmcp.ParseString(req, "payload", "")

		rec, err := svc.PostNamed(ctx, category, []byte(payload))
		if err != nil {
			return mcpmcp.NewToolResultText(fmt.Sprintf("error: %s", err)), nil
		}
		return jsonResult(rec)
	}
}

func listCategoriesHandler(svc *eventssvc.Service) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, req mcpmcp.CallToolRequest) (*mcpmcp.CallToolResult, error) {
		return jsonResult(map[string]any{
			"known":    svc.Names(),
			"registry": svc.Categories(),
		})
	}
}

func recentEventsHandler(svc *journalsvc.Service) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, req mcpmcp.CallToolRequest) (*mcpmcp.CallToolResult, error) {
		limit := mcpmcp.ParseInt(req, "limit", journalsvc.DefaultRecentLimit)
		records, err := svc.Recent(ctx, limit)
		if err != nil {
			return mcpmcp.NewToolResultText(fmt.Sprintf("error: %s", err)), nil
		}
		if records == nil {
			records = []event.Record{}
		}
		return jsonResult(records)
	}
}

func drawTextHandler(svc *overlaysvc.Service) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, req mcpmcp.CallToolRequest) (*mcpmcp.CallToolResult, error) {
		cmd := overlaysvc.TextCommand{
			Text:  mcpmcp.ParseString(req, "text", ""),
			X:     mcpmcp.ParseFloat64(req, "x", 0),
			Y:     mcpmcp.ParseFloat64(req, "y", 0),
			Scale: mcpmcp.ParseFloat64(req, "scale", 1),
		}
		if err := svc.DrawText(cmd); err != nil {
			if errors.Is(err, overlaysvc.ErrNotReady) {
				return mcpmcp.NewToolResultText("error: overlay not ready, the game has not loaded"), nil
			}
			return mcpmcp.NewToolResultText(fmt.Sprintf("error: %s", err)), nil
		}
		return mcpmcp.NewToolResultText(`{"queued":true}`), nil
	}
}

func watchEventsHandler(reg *WatchRegistry) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, req mcpmcp.CallToolRequest) (*mcpmcp.CallToolResult, error) {
		session := mcpserver.ClientSessionFromContext(ctx)
		if session == nil {
			return mcpmcp.NewToolResultText("error: no session"), nil
		}

		var names []string
		if raw := mcpmcp.ParseString(req, "categories", ""); raw != "" {
			names = strings.Split(raw, ",")
		}
		watching, err := reg.Watch(session.SessionID(), names)
		if err != nil {
			return mcpmcp.NewToolResultText(fmt.Sprintf("error: %s", err)), nil
		}
		return jsonResult(map[string]any{"watching": watching})
	}
}

func unwatchEventsHandler(reg *WatchRegistry) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, req mcpmcp.CallToolRequest) (*mcpmcp.CallToolResult, error) {
		session := mcpserver.ClientSessionFromContext(ctx)
		if session == nil {
			return mcpmcp.NewToolResultText("error: no session"), nil
		}
		return jsonResult(map[string]any{"removed": reg.Unwatch(session.SessionID())})
	}
}

func jsonResult(v any) (*mcpmcp.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encoding result: %w", err)
	}
	return mcpmcp.NewToolResultText(string(data)), nil
}
