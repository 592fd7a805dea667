package events

import (
	"context"
	"fmt"

	"github.com/alanyang/polybus/internal/domain/event"
	porteventbus "github.com/alanyang/polybus/internal/port/eventbus"
)

// Service posts catalog events that arrive by name with a JSON payload, as they
// do over HTTP and MCP.
type Service struct {
	bus       porteventbus.EventBus
	inspector porteventbus.Inspector
	isolate   bool
}

// NewService returns a service posting to bus. With isolate set, every handler runs
// even if an earlier one fails (PostAll); otherwise the first failure aborts (Post).
func NewService(bus porteventbus.EventBus, inspector porteventbus.Inspector, isolate bool) *Service {
	return &Service{bus: bus, inspector: inspector, isolate: isolate}
}

// PostNamed decodes payload as the catalog event called name and posts it. The
// returned record describes what was posted and is returned even when a handler
// fails, so callers can report it.
func (s *Service) PostNamed(_ context.Context, name string, payload []byte) (event.Record, error) {
	e, err := event.Decode(name, payload)
	if err != nil {
		return event.Record{}, err
	}
	rec, err := event.NewRecord(e)
	if err != nil {
		return event.Record{}, fmt.Errorf("post %s: %w", name, err)
	}

	post := s.bus.Post
	if s.isolate {
		post = s.bus.PostAll
	}
	if err := post(e); err != nil {
		return rec, fmt.Errorf("post %s: %w", name, err)
	}
	return rec, nil
}

func (s *Service) Categories() []event.CategoryStats {
	return s.inspector.Categories()
}

// Names lists the categories PostNamed accepts.
func (s *Service) Names() []string {
	return event.Names()
}
