package journal

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/alanyang/polybus/internal/adapter/memory/eventbus"
	"github.com/alanyang/polybus/internal/domain/event"
	portjournal "github.com/alanyang/polybus/internal/port/journal"
)

const DefaultRecentLimit = 50

// Service records every catalog event it is subscribed to. It declares its handlers
// explicitly so the set of journaled categories is decided at construction.
type Service struct {
	repo   portjournal.Repository
	frames bool
}

// NewService returns a journal for every catalog category. UpdateFrame is included
// only when frames is set.
func NewService(repo portjournal.Repository, frames bool) *Service {
	return &Service{repo: repo, frames: frames}
}

func (s *Service) Handlers() []eventbus.Handler {
	hs := []eventbus.Handler{
		eventbus.On(record[event.Keyboard](s)),
		eventbus.On(record[event.MouseMove](s)),
		eventbus.On(record[event.MouseButton](s)),
		eventbus.On(record[event.LoadGame](s)),
		eventbus.On(record[event.ResizeWindow](s)),
	}
	if s.frames {
		hs = append(hs, eventbus.On(record[event.UpdateFrame](s)))
	}
	return hs
}

// Recent returns up to limit records, newest first.
func (s *Service) Recent(ctx context.Context, limit int) ([]event.Record, error) {
	if limit <= 0 {
		limit = DefaultRecentLimit
	}
	records, err := s.repo.Recent(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("listing journal: %w", err)
	}
	return records, nil
}

func record[E any](s *Service) func(E) error {
	return func(e E) error {
		s.append(e)
		return nil
	}
}

func (s *Service) append(e any) {
	ctx := context.Background()
	rec, err := event.NewRecord(e)
	if err != nil {
		slog.ErrorContext(ctx, "journal: building record", "category", event.CategoryOf(e).String(), "error", err)
		return
	}
	if err := s.repo.Append(ctx, rec); err != nil {
		slog.ErrorContext(ctx, "journal: append failed", "category", rec.Category, "error", err)
	}
}
