package journal

import (
	"context"

	"github.com/alanyang/polybus/internal/domain/event"
)

// Repository stores posted event records.
// [LSP] The in-memory ring buffer and the Postgres table are interchangeable.
type Repository interface {
	Append(ctx context.Context, r event.Record) error
	// Recent returns up to limit records, newest first.
	Recent(ctx context.Context, limit int) ([]event.Record, error)
}
