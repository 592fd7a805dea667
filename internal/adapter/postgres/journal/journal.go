package journal

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/alanyang/polybus/internal/domain/event"
)

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func (r *Repository) Append(ctx context.Context, rec event.Record) error {
	query := `
		INSERT INTO event_journal (id, category, payload, posted_at)
		VALUES ($1, $2, $3, $4)`

	payload := []byte(rec.Payload)
	if len(payload) == 0 {
		payload = []byte("{}")
	}
	if _, err := r.pool.Exec(ctx, query, rec.ID, rec.Category, payload, rec.PostedAt); err != nil {
		return fmt.Errorf("inserting journal record: %w", err)
	}
	return nil
}

// Recent returns up to limit records in reverse insertion order. A non-positive
// limit returns every record.
func (r *Repository) Recent(ctx context.Context, limit int) ([]event.Record, error) {
	query := `SELECT id, category, payload, posted_at FROM event_journal ORDER BY seq DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT $1`
		args = append(args, limit)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying journal: %w", err)
	}
	defer rows.Close()

	var out []event.Record
	for rows.Next() {
		var rec event.Record
		var payload []byte
		if err := rows.Scan(&rec.ID, &rec.Category, &payload, &rec.PostedAt); err != nil {
			return nil, fmt.Errorf("scanning journal record: %w", err)
		}
		rec.Payload = payload
		rec.PostedAt = rec.PostedAt.UTC()
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating journal: %w", err)
	}
	return out, nil
}
