package memory

import (
	"context"
	"sync"

	"github.com/alanyang/polybus/internal/domain/event"
)

const DefaultJournalCapacity = 1024

// Journal is a fixed-capacity ring of event records. Once full, the oldest
// record is overwritten.
type Journal struct {
	mu    sync.RWMutex
	ring  []event.Record
	next  int
	count int
}

func NewJournal(capacity int) *Journal {
	if capacity <= 0 {
		capacity = DefaultJournalCapacity
	}
	return &Journal{ring: make([]event.Record, capacity)}
}

func (j *Journal) Append(_ context.Context, r event.Record) error {
	j.mu.Lock()
	j.ring[j.next] = r
	j.next = (j.next + 1) % len(j.ring)
	if j.count < len(j.ring) {
		j.count++
	}
	j.mu.Unlock()
	return nil
}

func (j *Journal) Recent(_ context.Context, limit int) ([]event.Record, error) {
	j.mu.RLock()
	defer j.mu.RUnlock()

	if limit <= 0 || limit > j.count {
		limit = j.count
	}
	out := make([]event.Record, 0, limit)
	for i := 1; i <= limit; i++ {
		idx := (j.next - i + len(j.ring)) % len(j.ring)
		out = append(out, j.ring[idx])
	}
	return out, nil
}
