package memory

import (
	"context"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
)

type idempotencyEntry struct {
	response  []byte
	expiresAt time.Time
}

// IdempotencyStore keeps idempotent responses in process memory until their TTL lapses.
type IdempotencyStore struct {
	mu      sync.RWMutex
	entries map[string]idempotencyEntry
	clock   clock.Clock
}

func NewIdempotencyStore() *IdempotencyStore {
	return NewIdempotencyStoreWithClock(clock.New())
}

// NewIdempotencyStoreWithClock measures expiry against c.
func NewIdempotencyStoreWithClock(c clock.Clock) *IdempotencyStore {
	return &IdempotencyStore{
		entries: make(map[string]idempotencyEntry),
		clock:   c,
	}
}

func (s *IdempotencyStore) Check(_ context.Context, key string) ([]byte, bool, error) {
	s.mu.RLock()
	entry, ok := s.entries[key]
	s.mu.RUnlock()

	if !ok {
		return nil, false, nil
	}
	if s.clock.Now().After(entry.expiresAt) {
		s.mu.Lock()
		delete(s.entries, key)
		s.mu.Unlock()
		return nil, false, nil
	}
	return entry.response, true, nil
}

// Store keeps the first response recorded for a key; later writes are ignored
// until the entry expires.
func (s *IdempotencyStore) Store(_ context.Context, key string, response []byte, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock.Now()
	if existing, ok := s.entries[key]; ok && !now.After(existing.expiresAt) {
		return nil
	}
	s.entries[key] = idempotencyEntry{
		response:  response,
		expiresAt: now.Add(ttl),
	}
	return nil
}

// Sweep drops expired entries and reports how many were removed.
func (s *IdempotencyStore) Sweep(_ context.Context) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock.Now()
	removed := 0
	for key, entry := range s.entries {
		if now.After(entry.expiresAt) {
			delete(s.entries, key)
			removed++
		}
	}
	return removed
}
