package idempotency

import (
	"context"
	"time"
)

// Store remembers the response produced for an idempotency key.
type Store interface {
	// Check returns the stored response and whether the key was seen.
	Check(ctx context.Context, key string) ([]byte, bool, error)
	Store(ctx context.Context, key string, response []byte, ttl time.Duration) error
}
