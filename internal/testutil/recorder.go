package testutil

import (
	"sync"
)

// RecordingBroadcaster is a test double for port/notifier.Broadcaster.
// It records every payload with a mutex so it is safe for concurrent use.
type RecordingBroadcaster struct {
	mu       sync.Mutex
	Payloads []any
}

func (r *RecordingBroadcaster) Broadcast(payload any) {
	r.mu.Lock()
	r.Payloads = append(r.Payloads, payload)
	r.mu.Unlock()
}

// Snapshot returns a copy of the recorded payloads.
func (r *RecordingBroadcaster) Snapshot() []any {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]any(nil), r.Payloads...)
}

// Reset clears all recorded payloads.
func (r *RecordingBroadcaster) Reset() {
	r.mu.Lock()
	r.Payloads = nil
	r.mu.Unlock()
}
