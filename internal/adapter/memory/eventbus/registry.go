package eventbus

import (
	"sort"
	"sync"

	"github.com/alanyang/polybus/internal/domain/event"
)

// registry maps categories to buckets. Buckets are created on first use and never
// removed, so a bucket pointer stays valid for the life of the bus.
type registry struct {
	mu      sync.RWMutex
	buckets map[event.Category]*bucket
}

// bucket holds bindings in registration order. The slice is copy-on-write: a
// snapshot handed to a dispatcher is never mutated afterwards.
type bucket struct {
	mu       sync.RWMutex
	bindings []binding
}

func newRegistry() *registry {
	return &registry{
		buckets: make(map[event.Category]*bucket),
	}
}

func (r *registry) bucketFor(c event.Category) *bucket {
	r.mu.RLock()
	b, ok := r.buckets[c]
	r.mu.RUnlock()
	if ok {
		return b
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if b, ok = r.buckets[c]; ok {
		return b
	}
	b = &bucket{}
	r.buckets[c] = b
	return b
}

func (r *registry) add(bindings ...binding) {
	for _, bnd := range bindings {
		b := r.bucketFor(bnd.category)

		b.mu.Lock()
		next := make([]binding, len(b.bindings), len(b.bindings)+1)
		copy(next, b.bindings)
		b.bindings = append(next, bnd)
		b.mu.Unlock()
	}
}

// removeOwner drops every binding owned by owner (pointer identity) from every bucket.
func (r *registry) removeOwner(owner any) {
	r.mu.RLock()
	buckets := make([]*bucket, 0, len(r.buckets))
	for _, b := range r.buckets {
		buckets = append(buckets, b)
	}
	r.mu.RUnlock()

	for _, b := range buckets {
		b.mu.Lock()
		kept := make([]binding, 0, len(b.bindings))
		for _, bnd := range b.bindings {
			if bnd.owner != owner {
				kept = append(kept, bnd)
			}
		}
		if len(kept) != len(b.bindings) {
			b.bindings = kept
		}
		b.mu.Unlock()
	}
}

// lookup returns the current bindings for c, or nil if c was never subscribed.
func (r *registry) lookup(c event.Category) []binding {
	r.mu.RLock()
	b, ok := r.buckets[c]
	r.mu.RUnlock()
	if !ok {
		return nil
	}

	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.bindings
}

func (r *registry) stats() []event.CategoryStats {
	r.mu.RLock()
	out := make([]event.CategoryStats, 0, len(r.buckets))
	for c, b := range r.buckets {
		b.mu.RLock()
		out = append(out, event.CategoryStats{
			Category: c.String(),
			Name:     event.NameOf(c),
			Bindings: len(b.bindings),
		})
		b.mu.RUnlock()
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].Category < out[j].Category })
	return out
}
