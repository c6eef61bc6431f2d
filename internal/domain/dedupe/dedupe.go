// Package dedupe tracks request IDs so repeated submissions of the same
// analysis request are accepted at most once.
package dedupe

import (
	"context"
	"sync"
	"sync/atomic"
)

// Deduper records seen request IDs for idempotent submission handling.
type Deduper interface {
	// SeenAndRecord atomically checks whether id was seen and records it
	// if not. It returns true when id was already seen.
	SeenAndRecord(ctx context.Context, id string) bool

	// Unrecord forgets an ID so the request can be retried. Used when a
	// submission was recorded but could not be enqueued.
	Unrecord(ctx context.Context, id string)

	Size() int64
}

// inMemoryDeduper is a bounded in-memory Deduper. IDs live in a map for
// lookup and a ring of insertion order for eviction: when full, the oldest
// ID is forgotten to admit the new one. With maxSize <= 0 it is unbounded.
type inMemoryDeduper struct {
	mu      sync.Mutex
	seen    map[string]struct{}
	order   []string // ring buffer of insertion order, bounded mode only
	next    int      // ring write position
	maxSize int
	size    atomic.Int64
}

// NewInMemoryDeduper creates a deduper with configuration options.
func NewInMemoryDeduper(opts ...Option) Deduper {
	d := &inMemoryDeduper{
		maxSize: 50000,
	}
	for _, opt := range opts {
		opt(d)
	}
	d.seen = make(map[string]struct{})
	if d.maxSize > 0 {
		d.order = make([]string, d.maxSize)
	}
	return d
}

func (d *inMemoryDeduper) SeenAndRecord(ctx context.Context, id string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, exists := d.seen[id]; exists {
		return true
	}

	if d.maxSize > 0 {
		// Evict whatever occupies the write slot. An Unrecord may
		// have already removed it, which is fine.
		if old := d.order[d.next]; old != "" {
			if _, exists := d.seen[old]; exists {
				delete(d.seen, old)
				d.size.Add(-1)
			}
		}
		d.order[d.next] = id
		d.next = (d.next + 1) % d.maxSize
	}

	d.seen[id] = struct{}{}
	d.size.Add(1)
	return false
}

func (d *inMemoryDeduper) Unrecord(ctx context.Context, id string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, exists := d.seen[id]; exists {
		delete(d.seen, id)
		d.size.Add(-1)
	}
}

// Size returns the current number of recorded IDs.
func (d *inMemoryDeduper) Size() int64 {
	return d.size.Load()
}
