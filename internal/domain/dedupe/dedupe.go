// Package dedupe tracks idempotency keys of accepted feedback.
package dedupe

import (
	"context"
	"sync"
)

const defaultMaxSize = 50000

// Deduper records seen keys to ensure at-most-once processing.
type Deduper interface {
	// SeenAndRecord atomically checks if key was seen and records it if not.
	// Returns true if key was already seen, false if it was newly recorded.
	SeenAndRecord(ctx context.Context, key string) bool

	// Unrecord forgets a key so a submission that failed downstream
	// (e.g. writer backpressure) can be retried.
	Unrecord(ctx context.Context, key string)

	// Reset forgets every key.
	Reset(ctx context.Context)

	Size() int64
}

// inMemoryDeduper keeps keys in a map and evicts the oldest key once full.
// maxSize <= 0 disables eviction.
type inMemoryDeduper struct {
	mu      sync.Mutex
	seen    map[string]int // key -> position in ring
	ring    []string
	next    int // next ring slot to write
	maxSize int
}

// Option configures the in-memory deduper.
type Option func(*inMemoryDeduper)

// WithMaxSize caps the remembered keys. Once full, recording a new key
// forgets the oldest one. Zero or a negative size never forgets.
func WithMaxSize(n int) Option {
	return func(d *inMemoryDeduper) {
		d.maxSize = n
	}
}

// NewInMemoryDeduper creates a new in-memory deduper with configuration options.
func NewInMemoryDeduper(opts ...Option) Deduper {
	d := &inMemoryDeduper{maxSize: defaultMaxSize}
	for _, opt := range opts {
		opt(d)
	}
	d.seen = make(map[string]int)
	if d.maxSize > 0 {
		d.ring = make([]string, d.maxSize)
	}
	return d
}

func (d *inMemoryDeduper) SeenAndRecord(_ context.Context, key string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.seen[key]; ok {
		return true
	}

	if d.maxSize <= 0 {
		d.seen[key] = -1
		return false
	}

	// Evict the oldest key unless an Unrecord already freed its slot.
	if pos, ok := d.seen[d.ring[d.next]]; ok && pos == d.next {
		delete(d.seen, d.ring[d.next])
	}
	d.ring[d.next] = key
	d.seen[key] = d.next
	d.next = (d.next + 1) % d.maxSize
	return false
}

func (d *inMemoryDeduper) Unrecord(_ context.Context, key string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	pos, ok := d.seen[key]
	if !ok {
		return
	}
	delete(d.seen, key)
	if pos >= 0 {
		d.ring[pos] = ""
	}
}

func (d *inMemoryDeduper) Reset(_ context.Context) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.seen = make(map[string]int)
	for i := range d.ring {
		d.ring[i] = ""
	}
	d.next = 0
}

// Size returns the current number of recorded keys.
func (d *inMemoryDeduper) Size() int64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return int64(len(d.seen))
}
