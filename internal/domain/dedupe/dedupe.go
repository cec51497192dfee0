// Package dedupe guards write-once feedback submissions in memory ahead of the
// store's unique index.
package dedupe

import (
	"container/list"
	"context"
	"sync"
)

const defaultMaxSize = 50_000

// Deduper records seen submission keys.
type Deduper interface {
	// SeenAndRecord atomically checks if key was seen and records it if not.
	// Returns true if key was already seen.
	SeenAndRecord(ctx context.Context, key string) bool

	// Unrecord forgets key so a failed write can be resubmitted.
	Unrecord(ctx context.Context, key string)

	// Preload records keys already persisted, oldest first.
	Preload(ctx context.Context, keys []string)

	Size() int64
}

// inMemoryDeduper keeps the most recent maxSize keys and evicts the oldest.
// maxSize <= 0 means unbounded.
type inMemoryDeduper struct {
	mu      sync.Mutex
	seen    map[string]*list.Element
	order   *list.List // front = newest
	maxSize int
}

// NewInMemoryDeduper creates a new in-memory deduper with configuration options.
func NewInMemoryDeduper(opts ...Option) Deduper {
	d := &inMemoryDeduper{
		maxSize: defaultMaxSize,
		seen:    make(map[string]*list.Element),
		order:   list.New(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

func (d *inMemoryDeduper) SeenAndRecord(_ context.Context, key string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.seen[key]; ok {
		return true
	}
	d.record(key)
	return false
}

func (d *inMemoryDeduper) record(key string) {
	if d.maxSize > 0 && len(d.seen) >= d.maxSize {
		if oldest := d.order.Back(); oldest != nil {
			delete(d.seen, oldest.Value.(string))
			d.order.Remove(oldest)
		}
	}
	d.seen[key] = d.order.PushFront(key)
}

func (d *inMemoryDeduper) Unrecord(_ context.Context, key string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if el, ok := d.seen[key]; ok {
		d.order.Remove(el)
		delete(d.seen, key)
	}
}

func (d *inMemoryDeduper) Preload(_ context.Context, keys []string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	for _, k := range keys {
		if _, ok := d.seen[k]; !ok {
			d.record(k)
		}
	}
}

func (d *inMemoryDeduper) Size() int64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return int64(len(d.seen))
}
