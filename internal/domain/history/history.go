// Package history keeps a bounded, per-video record of prior analyses.
package history

import (
	"context"
	"fmt"
	"sync"

	"github.com/okian/swingcoach/internal/domain/model"
)

// DefaultSize is how many entries are retained per video signature.
const DefaultSize = 3

// Store persists the entry list for a signature. Lists are oldest first.
type Store interface {
	GetList(ctx context.Context, signature string) ([]model.HistoryEntry, error)
	PutList(ctx context.Context, signature string, entries []model.HistoryEntry) error
}

// Ring appends to a Store while keeping at most size entries per signature.
// Appends for the same signature are serialized.
type Ring struct {
	store Store
	size  int
	locks sync.Map // signature -> *sync.Mutex
}

// NewRing wraps store. size <= 0 uses DefaultSize.
func NewRing(store Store, size int) *Ring {
	if size <= 0 {
		size = DefaultSize
	}
	return &Ring{store: store, size: size}
}

// Size returns the retention bound.
func (r *Ring) Size() int { return r.size }

// List returns the entries for signature, oldest first.
func (r *Ring) List(ctx context.Context, signature string) ([]model.HistoryEntry, error) {
	entries, err := r.store.GetList(ctx, signature)
	if err != nil {
		return nil, fmt.Errorf("history list %s: %w", signature, err)
	}
	return entries, nil
}

// Latest returns the most recent entry, if any.
func (r *Ring) Latest(ctx context.Context, signature string) (model.HistoryEntry, bool, error) {
	entries, err := r.List(ctx, signature)
	if err != nil || len(entries) == 0 {
		return model.HistoryEntry{}, false, err
	}
	return entries[len(entries)-1], true, nil
}

// Append pushes entry and drops the oldest entries beyond the bound.
func (r *Ring) Append(ctx context.Context, signature string, entry model.HistoryEntry) error {
	mu := r.lock(signature)
	mu.Lock()
	defer mu.Unlock()

	entries, err := r.store.GetList(ctx, signature)
	if err != nil {
		return fmt.Errorf("history append %s: %w", signature, err)
	}
	entry.Metrics = model.CloneScores(entry.Metrics)
	entries = append(entries, entry)
	if over := len(entries) - r.size; over > 0 {
		entries = entries[over:]
	}
	if err := r.store.PutList(ctx, signature, entries); err != nil {
		return fmt.Errorf("history append %s: %w", signature, err)
	}
	return nil
}

func (r *Ring) lock(signature string) *sync.Mutex {
	v, _ := r.locks.LoadOrStore(signature, &sync.Mutex{})
	return v.(*sync.Mutex)
}

// MemoryStore is a process-local Store.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string][]model.HistoryEntry
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string][]model.HistoryEntry)}
}

// GetList returns a copy of the entries for signature.
func (m *MemoryStore) GetList(_ context.Context, signature string) ([]model.HistoryEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return copyEntries(m.entries[signature]), nil
}

// PutList replaces the entries for signature.
func (m *MemoryStore) PutList(_ context.Context, signature string, entries []model.HistoryEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[signature] = copyEntries(entries)
	return nil
}

func copyEntries(in []model.HistoryEntry) []model.HistoryEntry {
	if len(in) == 0 {
		return nil
	}
	out := make([]model.HistoryEntry, len(in))
	for i, e := range in {
		e.Metrics = model.CloneScores(e.Metrics)
		out[i] = e
	}
	return out
}
