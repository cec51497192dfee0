package video

import (
	"sync"

	"github.com/google/uuid"

	"github.com/okian/swingcoach/internal/domain/model"
)

const blobPrefix = "blob:swingcoach/"

// Registry tracks display URLs handed out for local uploads so they can be
// released when the analysis is torn down.
type Registry struct {
	mu      sync.Mutex
	entries map[string]string
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]string)}
}

// Register allocates a display URL for f and returns the local video reference.
func (r *Registry) Register(f *model.VideoFile) model.VideoRef {
	url := blobPrefix + uuid.NewString()
	sig := FileSignature(f)

	r.mu.Lock()
	r.entries[url] = sig
	r.mu.Unlock()

	return model.VideoRef{Kind: model.VideoLocal, Signature: sig, DisplayURL: url}
}

// Release forgets url.
func (r *Registry) Release(url string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.entries[url]; !ok {
		return ErrUnknownURL
	}
	delete(r.entries, url)
	return nil
}

// ReleaseAll forgets every registered URL and returns how many were released.
func (r *Registry) ReleaseAll() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := len(r.entries)
	r.entries = make(map[string]string)
	return n
}

// Len returns the number of live display URLs.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}
