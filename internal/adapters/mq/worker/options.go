package worker

import (
	"time"

	"github.com/okian/swingcoach/pkg/logger"
)

// Option applies a configuration option to the Recomputer.
type Option func(*Recomputer)

// WithLogger sets a custom logger.
func WithLogger(l logger.Logger) Option {
	return func(r *Recomputer) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithMinSamples sets how many votes a key needs before it gets a factor.
func WithMinSamples(n int) Option {
	return func(r *Recomputer) {
		if n > 0 {
			r.minSamples = n
		}
	}
}

// WithCanonical maps metric keys before aggregation.
func WithCanonical(fn func(string) string) Option {
	return func(r *Recomputer) { r.canonical = fn }
}

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(r *Recomputer) {
		if now != nil {
			r.now = now
		}
	}
}
