// Package consistency damps large swings between repeated analyses of the
// same video.
package consistency

import (
	"context"
	"time"

	"github.com/okian/swingcoach/internal/domain/history"
	"github.com/okian/swingcoach/internal/domain/model"
	"github.com/okian/swingcoach/internal/domain/scoring"
)

// Blend thresholds and weights.
const (
	OverallThreshold = 8
	MetricThreshold  = 10
	currentShare     = 0.7
	priorShare       = 0.3
)

// Blend mixes current with prior where they differ by more than the
// thresholds. It reports whether anything changed.
func Blend(current model.Analysis, prior model.HistoryEntry) (model.Analysis, bool) {
	out := current.Clone()
	changed := false
	if absDiff(out.OverallScore, prior.Overall) > OverallThreshold {
		out.OverallScore = mix(out.OverallScore, prior.Overall)
		changed = true
	}
	for k, v := range out.Metrics {
		p, ok := prior.Metrics[k]
		if !ok || absDiff(v, p) <= MetricThreshold {
			continue
		}
		out.Metrics[k] = mix(v, p)
		changed = true
	}
	return out, changed
}

func mix(current, prior int) int {
	return scoring.Round(currentShare*float64(current) + priorShare*float64(prior))
}

func absDiff(a, b int) int {
	if a > b {
		return a - b
	}
	return b - a
}

// Blender applies Blend against the latest history entry and records the result.
type Blender struct {
	ring *history.Ring
	now  func() time.Time
}

// Option configures a Blender.
type Option func(*Blender)

// WithClock overrides the entry timestamp source.
func WithClock(now func() time.Time) Option {
	return func(b *Blender) {
		if now != nil {
			b.now = now
		}
	}
}

// NewBlender creates a Blender over ring.
func NewBlender(ring *history.Ring, opts ...Option) *Blender {
	b := &Blender{ring: ring, now: time.Now}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Apply blends a against the most recent analysis for signature and appends
// the result to the history. On a history read failure a is returned unchanged
// together with the error; nothing is appended.
func (b *Blender) Apply(ctx context.Context, a model.Analysis, signature string) (model.Analysis, bool, error) {
	prior, ok, err := b.ring.Latest(ctx, signature)
	if err != nil {
		return a, false, err
	}
	out, blended := a, false
	if ok {
		out, blended = Blend(a, prior)
	}
	entry := model.HistoryEntry{At: b.now(), Overall: out.OverallScore, Metrics: out.Metrics}
	if err := b.ring.Append(ctx, signature, entry); err != nil {
		return out, blended, err
	}
	return out, blended, nil
}
