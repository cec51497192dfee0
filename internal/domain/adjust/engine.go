// Package adjust applies learned feedback corrections to analyses and decides
// when they should apply.
package adjust

import (
	"math"

	"github.com/okian/swingcoach/internal/domain/model"
	"github.com/okian/swingcoach/internal/domain/scoring"
)

// propagationShare is the fraction of a group's mean direct adjustment given
// to the group's other members.
const propagationShare = 0.4

// Group is a set of metrics that tend to move together.
type Group struct {
	Name    string
	Members []string
}

// DefaultGroups returns the correlated metric groups.
func DefaultGroups() []Group {
	return []Group{
		{Name: "backswingGroup", Members: []string{"backswing", "swingBack", "clubTrajectoryBackswing"}},
		{Name: "downswingGroup", Members: []string{"swingForward", "clubTrajectoryForswing", "shallowing"}},
		{Name: "bodyGroup", Members: []string{"hipRotation", "followThrough", "shoulderPosition", "armPosition"}},
		{Name: "setupGroup", Members: []string{"stance", "grip", "ballPosition"}},
		{Name: "mentalGroup", Members: []string{"confidence", "focus"}},
	}
}

// Engine applies AdjustmentFactors with correlated propagation.
type Engine struct {
	weights scoring.Weigher
	groups  []Group
}

// Option configures an Engine.
type Option func(*Engine)

// WithGroups replaces the correlated groups.
func WithGroups(groups []Group) Option {
	return func(e *Engine) {
		if groups != nil {
			e.groups = groups
		}
	}
}

// NewEngine creates an Engine that aggregates with weights.
func NewEngine(weights scoring.Weigher, opts ...Option) *Engine {
	e := &Engine{weights: weights, groups: DefaultGroups()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Apply returns a copy of a with factors applied. The bool reports whether
// any metric moved.
func (e *Engine) Apply(a model.Analysis, f model.AdjustmentFactors) (model.Analysis, bool) {
	out := a.Clone()
	out.OverallScore = clampScore(out.OverallScore + f.Overall)

	direct := make(map[string]int)
	for k, v := range out.Metrics {
		d, ok := f.Metrics[k]
		if !ok || d == 0 {
			continue
		}
		out.Metrics[k] = clampScore(v + d)
		direct[k] = d
	}

	adjusted := len(direct) > 0
	for k, d := range Propagate(e.groups, out.Metrics, direct) {
		out.Metrics[k] = clampScore(out.Metrics[k] + d)
		adjusted = true
	}

	if adjusted {
		if w, ok := scoring.WeightedOverall(e.weights, out.Metrics); ok {
			out.OverallScore = w
		}
	}
	out.OverallScore = scoring.Redistribute(out.OverallScore, out.Metrics)
	return out, adjusted
}

// Propagate computes the indirect deltas for present metrics that received no
// direct adjustment. Zero deltas are omitted.
func Propagate(groups []Group, present map[string]int, direct map[string]int) map[string]int {
	out := make(map[string]int)
	for _, g := range groups {
		var sum, n int
		for _, m := range g.Members {
			if d, ok := direct[m]; ok {
				sum += d
				n++
			}
		}
		if n == 0 {
			continue
		}
		share := int(math.Round(propagationShare * float64(sum) / float64(n)))
		if share == 0 {
			continue
		}
		for _, m := range g.Members {
			if _, hit := direct[m]; hit {
				continue
			}
			if _, ok := present[m]; !ok {
				continue
			}
			out[m] += share
		}
	}
	return out
}

func clampScore(v int) int {
	return scoring.Clamp(v, model.MinScore, model.MaxScore)
}
