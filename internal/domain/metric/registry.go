// Package metric holds the read-only catalog of recognized swing metrics.
package metric

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// DefaultWeight is used for keys the registry does not know.
const DefaultWeight = 0.05

// GenericDescription explains metrics that have no registry entry.
const GenericDescription = "A component of the golf swing that contributes to overall consistency and ball striking."

// Category groups metrics for display and prompting.
type Category string

// Metric categories.
const (
	CategorySetup  Category = "Setup"
	CategorySwing  Category = "Swing"
	CategoryClub   Category = "Club"
	CategoryBody   Category = "Body"
	CategoryMental Category = "Mental"
)

// Rubric band indexes: >=90, 70-89, 50-69, <50.
const (
	BandExcellent = iota
	BandGood
	BandFair
	BandPoor
)

// Metric is one scoring axis.
type Metric struct {
	Key          string
	Title        string
	Category     Category
	Weight       float64
	Difficulty   int
	Description  string
	ReferenceURL string
	// Rubric describes what each score band looks like, indexed by Band*.
	Rubric [4]string
}

// Registry is an immutable metric catalog with an alias table.
type Registry struct {
	metrics map[string]Metric
	order   []string
	aliases map[string]string
}

// NewRegistry validates the metric table and builds a registry.
func NewRegistry(metrics []Metric, aliases map[string]string) (*Registry, error) {
	r := &Registry{
		metrics: make(map[string]Metric, len(metrics)),
		order:   make([]string, 0, len(metrics)),
		aliases: make(map[string]string, len(aliases)),
	}
	for _, m := range metrics {
		switch {
		case strings.TrimSpace(m.Key) == "":
			return nil, ErrEmptyKey
		case m.Weight <= 0 || m.Weight > 1:
			return nil, fmt.Errorf("%w: %s=%v", ErrInvalidWeight, m.Key, m.Weight)
		case m.Difficulty < 1 || m.Difficulty > 10:
			return nil, fmt.Errorf("%w: %s=%d", ErrInvalidDifficulty, m.Key, m.Difficulty)
		}
		if _, dup := r.metrics[m.Key]; dup {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateMetric, m.Key)
		}
		r.metrics[m.Key] = m
		r.order = append(r.order, m.Key)
	}
	for from, to := range aliases {
		if _, ok := r.metrics[to]; !ok {
			return nil, fmt.Errorf("%w: %s -> %s", ErrDanglingAlias, from, to)
		}
		r.aliases[from] = to
	}
	return r, nil
}

var (
	defaultOnce     sync.Once
	defaultRegistry *Registry
)

// Default returns the process-wide registry built from the built-in table.
// An invalid built-in table is a programmer error and panics.
func Default() *Registry {
	defaultOnce.Do(func() {
		r, err := NewRegistry(builtinMetrics(), builtinAliases())
		if err != nil {
			panic(fmt.Sprintf("metric: invalid built-in registry: %v", err))
		}
		defaultRegistry = r
	})
	return defaultRegistry
}

// Get returns the metric for key, following the alias table when key is not registered.
func (r *Registry) Get(key string) (Metric, bool) {
	if m, ok := r.metrics[key]; ok {
		return m, true
	}
	if to, ok := r.aliases[key]; ok {
		m, ok := r.metrics[to]
		return m, ok
	}
	return Metric{}, false
}

// Canonical maps key through the alias table. Keys without an alias are returned as is.
func (r *Registry) Canonical(key string) string {
	if to, ok := r.aliases[key]; ok {
		return to
	}
	return key
}

// Resolve maps a key from model output onto a registered key. Registered keys
// are kept even when they also carry an alias; unknown keys report false.
func (r *Registry) Resolve(key string) (string, bool) {
	if _, ok := r.metrics[key]; ok {
		return key, true
	}
	if to, ok := r.aliases[key]; ok {
		return to, true
	}
	return "", false
}

// Known reports whether key is a registered metric.
func (r *Registry) Known(key string) bool {
	_, ok := r.metrics[key]
	return ok
}

// All returns the metrics in registration order.
func (r *Registry) All() []Metric {
	out := make([]Metric, 0, len(r.order))
	for _, k := range r.order {
		out = append(out, r.metrics[k])
	}
	return out
}

// Keys returns registered keys in registration order.
func (r *Registry) Keys() []string {
	return append([]string(nil), r.order...)
}

// Weight returns the aggregation weight for key, DefaultWeight when unknown.
func (r *Registry) Weight(key string) float64 {
	if m, ok := r.metrics[key]; ok {
		return m.Weight
	}
	return DefaultWeight
}

// Describe returns the description for key, or GenericDescription.
func (r *Registry) Describe(key string) string {
	if m, ok := r.Get(r.Canonical(key)); ok && m.Description != "" {
		return m.Description
	}
	return GenericDescription
}

// Title returns a display title for key, falling back to the key itself.
func (r *Registry) Title(key string) string {
	if m, ok := r.Get(key); ok {
		return m.Title
	}
	return key
}

// Aliases returns a copy of the alias table sorted by source key.
func (r *Registry) Aliases() [][2]string {
	out := make([][2]string, 0, len(r.aliases))
	for from, to := range r.aliases {
		out = append(out, [2]string{from, to})
	}
	sort.Slice(out, func(i, j int) bool { return out[i][0] < out[j][0] })
	return out
}

// Band returns the rubric band index for a score.
func Band(score int) int {
	switch {
	case score >= 90:
		return BandExcellent
	case score >= 70:
		return BandGood
	case score >= 50:
		return BandFair
	default:
		return BandPoor
	}
}
