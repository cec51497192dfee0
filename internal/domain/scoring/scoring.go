// Package scoring shapes raw swing scores: weighted aggregation, variance
// stretching for clustered metrics, and redistribution of the overall score.
package scoring

import (
	"math"
	"math/rand"
	"sort"
	"sync"

	"github.com/okian/swingcoach/internal/domain/metric"
	"github.com/okian/swingcoach/internal/domain/model"
)

// Shaping constants.
const (
	minStretchMetrics   = 4
	clusterStdDev       = 10.0
	clusterRange        = 25
	highMeanThreshold   = 80.0
	highMeanTarget      = 8.0
	defaultTarget       = 12.0
	stretchBoost        = 1.3
	overallDivergence   = 5
	redistributeSpread  = 15.0
	redistributeCurrent = 0.7
	redistributeMean    = 0.3
	maxRedistributeLoop = 32
)

// Weigher returns the aggregation weight of a metric key.
type Weigher interface {
	Weight(key string) float64
}

// Round rounds half away from zero for non-negative scores.
func Round(x float64) int {
	return int(math.Floor(x + 0.5))
}

// Clamp bounds v to [lo, hi].
func Clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// MeanStdDev returns the mean and population standard deviation of the scores.
// Both are computed from integer sums so the result does not depend on map
// iteration order.
func MeanStdDev(scores map[string]int) (mean, stdDev float64) {
	if len(scores) == 0 {
		return 0, 0
	}
	n := float64(len(scores))
	sum := 0
	for _, v := range scores {
		sum += v
	}
	return float64(sum) / n, math.Sqrt(float64(dispersion(scores))) / n
}

// dispersion returns n*sum(v^2) - sum(v)^2, which is n^2 times the population
// variance and exact in integers.
func dispersion(scores map[string]int) int {
	sum, sumSq := 0, 0
	for _, v := range scores {
		sum += v
		sumSq += v * v
	}
	return len(scores)*sumSq - sum*sum
}

// Spread returns max - min of the scores.
func Spread(scores map[string]int) int {
	first := true
	var lo, hi int
	for _, v := range scores {
		if first {
			lo, hi, first = v, v, false
			continue
		}
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	return hi - lo
}

// WeightedOverall computes sum(score*weight)/sum(weight), rounded and
// clamped to [0,100]. It reports false for an empty mapping.
func WeightedOverall(w Weigher, scores map[string]int) (int, bool) {
	keys := make([]string, 0, len(scores))
	for k := range scores {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var num, den float64
	for _, k := range keys {
		v := scores[k]
		wt := w.Weight(k)
		if wt <= 0 {
			wt = metric.DefaultWeight
		}
		num += float64(v) * wt
		den += wt
	}
	if den == 0 {
		return 0, false
	}
	return Clamp(Round(num/den), model.MinScore, model.MaxScore), true
}

// Clustered reports whether the scores are bunched tightly enough to stretch.
func Clustered(scores map[string]int) bool {
	if len(scores) < minStretchMetrics {
		return false
	}
	_, sd := MeanStdDev(scores)
	return sd < clusterStdDev && Spread(scores) < clusterRange
}

// VarianceStretch spreads clustered scores about their mean until they are no
// longer clustered or a further pass would not widen them. Every accepted pass
// strictly increases the variance, so the loop ends, and its output is left
// unchanged by a second call. The input is not modified. The bool reports
// whether any score moved.
func VarianceStretch(scores map[string]int) (map[string]int, bool) {
	out := model.CloneScores(scores)
	changed := false
	for Clustered(out) {
		next := stretchOnce(out)
		if dispersion(next) <= dispersion(out) {
			break
		}
		out, changed = next, true
	}
	return out, changed
}

func stretchOnce(scores map[string]int) map[string]int {
	mean, sd := MeanStdDev(scores)
	target := defaultTarget
	if mean >= highMeanThreshold {
		target = highMeanTarget
	}
	factor := target / math.Max(1, sd) * stretchBoost

	out := make(map[string]int, len(scores))
	for k, v := range scores {
		out[k] = Clamp(Round(mean+(float64(v)-mean)*factor), model.MinScore, model.MaxScore)
	}
	return out
}

// Redistribute caps the overall score to [30,95] and pulls it toward the
// metrics mean while the two differ by more than 15 points. The pull is
// repeated until the gap closes, so the result can sit closer to the mean than
// a single 0.7/0.3 blend would.
func Redistribute(overall int, scores map[string]int) int {
	o := Clamp(overall, model.MinShapedOverall, model.MaxShapedOverall)
	if len(scores) == 0 {
		return o
	}
	mean, _ := MeanStdDev(scores)
	for i := 0; i < maxRedistributeLoop && math.Abs(float64(o)-mean) > redistributeSpread; i++ {
		next := Round(redistributeCurrent*float64(o) + redistributeMean*mean)
		if next == o {
			break
		}
		o = next
	}
	return Clamp(o, model.MinShapedOverall, model.MaxShapedOverall)
}

// Option configures a Shaper.
type Option func(*Shaper)

// WithWeights overrides the metric weight source.
func WithWeights(w Weigher) Option {
	return func(s *Shaper) {
		if w != nil {
			s.weights = w
		}
	}
}

// WithMinimalVariation perturbs the final overall score by -1, 0 or +1.
func WithMinimalVariation(src rand.Source) Option {
	return func(s *Shaper) {
		if src != nil {
			s.rng = rand.New(src) //nolint:gosec // cosmetic jitter
		}
	}
}

// Shaper applies the score shaping pipeline.
type Shaper struct {
	weights Weigher
	mu      sync.Mutex
	rng     *rand.Rand
}

// NewShaper creates a Shaper backed by the default metric registry.
func NewShaper(opts ...Option) *Shaper {
	s := &Shaper{weights: metric.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Weighted returns the weighted overall of scores, or fallback when empty.
func (s *Shaper) Weighted(scores map[string]int, fallback int) int {
	if w, ok := WeightedOverall(s.weights, scores); ok {
		return w
	}
	return fallback
}

// NormalizeAndValidate clamps scores, stretches clustered metrics, reconciles
// the overall with the weighted metrics and redistributes it. Applying it to
// its own output returns the same analysis.
func (s *Shaper) NormalizeAndValidate(a model.Analysis) model.Analysis {
	out := a.Clone()
	out.OverallScore = Clamp(out.OverallScore, model.MinScore, model.MaxScore)
	for k, v := range out.Metrics {
		out.Metrics[k] = Clamp(v, model.MinScore, model.MaxScore)
	}

	if stretched, ok := VarianceStretch(out.Metrics); ok {
		out.Metrics = stretched
	}

	w, ok := WeightedOverall(s.weights, out.Metrics)
	if !ok {
		out.OverallScore = Redistribute(out.OverallScore, out.Metrics)
		return out
	}
	candidate := out.OverallScore
	if abs(candidate-w) > overallDivergence {
		candidate = w
	}
	o := Redistribute(candidate, out.Metrics)
	if candidate != w && abs(o-w) > overallDivergence {
		o = Redistribute(w, out.Metrics)
	}
	out.OverallScore = o
	return out
}

// Finalize is the last redistribution before an analysis is returned. With
// minimal variation enabled the overall is jittered by at most one point first.
func (s *Shaper) Finalize(overall int, scores map[string]int) int {
	if s.rng != nil {
		s.mu.Lock()
		overall += s.rng.Intn(3) - 1
		s.mu.Unlock()
	}
	return Redistribute(overall, scores)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
