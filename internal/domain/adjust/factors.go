package adjust

import (
	"math"
	"time"

	"github.com/okian/swingcoach/internal/domain/model"
	"github.com/okian/swingcoach/internal/domain/scoring"
)

// Factor bounds and defaults.
const (
	MaxFactor         = 100
	DefaultMinSamples = 3
)

type vote struct {
	weighted float64
	weight   float64
	count    int
}

func (v *vote) add(verdict model.Verdict, confidence int) {
	d, ok := verdict.Delta()
	if !ok || confidence <= 0 {
		return
	}
	v.weighted += float64(d * confidence)
	v.weight += float64(confidence)
	v.count++
}

func (v vote) factor(minSamples int) (int, bool) {
	if v.count < minSamples || v.weight == 0 {
		return 0, false
	}
	return scoring.Clamp(int(math.Round(v.weighted/v.weight)), -MaxFactor, MaxFactor), true
}

// ComputeFactors derives global adjustment factors from all feedback: per
// key, the confidence-weighted mean of verdict deltas. Keys with fewer than
// minSamples votes get no factor. Metric keys are mapped through canonical
// when it is non-nil.
func ComputeFactors(records []model.FeedbackRecord, minSamples int, canonical func(string) string, now time.Time) model.AdjustmentFactors {
	if minSamples < 1 {
		minSamples = 1
	}
	var overall vote
	perMetric := make(map[string]*vote)
	for _, r := range records {
		overall.add(r.OverallVerdict, r.Confidence)
		for k, v := range r.MetricVerdicts {
			if canonical != nil {
				k = canonical(k)
			}
			mv, ok := perMetric[k]
			if !ok {
				mv = &vote{}
				perMetric[k] = mv
			}
			mv.add(v, r.Confidence)
		}
	}

	out := model.AdjustmentFactors{Metrics: make(map[string]int), Samples: len(records), UpdatedAt: now}
	if f, ok := overall.factor(minSamples); ok {
		out.Overall = f
	}
	for k, v := range perMetric {
		if f, ok := v.factor(minSamples); ok && f != 0 {
			out.Metrics[k] = f
		}
	}
	return out
}
