package adjust

import (
	"github.com/okian/swingcoach/internal/domain/model"
	"github.com/okian/swingcoach/internal/domain/scoring"
)

// Policy thresholds.
const (
	clusterStdDev      = 8.0
	minClusterMetrics  = 4
	meanTolerance      = 15.0
	outOfRangeShare    = 0.4
	proMeanThreshold   = 85.0
	proMetricThreshold = 80
	proMetricShare     = 0.7
)

// Decision reasons.
const (
	ReasonNever        = "never"
	ReasonAlways       = "always"
	ReasonClustered    = "clustered"
	ReasonMeanOffLevel = "mean_off_level"
	ReasonOutOfRange   = "out_of_range"
	ReasonRealistic    = "realistic"
	ReasonNoMetrics    = "no_metrics"
)

// Range is the expected score spread for a skill level.
type Range struct {
	Min, Max int
	Avg      float64
}

// ExpectedRanges maps skill levels to realistic score ranges.
var ExpectedRanges = map[model.SkillLevel]Range{ //nolint:gochecknoglobals // static table
	model.SkillPro:      {Min: 70, Max: 99, Avg: 85},
	model.SkillAdvanced: {Min: 60, Max: 95, Avg: 75},
	model.SkillAmateur:  {Min: 40, Max: 85, Avg: 65},
	model.SkillBeginner: {Min: 30, Max: 75, Avg: 55},
}

// ShouldAdjust decides whether learned factors apply to a, and why.
func ShouldAdjust(a model.Analysis, p model.Preferences) (bool, string) {
	switch p.Priority {
	case model.PriorityNever:
		return false, ReasonNever
	case model.PriorityAlways:
		return true, ReasonAlways
	}

	n := len(a.Metrics)
	if n == 0 {
		return false, ReasonNoMetrics
	}
	mean, sd := scoring.MeanStdDev(a.Metrics)
	if n >= minClusterMetrics && sd < clusterStdDev {
		return true, ReasonClustered
	}

	want := ExpectedRanges[ResolveSkillLevel(a, p)]
	if diff := mean - want.Avg; diff > meanTolerance || diff < -meanTolerance {
		return true, ReasonMeanOffLevel
	}
	outside := 0
	for _, v := range a.Metrics {
		if v < want.Min || v > want.Max {
			outside++
		}
	}
	if float64(outside)/float64(n) > outOfRangeShare {
		return true, ReasonOutOfRange
	}
	return false, ReasonRealistic
}

// ResolveSkillLevel uses the stated level, else infers pro or amateur.
func ResolveSkillLevel(a model.Analysis, p model.Preferences) model.SkillLevel {
	if p.SkillLevel.Valid() {
		return p.SkillLevel
	}
	if IsLikelyProGolferSwing(a) {
		return model.SkillPro
	}
	return model.SkillAmateur
}

// IsLikelyProGolferSwing reports a pro-owned swing, or one whose mean is at
// least 85 with at least 70% of metrics at 80 or above.
func IsLikelyProGolferSwing(a model.Analysis) bool {
	if a.Ownership == model.OwnerPro {
		return true
	}
	n := len(a.Metrics)
	if n == 0 {
		return false
	}
	mean, _ := scoring.MeanStdDev(a.Metrics)
	high := 0
	for _, v := range a.Metrics {
		if v >= proMetricThreshold {
			high++
		}
	}
	return mean >= proMeanThreshold && float64(high)/float64(n) >= proMetricShare
}
