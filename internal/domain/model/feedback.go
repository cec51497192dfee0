package model

import (
	"fmt"
	"time"
)

// Verdict is a user's judgment of a score.
type Verdict string

// Verdicts.
const (
	VerdictAccurate     Verdict = "accurate"
	VerdictSlightlyHigh Verdict = "slightly_high"
	VerdictTooHigh      Verdict = "too_high"
	VerdictSlightlyLow  Verdict = "slightly_low"
	VerdictTooLow       Verdict = "too_low"
)

var verdictDeltas = map[Verdict]int{
	VerdictAccurate:     0,
	VerdictSlightlyHigh: -3,
	VerdictTooHigh:      -8,
	VerdictSlightlyLow:  3,
	VerdictTooLow:       8,
}

// Delta is the score correction a verdict votes for.
func (v Verdict) Delta() (int, bool) {
	d, ok := verdictDeltas[v]
	return d, ok
}

// AdjustmentPriority says when learned adjustments apply to a user's analyses.
type AdjustmentPriority string

// Adjustment priorities.
const (
	PriorityNever    AdjustmentPriority = "never"
	PriorityAsNeeded AdjustmentPriority = "as-needed"
	PriorityAlways   AdjustmentPriority = "always"
)

// SkillLevel is the golfer's self-declared level.
type SkillLevel string

// Skill levels.
const (
	SkillPro      SkillLevel = "pro"
	SkillAdvanced SkillLevel = "advanced"
	SkillAmateur  SkillLevel = "amateur"
	SkillBeginner SkillLevel = "beginner"
)

// Valid reports whether s is a known level.
func (s SkillLevel) Valid() bool {
	switch s {
	case SkillPro, SkillAdvanced, SkillAmateur, SkillBeginner:
		return true
	}
	return false
}

// Preferences drive the adjustment policy for one user.
type Preferences struct {
	Priority   AdjustmentPriority `json:"adjustmentPriority"`
	SkillLevel SkillLevel         `json:"skillLevel,omitempty"`
}

// FeedbackRecord is a write-once user judgment about an analysis.
type FeedbackRecord struct {
	ID             string             `json:"id"`
	AnalysisID     string             `json:"analysisId"`
	UserID         string             `json:"userId,omitempty"`
	OverallVerdict Verdict            `json:"overallAccuracy"`
	MetricVerdicts map[string]Verdict `json:"metricFeedback,omitempty"`
	SkillLevel     SkillLevel         `json:"skillLevel,omitempty"`
	Confidence     int                `json:"confidence"`
	Priority       AdjustmentPriority `json:"adjustmentPriority,omitempty"`
	Note           string             `json:"note,omitempty"`
	ModelVersion   string             `json:"modelVersion,omitempty"`
	Signature      string             `json:"videoSignature,omitempty"`
	CreatedAt      time.Time          `json:"timestamp"`
}

// Validate checks required fields and closed vocabularies.
func (f FeedbackRecord) Validate() error {
	if f.AnalysisID == "" {
		return fmt.Errorf("%w: analysis id required", ErrInvalidFeedback)
	}
	if _, ok := f.OverallVerdict.Delta(); !ok {
		return fmt.Errorf("%w: overall verdict %q", ErrInvalidFeedback, f.OverallVerdict)
	}
	for k, v := range f.MetricVerdicts {
		if _, ok := v.Delta(); !ok {
			return fmt.Errorf("%w: verdict %q for %s", ErrInvalidFeedback, v, k)
		}
	}
	if f.Confidence < 1 || f.Confidence > 5 {
		return fmt.Errorf("%w: confidence %d outside [1,5]", ErrInvalidFeedback, f.Confidence)
	}
	switch f.Priority {
	case "", PriorityNever, PriorityAsNeeded, PriorityAlways:
	default:
		return fmt.Errorf("%w: adjustment priority %q", ErrInvalidFeedback, f.Priority)
	}
	if f.SkillLevel != "" && !f.SkillLevel.Valid() {
		return fmt.Errorf("%w: skill level %q", ErrInvalidFeedback, f.SkillLevel)
	}
	return nil
}

// WriteOnce reports whether the record is held to one submission per
// (analysis, user). Anonymous records are appended freely.
func (f FeedbackRecord) WriteOnce() bool {
	return f.UserID != ""
}

// DedupeKey identifies a submission for write-once enforcement.
func (f FeedbackRecord) DedupeKey() string {
	return f.AnalysisID + "|" + f.UserID
}

// AdjustmentFactors are globally learned additive corrections.
type AdjustmentFactors struct {
	Overall   int            `json:"overall"`
	Metrics   map[string]int `json:"metrics"`
	Samples   int            `json:"samples"`
	UpdatedAt time.Time      `json:"updatedAt"`
}

// IsZero reports whether applying the factors would change nothing.
func (f AdjustmentFactors) IsZero() bool {
	if f.Overall != 0 {
		return false
	}
	for _, d := range f.Metrics {
		if d != 0 {
			return false
		}
	}
	return true
}
