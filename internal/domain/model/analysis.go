// Package model contains domain models passed between layers.
package model

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Score bounds.
const (
	MinScore           = 0
	MaxScore           = 100
	MinShapedOverall   = 30
	MaxShapedOverall   = 95
	MaxRecommendations = 3
)

// Provenance records which path produced an analysis.
type Provenance string

// Provenance values.
const (
	SourceLLM  Provenance = "llm"
	SourceMock Provenance = "mock"
)

// VideoKind discriminates local uploads from hosted-platform videos.
type VideoKind string

// VideoKind values.
const (
	VideoNone   VideoKind = ""
	VideoLocal  VideoKind = "local"
	VideoHosted VideoKind = "hosted"
)

// VideoRef points at the video an analysis was produced from. Local uploads
// carry only a display URL; the bytes are never retained.
type VideoRef struct {
	Kind       VideoKind `json:"kind,omitempty"`
	Signature  string    `json:"signature,omitempty"`
	DisplayURL string    `json:"displayUrl,omitempty"`
	HostedID   string    `json:"hostedVideoId,omitempty"`
	EmbedURL   string    `json:"embedUrl,omitempty"`
}

// ClubType is the family of a club.
type ClubType string

// Club types.
const (
	ClubWood   ClubType = "Wood"
	ClubIron   ClubType = "Iron"
	ClubWedge  ClubType = "Wedge"
	ClubPutter ClubType = "Putter"
	ClubHybrid ClubType = "Hybrid"
	ClubOther  ClubType = "Other"
)

// Club describes the club used for a swing.
type Club struct {
	ID   string   `json:"id,omitempty"`
	Name string   `json:"name,omitempty"`
	Type ClubType `json:"type,omitempty"`
}

// Outcome is the ball flight the golfer reported.
type Outcome string

// Shot outcomes.
const (
	OutcomeStraight Outcome = "straight"
	OutcomeFade     Outcome = "fade"
	OutcomeDraw     Outcome = "draw"
	OutcomePush     Outcome = "push"
	OutcomePull     Outcome = "pull"
	OutcomeThin     Outcome = "thin"
	OutcomeFat      Outcome = "fat"
	OutcomeShank    Outcome = "shank"
)

// Ownership says whose swing was recorded.
type Ownership string

// Ownership values.
const (
	OwnerSelf  Ownership = "self"
	OwnerOther Ownership = "other"
	OwnerPro   Ownership = "pro"
)

// Metadata is captured before submission.
type Metadata struct {
	Club          *Club     `json:"club,omitempty"`
	Outcome       Outcome   `json:"outcome,omitempty"`
	RecordedAt    time.Time `json:"recordedDate,omitempty"`
	Ownership     Ownership `json:"ownership,omitempty"`
	ProName       string    `json:"proName,omitempty"`
	HostedVideoID string    `json:"hostedVideoId,omitempty"`
	UserID        string    `json:"userId,omitempty"`
}

// VideoFile is an uploaded video held for the duration of one request.
type VideoFile struct {
	Name     string
	MIMEType string
	Size     int64
	ModTime  time.Time
	Data     []byte
}

// Submission is one request to analyze a swing.
type Submission struct {
	File     *VideoFile
	Metadata Metadata
}

// Analysis is the immutable result of scoring one swing.
type Analysis struct {
	ID              string         `json:"id"`
	AnalyzedAt      time.Time      `json:"date"`
	RecordedAt      time.Time      `json:"recordedDate"`
	OverallScore    int            `json:"overallScore"`
	Metrics         map[string]int `json:"metrics"`
	Recommendations []string       `json:"recommendations"`
	Club            *Club          `json:"club,omitempty"`
	Outcome         Outcome        `json:"outcome,omitempty"`
	Ownership       Ownership      `json:"ownership,omitempty"`
	ProName         string         `json:"proName,omitempty"`
	Video           VideoRef       `json:"video"`
	Source          Provenance     `json:"source"`
}

// IsMock reports whether the analysis came from the mock analyzer.
func (a Analysis) IsMock() bool { return a.Source == SourceMock }

// MarshalJSON adds the _isMockData flag clients key off.
func (a Analysis) MarshalJSON() ([]byte, error) {
	type plain Analysis
	return json.Marshal(struct {
		plain
		IsMockData bool `json:"_isMockData"`
	}{plain: plain(a), IsMockData: a.IsMock()})
}

// Clone returns a deep copy.
func (a Analysis) Clone() Analysis {
	out := a
	out.Metrics = CloneScores(a.Metrics)
	out.Recommendations = append([]string(nil), a.Recommendations...)
	if a.Club != nil {
		c := *a.Club
		out.Club = &c
	}
	return out
}

// Validate checks the invariants every returned analysis must hold.
func (a Analysis) Validate() error {
	if a.OverallScore < MinShapedOverall || a.OverallScore > MaxShapedOverall {
		return fmt.Errorf("%w: overall %d outside [%d,%d]", ErrInvariant, a.OverallScore, MinShapedOverall, MaxShapedOverall)
	}
	for k, v := range a.Metrics {
		if v < MinScore || v > MaxScore {
			return fmt.Errorf("%w: metric %s=%d", ErrInvariant, k, v)
		}
	}
	if n := len(a.Recommendations); n < 1 || n > MaxRecommendations {
		return fmt.Errorf("%w: %d recommendations", ErrInvariant, n)
	}
	for i, r := range a.Recommendations {
		if strings.TrimSpace(r) == "" {
			return fmt.Errorf("%w: recommendation %d empty", ErrInvariant, i)
		}
	}
	if a.Video.Kind == VideoHosted && a.Video.HostedID == "" {
		return fmt.Errorf("%w: hosted video without id", ErrInvariant)
	}
	if !a.RecordedAt.IsZero() && a.RecordedAt.After(a.AnalyzedAt) {
		return fmt.Errorf("%w: recorded after analyzed", ErrInvariant)
	}
	return nil
}

// CloneScores copies a score map; nil stays nil.
func CloneScores(m map[string]int) map[string]int {
	if m == nil {
		return nil
	}
	out := make(map[string]int, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// HistoryEntry is a snapshot of a prior analysis of the same video.
type HistoryEntry struct {
	At      time.Time      `json:"at"`
	Overall int            `json:"overall"`
	Metrics map[string]int `json:"metrics"`
}

// ReferenceModel is a stored reference analysis for one metric.
type ReferenceModel struct {
	Metric              string   `json:"metric"`
	TechnicalGuidelines []string `json:"technicalGuidelines"`
	IdealForm           []string `json:"idealForm"`
	CommonMistakes      []string `json:"commonMistakes"`
	CoachingCues        []string `json:"coachingCues"`
	ScoringRubric       string   `json:"scoringRubric"`
}

// MetricInsights is the coaching breakdown for one metric on one analysis.
type MetricInsights struct {
	Metric             string   `json:"metric"`
	GoodAspects        []string `json:"goodAspects"`
	ImprovementAreas   []string `json:"improvementAreas"`
	TechnicalBreakdown []string `json:"technicalBreakdown"`
	Recommendations    []string `json:"recommendations"`
	FeelTips           []string `json:"feelTips"`
	Source             string   `json:"source"`
}

// Insight sources.
const (
	InsightFromLLM     = "llm"
	InsightFromDefault = "default"
)
