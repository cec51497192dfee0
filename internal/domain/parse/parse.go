package parse

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/okian/swingcoach/internal/domain/model"
	"github.com/okian/swingcoach/internal/domain/scoring"
)

// DefaultRecommendations pad short recommendation lists.
var DefaultRecommendations = []string{ //nolint:gochecknoglobals // static copy
	"Film your swing from down-the-line and face-on to track changes between sessions.",
	"Spend part of each practice on half swings focused on solid contact.",
	"Keep a consistent pre-shot routine so every swing starts from the same setup.",
}

// Resolver maps model-supplied metric keys onto registered keys.
type Resolver interface {
	Resolve(key string) (string, bool)
}

// Scores is the validated content of a scoring response.
type Scores struct {
	Overall         int
	Metrics         map[string]int
	Recommendations []string
	// Dropped lists metric keys the registry did not recognize.
	Dropped []string
}

// Analysis parses a scoring response. Metric keys are normalized through
// reg; unknown keys and non-numeric values are dropped.
func Analysis(reg Resolver, text string) (Scores, error) {
	obj, ok := Extract(text)
	if !ok {
		return Scores{}, ErrUnparseable
	}

	overall, ok := number(obj["overallScore"])
	if !ok {
		return Scores{}, fmt.Errorf("%w: overallScore", ErrMissingFields)
	}

	var rawMetrics map[string]json.RawMessage
	if err := json.Unmarshal(obj["metrics"], &rawMetrics); err != nil || rawMetrics == nil {
		return Scores{}, fmt.Errorf("%w: metrics", ErrMissingFields)
	}

	out := Scores{Overall: scoring.Round(overall), Metrics: make(map[string]int, len(rawMetrics))}
	aliased := make(map[string]int)
	for k, raw := range rawMetrics {
		v, ok := number(raw)
		if !ok {
			continue
		}
		key, known := reg.Resolve(k)
		switch {
		case !known:
			out.Dropped = append(out.Dropped, k)
		case key == k:
			out.Metrics[key] = scoring.Round(v)
		default:
			aliased[key] = scoring.Round(v)
		}
	}
	for k, v := range aliased {
		if _, direct := out.Metrics[k]; !direct {
			out.Metrics[k] = v
		}
	}

	out.Recommendations = NormalizeRecommendations(stringList(obj["recommendations"]))
	return out, nil
}

// NormalizeRecommendations drops blanks, pads from DefaultRecommendations and
// keeps at most three.
func NormalizeRecommendations(in []string) []string {
	out := make([]string, 0, model.MaxRecommendations)
	seen := make(map[string]bool)
	for _, r := range in {
		r = strings.TrimSpace(r)
		if r == "" || seen[r] {
			continue
		}
		seen[r] = true
		out = append(out, r)
		if len(out) == model.MaxRecommendations {
			return out
		}
	}
	for _, d := range DefaultRecommendations {
		if len(out) == model.MaxRecommendations {
			break
		}
		if !seen[d] {
			out = append(out, d)
		}
	}
	return out
}

// Insights parses an insight response. goodAspects, improvementAreas,
// technicalBreakdown and recommendations are required; feelTips is optional.
func Insights(text string) (model.MetricInsights, error) {
	obj, ok := Extract(text)
	if !ok {
		return model.MetricInsights{}, ErrUnparseable
	}
	required := []string{"goodAspects", "improvementAreas", "technicalBreakdown", "recommendations"}
	for _, k := range required {
		if _, ok := obj[k]; !ok {
			return model.MetricInsights{}, fmt.Errorf("%w: %s", ErrMissingFields, k)
		}
		var list []json.RawMessage
		if err := json.Unmarshal(obj[k], &list); err != nil {
			return model.MetricInsights{}, fmt.Errorf("%w: %s is not an array", ErrMissingFields, k)
		}
	}
	return model.MetricInsights{
		GoodAspects:        stringList(obj["goodAspects"]),
		ImprovementAreas:   stringList(obj["improvementAreas"]),
		TechnicalBreakdown: stringList(obj["technicalBreakdown"]),
		Recommendations:    stringList(obj["recommendations"]),
		FeelTips:           stringList(obj["feelTips"]),
	}, nil
}

func number(raw json.RawMessage) (float64, bool) {
	if len(raw) == 0 {
		return 0, false
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err != nil {
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// stringList keeps the non-blank string elements of a JSON array.
func stringList(raw json.RawMessage) []string {
	if len(raw) == 0 {
		return nil
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, it := range items {
		var s string
		if err := json.Unmarshal(it, &s); err != nil {
			continue
		}
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
