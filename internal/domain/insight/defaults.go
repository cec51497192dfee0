package insight

import (
	"fmt"

	"github.com/okian/swingcoach/internal/domain/metric"
	"github.com/okian/swingcoach/internal/domain/model"
	"github.com/okian/swingcoach/internal/domain/recipe"
)

var genericDrills = []string{ //nolint:gochecknoglobals // static copy
	"Rehearse the position in slow motion in front of a mirror before hitting balls.",
	"Hit ten half swings focusing only on this part of the motion.",
}

var genericFeel = []string{ //nolint:gochecknoglobals // static copy
	"Keep the motion smooth enough that you could hold your finish for three seconds.",
}

// Defaults synthesizes insights for key from the metric registry and, when
// present, the recipe book.
func Defaults(reg *metric.Registry, book *recipe.Book, key string, score int) model.MetricInsights {
	key = reg.Canonical(key)
	m, known := reg.Get(key)
	title := reg.Title(key)
	band := metric.Band(score)

	out := model.MetricInsights{Metric: key, Source: model.InsightFromDefault}

	if known {
		out.GoodAspects = []string{fmt.Sprintf("%s scored %d. %s", title, score, m.Rubric[minInt(band, metric.BandGood)])}
		if band > metric.BandExcellent {
			out.ImprovementAreas = []string{fmt.Sprintf("Move toward: %s", m.Rubric[band-1])}
		} else {
			out.ImprovementAreas = []string{fmt.Sprintf("Keep %s consistent under pressure and with longer clubs.", title)}
		}
		out.TechnicalBreakdown = []string{m.Description, m.Rubric[band]}
	} else {
		out.GoodAspects = []string{fmt.Sprintf("%s scored %d.", title, score)}
		out.ImprovementAreas = []string{fmt.Sprintf("Work on %s with a coach to pinpoint the next step.", title)}
		out.TechnicalBreakdown = []string{metric.GenericDescription}
	}
	out.Recommendations = append([]string(nil), genericDrills...)
	out.FeelTips = append([]string(nil), genericFeel...)

	if e, ok := book.Lookup(key); ok {
		if len(e.CommonFaults) > 0 {
			out.ImprovementAreas = append(out.ImprovementAreas, e.CommonFaults[0])
		}
		if e.Summary != "" {
			out.TechnicalBreakdown = append(out.TechnicalBreakdown, e.Summary)
		}
		if len(e.Drills) > 0 {
			out.Recommendations = append([]string(nil), e.Drills...)
		}
		if len(e.FeelCues) > 0 {
			out.FeelTips = append([]string(nil), e.FeelCues...)
		}
	}
	return out
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
