package loadtest

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/okian/swingcoach/internal/domain/model"
)

var verdicts = []model.Verdict{ //nolint:gochecknoglobals // fixed vocabulary
	model.VerdictAccurate,
	model.VerdictSlightlyHigh,
	model.VerdictTooHigh,
	model.VerdictSlightlyLow,
	model.VerdictTooLow,
}

var feedbackMetrics = []string{"grip", "stance", "backswing", "downswing", "pacing"} //nolint:gochecknoglobals // sample keys

// hostedIDs returns one synthetic hosted video id per swing.
func hostedIDs(n int, seed int64) []string {
	ids := make([]string, n)
	for i := range ids {
		ids[i] = fmt.Sprintf("load%x-%04d", seed&0xffff, i)
	}
	return ids
}

// generateFeedback builds one record per (analysis, user) pair, skewed toward
// "too high" so the run produces a visible overall factor. Duplicates are
// appended after the originals.
func generateFeedback(analysisIDs []string, cfg *Config, rng *rand.Rand) (unique, duplicates []model.FeedbackRecord) {
	users := cfg.Users
	if users < 1 {
		users = 1
	}
	for i, id := range analysisIDs {
		rec := model.FeedbackRecord{
			AnalysisID:     id,
			UserID:         fmt.Sprintf("load-user-%d", i%users),
			OverallVerdict: skewedVerdict(rng),
			Confidence:     1 + rng.Intn(5),
			CreatedAt:      time.Now().UTC(),
		}
		if rng.Intn(2) == 0 {
			key := feedbackMetrics[rng.Intn(len(feedbackMetrics))]
			rec.MetricVerdicts = map[string]model.Verdict{key: verdicts[rng.Intn(len(verdicts))]}
		}
		unique = append(unique, rec)
	}
	for _, rec := range unique {
		if rng.Float64() < cfg.DuplicateRate {
			duplicates = append(duplicates, rec)
		}
	}
	return unique, duplicates
}

func skewedVerdict(rng *rand.Rand) model.Verdict {
	if rng.Intn(3) == 0 {
		return verdicts[rng.Intn(len(verdicts))]
	}
	return model.VerdictTooHigh
}
