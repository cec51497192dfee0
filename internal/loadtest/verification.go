package loadtest

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/okian/swingcoach/internal/domain/adjust"
	"github.com/okian/swingcoach/internal/domain/metric"
	"github.com/okian/swingcoach/internal/domain/model"
	"github.com/okian/swingcoach/pkg/logger"
)

// ErrFactorsDiverged reports that the service never reached the expected factors.
var ErrFactorsDiverged = errors.New("adjustment factors did not converge")

const pollInterval = 100 * time.Millisecond

// expectedFactors recomputes, client side, the factors the service should
// learn from the recorded feedback.
func expectedFactors(recorded []model.FeedbackRecord, minSamples int) model.AdjustmentFactors {
	return adjust.ComputeFactors(recorded, minSamples, metric.Default().Canonical, time.Now())
}

// verifyFactors polls GET /adjustments until the overall factor matches want
// or the settle window closes.
func verifyFactors(ctx context.Context, cfg *Config, want model.AdjustmentFactors, stats *Stats) error {
	client := newHTTPClient(cfg.Timeout)
	url := cfg.BaseURL + "/adjustments"
	deadline := time.Now().Add(cfg.Settle)
	stats.ExpectedOverall = want.Overall

	var got model.AdjustmentFactors
	for {
		resp, err := client.Get(ctx, url)
		if err == nil {
			err = readJSON(resp, &got)
		}
		if err == nil && got.Overall == want.Overall && sameMetrics(got.Metrics, want.Metrics) {
			stats.ObservedOverall = got.Overall
			logger.Get().Info(ctx, "adjustment factors converged",
				logger.Int("overall", got.Overall),
				logger.Int("metrics", len(got.Metrics)),
				logger.Int("samples", got.Samples))
			return nil
		}
		if time.Now().After(deadline) {
			stats.ObservedOverall = got.Overall
			return fmt.Errorf("%w: want overall %d metrics %v, got overall %d metrics %v",
				ErrFactorsDiverged, want.Overall, want.Metrics, got.Overall, got.Metrics)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(pollInterval):
		}
	}
}

func sameMetrics(a, b map[string]int) bool {
	if len(a) != len(b) {
		return false
	}
	for k, v := range a {
		if b[k] != v {
			return false
		}
	}
	return true
}
