package loadtest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/okian/swingcoach/internal/domain/model"
	"github.com/okian/swingcoach/pkg/logger"
)

const directoryPermission = 0o750

// ErrNoAnalyses is returned when no swing could be analyzed.
var ErrNoAnalyses = errors.New("no analyses succeeded")

// Run executes the complete load test.
func Run(ctx context.Context, cfg *Config) (*Stats, error) {
	stats := &Stats{StartTime: time.Now()}
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed)) //nolint:gosec // synthetic traffic

	logger.Get().Info(ctx, "starting swing load test",
		logger.String("baseURL", cfg.BaseURL),
		logger.Int("swings", cfg.NumSwings),
		logger.Int("workers", cfg.Workers),
		logger.Int64("seed", seed))

	if err := checkServiceHealth(ctx, cfg); err != nil {
		return stats, fmt.Errorf("service health check failed: %w", err)
	}

	baseline, err := currentFactors(ctx, cfg)
	if err != nil {
		return stats, fmt.Errorf("read baseline factors: %w", err)
	}
	if baseline.Samples > 0 {
		logger.Get().Warn(ctx, "service already holds feedback; expectations cover this run only",
			logger.Int("samples", baseline.Samples))
	}

	var analysisIDs []string
	for _, id := range submitAnalyses(ctx, cfg, hostedIDs(cfg.NumSwings, seed), stats) {
		if id != "" {
			analysisIDs = append(analysisIDs, id)
		}
	}
	if len(analysisIDs) == 0 {
		return stats, ErrNoAnalyses
	}

	unique, duplicates := generateFeedback(analysisIDs, cfg, rng)
	recorded := submitFeedback(ctx, cfg, unique, stats)
	if again := submitFeedback(ctx, cfg, duplicates, stats); len(again) > 0 {
		return stats, fmt.Errorf("%d duplicate feedback records were accepted", len(again))
	}

	if baseline.Samples == 0 {
		if err := verifyFactors(ctx, cfg, expectedFactors(recorded, cfg.MinSamples), stats); err != nil {
			return stats, err
		}
	}

	if cfg.OutputFile != "" {
		if err := saveFeedbackToFile(ctx, cfg.OutputFile, recorded); err != nil {
			logger.Get().Warn(ctx, "failed to save feedback to file", logger.Error(err))
		}
	}

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	displayFinalStats(ctx, stats)
	return stats, nil
}

func checkServiceHealth(ctx context.Context, cfg *Config) error {
	resp, err := newHTTPClient(cfg.Timeout).Get(ctx, cfg.BaseURL+"/healthz")
	if err != nil {
		return fmt.Errorf("connect to service: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check returned status %d", resp.StatusCode)
	}
	return nil
}

func currentFactors(ctx context.Context, cfg *Config) (model.AdjustmentFactors, error) {
	var f model.AdjustmentFactors
	resp, err := newHTTPClient(cfg.Timeout).Get(ctx, cfg.BaseURL+"/adjustments")
	if err != nil {
		return f, err
	}
	return f, readJSON(resp, &f)
}

func saveFeedbackToFile(ctx context.Context, filename string, records []model.FeedbackRecord) error {
	if dir := filepath.Dir(filename); dir != "." {
		if err := os.MkdirAll(dir, directoryPermission); err != nil {
			return fmt.Errorf("create directory: %w", err)
		}
	}
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal feedback: %w", err)
	}
	if err := os.WriteFile(filename, data, 0o600); err != nil {
		return fmt.Errorf("write feedback: %w", err)
	}
	logger.Get().Info(ctx, "feedback saved to file", logger.String("filename", filename))
	return nil
}

func displayFinalStats(ctx context.Context, stats *Stats) {
	var feedbackPerSecond float64
	if stats.Duration > 0 {
		feedbackPerSecond = float64(stats.FeedbackSubmitted) / stats.Duration.Seconds()
	}
	logger.Get().Info(ctx, "final statistics",
		logger.Int("analysesSubmitted", stats.AnalysesSubmitted),
		logger.Int("analysesMock", stats.AnalysesMock),
		logger.Int("analysesFailed", stats.AnalysesFailed),
		logger.Int("feedbackSubmitted", stats.FeedbackSubmitted),
		logger.Int("feedbackRecorded", stats.FeedbackRecorded),
		logger.Int("feedbackDuplicate", stats.FeedbackDuplicate),
		logger.Int("feedbackFailed", stats.FeedbackFailed),
		logger.Int("expectedOverall", stats.ExpectedOverall),
		logger.Int("observedOverall", stats.ObservedOverall),
		logger.Duration("duration", stats.Duration),
		logger.Float64("feedbackPerSecond", feedbackPerSecond))
}
