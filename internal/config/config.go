// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() to build a Config with defaults.
// - Load layers a YAML file and SWING_ environment variables over the defaults.
// - Validation failures wrap ErrInvalidConfig.
package config

import (
	"fmt"
	"runtime"
	"time"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// DBPath is the sqlite file backing history, feedback and factors.
	// An empty path keeps everything in memory for the process lifetime.
	DBPath string `koanf:"db_path"`

	// UseMock skips the language model and always returns mock analyses.
	UseMock bool `koanf:"use_mock"`

	// MinimalVariation adds a +/-1 perturbation before the final redistribution.
	MinimalVariation bool `koanf:"minimal_variation"`

	// GeminiAPIKey authenticates the model client. Empty means mock mode.
	GeminiAPIKey string `koanf:"gemini_api_key"`

	// GeminiModel names the multimodal model used for scoring and insights.
	GeminiModel string `koanf:"gemini_model"`

	ScoringTemperature float64 `koanf:"scoring_temperature"`
	InsightTemperature float64 `koanf:"insight_temperature"`
	InsightMaxTokens   int     `koanf:"insight_max_tokens"`

	ScoringTimeoutSeconds int `koanf:"scoring_timeout_seconds"`
	InsightTimeoutSeconds int `koanf:"insight_timeout_seconds"`

	// MaxInlineBytes caps the video payload sent inline to the model.
	MaxInlineBytes int64 `koanf:"max_inline_bytes"`

	// HostedURITemplate formats a hosted video id into a model-readable URI.
	HostedURITemplate string `koanf:"hosted_uri_template"`

	// RecipePath optionally points at a YAML swing recipe knowledge base.
	RecipePath string `koanf:"recipe_path"`

	// UnlockNotice is prepended to analyses of other people's swings for anonymous callers.
	UnlockNotice string `koanf:"unlock_notice"`

	// FeedbackQueueSize bounds the in-memory feedback queue.
	FeedbackQueueSize int `koanf:"feedback_queue_size"`

	// WorkerCount sets the number of recompute workers.
	WorkerCount int `koanf:"worker_count"`

	// DedupeSize sets the size of the feedback deduplication cache.
	DedupeSize int `koanf:"dedupe_size"`

	// HistorySize bounds the per-video analysis history.
	HistorySize int `koanf:"history_size"`

	// MinFeedbackSamples is the vote count a metric needs before it gets a learned delta.
	MinFeedbackSamples int `koanf:"min_feedback_samples"`

	// MetricsEnabled turns Prometheus collection on or off.
	MetricsEnabled bool `koanf:"metrics_enabled"`

	// MetricsRefreshSeconds sets how often runtime and queue gauges are sampled.
	MetricsRefreshSeconds int `koanf:"metrics_refresh_seconds"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:              "info",
		Addr:                  ":9080",
		DBPath:                "swingcoach.db",
		GeminiModel:           "gemini-2.5-flash",
		ScoringTemperature:    0.5,
		InsightTemperature:    0.3,
		InsightMaxTokens:      1024,
		ScoringTimeoutSeconds: 120,
		InsightTimeoutSeconds: 45,
		MaxInlineBytes:        20 << 20,
		HostedURITemplate:     "https://www.youtube.com/watch?v=%s",
		UnlockNotice:          "Sign in to unlock the full analysis of this swing.",
		FeedbackQueueSize:     1024,
		WorkerCount:           runtime.NumCPU(),
		DedupeSize:            100_000,
		HistorySize:           3,
		MinFeedbackSamples:    3,
		MetricsEnabled:        true,
		MetricsRefreshSeconds: 10,
	}
}

// ScoringTimeout returns the scoring call deadline.
func (c *Config) ScoringTimeout() time.Duration {
	return time.Duration(c.ScoringTimeoutSeconds) * time.Second
}

// InsightTimeout returns the insight call deadline.
func (c *Config) InsightTimeout() time.Duration {
	return time.Duration(c.InsightTimeoutSeconds) * time.Second
}

// MetricsRefresh returns the gauge sampling interval.
func (c *Config) MetricsRefresh() time.Duration {
	return time.Duration(c.MetricsRefreshSeconds) * time.Second
}

// Validate checks ranges that would otherwise surface as runtime failures.
func (c *Config) Validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.ScoringTemperature < 0 || c.ScoringTemperature > 2:
		return fmt.Errorf("%w: scoring_temperature %v out of [0,2]", ErrInvalidConfig, c.ScoringTemperature)
	case c.InsightTemperature < 0 || c.InsightTemperature > 2:
		return fmt.Errorf("%w: insight_temperature %v out of [0,2]", ErrInvalidConfig, c.InsightTemperature)
	case c.ScoringTimeoutSeconds <= 0:
		return fmt.Errorf("%w: scoring_timeout_seconds must be positive", ErrInvalidConfig)
	case c.InsightTimeoutSeconds <= 0:
		return fmt.Errorf("%w: insight_timeout_seconds must be positive", ErrInvalidConfig)
	case c.InsightMaxTokens <= 0:
		return fmt.Errorf("%w: insight_max_tokens must be positive", ErrInvalidConfig)
	case c.MaxInlineBytes <= 0:
		return fmt.Errorf("%w: max_inline_bytes must be positive", ErrInvalidConfig)
	case c.FeedbackQueueSize <= 0:
		return fmt.Errorf("%w: feedback_queue_size must be positive", ErrInvalidConfig)
	case c.WorkerCount <= 0:
		return fmt.Errorf("%w: worker_count must be positive", ErrInvalidConfig)
	case c.DedupeSize <= 0:
		return fmt.Errorf("%w: dedupe_size must be positive", ErrInvalidConfig)
	case c.HistorySize <= 0:
		return fmt.Errorf("%w: history_size must be positive", ErrInvalidConfig)
	case c.MinFeedbackSamples <= 0:
		return fmt.Errorf("%w: min_feedback_samples must be positive", ErrInvalidConfig)
	case c.MetricsRefreshSeconds <= 0:
		return fmt.Errorf("%w: metrics_refresh_seconds must be positive", ErrInvalidConfig)
	}
	return nil
}
