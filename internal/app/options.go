package service

import (
	"math/rand"
	"time"

	"github.com/okian/swingcoach/internal/domain/insight"
	"github.com/okian/swingcoach/internal/domain/recipe"
	"github.com/okian/swingcoach/internal/domain/video"
	"github.com/okian/swingcoach/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithLLM sets the model client. Without one every analysis falls back to mock data.
func WithLLM(l LLM) Option {
	return func(s *Service) { s.llm = l }
}

// WithUseMock forces mock analyses.
func WithUseMock(on bool) Option {
	return func(s *Service) { s.useMock = on }
}

// WithMinimalVariation jitters final overall scores by at most one point.
// A nil source selects a time-seeded one.
func WithMinimalVariation(on bool, src rand.Source) Option {
	return func(s *Service) {
		s.minimalVariation = on
		s.variationSource = src
	}
}

// WithMockSource seeds the mock analyzer.
func WithMockSource(src rand.Source) Option {
	return func(s *Service) { s.mockSource = src }
}

// WithModelName records which model produced analyses.
func WithModelName(name string) Option {
	return func(s *Service) {
		if name != "" {
			s.modelName = name
		}
	}
}

// WithScoringTemperature sets the scoring sampling temperature.
func WithScoringTemperature(t float32) Option {
	return func(s *Service) { s.scoringTemperature = t }
}

// WithScoringTimeout bounds each scoring call.
func WithScoringTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.scoringTimeout = d
		}
	}
}

// WithHosted sets the hosted-video URI builder.
func WithHosted(h *video.Hosted) Option {
	return func(s *Service) {
		if h != nil {
			s.hosted = h
		}
	}
}

// WithRecipes sets the swing recipe book used by insights.
func WithRecipes(b *recipe.Book) Option {
	return func(s *Service) { s.recipes = b }
}

// WithInsightOptions passes options through to the insight generator.
func WithInsightOptions(opts ...insight.Option) Option {
	return func(s *Service) { s.insightOpts = append(s.insightOpts, opts...) }
}

// WithWorkerCount sets the number of recompute workers.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the capacity of the feedback queue.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithDedupeSize sets the size of the feedback write-once cache.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.dedupeSize = size
		}
	}
}

// WithHistorySize sets how many analyses are kept per video.
func WithHistorySize(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.historySize = n
		}
	}
}

// WithMinFeedbackSamples sets the votes a key needs before it gets a factor.
func WithMinFeedbackSamples(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.minSamples = n
		}
	}
}

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}
