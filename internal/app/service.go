// Package service wires the swing analysis pipeline, the feedback collector
// and the adjustment recompute job behind the methods the HTTP API needs.
package service

import (
	"context"
	"fmt"
	"math/rand"
	"runtime"
	"sync"
	"time"

	feedbackqueue "github.com/okian/swingcoach/internal/adapters/mq/queue"
	workerpool "github.com/okian/swingcoach/internal/adapters/mq/worker"
	repository "github.com/okian/swingcoach/internal/adapters/repository"
	"github.com/okian/swingcoach/internal/domain/adjust"
	"github.com/okian/swingcoach/internal/domain/consistency"
	"github.com/okian/swingcoach/internal/domain/dedupe"
	"github.com/okian/swingcoach/internal/domain/history"
	"github.com/okian/swingcoach/internal/domain/insight"
	"github.com/okian/swingcoach/internal/domain/metric"
	"github.com/okian/swingcoach/internal/domain/mock"
	"github.com/okian/swingcoach/internal/domain/model"
	"github.com/okian/swingcoach/internal/domain/recipe"
	"github.com/okian/swingcoach/internal/domain/scoring"
	"github.com/okian/swingcoach/internal/domain/video"
	"github.com/okian/swingcoach/pkg/logger"
)

// Defaults.
const (
	defaultQueueSize          = 1024
	defaultDedupeSize         = 100_000
	defaultScoringTemperature = 0.5
	defaultScoringTimeout     = 120 * time.Second
	defaultModelName          = "gemini-2.5-flash"
	stopTimeout               = 5 * time.Second
)

// LLM generates text for a prompt.
type LLM interface {
	Generate(ctx context.Context, req model.LLMRequest) (string, error)
}

// Service implements the API dependencies for swing analysis.
type Service struct {
	mu sync.RWMutex

	// Core components
	registry   *metric.Registry
	store      repository.Store
	llm        LLM
	shaper     *scoring.Shaper
	mock       *mock.Analyzer
	blender    *consistency.Blender
	engine     *adjust.Engine
	insights   *insight.Generator
	hosted     *video.Hosted
	videos     *video.Registry
	ids        *video.IDGenerator
	recipes    *recipe.Book
	deduper    dedupe.Deduper
	queue      *feedbackqueue.InMemoryQueue
	recomputer *workerpool.Recomputer
	pool       *workerpool.Pool

	// Configuration
	useMock            bool
	minimalVariation   bool
	variationSource    rand.Source
	mockSource         rand.Source
	modelName          string
	scoringTemperature float32
	scoringTimeout     time.Duration
	insightOpts        []insight.Option
	workerCount        int
	queueSize          int
	dedupeSize         int
	historySize        int
	minSamples         int
	now                func() time.Time

	// State
	started    bool
	missingKey sync.Once

	// Logging
	logger logger.Logger
}

// New constructs a Service over reg and store.
func New(reg *metric.Registry, store repository.Store, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, ErrNoStore
	}
	if reg == nil {
		reg = metric.Default()
	}
	s := &Service{
		registry:           reg,
		store:              store,
		modelName:          defaultModelName,
		scoringTemperature: defaultScoringTemperature,
		scoringTimeout:     defaultScoringTimeout,
		workerCount:        runtime.NumCPU(),
		queueSize:          defaultQueueSize,
		dedupeSize:         defaultDedupeSize,
		historySize:        history.DefaultSize,
		minSamples:         adjust.DefaultMinSamples,
		now:                time.Now,
		logger:             logger.Get().Named("service"),
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.hosted == nil {
		h, err := video.NewHosted(video.DefaultURITemplate)
		if err != nil {
			return nil, fmt.Errorf("hosted video template: %w", err)
		}
		s.hosted = h
	}

	var shaperOpts []scoring.Option
	shaperOpts = append(shaperOpts, scoring.WithWeights(reg))
	if s.minimalVariation {
		src := s.variationSource
		if src == nil {
			src = rand.NewSource(time.Now().UnixNano())
		}
		shaperOpts = append(shaperOpts, scoring.WithMinimalVariation(src))
	}
	s.shaper = scoring.NewShaper(shaperOpts...)

	var mockOpts []mock.Option
	if s.mockSource != nil {
		mockOpts = append(mockOpts, mock.WithSource(s.mockSource))
	}
	s.mock = mock.New(reg, mockOpts...)

	s.blender = consistency.NewBlender(history.NewRing(store, s.historySize), consistency.WithClock(s.now))
	s.engine = adjust.NewEngine(reg)
	s.videos = video.NewRegistry()
	s.ids = video.NewIDGenerator()

	insightOpts := append([]insight.Option{insight.WithRecipes(s.recipes), insight.WithHosted(s.hosted)}, s.insightOpts...)
	var gen insight.LLM
	if s.llm != nil {
		gen = s.llm
	}
	s.insights = insight.New(reg, gen, insightOpts...)

	s.deduper = dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(s.dedupeSize))
	s.queue = feedbackqueue.NewInMemoryQueue(feedbackqueue.WithCapacity(s.queueSize))
	s.recomputer = workerpool.NewRecomputer(store, store,
		workerpool.WithMinSamples(s.minSamples),
		workerpool.WithCanonical(reg.Canonical),
		workerpool.WithClock(s.now))
	s.pool = workerpool.NewPool(s.workerCount, s.queue, s.recomputer)
	return s, nil
}

// Start preloads the write-once cache and starts the recompute workers.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	s.logger.Info(ctx, "starting swing analysis service...")

	keys, err := s.store.FeedbackKeys(ctx)
	if err != nil {
		return fmt.Errorf("preload feedback keys: %w", err)
	}
	s.deduper.Preload(ctx, keys)

	s.pool.Start(ctx)
	s.started = true
	s.logger.Info(ctx, "swing analysis service started",
		logger.Int("workers", s.pool.Size()),
		logger.Int("queueSize", s.queueSize),
		logger.Int("feedbackKeys", len(keys)),
		logger.Bool("useMock", s.useMock),
		logger.Bool("llmConfigured", s.llm != nil),
	)
	return nil
}

// Stop shuts down workers, closes the queue and releases display URLs.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), stopTimeout)
	defer cancel()

	s.logger.Info(ctx, "stopping swing analysis service...")
	_ = s.queue.Close()
	if err := s.pool.Stop(ctx); err != nil {
		s.logger.Warn(ctx, "worker pool did not stop cleanly", logger.Error(err))
	}
	released := s.videos.ReleaseAll()

	s.started = false
	s.logger.Info(ctx, "swing analysis service stopped", logger.Int("releasedURLs", released))
}

// Insights returns coaching insights for one metric of an analysis.
func (s *Service) Insights(ctx context.Context, req insight.Request) model.MetricInsights {
	return s.insights.Generate(ctx, req)
}

// ReleaseVideo frees a display URL handed out with a local analysis.
func (s *Service) ReleaseVideo(url string) error {
	return s.videos.Release(url)
}

// Adjustments returns the current global adjustment factors.
func (s *Service) Adjustments(ctx context.Context) (model.AdjustmentFactors, error) {
	return s.store.GetFactors(ctx)
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats(ctx context.Context) map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]interface{}{
		"started":           s.started,
		"useMock":           s.useMock,
		"llmConfigured":     s.llm != nil,
		"model":             s.modelName,
		"workerCount":       s.pool.Size(),
		"queueSize":         s.queueSize,
		"queueLength":       s.queue.Len(),
		"dedupeEntries":     s.deduper.Size(),
		"liveDisplayURLs":   s.videos.Len(),
		"recomputed":        s.pool.Processed(),
		"registeredMetrics": len(s.registry.Keys()),
	}
	if n, err := s.store.CountFeedback(ctx); err == nil {
		stats["feedbackCount"] = n
	}
	return stats
}
