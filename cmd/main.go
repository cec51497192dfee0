package main

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/okian/swingcoach/internal/adapters/http/api"
	"github.com/okian/swingcoach/internal/adapters/http/swagger"
	"github.com/okian/swingcoach/internal/adapters/llm"
	repository "github.com/okian/swingcoach/internal/adapters/repository"
	app "github.com/okian/swingcoach/internal/app"
	"github.com/okian/swingcoach/internal/config"
	"github.com/okian/swingcoach/internal/domain/insight"
	"github.com/okian/swingcoach/internal/domain/metric"
	"github.com/okian/swingcoach/internal/domain/recipe"
	"github.com/okian/swingcoach/internal/domain/video"
	"github.com/okian/swingcoach/pkg/logger"
	"github.com/okian/swingcoach/pkg/metrics"
)

// HTTP server timeout constants.
const (
	readTimeout               = 30 * time.Second
	writeTimeout              = 3 * time.Minute
	idleTimeout               = 60 * time.Second
	readHeaderTimeout         = 5 * time.Second
	shutdownTimeout           = 30 * time.Second
	nanosecondsPerMillisecond = 1e6
	inMemoryDB                = ":memory:"
)

func main() {
	// We collect our own system metrics on a custom registry.
	prometheus.Unregister(collectors.NewGoCollector())
	prometheus.Unregister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	if err := logger.Init(); err != nil {
		_, _ = os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		logger.Get().Error(ctx, "swingcoach exited", logger.Error(err))
		_ = logger.Sync()
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	log := logger.Get()

	cfg, err := config.Load(ctx)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	dbPath := cfg.DBPath
	if dbPath == "" {
		dbPath = inMemoryDB
	}
	store, err := repository.Open(ctx, dbPath)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			log.Error(ctx, "close store", logger.Error(err))
		}
	}()

	svc, err := buildService(ctx, cfg, store)
	if err != nil {
		return err
	}
	if err := svc.Start(ctx); err != nil {
		return fmt.Errorf("start service: %w", err)
	}
	defer svc.Stop()

	if configureMetrics(cfg) {
		go startSystemMetricsUpdater(ctx)
		go startServiceMetricsUpdater(ctx, svc)
	}

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           newMux(ctx, svc, cfg),
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info(ctx, "starting HTTP server", logger.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case <-ctx.Done():
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	}
	log.Info(ctx, "shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(ctx, "server shutdown failed", logger.Error(err))
	}
	log.Info(ctx, "server stopped")
	return nil
}

// buildService wires the model client, recipes and hosted-video resolver into
// the orchestrator according to cfg.
func buildService(ctx context.Context, cfg *config.Config, store repository.Store) (*app.Service, error) {
	log := logger.Get()

	hosted, err := video.NewHosted(cfg.HostedURITemplate)
	if err != nil {
		return nil, fmt.Errorf("hosted uri template: %w", err)
	}
	book, err := recipe.LoadOrBuiltin(cfg.RecipePath)
	if err != nil {
		return nil, fmt.Errorf("load recipes: %w", err)
	}

	opts := []app.Option{
		app.WithLogger(log.Named("service")),
		app.WithUseMock(cfg.UseMock),
		app.WithModelName(cfg.GeminiModel),
		app.WithScoringTemperature(float32(cfg.ScoringTemperature)),
		app.WithScoringTimeout(cfg.ScoringTimeout()),
		app.WithHosted(hosted),
		app.WithRecipes(book),
		app.WithInsightOptions(
			insight.WithTemperature(float32(cfg.InsightTemperature)),
			insight.WithMaxTokens(int32(cfg.InsightMaxTokens)), //nolint:gosec // validated positive
			insight.WithTimeout(cfg.InsightTimeout()),
			insight.WithUnlockNotice(cfg.UnlockNotice),
		),
		app.WithMinimalVariation(cfg.MinimalVariation, rand.NewSource(time.Now().UnixNano())),
		app.WithWorkerCount(cfg.WorkerCount),
		app.WithQueueSize(cfg.FeedbackQueueSize),
		app.WithDedupeSize(cfg.DedupeSize),
		app.WithHistorySize(cfg.HistorySize),
		app.WithMinFeedbackSamples(cfg.MinFeedbackSamples),
	}

	client, err := llm.New(ctx, cfg.GeminiAPIKey,
		llm.WithModel(cfg.GeminiModel),
		llm.WithMaxInlineBytes(cfg.MaxInlineBytes),
		llm.WithJSONResponses(true))
	switch {
	case err == nil:
		opts = append(opts, app.WithLLM(client))
	case errors.Is(err, llm.ErrAPIKeyMissing):
		// The service logs the missing key once and serves mock analyses.
	default:
		return nil, fmt.Errorf("create model client: %w", err)
	}

	svc, err := app.New(metric.Default(), store, opts...)
	if err != nil {
		return nil, fmt.Errorf("create service: %w", err)
	}
	return svc, nil
}

func newMux(ctx context.Context, svc *app.Service, cfg *config.Config) *http.ServeMux {
	mux := http.NewServeMux()
	swagger.Register(ctx, mux)
	api.NewServer(svc, svc, api.WithMaxUploadBytes(uploadLimit(cfg))).Register(ctx, mux)
	return mux
}

// uploadLimit leaves room above the inline cap so oversized videos reach the
// model client and fall back to a mock instead of failing the request.
func uploadLimit(cfg *config.Config) int64 {
	limit := 2 * cfg.MaxInlineBytes
	if limit < api.DefaultMaxUploadBytes {
		limit = api.DefaultMaxUploadBytes
	}
	return limit
}

// configureMetrics applies the metrics settings and reports whether the
// background gauge updaters should run.
func configureMetrics(cfg *config.Config) bool {
	metrics.SetEnabled(cfg.MetricsEnabled)
	metrics.SetRefreshInterval(cfg.MetricsRefresh())
	return cfg.MetricsEnabled
}

func startSystemMetricsUpdater(ctx context.Context) {
	ticker := time.NewTicker(metrics.RefreshInterval())
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updateSystemMetrics()
		}
	}
}

func startServiceMetricsUpdater(ctx context.Context, svc *app.Service) {
	ticker := time.NewTicker(metrics.RefreshInterval())
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updateServiceMetrics(ctx, svc)
		}
	}
}

func updateSystemMetrics() {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	metrics.UpdateSystemMemoryUsage(m.Alloc)
	metrics.UpdateSystemGoroutineCount(runtime.NumGoroutine())
	if m.NumGC > 0 {
		avgPauseMs := float64(m.PauseTotalNs) / float64(m.NumGC) / nanosecondsPerMillisecond
		metrics.RecordSystemGCPauseTime(avgPauseMs)
	}
}

func updateServiceMetrics(ctx context.Context, svc *app.Service) {
	stats := svc.GetStats(ctx)
	if n, ok := stats["queueLength"].(int); ok {
		metrics.UpdateQueueSize(n)
	}
	if n, ok := stats["workerCount"].(int); ok {
		metrics.UpdateWorkerActiveCount(n)
	}
}
