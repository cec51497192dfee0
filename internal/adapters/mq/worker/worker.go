// Package worker runs the out-of-band job that recomputes adjustment factors
// whenever feedback is recorded.
package worker

import (
	"context"
	"fmt"
	"runtime"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/swingcoach/internal/domain/adjust"
	"github.com/okian/swingcoach/internal/domain/model"
	"github.com/okian/swingcoach/pkg/logger"
	"github.com/okian/swingcoach/pkg/metrics"
)

// FeedbackSource lists every stored feedback record.
type FeedbackSource interface {
	ListFeedback(ctx context.Context) ([]model.FeedbackRecord, error)
}

// FactorSink stores recomputed factors.
type FactorSink interface {
	PutFactors(ctx context.Context, f model.AdjustmentFactors) error
}

// Queue defines how workers receive feedback notifications.
type Queue interface {
	Dequeue(ctx context.Context) <-chan model.FeedbackRecord
}

// Recomputer rebuilds the global factors from the full feedback collection.
// Concurrent calls are serialized so a stale read never overwrites a newer result.
type Recomputer struct {
	source     FeedbackSource
	sink       FactorSink
	minSamples int
	canonical  func(string) string
	now        func() time.Time
	mu         sync.Mutex
	logger     logger.Logger
}

// NewRecomputer creates a Recomputer.
func NewRecomputer(source FeedbackSource, sink FactorSink, opts ...Option) *Recomputer {
	r := &Recomputer{
		source:     source,
		sink:       sink,
		minSamples: adjust.DefaultMinSamples,
		now:        time.Now,
		logger:     logger.Get().Named("recompute"),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Recompute reads all feedback, derives factors and stores them.
func (r *Recomputer) Recompute(ctx context.Context) (model.AdjustmentFactors, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	records, err := r.source.ListFeedback(ctx)
	if err != nil {
		metrics.RecordErrorByComponent("worker", "list_feedback")
		return model.AdjustmentFactors{}, fmt.Errorf("list feedback: %w", err)
	}
	f := adjust.ComputeFactors(records, r.minSamples, r.canonical, r.now())
	if err := r.sink.PutFactors(ctx, f); err != nil {
		metrics.RecordErrorByComponent("worker", "put_factors")
		return model.AdjustmentFactors{}, fmt.Errorf("store factors: %w", err)
	}
	metrics.RecordFactorsRecomputed(f.Overall)
	r.logger.Debug(ctx, "adjustment factors recomputed",
		logger.Int("samples", f.Samples),
		logger.Int("overall", f.Overall),
		logger.Int("metrics", len(f.Metrics)))
	return f, nil
}

// Worker consumes the queue and triggers recomputation.
type Worker struct {
	queue      Queue
	recomputer *Recomputer
	name       string
	processed  *atomic.Int64

	shutdown chan struct{}
	done     chan struct{}
	once     sync.Once

	logger logger.Logger
}

func newWorker(name string, q Queue, r *Recomputer, processed *atomic.Int64) *Worker {
	return &Worker{
		queue:      q,
		recomputer: r,
		name:       name,
		processed:  processed,
		shutdown:   make(chan struct{}),
		done:       make(chan struct{}),
		logger:     logger.Get().Named(name),
	}
}

// Run processes records until ctx ends, Shutdown is called or the queue closes.
func (w *Worker) Run(ctx context.Context) {
	defer close(w.done)

	records := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case rec, ok := <-records:
			if !ok {
				return
			}
			w.process(ctx, rec)
		}
	}
}

func (w *Worker) process(ctx context.Context, rec model.FeedbackRecord) { //nolint:gocritic // records flow by value
	start := time.Now()
	defer func() {
		metrics.RecordWorkerProcessingLatency(float64(time.Since(start).Milliseconds()))
	}()

	if _, err := w.recomputer.Recompute(ctx); err != nil {
		metrics.RecordWorkerError()
		metrics.RecordErrorByType("recompute_error", "medium")
		w.logger.Error(ctx, "recompute failed",
			logger.String("analysisID", rec.AnalysisID),
			logger.Error(err))
		return
	}
	w.processed.Add(1)
}

// Shutdown stops the worker and waits for it to exit.
func (w *Worker) Shutdown(ctx context.Context) error {
	w.once.Do(func() { close(w.shutdown) })
	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

// Pool manages multiple workers over one queue.
type Pool struct {
	workers   []*Worker
	processed atomic.Int64
	started   atomic.Bool
	logger    logger.Logger
}

// NewPool creates a pool of workerCount workers; values below one select NumCPU.
func NewPool(workerCount int, q Queue, r *Recomputer) *Pool {
	if workerCount < 1 {
		workerCount = runtime.NumCPU()
	}
	p := &Pool{
		workers: make([]*Worker, workerCount),
		logger:  logger.Get().Named("worker-pool"),
	}
	for i := range p.workers {
		p.workers[i] = newWorker("worker-"+strconv.Itoa(i), q, r, &p.processed)
	}
	return p
}

// Start launches every worker.
func (p *Pool) Start(ctx context.Context) {
	if !p.started.CompareAndSwap(false, true) {
		return
	}
	for _, w := range p.workers {
		go w.Run(ctx)
	}
	metrics.UpdateWorkerActiveCount(len(p.workers))
	p.logger.Info(ctx, "worker pool started", logger.Int("workers", len(p.workers)))
}

// Stop shuts every worker down.
func (p *Pool) Stop(ctx context.Context) error {
	if !p.started.Load() {
		return nil
	}
	var firstErr error
	for _, w := range p.workers {
		if err := w.Shutdown(ctx); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	metrics.UpdateWorkerActiveCount(0)
	return firstErr
}

// Size returns the number of workers.
func (p *Pool) Size() int { return len(p.workers) }

// Processed returns how many records triggered a successful recompute.
func (p *Pool) Processed() int64 { return p.processed.Load() }
