// Package metrics provides Prometheus metrics for the swing analysis service.
package metrics

import (
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Default metrics configuration constants.
const (
	defaultRefreshInterval = 10 * time.Second
)

// Manager manages all Prometheus metrics for the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          atomic.Bool
	refreshInterval  time.Duration
	customLabels     map[string]string
	metricPrefix     string
	registry         prometheus.Registerer

	// Analysis pipeline
	analyses           *prometheus.CounterVec
	fallbacks          *prometheus.CounterVec
	llmLatency         *prometheus.HistogramVec
	llmErrors          *prometheus.CounterVec
	adjustmentsApplied prometheus.Counter
	adjustmentsSkipped *prometheus.CounterVec
	consistencyBlends  prometheus.Counter
	historyAppends     prometheus.Counter
	insights           *prometheus.CounterVec

	// Feedback
	feedbackRecorded    prometheus.Counter
	feedbackDuplicate   prometheus.Counter
	feedbackFailed      prometheus.Counter
	factorsRecomputed   prometheus.Counter
	factorsOverallGauge prometheus.Gauge

	// HTTP Performance Metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Queue Metrics
	queueSize          prometheus.Gauge
	queueCapacity      prometheus.Gauge
	queueUtilization   prometheus.Gauge
	queueEnqueueRate   prometheus.Counter
	queueDequeueRate   prometheus.Counter
	queueEnqueueErrors prometheus.Counter

	// Worker Metrics
	workerActiveCount       prometheus.Gauge
	workerProcessingLatency prometheus.Histogram
	workerErrorRate         prometheus.Counter

	// Error Metrics
	errorRateByComponent *prometheus.CounterVec
	errorRateByType      *prometheus.CounterVec
	errorRateByEndpoint  *prometheus.CounterVec
	errorLatency         *prometheus.HistogramVec

	// System Performance Metrics
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

// Enabled reports whether the global manager records anything.
func Enabled() bool {
	return globalManager.enabled.Load()
}

// SetEnabled turns recording on or off for the global manager. Series already
// registered keep their last value.
func SetEnabled(on bool) {
	globalManager.enabled.Store(on)
}

// RefreshInterval returns how often sampled gauges should be refreshed.
func RefreshInterval() time.Duration {
	return globalManager.RefreshInterval()
}

// SetRefreshInterval changes the sampling interval; non-positive values are ignored.
func SetRefreshInterval(d time.Duration) {
	WithRefreshInterval(d)(globalManager)
}

// Enabled reports whether m records anything.
func (m *Manager) Enabled() bool { return m.enabled.Load() }

// RefreshInterval returns m's gauge sampling interval.
func (m *Manager) RefreshInterval() time.Duration { return m.refreshInterval }

// Initialize global metrics.
func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "swingcoach",
		subsystem:        "analysis",
		histogramBuckets: prometheus.DefBuckets,
		refreshInterval:  defaultRefreshInterval,
		customLabels:     make(map[string]string),
		metricPrefix:     "",
		registry:         prometheus.DefaultRegisterer,
	}

	m.enabled.Store(true)
	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

func (m *Manager) name(n string) string {
	if m.metricPrefix == "" {
		return n
	}
	return m.metricPrefix + "_" + n
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() { //nolint:funlen // long function required for comprehensive metrics initialization
	auto := promauto.With(m.registry)
	labels := prometheus.Labels(m.customLabels)
	llmBuckets := []float64{100, 250, 500, 1000, 2500, 5000, 10000, 30000, 60000, 120000}

	m.analyses = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: labels,
		Name: m.name("analyses_total"),
		Help: "Total number of analyses returned, by provenance (llm or mock)",
	}, []string{"source"})

	m.fallbacks = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: labels,
		Name: m.name("fallbacks_total"),
		Help: "Total number of mock fallbacks by reason",
	}, []string{"reason"})

	m.llmLatency = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: labels,
		Name:    m.name("llm_latency_milliseconds"),
		Help:    "LLM call latency in milliseconds by operation",
		Buckets: llmBuckets,
	}, []string{"op"})

	m.llmErrors = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: labels,
		Name: m.name("llm_errors_total"),
		Help: "LLM call failures by error kind",
	}, []string{"kind"})

	m.adjustmentsApplied = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: labels,
		Name: m.name("adjustments_applied_total"),
		Help: "Analyses that received learned adjustment factors",
	})

	m.adjustmentsSkipped = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: labels,
		Name: m.name("adjustments_skipped_total"),
		Help: "Analyses that skipped adjustment, by reason",
	}, []string{"reason"})

	m.consistencyBlends = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: labels,
		Name: m.name("consistency_blends_total"),
		Help: "Analyses damped against a prior analysis of the same video",
	})

	m.historyAppends = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: labels,
		Name: m.name("history_appends_total"),
		Help: "Entries appended to the per-video analysis history",
	})

	m.insights = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: labels,
		Name: m.name("insights_total"),
		Help: "Metric insight responses by source (llm or default)",
	}, []string{"source"})

	m.feedbackRecorded = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: labels,
		Name: m.name("feedback_recorded_total"),
		Help: "Feedback records persisted",
	})

	m.feedbackDuplicate = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: labels,
		Name: m.name("feedback_duplicate_total"),
		Help: "Feedback submissions rejected as duplicates",
	})

	m.feedbackFailed = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: labels,
		Name: m.name("feedback_failed_total"),
		Help: "Feedback submissions that could not be persisted",
	})

	m.factorsRecomputed = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: labels,
		Name: m.name("factors_recomputed_total"),
		Help: "Adjustment factor recomputations completed",
	})

	m.factorsOverallGauge = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: labels,
		Name: m.name("factors_overall_delta"),
		Help: "Current learned overall adjustment delta",
	})

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: labels,
		Name: m.name("http_requests_total"),
		Help: "Total number of HTTP requests by endpoint and method",
	}, []string{"endpoint", "method", "status_code"})

	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: labels,
		Name:    m.name("http_request_duration_milliseconds"),
		Help:    "HTTP request duration in milliseconds",
		Buckets: m.histogramBuckets,
	}, []string{"endpoint", "method", "status_code"})

	m.queueSize = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: labels,
		Name: m.name("queue_size"),
		Help: "Current size of the feedback queue",
	})

	m.queueCapacity = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: labels,
		Name: m.name("queue_capacity"),
		Help: "Maximum capacity of the feedback queue",
	})

	m.queueUtilization = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: labels,
		Name: m.name("queue_utilization_ratio"),
		Help: "Feedback queue utilization (0-1)",
	})

	m.queueEnqueueRate = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: labels,
		Name: m.name("queue_enqueue_total"),
		Help: "Feedback events enqueued",
	})

	m.queueDequeueRate = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: labels,
		Name: m.name("queue_dequeue_total"),
		Help: "Feedback events dequeued",
	})

	m.queueEnqueueErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: labels,
		Name: m.name("queue_enqueue_errors_total"),
		Help: "Feedback events dropped at enqueue",
	})

	m.workerActiveCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: labels,
		Name: m.name("worker_active_count"),
		Help: "Number of recompute workers running",
	})

	m.workerProcessingLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: labels,
		Name:    m.name("worker_processing_latency_milliseconds"),
		Help:    "Recompute worker processing latency in milliseconds",
		Buckets: m.histogramBuckets,
	})

	m.workerErrorRate = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: labels,
		Name: m.name("worker_errors_total"),
		Help: "Recompute worker failures",
	})

	m.errorRateByComponent = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: labels,
		Name: m.name("errors_by_component_total"),
		Help: "Errors by component and type",
	}, []string{"component", "error_type"})

	m.errorRateByType = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: labels,
		Name: m.name("errors_by_type_total"),
		Help: "Errors by type and severity",
	}, []string{"error_type", "severity"})

	m.errorRateByEndpoint = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: labels,
		Name: m.name("errors_by_endpoint_total"),
		Help: "Errors by HTTP endpoint",
	}, []string{"endpoint", "method", "error_type"})

	m.errorLatency = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: labels,
		Name:    m.name("error_latency_milliseconds"),
		Help:    "Latency of failed operations in milliseconds",
		Buckets: m.histogramBuckets,
	}, []string{"component", "error_type"})

	m.systemMemoryUsage = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: labels,
		Name: m.name("system_memory_usage_bytes"),
		Help: "System memory usage in bytes",
	})

	m.systemGoroutineCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: labels,
		Name: m.name("system_goroutine_count"),
		Help: "Number of goroutines",
	})

	m.systemGCPauseTime = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: labels,
		Name:    m.name("system_gc_pause_time_milliseconds"),
		Help:    "GC pause time in milliseconds",
		Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000},
	})
}

// RecordAnalysis increments the analyses counter for a provenance label.
func RecordAnalysis(source string) {
	if !Enabled() {
		return
	}
	globalManager.analyses.WithLabelValues(source).Inc()
}

// RecordFallback increments the mock fallback counter for a reason.
func RecordFallback(reason string) {
	if !Enabled() {
		return
	}
	globalManager.fallbacks.WithLabelValues(reason).Inc()
}

// RecordLLMLatency records LLM latency in milliseconds for an operation.
func RecordLLMLatency(op string, latencyMs float64) {
	if !Enabled() {
		return
	}
	globalManager.llmLatency.WithLabelValues(op).Observe(latencyMs)
}

// RecordLLMError increments the LLM error counter for a kind.
func RecordLLMError(kind string) {
	if !Enabled() {
		return
	}
	globalManager.llmErrors.WithLabelValues(kind).Inc()
}

// RecordAdjustmentApplied increments the applied adjustments counter.
func RecordAdjustmentApplied() {
	if !Enabled() {
		return
	}
	globalManager.adjustmentsApplied.Inc()
}

// RecordAdjustmentSkipped increments the skipped adjustments counter.
func RecordAdjustmentSkipped(reason string) {
	if !Enabled() {
		return
	}
	globalManager.adjustmentsSkipped.WithLabelValues(reason).Inc()
}

// RecordConsistencyBlend increments the consistency blend counter.
func RecordConsistencyBlend() {
	if !Enabled() {
		return
	}
	globalManager.consistencyBlends.Inc()
}

// RecordHistoryAppend increments the history append counter.
func RecordHistoryAppend() {
	if !Enabled() {
		return
	}
	globalManager.historyAppends.Inc()
}

// RecordInsight increments the insights counter for a source label.
func RecordInsight(source string) {
	if !Enabled() {
		return
	}
	globalManager.insights.WithLabelValues(source).Inc()
}

// RecordFeedbackRecorded increments the persisted feedback counter.
func RecordFeedbackRecorded() {
	if !Enabled() {
		return
	}
	globalManager.feedbackRecorded.Inc()
}

// RecordFeedbackDuplicate increments the duplicate feedback counter.
func RecordFeedbackDuplicate() {
	if !Enabled() {
		return
	}
	globalManager.feedbackDuplicate.Inc()
}

// RecordFeedbackFailed increments the failed feedback counter.
func RecordFeedbackFailed() {
	if !Enabled() {
		return
	}
	globalManager.feedbackFailed.Inc()
}

// RecordFactorsRecomputed records a completed recompute and the new overall delta.
func RecordFactorsRecomputed(overall int) {
	if !Enabled() {
		return
	}
	globalManager.factorsRecomputed.Inc()
	globalManager.factorsOverallGauge.Set(float64(overall))
}

// RecordHTTPRequest increments the HTTP requests counter.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	if !Enabled() {
		return
	}
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	if !Enabled() {
		return
	}
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// UpdateQueueSize sets the current queue size.
func UpdateQueueSize(size int) {
	if !Enabled() {
		return
	}
	globalManager.queueSize.Set(float64(size))
}

// UpdateQueueCapacity sets the queue capacity.
func UpdateQueueCapacity(capacity int) {
	if !Enabled() {
		return
	}
	globalManager.queueCapacity.Set(float64(capacity))
}

// UpdateQueueUtilization sets the queue utilization ratio.
func UpdateQueueUtilization(utilization float64) {
	if !Enabled() {
		return
	}
	globalManager.queueUtilization.Set(utilization)
}

// RecordQueueEnqueue increments the enqueue counter.
func RecordQueueEnqueue() {
	if !Enabled() {
		return
	}
	globalManager.queueEnqueueRate.Inc()
}

// RecordQueueDequeue increments the dequeue counter.
func RecordQueueDequeue() {
	if !Enabled() {
		return
	}
	globalManager.queueDequeueRate.Inc()
}

// RecordQueueEnqueueError increments the enqueue error counter.
func RecordQueueEnqueueError() {
	if !Enabled() {
		return
	}
	globalManager.queueEnqueueErrors.Inc()
}

// UpdateWorkerActiveCount sets the number of active workers.
func UpdateWorkerActiveCount(count int) {
	if !Enabled() {
		return
	}
	globalManager.workerActiveCount.Set(float64(count))
}

// RecordWorkerProcessingLatency records worker processing latency.
func RecordWorkerProcessingLatency(latencyMs float64) {
	if !Enabled() {
		return
	}
	globalManager.workerProcessingLatency.Observe(latencyMs)
}

// RecordWorkerError increments the worker error counter.
func RecordWorkerError() {
	if !Enabled() {
		return
	}
	globalManager.workerErrorRate.Inc()
}

// RecordErrorByComponent increments errors for a component.
func RecordErrorByComponent(component, errorType string) {
	if !Enabled() {
		return
	}
	globalManager.errorRateByComponent.WithLabelValues(component, errorType).Inc()
}

// RecordErrorByType increments errors by type and severity.
func RecordErrorByType(errorType, severity string) {
	if !Enabled() {
		return
	}
	globalManager.errorRateByType.WithLabelValues(errorType, severity).Inc()
}

// RecordErrorByEndpoint increments errors for an HTTP endpoint.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	if !Enabled() {
		return
	}
	globalManager.errorRateByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// RecordErrorLatency records the latency of a failed operation.
func RecordErrorLatency(component, errorType string, latencyMs float64) {
	if !Enabled() {
		return
	}
	globalManager.errorLatency.WithLabelValues(component, errorType).Observe(latencyMs)
}

// UpdateSystemMemoryUsage sets memory usage in bytes.
func UpdateSystemMemoryUsage(bytes uint64) {
	if !Enabled() {
		return
	}
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the goroutine count.
func UpdateSystemGoroutineCount(count int) {
	if !Enabled() {
		return
	}
	globalManager.systemGoroutineCount.Set(float64(count))
}

// RecordSystemGCPauseTime records GC pause time in milliseconds.
func RecordSystemGCPauseTime(pauseMs float64) {
	if !Enabled() {
		return
	}
	globalManager.systemGCPauseTime.Observe(pauseMs)
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
