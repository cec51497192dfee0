// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/okian/swingcoach/internal/domain/insight"
	"github.com/okian/swingcoach/internal/domain/model"
)

// Default limits.
const (
	DefaultMaxUploadBytes int64 = 64 << 20
	multipartMemory       int64 = 8 << 20
	maxJSONBodyBytes      int64 = 1 << 20
)

// Analyzer scores a submitted swing. It always returns a valid analysis.
type Analyzer interface {
	Analyze(ctx context.Context, sub model.Submission) model.Analysis
}

// InsightProvider explains one metric of an analysis.
type InsightProvider interface {
	Insights(ctx context.Context, req insight.Request) model.MetricInsights
}

// FeedbackCollector records user feedback.
type FeedbackCollector interface {
	SubmitFeedback(ctx context.Context, rec model.FeedbackRecord) (bool, error)
}

// AdjustmentReader exposes the learned adjustment factors.
type AdjustmentReader interface {
	Adjustments(ctx context.Context) (model.AdjustmentFactors, error)
}

// Dependencies required by HTTP handlers.
type Dependencies interface {
	Analyzer
	InsightProvider
	FeedbackCollector
	AdjustmentReader
}

// Option configures a Server.
type Option func(*Server)

// WithMaxUploadBytes caps the size of a multipart analysis request.
func WithMaxUploadBytes(n int64) Option {
	return func(s *Server) {
		if n > 0 {
			s.maxUploadBytes = n
		}
	}
}

// Server wires HTTP routes for the business API.
type Server struct {
	maxUploadBytes int64

	healthHandler      *HealthHandler
	statsHandler       *StatsHandler
	analysesHandler    *AnalysesHandler
	insightsHandler    *InsightsHandler
	feedbackHandler    *FeedbackHandler
	adjustmentsHandler *AdjustmentsHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, opts ...Option) *Server {
	s := &Server{maxUploadBytes: DefaultMaxUploadBytes}
	for _, opt := range opts {
		opt(s)
	}
	s.healthHandler = NewHealthHandler()
	s.statsHandler = NewStatsHandler(statsProvider)
	s.analysesHandler = NewAnalysesHandler(deps, s.maxUploadBytes)
	s.insightsHandler = NewInsightsHandler(deps)
	s.feedbackHandler = NewFeedbackHandler(deps)
	s.adjustmentsHandler = NewAdjustmentsHandler(deps)
	return s
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	if mux == nil {
		panic("mux is nil")
	}
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/analyses", MetricsMiddleware(s.analysesHandler.HandlePostAnalysis, "analyses"))
	mux.HandleFunc("/insights", MetricsMiddleware(s.insightsHandler.HandlePostInsights, "insights"))
	mux.HandleFunc("/feedback", MetricsMiddleware(s.feedbackHandler.HandlePostFeedback, "feedback"))
	mux.HandleFunc("/adjustments", MetricsMiddleware(s.adjustmentsHandler.HandleGetAdjustments, "adjustments"))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

func requireMethod(w http.ResponseWriter, r *http.Request, method string) bool {
	if r.Method == method {
		return true
	}
	w.Header().Set("Allow", method)
	writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", ErrMethodNotAllowed)
	return false
}

// decodeJSON reads a single JSON object from a size-limited body.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBodyBytes))
	return dec.Decode(v)
}
