package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/okian/swingcoach/internal/domain/insight"
	"github.com/okian/swingcoach/internal/domain/model"
)

type insightsRequest struct {
	Analysis      model.Analysis `json:"analysis"`
	Metric        string         `json:"metric"`
	Authenticated bool           `json:"authenticated"`
}

// InsightsHandler handles per-metric coaching requests.
type InsightsHandler struct {
	provider InsightProvider
}

// NewInsightsHandler creates a new insights handler.
func NewInsightsHandler(p InsightProvider) *InsightsHandler {
	return &InsightsHandler{provider: p}
}

// HandlePostInsights handles POST /insights requests.
func (h *InsightsHandler) HandlePostInsights(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_insights"
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	var req insightsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", wrapKind(op, ErrBadRequest, err))
		return
	}
	req.Metric = strings.TrimSpace(req.Metric)
	if req.Metric == "" {
		writeError(w, http.StatusBadRequest, "bad_request", wrapKind(op, ErrBadRequest, errors.New("missing metric")))
		return
	}
	out := h.provider.Insights(r.Context(), insight.Request{
		Analysis:      req.Analysis,
		Metric:        req.Metric,
		Authenticated: req.Authenticated,
	})
	writeJSON(w, http.StatusOK, out)
}
