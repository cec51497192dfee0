package api

import "net/http"

// AdjustmentsHandler exposes the learned adjustment factors.
type AdjustmentsHandler struct {
	reader AdjustmentReader
}

// NewAdjustmentsHandler creates a new adjustments handler.
func NewAdjustmentsHandler(r AdjustmentReader) *AdjustmentsHandler {
	return &AdjustmentsHandler{reader: r}
}

// HandleGetAdjustments handles GET /adjustments requests.
func (h *AdjustmentsHandler) HandleGetAdjustments(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}
	f, err := h.reader.Adjustments(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal", err)
		return
	}
	if f.Metrics == nil {
		f.Metrics = map[string]int{}
	}
	writeJSON(w, http.StatusOK, f)
}
