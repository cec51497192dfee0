package api

import (
	"errors"
	"net/http"

	repository "github.com/okian/swingcoach/internal/adapters/repository"
	"github.com/okian/swingcoach/internal/domain/model"
)

type feedbackResponse struct {
	Recorded bool `json:"recorded"`
}

// FeedbackHandler handles feedback submissions.
type FeedbackHandler struct {
	collector FeedbackCollector
}

// NewFeedbackHandler creates a new feedback handler.
func NewFeedbackHandler(c FeedbackCollector) *FeedbackHandler {
	return &FeedbackHandler{collector: c}
}

// HandlePostFeedback handles POST /feedback requests.
func (h *FeedbackHandler) HandlePostFeedback(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_feedback"
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	var rec model.FeedbackRecord
	if err := decodeJSON(w, r, &rec); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", wrapKind(op, ErrBadRequest, err))
		return
	}

	recorded, err := h.collector.SubmitFeedback(r.Context(), rec)
	switch {
	case err == nil:
		writeJSON(w, http.StatusCreated, feedbackResponse{Recorded: recorded})
	case errors.Is(err, model.ErrInvalidFeedback):
		writeError(w, http.StatusBadRequest, "invalid_feedback", err)
	case errors.Is(err, repository.ErrDuplicateFeedback):
		writeError(w, http.StatusConflict, "duplicate_feedback", err)
	case errors.Is(err, repository.ErrStoragePermission):
		writeError(w, http.StatusServiceUnavailable, "storage_unavailable", err)
	default:
		writeError(w, http.StatusInternalServerError, "internal", err)
	}
}
