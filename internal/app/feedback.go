package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	repository "github.com/okian/swingcoach/internal/adapters/repository"
	"github.com/okian/swingcoach/internal/domain/model"
	"github.com/okian/swingcoach/pkg/logger"
	"github.com/okian/swingcoach/pkg/metrics"
)

// SubmitFeedback persists rec, once per (analysis, user) when a user is given,
// and schedules a recompute of the adjustment factors. It reports whether the record was written.
func (s *Service) SubmitFeedback(ctx context.Context, rec model.FeedbackRecord) (bool, error) {
	if err := rec.Validate(); err != nil {
		return false, err
	}
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = s.now()
	}
	if rec.ModelVersion == "" {
		rec.ModelVersion = s.modelName
	}

	key, once := rec.DedupeKey(), rec.WriteOnce()
	if once && s.deduper.SeenAndRecord(ctx, key) {
		metrics.RecordFeedbackDuplicate()
		return false, fmt.Errorf("%w: %s", repository.ErrDuplicateFeedback, key)
	}

	if err := s.store.InsertFeedback(ctx, rec); err != nil {
		if errors.Is(err, repository.ErrDuplicateFeedback) {
			metrics.RecordFeedbackDuplicate()
			return false, err
		}
		if once {
			s.deduper.Unrecord(ctx, key)
		}
		metrics.RecordFeedbackFailed()
		metrics.RecordErrorByComponent("feedback", "insert")
		s.logger.Error(ctx, "feedback write failed",
			logger.String("analysisID", rec.AnalysisID),
			logger.Error(err))
		return false, err
	}
	metrics.RecordFeedbackRecorded()

	if err := s.queue.Enqueue(ctx, rec); err != nil {
		s.logger.Warn(ctx, "recompute not scheduled",
			logger.String("analysisID", rec.AnalysisID),
			logger.Error(err))
	}
	return true, nil
}

// RecomputeAdjustments rebuilds the factors synchronously.
func (s *Service) RecomputeAdjustments(ctx context.Context) (model.AdjustmentFactors, error) {
	return s.recomputer.Recompute(ctx)
}
