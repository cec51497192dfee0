// Package repository persists swing history, feedback, adjustment factors,
// preferences and reference models.
package repository

import (
	"context"

	"github.com/okian/swingcoach/internal/domain/model"
)

// HistoryStore holds the per-video analysis history lists.
type HistoryStore interface {
	GetList(ctx context.Context, signature string) ([]model.HistoryEntry, error)
	PutList(ctx context.Context, signature string, entries []model.HistoryEntry) error
}

// FeedbackStore is the append-only feedback collection.
type FeedbackStore interface {
	// InsertFeedback writes rec and its per-metric verdicts.
	// Returns ErrDuplicateFeedback when (analysis id, user id) already exists.
	InsertFeedback(ctx context.Context, rec model.FeedbackRecord) error
	// ListFeedback returns every record in insertion order.
	ListFeedback(ctx context.Context) ([]model.FeedbackRecord, error)
	// FeedbackKeys returns the write-once keys of stored records.
	FeedbackKeys(ctx context.Context) ([]string, error)
	CountFeedback(ctx context.Context) (int, error)
}

// FactorStore holds the current global adjustment factors.
type FactorStore interface {
	// GetFactors returns zero factors when none were computed yet.
	GetFactors(ctx context.Context) (model.AdjustmentFactors, error)
	PutFactors(ctx context.Context, f model.AdjustmentFactors) error
}

// PreferenceStore holds per-user adjustment preferences.
type PreferenceStore interface {
	// GetPreferences returns ErrNotFound for unknown users.
	GetPreferences(ctx context.Context, userID string) (model.Preferences, error)
	PutPreferences(ctx context.Context, userID string, p model.Preferences) error
}

// ReferenceStore holds per-metric reference analyses.
type ReferenceStore interface {
	ReferenceModels(ctx context.Context) ([]model.ReferenceModel, error)
	PutReferenceModel(ctx context.Context, r model.ReferenceModel) error
}

// Store is the full persistence surface.
type Store interface {
	HistoryStore
	FeedbackStore
	FactorStore
	PreferenceStore
	ReferenceStore
	Close() error
}
