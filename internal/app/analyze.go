package service

import (
	"context"
	"errors"

	"github.com/okian/swingcoach/internal/adapters/llm"
	repository "github.com/okian/swingcoach/internal/adapters/repository"
	"github.com/okian/swingcoach/internal/domain/adjust"
	"github.com/okian/swingcoach/internal/domain/model"
	"github.com/okian/swingcoach/internal/domain/parse"
	"github.com/okian/swingcoach/internal/domain/prompt"
	"github.com/okian/swingcoach/internal/domain/video"
	"github.com/okian/swingcoach/pkg/logger"
	"github.com/okian/swingcoach/pkg/metrics"
)

// Fallback reasons.
const (
	ReasonMockMode      = "mock_mode"
	ReasonNoVideo       = "no_video"
	ReasonAPIKeyMissing = "api_key_missing"
	ReasonEncoding      = "encoding"
	ReasonUnparseable   = "unparseable"
	ReasonMissingFields = "missing_fields"
	ReasonInvariant     = "invariant"
)

const scoringOp = "scoring"

// Analyze scores a swing. It always returns a valid analysis; every failure
// along the model path degrades to mock data.
func (s *Service) Analyze(ctx context.Context, sub model.Submission) model.Analysis {
	meta := sub.Metadata
	if s.useMock {
		return s.fallback(ctx, sub, ReasonMockMode, nil)
	}

	hosted := sub.File == nil && meta.HostedVideoID != ""
	if sub.File == nil && !hosted {
		return s.fallback(ctx, sub, ReasonNoVideo, nil)
	}
	if s.llm == nil {
		s.missingKey.Do(func() {
			s.logger.Warn(ctx, "no model API key configured; serving mock analyses")
		})
		return s.fallback(ctx, sub, ReasonAPIKeyMissing, nil)
	}

	refs, err := s.store.ReferenceModels(ctx)
	if err != nil {
		s.logger.Warn(ctx, "reference models unavailable", logger.Error(err))
		refs = nil
	}
	req := model.LLMRequest{
		Op: scoringOp,
		Prompt: prompt.Scoring(s.registry, prompt.ScoringInput{
			Club:       meta.Club,
			Outcome:    meta.Outcome,
			Ownership:  meta.Ownership,
			ProName:    meta.ProName,
			References: refs,
		}),
		Temperature: s.scoringTemperature,
		Timeout:     s.scoringTimeout,
	}
	if hosted {
		uri, err := s.hosted.URI(meta.HostedVideoID)
		if err != nil {
			return s.fallback(ctx, sub, ReasonEncoding, err)
		}
		req.VideoURI = uri
	} else {
		req.Video = sub.File
	}

	text, err := s.llm.Generate(ctx, req)
	if sub.File != nil {
		// Bytes are not retained past the model call.
		sub.File.Data = nil
	}
	if err != nil {
		return s.fallback(ctx, sub, llm.Kind(err), err)
	}

	scores, err := parse.Analysis(s.registry, text)
	if err != nil {
		reason := ReasonUnparseable
		if errors.Is(err, parse.ErrMissingFields) {
			reason = ReasonMissingFields
		}
		return s.fallback(ctx, sub, reason, err)
	}
	if len(scores.Dropped) > 0 {
		s.logger.Debug(ctx, "dropped unknown metrics", logger.Any("keys", scores.Dropped))
	}

	a := s.shaper.NormalizeAndValidate(model.Analysis{
		OverallScore:    scores.Overall,
		Metrics:         scores.Metrics,
		Recommendations: scores.Recommendations,
		Source:          model.SourceLLM,
	})

	if !hosted {
		a = s.blend(ctx, a, video.FileSignature(sub.File))
	}
	a = s.adjust(ctx, a, meta)
	a.Recommendations = parse.NormalizeRecommendations(a.Recommendations)
	a.OverallScore = s.shaper.Finalize(a.OverallScore, a.Metrics)
	a = s.attach(a, sub)

	if err := a.Validate(); err != nil {
		return s.fallback(ctx, sub, ReasonInvariant, err)
	}
	metrics.RecordAnalysis(string(model.SourceLLM))
	return a
}

func (s *Service) blend(ctx context.Context, a model.Analysis, signature string) model.Analysis {
	out, blended, err := s.blender.Apply(ctx, a, signature)
	if err != nil {
		metrics.RecordErrorByComponent("history", "append")
		s.logger.Warn(ctx, "analysis history unavailable", logger.String("signature", signature), logger.Error(err))
		return out
	}
	metrics.RecordHistoryAppend()
	if blended {
		metrics.RecordConsistencyBlend()
	}
	return out
}

func (s *Service) adjust(ctx context.Context, a model.Analysis, meta model.Metadata) model.Analysis {
	factors, err := s.store.GetFactors(ctx)
	if err != nil {
		s.logger.Warn(ctx, "adjustment factors unavailable", logger.Error(err))
		metrics.RecordAdjustmentSkipped("factors_unavailable")
		return a
	}
	if factors.IsZero() {
		metrics.RecordAdjustmentSkipped("no_factors")
		return a
	}

	prefs := model.Preferences{Priority: model.PriorityAsNeeded}
	if meta.UserID != "" {
		p, err := s.store.GetPreferences(ctx, meta.UserID)
		switch {
		case err == nil:
			prefs = p
		case !errors.Is(err, repository.ErrNotFound):
			s.logger.Warn(ctx, "preferences unavailable", logger.Error(err))
		}
	}

	ok, reason := adjust.ShouldAdjust(a, prefs)
	if !ok {
		metrics.RecordAdjustmentSkipped(reason)
		return a
	}
	out, applied := s.engine.Apply(a, factors)
	if applied {
		metrics.RecordAdjustmentApplied()
	} else {
		metrics.RecordAdjustmentSkipped("no_matching_metrics")
	}
	return out
}

func (s *Service) fallback(ctx context.Context, sub model.Submission, reason string, cause error) model.Analysis {
	fields := []logger.Field{logger.String("reason", reason)}
	if cause != nil {
		fields = append(fields, logger.Error(cause))
	}
	if sub.File != nil {
		fields = append(fields, logger.Int64("size", sub.File.Size))
	}
	if reason != ReasonMockMode && reason != ReasonAPIKeyMissing {
		s.logger.Warn(ctx, "serving mock analysis", fields...)
	}
	metrics.RecordFallback(reason)

	a := s.mock.Analyze(sub.Metadata)
	a.OverallScore = s.shaper.Finalize(a.OverallScore, a.Metrics)
	a = s.attach(a, sub)
	metrics.RecordAnalysis(string(model.SourceMock))
	return a
}

// attach fills identity, timestamps, club context and the video reference.
func (s *Service) attach(a model.Analysis, sub model.Submission) model.Analysis {
	meta := sub.Metadata
	a.ID = s.ids.Next()
	a.AnalyzedAt = s.now()
	a.RecordedAt = meta.RecordedAt
	if a.RecordedAt.After(a.AnalyzedAt) {
		a.RecordedAt = a.AnalyzedAt
	}
	a.Club = meta.Club
	a.Outcome = meta.Outcome
	a.Ownership = meta.Ownership
	a.ProName = meta.ProName

	switch {
	case sub.File != nil:
		a.Video = s.videos.Register(sub.File)
	case meta.HostedVideoID != "":
		a.Video = s.hosted.Ref(meta.HostedVideoID)
	}
	return a
}
