// internal/recommendation/service.go
package recommendation

import (
	"context"
	"time"

	"course-workers/internal/common/errors"
	"course-workers/internal/common/logger"
	"course-workers/internal/common/metrics"
	"course-workers/internal/common/observability"
	"course-workers/internal/models"
	"course-workers/internal/recommendation/ranking"
	"course-workers/internal/recommendation/scoring"
	"course-workers/internal/recommendation/signals"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// PoolBuilder produces the candidate pool for one request.
type PoolBuilder interface {
	Build(ctx context.Context) ([]models.Course, error)
}

// Service runs the suggestion pipeline: signals, candidate pool, scoring,
// ranking.
type Service struct {
	extractor *signals.Extractor
	pool      PoolBuilder
	scorer    *scoring.Scorer
	ranking   ranking.Config
	obs       *observability.Observability
	logger    logger.Logger
}

func NewService(
	extractor *signals.Extractor,
	pool PoolBuilder,
	scorer *scoring.Scorer,
	rankCfg ranking.Config,
	obs *observability.Observability,
	log logger.Logger,
) *Service {
	return &Service{
		extractor: extractor,
		pool:      pool,
		scorer:    scorer,
		ranking:   rankCfg,
		obs:       obs,
		logger:    logger.Component(log, "recommendation"),
	}
}

// GetSuggestions returns the ranked suggestions for a user, reading signals
// from the configured store. An empty list is not an error.
func (s *Service) GetSuggestions(ctx context.Context, userID string) ([]models.ScoredCourse, error) {
	return s.run(ctx, userID, nil)
}

// GetSuggestionsFor is GetSuggestions over caller supplied user records.
func (s *Service) GetSuggestionsFor(ctx context.Context, userID string, source signals.Collaborator) ([]models.ScoredCourse, error) {
	return s.run(ctx, userID, source)
}

func (s *Service) run(ctx context.Context, userID string, source signals.Collaborator) ([]models.ScoredCourse, error) {
	start := time.Now()
	ctx, span := s.obs.StartSpan(ctx, "recommendation.get_suggestions", attribute.String("user.id", userID))
	defer span.End()

	var sig models.UserSignals
	if source != nil {
		sig = s.extractor.ExtractFrom(ctx, source, userID)
	} else {
		sig = s.extractor.Extract(ctx, userID)
	}

	pool, err := s.pool.Build(ctx)
	if err != nil {
		stdErr, ok := errors.AsStandardError(err)
		if !ok {
			stdErr = errors.NewCandidateFetchFailedError(err)
		}
		span.RecordError(stdErr)
		span.SetStatus(codes.Error, string(stdErr.Code))
		s.logger.Error("candidate pool failed", map[string]interface{}{
			"userId": userID,
			"error":  stdErr.Error(),
		})
		return nil, stdErr
	}

	scored := s.scorer.ScoreAll(pool, &sig)
	result := ranking.Select(scored, s.ranking)

	suggestions := result.Courses
	if suggestions == nil {
		suggestions = []models.ScoredCourse{}
	}

	metrics.SuggestionsReturned.Observe(float64(len(suggestions)))
	for _, sc := range suggestions {
		metrics.SuggestionScores.Observe(float64(sc.Score))
	}
	s.obs.RecordSuggestions(ctx, len(suggestions), result.Backfilled > 0)
	span.SetAttributes(
		attribute.Int("candidates", len(pool)),
		attribute.Int("suggestions", len(suggestions)),
	)

	s.logger.Info("suggestions generated", map[string]interface{}{
		"userId":      userID,
		"candidates":  len(pool),
		"suggestions": len(suggestions),
		"backfilled":  result.Backfilled,
		"defaulted":   sig.Defaulted,
		"durationMs":  time.Since(start).Milliseconds(),
	})
	return suggestions, nil
}
