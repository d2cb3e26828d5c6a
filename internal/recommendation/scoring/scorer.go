// internal/recommendation/scoring/scorer.go
package scoring

import (
	"course-workers/internal/common/logger"
	"course-workers/internal/models"
)

const (
	BaseScore = 50
	MinScore  = 0
	MaxScore  = 100
)

// Scorer applies a heuristic table to candidates. It holds no per-request
// state, so one Scorer serves concurrent requests.
type Scorer struct {
	heuristics []Heuristic
	random     RandomSource
	logger     logger.Logger
}

type Option func(*Scorer)

// WithHeuristics replaces the default heuristic table.
func WithHeuristics(h []Heuristic) Option {
	return func(s *Scorer) { s.heuristics = h }
}

func NewScorer(random RandomSource, log logger.Logger, opts ...Option) *Scorer {
	if random == nil {
		random = NewSeededSource(1)
	}
	s := &Scorer{
		heuristics: DefaultHeuristics,
		random:     random,
		logger:     logger.Component(log, "scorer"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Score rates one candidate against the user's signals. Exactly one random
// draw is consumed per call.
func (s *Scorer) Score(course models.Course, signals *models.UserSignals) models.ScoredCourse {
	in := &Input{
		Course:   &course,
		Signals:  signals,
		PeerDraw: s.random.Float64(),
	}

	score := BaseScore
	reason := ""
	var factors []models.Factor
	for _, h := range s.heuristics {
		rule, ok := h.evaluate(in)
		if !ok {
			continue
		}
		score += rule.Weight
		factors = append(factors, models.Factor{Heuristic: rule.Name, Points: rule.Weight})
		if reason == "" {
			reason = rule.Reason
		}
	}
	if reason == "" {
		reason = FallbackReason
	}

	return models.ScoredCourse{
		Course:       course,
		Score:        clamp(score),
		MatchReason:  reason,
		IsSuggestion: true,
		Factors:      factors,
	}
}

// ScoreAll scores candidates in order.
func (s *Scorer) ScoreAll(candidates []models.Course, signals *models.UserSignals) []models.ScoredCourse {
	out := make([]models.ScoredCourse, 0, len(candidates))
	for _, c := range candidates {
		out = append(out, s.Score(c, signals))
	}
	s.logger.Debug("candidates scored", map[string]interface{}{
		"userId":     signals.UserID,
		"candidates": len(out),
	})
	return out
}

func clamp(score int) int {
	if score < MinScore {
		return MinScore
	}
	if score > MaxScore {
		return MaxScore
	}
	return score
}
