// internal/recommendation/ranking/ranking.go
package ranking

import (
	"sort"

	"course-workers/internal/models"
)

const (
	DefaultLimit             = 8
	DefaultThreshold         = 70
	DefaultMinBackfillRating = 4.0
)

type Config struct {
	Limit             int
	Threshold         int
	MinBackfillRating float64
}

func DefaultConfig() Config {
	return Config{
		Limit:             DefaultLimit,
		Threshold:         DefaultThreshold,
		MinBackfillRating: DefaultMinBackfillRating,
	}
}

// Result is the final ordered list plus how many entries came from backfill.
type Result struct {
	Courses    []models.ScoredCourse
	Backfilled int
}

// Select picks the suggestions. Courses scoring at least Threshold come
// first, best score first; remaining slots go to well-rated courses below
// the threshold, best rating first. The input slice is not modified.
func Select(scored []models.ScoredCourse, cfg Config) Result {
	if cfg.Limit <= 0 {
		cfg.Limit = DefaultLimit
	}

	var top, rest []models.ScoredCourse
	for _, sc := range scored {
		if sc.Score >= cfg.Threshold {
			top = append(top, sc)
		} else if sc.Rating >= cfg.MinBackfillRating {
			rest = append(rest, sc)
		}
	}

	sort.SliceStable(top, func(i, j int) bool {
		a, b := top[i], top[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if a.Rating != b.Rating {
			return a.Rating > b.Rating
		}
		return a.ID < b.ID
	})
	if len(top) > cfg.Limit {
		top = top[:cfg.Limit]
	}

	out := Result{Courses: top}
	need := cfg.Limit - len(top)
	if need <= 0 || len(rest) == 0 {
		return out
	}

	sort.SliceStable(rest, func(i, j int) bool {
		a, b := rest[i], rest[j]
		if a.Rating != b.Rating {
			return a.Rating > b.Rating
		}
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		return a.ID < b.ID
	})
	if len(rest) > need {
		rest = rest[:need]
	}
	out.Courses = append(out.Courses, rest...)
	out.Backfilled = len(rest)
	return out
}
