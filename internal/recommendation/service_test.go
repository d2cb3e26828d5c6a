package recommendation

import (
	"context"
	stderrors "errors"
	"testing"

	"course-workers/internal/common/errors"
	"course-workers/internal/common/logger"
	"course-workers/internal/models"
	"course-workers/internal/recommendation/ranking"
	"course-workers/internal/recommendation/scoring"
	"course-workers/internal/recommendation/signals"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Helper Functions
// ==========================

type staticPool struct {
	courses []models.Course
	err     error
}

func (p *staticPool) Build(context.Context) ([]models.Course, error) {
	if p.err != nil {
		return nil, p.err
	}
	out := make([]models.Course, len(p.courses))
	copy(out, p.courses)
	return out, nil
}

// unavailable fails every lookup, forcing cold-start defaults.
type unavailable struct{}

func (unavailable) GetUserHistory(context.Context, string) (*signals.History, error) {
	return nil, stderrors.New("unavailable")
}

func (unavailable) GetUserFavorites(context.Context, string) (*signals.Favorites, error) {
	return nil, stderrors.New("unavailable")
}

func (unavailable) GetUserCart(context.Context, string) (*signals.Cart, error) {
	return nil, stderrors.New("unavailable")
}

func (unavailable) GetUserProfile(context.Context, string) (*signals.Profile, error) {
	return nil, stderrors.New("unavailable")
}

func catalogue() []models.Course {
	return []models.Course{
		{ID: "js-basic", Name: "JavaScript cơ bản", Category: "JavaScript", Level: models.LevelBasic, Price: 400000, Rating: 4.6},
		{ID: "prog-101", Name: "Nhập môn lập trình", Category: models.CategoryProgramming, Level: models.LevelBasic, Price: 300000, Rating: 4.5},
		{ID: "react-adv", Name: "React nâng cao", Category: "React", Level: models.LevelAdvanced, Price: 1200000, Rating: 4.8},
		{ID: "mkt-1", Name: "Marketing số", Category: models.CategoryMarketing, Level: models.LevelAdvanced, Price: 900000, Rating: 4.1},
		{ID: "fin-1", Name: "Tài chính cá nhân", Category: models.CategoryFinance, Level: models.LevelAdvanced, Price: 900000, Rating: 3.2},
	}
}

func newService(t *testing.T, pool PoolBuilder, source signals.Collaborator) *Service {
	log := logger.NewTestLogger(t)
	return NewService(
		signals.NewExtractor(source, log),
		pool,
		scoring.NewScorer(scoring.FixedSource(0), log),
		ranking.DefaultConfig(),
		nil,
		log,
	)
}

func suggestionIDs(list []models.ScoredCourse) []string {
	out := make([]string, 0, len(list))
	for _, sc := range list {
		out = append(out, sc.ID)
	}
	return out
}

// ==========================
// Pipeline Tests
// ==========================

func TestService_ColdStartReturnsSuggestions(t *testing.T) {
	svc := newService(t, &staticPool{courses: catalogue()}, unavailable{})

	got, err := svc.GetSuggestions(context.Background(), "new-user")

	require.NoError(t, err)
	require.NotEmpty(t, got)
	// Defaults: viewed {Lập trình, JavaScript}, favorites {Lập trình},
	// empty cart, level Cơ bản, skills {JavaScript, HTML, CSS}.
	// js-basic and prog-101 both clamp to 100; the higher rating wins.
	assert.Equal(t, []string{"js-basic", "prog-101", "react-adv", "mkt-1"}, suggestionIDs(got))
	assert.Equal(t, 100, got[0].Score)
	assert.Equal(t, 100, got[1].Score)
	assert.Equal(t, 85, got[2].Score)
	for _, sc := range got {
		assert.True(t, sc.IsSuggestion)
		assert.NotEmpty(t, sc.MatchReason)
	}
	assert.NotContains(t, suggestionIDs(got), "fin-1")
}

func TestService_Idempotent(t *testing.T) {
	svc := newService(t, &staticPool{courses: catalogue()}, unavailable{})

	first, err := svc.GetSuggestions(context.Background(), "user-1")
	require.NoError(t, err)
	second, err := svc.GetSuggestions(context.Background(), "user-1")
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestService_GetSuggestionsForSnapshot(t *testing.T) {
	svc := newService(t, &staticPool{courses: catalogue()}, unavailable{})
	snap := &signals.Snapshot{
		History: &signals.History{ViewedCategories: []string{models.CategoryMarketing}},
		Profile: &signals.Profile{CurrentLevel: models.LevelAdvanced, CurrentSkills: []string{"SEO"}},
	}

	got, err := svc.GetSuggestionsFor(context.Background(), "user-2", snap)

	require.NoError(t, err)
	require.NotEmpty(t, got)
	assert.Equal(t, "mkt-1", got[0].ID)
	assert.Equal(t, scoring.ReasonHistory, got[0].MatchReason)
}

func TestService_EmptyPoolIsNotAnError(t *testing.T) {
	svc := newService(t, &staticPool{}, unavailable{})

	got, err := svc.GetSuggestions(context.Background(), "user-1")

	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestService_PoolFailureIsRetryable(t *testing.T) {
	svc := newService(t, &staticPool{err: stderrors.New("catalog down")}, unavailable{})

	got, err := svc.GetSuggestions(context.Background(), "user-1")

	assert.Nil(t, got)
	stdErr, ok := errors.AsStandardError(err)
	require.True(t, ok)
	assert.Equal(t, errors.ErrCodeCandidateFetchFailed, stdErr.Code)
	assert.True(t, errors.IsRetryable(err))
}

func TestService_KeepsStandardErrorFromPool(t *testing.T) {
	svc := newService(t, &staticPool{err: errors.NewIndexNotFoundError("course-suggestions")}, unavailable{})

	_, err := svc.GetSuggestions(context.Background(), "user-1")

	stdErr, ok := errors.AsStandardError(err)
	require.True(t, ok)
	assert.Equal(t, errors.ErrCodeIndexNotFound, stdErr.Code)
}
