// internal/workers/catalog/get-course-page/handler_test.go
package getcoursepage

import (
	"context"
	stderrors "errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"course-workers/internal/catalog/pagination"
	"course-workers/internal/common/errors"
	"course-workers/internal/common/logger"
	"course-workers/internal/models"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/pb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Helper Functions
// ==========================

// catalogFetcher serves a fixed number of courses and records every query.
type catalogFetcher struct {
	mu      sync.Mutex
	total   int
	err     error
	queries []models.CatalogQuery
}

func (f *catalogFetcher) FetchPage(_ context.Context, q models.CatalogQuery, page, pageSize int) (*pagination.Page, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries = append(f.queries, q)
	if f.err != nil {
		return nil, f.err
	}

	items := []models.Course{}
	for i := (page - 1) * pageSize; i < page*pageSize && i < f.total; i++ {
		items = append(items, models.Course{ID: fmt.Sprintf("c-%03d", i+1), Category: models.CategoryProgramming})
	}
	return &pagination.Page{Items: items, Total: f.total}, nil
}

type gatedFetcher struct {
	started chan struct{}
	release chan struct{}
}

func (f *gatedFetcher) FetchPage(context.Context, models.CatalogQuery, int, int) (*pagination.Page, error) {
	f.started <- struct{}{}
	<-f.release
	return &pagination.Page{Items: []models.Course{{ID: "slow"}}, Total: 40}, nil
}

func newTestHandler(t *testing.T, f pagination.Fetcher) *Handler {
	log := logger.NewTestLogger(t)
	sessions := pagination.NewSessions(f, pagination.DefaultPageSize, time.Minute, log)
	return NewHandler(&Config{Timeout: 5 * time.Second}, sessions, nil, log)
}

func jobWithVariables(vars string) entities.Job {
	return entities.Job{ActivatedJob: &pb.ActivatedJob{Key: 7, Type: TaskType, Retries: 3, Variables: vars}}
}

// ==========================
// Execute Tests
// ==========================

func TestExecute_NewSessionLoadsFirstPage(t *testing.T) {
	h := newTestHandler(t, &catalogFetcher{total: 30})

	out, err := h.Execute(context.Background(), &Input{})

	require.NoError(t, err)
	assert.NotEmpty(t, out.SessionID)
	assert.Len(t, out.Items, 12)
	assert.Equal(t, 1, out.Cursor.Page)
	assert.True(t, out.Cursor.HasMore)
	assert.Equal(t, 3, out.Cursor.TotalPages)
	assert.Equal(t, 12, out.LoadedCount)
}

func TestExecute_SessionContinuesUntilExhausted(t *testing.T) {
	h := newTestHandler(t, &catalogFetcher{total: 30})
	in := &Input{SessionID: "s-1"}

	var loaded []int
	var lastItems int
	for i := 0; i < 4; i++ {
		out, err := h.Execute(context.Background(), in)
		require.NoError(t, err)
		loaded = append(loaded, out.LoadedCount)
		lastItems = len(out.Items)
		if i == 2 {
			assert.False(t, out.Cursor.HasMore)
		}
	}

	assert.Equal(t, []int{12, 24, 30, 30}, loaded)
	assert.Equal(t, 0, lastItems)
}

func TestExecute_PageOneRestartsSession(t *testing.T) {
	f := &catalogFetcher{total: 30}
	h := newTestHandler(t, f)

	for i := 0; i < 2; i++ {
		_, err := h.Execute(context.Background(), &Input{SessionID: "s-1"})
		require.NoError(t, err)
	}
	out, err := h.Execute(context.Background(), &Input{SessionID: "s-1", Page: 1})

	require.NoError(t, err)
	assert.Equal(t, 1, out.Cursor.Page)
	assert.Equal(t, 12, out.LoadedCount)
	assert.Equal(t, "c-001", out.Items[0].ID)
}

func TestExecute_FilterChangeResetsSession(t *testing.T) {
	f := &catalogFetcher{total: 30}
	h := newTestHandler(t, f)

	_, err := h.Execute(context.Background(), &Input{SessionID: "s-1"})
	require.NoError(t, err)
	out, err := h.Execute(context.Background(), &Input{
		SessionID:  "s-1",
		Category:   models.CategoryProgramming,
		PriceRange: &models.PriceRange{Label: models.PriceLabelMid},
	})

	require.NoError(t, err)
	assert.Equal(t, 1, out.Cursor.Page)
	assert.Equal(t, 12, out.LoadedCount)
	assert.Equal(t, models.CategoryProgramming, out.Query.Category)
	assert.Equal(t, int64(500000), out.Query.PriceRange.Min)
	assert.Equal(t, int64(1000000), f.queries[1].PriceRange.Max)
}

func TestExecute_PageSize(t *testing.T) {
	h := newTestHandler(t, &catalogFetcher{total: 30})

	out, err := h.Execute(context.Background(), &Input{SessionID: "s-1", PageSize: 24})

	require.NoError(t, err)
	assert.Len(t, out.Items, 24)
	assert.Equal(t, 24, out.Cursor.PageSize)
}

func TestExecute_InvalidPriceRange(t *testing.T) {
	tests := []struct {
		name  string
		price models.PriceRange
	}{
		{"unknown label", models.PriceRange{Label: "Miễn phí"}},
		{"negative", models.PriceRange{Min: -1}},
		{"inverted", models.PriceRange{Min: 900000, Max: 100000}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := &catalogFetcher{total: 30}
			h := newTestHandler(t, f)
			price := tt.price

			_, err := h.Execute(context.Background(), &Input{PriceRange: &price})

			stdErr, ok := errors.AsStandardError(err)
			require.True(t, ok)
			assert.Equal(t, errors.ErrCodeInvalidInput, stdErr.Code)
			assert.Empty(t, f.queries)
		})
	}
}

func TestExecute_FetchFailureIsRetryable(t *testing.T) {
	h := newTestHandler(t, &catalogFetcher{err: stderrors.New("connection reset")})

	_, err := h.Execute(context.Background(), &Input{SessionID: "s-1"})

	stdErr, ok := errors.AsStandardError(err)
	require.True(t, ok)
	assert.Equal(t, errors.ErrCodePageFetchFailed, stdErr.Code)
	assert.True(t, stdErr.Retryable)
}

func TestExecute_RejectsConcurrentRequestForSession(t *testing.T) {
	f := &gatedFetcher{started: make(chan struct{}, 1), release: make(chan struct{})}
	h := newTestHandler(t, f)

	done := make(chan error, 1)
	go func() {
		_, err := h.Execute(context.Background(), &Input{SessionID: "s-1"})
		done <- err
	}()
	<-f.started

	_, err := h.Execute(context.Background(), &Input{SessionID: "s-1"})
	close(f.release)

	stdErr, ok := errors.AsStandardError(err)
	require.True(t, ok)
	assert.Equal(t, errors.ErrCodePageRequestInFlight, stdErr.Code)
	assert.False(t, stdErr.Retryable)
	assert.NoError(t, <-done)
}

// ==========================
// Job Variable Tests
// ==========================

func TestProcess_ParsesJobVariables(t *testing.T) {
	f := &catalogFetcher{total: 5}
	h := newTestHandler(t, f)

	out, err := h.process(context.Background(), jobWithVariables(`{"sessionId":"s-9","searchTerm":"  React ","priceRange":{"label":"Dưới 500K"}}`))

	require.NoError(t, err)
	assert.Equal(t, "s-9", out.SessionID)
	assert.Equal(t, "React", f.queries[0].SearchTerm)
	assert.Equal(t, int64(500000), f.queries[0].PriceRange.Max)
	assert.False(t, out.Cursor.HasMore)
}

func TestProcess_RejectsInvalidVariables(t *testing.T) {
	tests := []struct {
		name string
		vars string
	}{
		{"page size too large", `{"pageSize":500}`},
		{"page zero", `{"page":0}`},
		{"price not an object", `{"priceRange":"cheap"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := &catalogFetcher{total: 5}
			h := newTestHandler(t, f)

			_, err := h.process(context.Background(), jobWithVariables(tt.vars))

			stdErr, ok := errors.AsStandardError(err)
			require.True(t, ok)
			assert.Equal(t, errors.ErrCodeInvalidInput, stdErr.Code)
			assert.Empty(t, f.queries)
		})
	}
}
