// internal/catalog/pagination/loader.go
package pagination

import (
	"context"
	stderrors "errors"
	"sync"

	"course-workers/internal/common/logger"
	"course-workers/internal/common/metrics"
	"course-workers/internal/models"
)

var (
	// ErrRequestInFlight rejects a page request while another is loading.
	ErrRequestInFlight = stderrors.New("page request already in flight")
	// ErrStaleResponse is returned to a request whose query context was reset
	// while it was loading. Its items are discarded.
	ErrStaleResponse = stderrors.New("stale page response discarded")
)

type State int

const (
	StateIdle State = iota
	StateLoading
	StateLoaded
	StateExhausted
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLoading:
		return "loading"
	case StateLoaded:
		return "loaded"
	case StateExhausted:
		return "exhausted"
	}
	return "unknown"
}

// Loader incrementally loads one query context. At most one request is in
// flight; Reset abandons it and starts over.
type Loader struct {
	mu         sync.Mutex
	fetcher    Fetcher
	query      models.CatalogQuery
	cursor     Cursor
	items      []models.Course
	state      State
	generation uint64
	cancel     context.CancelFunc
	logger     logger.Logger
}

func NewLoader(f Fetcher, query models.CatalogQuery, pageSize int, log logger.Logger) *Loader {
	return &Loader{
		fetcher: f,
		query:   query.Normalize(),
		cursor:  NewCursor(pageSize),
		state:   StateIdle,
		logger:  logger.Component(log, "page-loader"),
	}
}

// PageResult is one page together with the loader state it produced, read
// under a single lock.
type PageResult struct {
	Items       []models.Course
	Cursor      Cursor
	LoadedCount int
	Query       models.CatalogQuery
}

// RequestPage loads the next page and returns its items. It is a no-op once
// the context is exhausted. On failure the loaded items are kept and the
// same page can be requested again.
func (l *Loader) RequestPage(ctx context.Context) ([]models.Course, error) {
	res, err := l.Load(ctx)
	return res.Items, err
}

// Load is RequestPage that also reports the cursor, loaded count and query
// as they stood when the page was applied.
func (l *Loader) Load(ctx context.Context) (PageResult, error) {
	l.mu.Lock()
	switch l.state {
	case StateLoading:
		l.mu.Unlock()
		metrics.CatalogPageRequests.WithLabelValues(metrics.OutcomeInFlight).Inc()
		return PageResult{}, ErrRequestInFlight
	case StateExhausted:
		defer l.mu.Unlock()
		metrics.CatalogPageRequests.WithLabelValues(metrics.OutcomeExhausted).Inc()
		return l.resultLocked(nil), nil
	}

	gen := l.generation
	cursor := l.cursor
	query := l.query
	prev := l.state
	reqCtx, cancel := context.WithCancel(ctx)
	l.cancel = cancel
	l.state = StateLoading
	l.mu.Unlock()

	items, next, err := GetPage(reqCtx, l.fetcher, query, cursor)
	cancel()

	l.mu.Lock()
	defer l.mu.Unlock()

	if gen != l.generation {
		metrics.CatalogPageRequests.WithLabelValues(metrics.OutcomeStale).Inc()
		l.logger.Debug("discarding response for reset query", map[string]interface{}{
			"page":  cursor.Page + 1,
			"query": query.Key(),
		})
		return PageResult{}, ErrStaleResponse
	}
	l.cancel = nil

	if err != nil {
		l.state = prev
		metrics.CatalogPageRequests.WithLabelValues(metrics.OutcomeFailed).Inc()
		l.logger.Warn("page request failed", map[string]interface{}{
			"page":  cursor.Page + 1,
			"query": query.Key(),
			"error": err.Error(),
		})
		return PageResult{}, err
	}

	l.items = append(l.items, items...)
	l.cursor = next
	if next.HasMore {
		l.state = StateLoaded
		metrics.CatalogPageRequests.WithLabelValues(metrics.OutcomeLoaded).Inc()
	} else {
		l.state = StateExhausted
		metrics.CatalogPageRequests.WithLabelValues(metrics.OutcomeExhausted).Inc()
	}
	return l.resultLocked(items), nil
}

func (l *Loader) resultLocked(items []models.Course) PageResult {
	return PageResult{
		Items:       items,
		Cursor:      l.cursor,
		LoadedCount: len(l.items),
		Query:       l.query,
	}
}

// Reset binds the loader to a new query context, discarding loaded items and
// cancelling any request in flight.
func (l *Loader) Reset(query models.CatalogQuery) {
	l.reset(query, 0)
}

// reset also changes the page size when pageSize > 0.
func (l *Loader) reset(query models.CatalogQuery, pageSize int) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if pageSize <= 0 {
		pageSize = l.cursor.PageSize
	}
	if l.cancel != nil {
		l.cancel()
		l.cancel = nil
	}
	l.generation++
	l.query = query.Normalize()
	l.cursor = NewCursor(pageSize)
	l.items = nil
	l.state = StateIdle
}

// Items returns a copy of everything loaded for the current query.
func (l *Loader) Items() []models.Course {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]models.Course, len(l.items))
	copy(out, l.items)
	return out
}

func (l *Loader) Cursor() Cursor {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.cursor
}

func (l *Loader) State() State {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

func (l *Loader) Query() models.CatalogQuery {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.query
}
