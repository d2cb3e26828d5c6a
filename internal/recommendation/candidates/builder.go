// internal/recommendation/candidates/builder.go
package candidates

import (
	"context"
	"fmt"
	"time"

	"course-workers/internal/common/errors"
	"course-workers/internal/common/logger"
	"course-workers/internal/common/metrics"
	"course-workers/internal/models"

	"github.com/sony/gobreaker/v2"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

// Entry is one upstream record. Err is set when the record could not be
// decoded.
type Entry struct {
	Course models.Course
	Err    error
}

// Batch is one page of candidates and the upstream total.
type Batch struct {
	Entries []Entry
	Total   int
}

// Source pages through the raw candidate catalog. Pages are 1-based.
type Source interface {
	FetchCandidatePage(ctx context.Context, page, pageSize int) (*Batch, error)
}

type Config struct {
	PoolSize        int
	PageSize        int
	Concurrency     int
	RateLimitPerSec float64
	BreakerFailures uint32
	BreakerOpen     time.Duration
}

func DefaultConfig() Config {
	return Config{
		PoolSize:        20,
		PageSize:        10,
		Concurrency:     4,
		RateLimitPerSec: 50,
		BreakerFailures: 5,
		BreakerOpen:     30 * time.Second,
	}
}

// Builder assembles a bounded, de-duplicated candidate pool.
type Builder struct {
	source  Source
	config  Config
	breaker *gobreaker.CircuitBreaker[*Batch]
	limiter *rate.Limiter
	logger  logger.Logger
}

func NewBuilder(source Source, cfg Config, log logger.Logger) *Builder {
	def := DefaultConfig()
	if cfg.PoolSize <= 0 {
		cfg.PoolSize = def.PoolSize
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = def.PageSize
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = def.Concurrency
	}
	if cfg.BreakerFailures == 0 {
		cfg.BreakerFailures = def.BreakerFailures
	}
	if cfg.BreakerOpen <= 0 {
		cfg.BreakerOpen = def.BreakerOpen
	}

	b := &Builder{
		source: source,
		config: cfg,
		logger: logger.Component(log, "candidate-pool"),
	}

	limit := rate.Inf
	if cfg.RateLimitPerSec > 0 {
		limit = rate.Limit(cfg.RateLimitPerSec)
	}
	b.limiter = rate.NewLimiter(limit, cfg.Concurrency)

	b.breaker = gobreaker.NewCircuitBreaker[*Batch](gobreaker.Settings{
		Name:    "candidate-source",
		Timeout: cfg.BreakerOpen,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.BreakerFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			b.logger.Warn("circuit breaker state changed", map[string]interface{}{
				"breaker": name,
				"from":    from.String(),
				"to":      to.String(),
			})
		},
	})
	return b
}

// Build fetches the first page, then the remaining pages needed to fill the
// pool concurrently. A failed later page is skipped; a failed first page
// fails the build with a retryable error.
func (b *Builder) Build(ctx context.Context) ([]models.Course, error) {
	first, err := b.fetch(ctx, 1)
	if err != nil {
		return nil, errors.NewCandidateFetchFailedError(err)
	}

	total := first.Total
	if total < len(first.Entries) {
		total = len(first.Entries)
	}
	pages := pagesNeeded(total, b.config.PoolSize, b.config.PageSize)

	batches := make([]*Batch, pages)
	batches[0] = first

	var g errgroup.Group
	g.SetLimit(b.config.Concurrency)
	for page := 2; page <= pages; page++ {
		page := page
		g.Go(func() error {
			batch, err := b.fetch(ctx, page)
			if err != nil {
				metrics.CandidatesDropped.WithLabelValues(metrics.DropReasonPage).Inc()
				b.logger.Warn("candidate page failed, skipping", map[string]interface{}{
					"page":  page,
					"error": err.Error(),
				})
				return nil
			}
			batches[page-1] = batch
			return nil
		})
	}
	_ = g.Wait()

	pool := b.assemble(batches)
	b.logger.Debug("candidate pool built", map[string]interface{}{
		"pages": pages,
		"total": total,
		"pool":  len(pool),
	})
	return pool, nil
}

func (b *Builder) fetch(ctx context.Context, page int) (*Batch, error) {
	if err := b.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait for page %d: %w", page, err)
	}
	batch, err := b.breaker.Execute(func() (*Batch, error) {
		return b.source.FetchCandidatePage(ctx, page, b.config.PageSize)
	})
	if err != nil {
		return nil, fmt.Errorf("fetch candidate page %d: %w", page, err)
	}
	if batch == nil {
		batch = &Batch{}
	}
	return batch, nil
}

// assemble keeps the first valid occurrence of every course ID, in page
// order, up to PoolSize.
func (b *Builder) assemble(batches []*Batch) []models.Course {
	seen := make(map[string]struct{}, b.config.PoolSize)
	pool := make([]models.Course, 0, b.config.PoolSize)
	for _, batch := range batches {
		if batch == nil {
			continue
		}
		for _, entry := range batch.Entries {
			if len(pool) == b.config.PoolSize {
				return pool
			}
			if entry.Err != nil {
				metrics.CandidatesDropped.WithLabelValues(metrics.DropReasonUpstream).Inc()
				b.logger.Debug("dropping failed candidate", map[string]interface{}{"error": entry.Err.Error()})
				continue
			}
			if err := entry.Course.Validate(); err != nil {
				metrics.CandidatesDropped.WithLabelValues(metrics.DropReasonInvalid).Inc()
				b.logger.Debug("dropping invalid candidate", map[string]interface{}{"error": err.Error()})
				continue
			}
			if _, dup := seen[entry.Course.ID]; dup {
				metrics.CandidatesDropped.WithLabelValues(metrics.DropReasonDuplicate).Inc()
				continue
			}
			seen[entry.Course.ID] = struct{}{}
			pool = append(pool, entry.Course)
		}
	}
	return pool
}

// pagesNeeded is the number of pages covering min(total, poolSize) entries,
// never less than one.
func pagesNeeded(total, poolSize, pageSize int) int {
	want := total
	if want > poolSize {
		want = poolSize
	}
	pages := (want + pageSize - 1) / pageSize
	if pages < 1 {
		pages = 1
	}
	return pages
}
