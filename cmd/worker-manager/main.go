// cmd/worker-manager/main.go
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"course-workers/internal/catalog"
	"course-workers/internal/catalog/pagination"
	"course-workers/internal/common/camunda"
	"course-workers/internal/common/config"
	"course-workers/internal/common/database"
	"course-workers/internal/common/events"
	"course-workers/internal/common/logger"
	"course-workers/internal/common/observability"
	"course-workers/internal/recommendation"
	"course-workers/internal/recommendation/candidates"
	"course-workers/internal/recommendation/ranking"
	"course-workers/internal/recommendation/scoring"
	"course-workers/internal/recommendation/signals"

	gcp "course-workers/internal/workers/catalog/get-course-page"
	gs "course-workers/internal/workers/recommendation/get-suggestions"
)

// connectRetry covers roughly two minutes of dependency start-up.
var connectRetry = camunda.RetryConfig{
	MaxRetries: 10,
	BaseDelay:  2 * time.Second,
	MaxDelay:   15 * time.Second,
}

func main() {
	bootLog := logger.New("info", "console")

	cfg, err := config.Load()
	if err != nil {
		bootLog.Fatal("config load failed", zap.Error(err))
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting worker manager...",
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Environment),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	obs, err := observability.New(observability.Options{
		ServiceName:    cfg.Observability.ServiceName,
		TracingEnabled: cfg.Observability.TracingEnabled,
		JaegerEndpoint: cfg.Observability.JaegerEndpoint,
	})
	if err != nil {
		zapLog.Fatal("observability init failed", zap.Error(err))
	}

	// --- Backing stores, each retried with backoff ---
	var pg *database.PostgresClient
	if err := connect(ctx, "PostgreSQL", zapLog, func(ctx context.Context) error {
		var err error
		if pg == nil {
			if pg, err = database.NewPostgres(cfg.Database.Postgres); err != nil {
				return err
			}
		}
		return pg.Ping(ctx)
	}); err != nil {
		zapLog.Fatal("postgres failed after retries", zap.Error(err))
	}
	defer pg.Close()

	var es *database.ElasticsearchClient
	if err := connect(ctx, "Elasticsearch", zapLog, func(ctx context.Context) error {
		var err error
		if es == nil {
			if es, err = database.NewElasticsearch(cfg.Database.Elasticsearch); err != nil {
				return err
			}
		}
		return es.Ping(ctx)
	}); err != nil {
		zapLog.Fatal("elasticsearch failed after retries", zap.Error(err))
	}
	for _, index := range []string{cfg.Catalog.Index, cfg.Recommendation.SuggestionIndex} {
		if ok, err := es.IndexExists(ctx, index); err != nil || !ok {
			zapLog.Warn("catalog index not available yet", zap.String("index", index), zap.Error(err))
		}
	}

	var rdb *database.RedisClient
	if err := connect(ctx, "Redis", zapLog, func(ctx context.Context) error {
		var err error
		if rdb == nil {
			if rdb, err = database.NewRedis(cfg.Database.Redis); err != nil {
				return err
			}
		}
		return rdb.Ping(ctx)
	}); err != nil {
		zapLog.Fatal("redis failed after retries", zap.Error(err))
	}
	defer rdb.Close()

	zeebe, err := camunda.NewClientWithConfig(camunda.ClientConfig{
		GatewayAddress:         cfg.Camunda.BrokerAddress,
		UsePlaintextConnection: true,
		ConnectionTimeout:      config.GetDuration(cfg.Camunda.RequestTimeout),
		Retry:                  connectRetry,
	})
	if err != nil {
		zapLog.Fatal("zeebe client failed after retries", zap.Error(err))
	}
	zapLog.Info("All backing services connected")

	// --- Recommendation engine and catalog ---
	rc := cfg.Recommendation
	courseCatalog := catalog.New(es.Client, cfg.Catalog.Index, rc.SuggestionIndex, log)

	pool := candidates.NewBuilder(courseCatalog, candidates.Config{
		PoolSize:        rc.PoolSize,
		PageSize:        rc.PageSize,
		Concurrency:     rc.Concurrency,
		RateLimitPerSec: rc.RateLimitPerSec,
		BreakerFailures: uint32(rc.BreakerFailures),
		BreakerOpen:     config.GetDuration(rc.BreakerOpenMs),
	}, log)

	seed := rc.RandomSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	service := recommendation.NewService(
		signals.NewExtractor(signals.NewStore(pg.DB, rdb.Client, config.GetDuration(rc.SignalCacheTTLMs), log), log),
		pool,
		scoring.NewScorer(scoring.NewSeededSource(seed), log),
		ranking.Config{
			Limit:             rc.SuggestionLimit,
			Threshold:         rc.ScoreThreshold,
			MinBackfillRating: rc.BackfillMinRating,
		},
		obs,
		log,
	)

	sessions := pagination.NewSessions(courseCatalog, cfg.Catalog.PageSize, config.GetDuration(cfg.Catalog.SessionIdleMs), log)

	publisher, err := newPublisher(ctx, cfg.Events, log)
	if err != nil {
		zapLog.Fatal("event publisher init failed", zap.Error(err))
	}

	// --- Workers ---
	suggestCfg := config.GetWorkerConfig(cfg, gs.TaskType)
	pageCfg := config.GetWorkerConfig(cfg, gcp.TaskType)
	workers := []*camunda.Worker{
		camunda.StartWorker(zeebe.GetClient(), gs.TaskType, suggestCfg,
			gs.NewHandler(gs.LoadConfig(suggestCfg), service, publisher, obs, log), obs, log),
		camunda.StartWorker(zeebe.GetClient(), gcp.TaskType, pageCfg,
			gcp.NewHandler(gcp.LoadConfig(pageCfg), sessions, obs, log), obs, log),
	}

	go sweepSessions(ctx, sessions, time.Minute, log)

	// --- Health & Metrics Server ---
	srv := &http.Server{
		Addr:              cfg.App.HTTPAddress,
		ReadHeaderTimeout: 5 * time.Second,
		Handler: newServeMux(map[string]database.Pinger{
			"postgres":      pg,
			"elasticsearch": es,
			"redis":         rdb,
			"zeebe":         zeebe,
		}, 3*time.Second),
	}
	go func() {
		zapLog.Info("Health/Metrics server listening", zap.String("address", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLog.Error("Health/Metrics server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	<-ctx.Done()
	zapLog.Info("Shutdown signal received, stopping workers...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	for _, w := range workers {
		w.Close()
	}
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Error stopping HTTP server", zap.Error(err))
	}
	if err := zeebe.Close(); err != nil {
		zapLog.Error("Error closing Zeebe client", zap.Error(err))
	}
	if err := obs.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Error flushing telemetry", zap.Error(err))
	}

	zapLog.Info("Worker manager stopped gracefully")
}

// connect retries op with backoff, logging every failed attempt.
func connect(ctx context.Context, name string, log *zap.Logger, op func(context.Context) error) error {
	attempt := 0
	_, err := camunda.Retry(ctx, connectRetry, nil, func(ctx context.Context) error {
		attempt++
		err := op(ctx)
		if err != nil {
			log.Warn(name+" connection failed, retrying...",
				zap.Error(err),
				zap.Int("attempt", attempt),
				zap.Int("maxRetries", connectRetry.MaxRetries),
			)
		}
		return err
	})
	if err == nil {
		log.Info(name + " connected successfully")
	}
	return err
}

func newPublisher(ctx context.Context, cfg config.EventsConfig, log logger.Logger) (events.Publisher, error) {
	if !cfg.SNS.Enabled {
		return events.NoopPublisher{}, nil
	}
	return events.NewSNSPublisher(ctx, cfg.SNS.Region, cfg.SNS.TopicARN, log)
}

func sweepSessions(ctx context.Context, sessions *pagination.Sessions, every time.Duration, log logger.Logger) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := sessions.Sweep(); n > 0 {
				log.Debug("idle browse sessions evicted", map[string]interface{}{"count": n, "open": sessions.Len()})
			}
		}
	}
}
