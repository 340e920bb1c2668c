package main

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	analysisservice "podium/internal/analysis/service"
	"podium/internal/analysis/cache"
	"podium/internal/audit"
	datasetservice "podium/internal/dataset/service"
	"podium/internal/dataset/store"
	httpapi "podium/internal/http"
	"podium/internal/platform/config"
	"podium/internal/platform/kafka"
	"podium/internal/platform/postgres"
	"podium/internal/platform/redis"
	ratelimitmetrics "podium/internal/ratelimit/metrics"
	ratelimitmw "podium/internal/ratelimit/middleware"
	ratelimitmodels "podium/internal/ratelimit/models"
	"podium/internal/ratelimit/store/bucket"
	"podium/pkg/platform/circuit"
)

const (
	auditCapacity = 10000
	auditBuffer   = 256

	// shorter than the producer's record delivery timeout
	auditSinkTimeout = 3 * time.Second

	auditTopicPartitions  = 1
	auditTopicReplication = 1

	sweepInterval = time.Minute
)

// infra holds the optional backing services. Each is nil when not configured
// and the in-process fallback is used instead.
type infra struct {
	log      *slog.Logger
	db       *sql.DB
	redis    *redis.Client
	producer *kafka.Producer
}

func openInfra(ctx context.Context, cfg config.Config, log *slog.Logger) (*infra, error) {
	in := &infra{log: log}
	var err error

	if in.db, err = postgres.Open(ctx, cfg.Postgres); err != nil {
		return nil, err
	}
	if in.redis, err = redis.New(ctx, cfg.Redis); err != nil {
		in.Close()
		return nil, err
	}
	if in.producer, err = kafka.NewProducer(ctx, cfg.Kafka); err != nil {
		in.Close()
		return nil, err
	}
	if in.producer != nil {
		if err := in.producer.EnsureTopic(ctx, auditTopicPartitions, auditTopicReplication); err != nil {
			in.Close()
			return nil, err
		}
	}

	log.Info("backends configured",
		"postgres", in.db != nil,
		"redis", in.redis != nil,
		"kafka", in.producer != nil,
	)
	return in, nil
}

func (in *infra) snapshotStore(ctx context.Context) (datasetservice.Store, error) {
	if in.db == nil {
		return store.NewInMemory(), nil
	}
	pg := store.NewPostgres(in.db)
	if err := pg.EnsureSchema(ctx); err != nil {
		return nil, err
	}
	return pg, nil
}

func (in *infra) analysisCache(ctx context.Context) analysisservice.Cache {
	if in.redis != nil {
		return cache.NewRedis(in.redis.Client)
	}
	mem := cache.NewInMemory()
	go in.sweep(ctx, "analysis cache", mem.Sweep)
	return mem
}

// rateLimiter shares budgets through Redis when configured and falls back to
// a process-local window while Redis is unreachable.
func (in *infra) rateLimiter(ctx context.Context, cfg config.RateLimitConfig) *ratelimitmw.Middleware {
	fallback := bucket.NewInMemoryBucketStore()
	go in.sweep(ctx, "rate limit windows", fallback.Sweep)

	var primary ratelimitmw.BucketStore = fallback
	if in.redis != nil {
		primary = bucket.NewRedisBucketStore(in.redis.Client)
	}
	return ratelimitmw.New(primary, in.log,
		ratelimitmw.WithLimit(ratelimitmodels.ClassRead, ratelimitmodels.Limit{
			RequestsPerWindow: cfg.ReadRequests,
			Window:            cfg.Window,
		}),
		ratelimitmw.WithLimit(ratelimitmodels.ClassAdmin, ratelimitmodels.Limit{
			RequestsPerWindow: cfg.AdminRequests,
			Window:            cfg.Window,
		}),
		ratelimitmw.WithFallback(fallback),
		ratelimitmw.WithBreaker(circuit.New("ratelimit-redis")),
		ratelimitmw.WithMetrics(ratelimitmetrics.New()),
	)
}

func (in *infra) sweep(ctx context.Context, name string, fn func() int) {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := fn(); n > 0 {
				in.log.Debug("swept expired entries", "store", name, "removed", n)
			}
		}
	}
}

func (in *infra) auditSink() audit.Sink {
	if in.producer == nil {
		return nil
	}
	return audit.NewKafkaSink(in.producer)
}

func (in *infra) healthChecks() map[string]httpapi.HealthCheck {
	checks := make(map[string]httpapi.HealthCheck)
	if in.db != nil {
		checks["postgres"] = in.db.PingContext
	}
	if in.redis != nil {
		checks["redis"] = in.redis.Health
	}
	if in.producer != nil {
		checks["kafka"] = in.producer.Health
	}
	return checks
}

func (in *infra) Close() {
	if in.producer != nil {
		in.producer.Close()
	}
	if in.redis != nil {
		_ = in.redis.Close()
	}
	if in.db != nil {
		_ = in.db.Close()
	}
}
