package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"

	analysishandler "podium/internal/analysis/handler"
	analysismetrics "podium/internal/analysis/metrics"
	analysisservice "podium/internal/analysis/service"
	"podium/internal/audit"
	"podium/internal/cleaning"
	datasethandler "podium/internal/dataset/handler"
	datasetmetrics "podium/internal/dataset/metrics"
	datasetservice "podium/internal/dataset/service"
	httpapi "podium/internal/http"
	jwttoken "podium/internal/jwt_token"
	"podium/internal/platform/config"
	"podium/internal/platform/httpserver"
	"podium/internal/platform/logger"
	"podium/internal/platform/metrics"
	ratelimitmodels "podium/internal/ratelimit/models"
)

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in internal services packages.
func main() {
	cfg, err := config.FromEnv()
	if err != nil {
		slog.Error("configuration", "error", err)
		os.Exit(1)
	}
	log := logger.New(cfg.Log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, log *slog.Logger) error {
	infra, err := openInfra(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer infra.Close()

	rules, err := cleaning.LoadRules(cfg.Dataset.CleaningRulesPath)
	if err != nil {
		return err
	}
	log.Info("cleaning rules loaded", "rules", rules.String())

	publisher := audit.NewPublisher(audit.NewInMemoryStore(auditCapacity),
		audit.WithAsyncBuffer(auditBuffer),
		audit.WithSink(infra.auditSink()),
		audit.WithSinkTimeout(auditSinkTimeout),
		audit.WithCloseTimeout(cfg.Server.ShutdownTimeout),
		audit.WithLogger(log),
	)
	// runs before infra.Close, so the wait is bounded while Kafka is still open
	defer publisher.Close()

	snapshots, err := infra.snapshotStore(ctx)
	if err != nil {
		return err
	}
	datasets, err := datasetservice.New(snapshots, datasetservice.Sources{
		DataPath:   cfg.Dataset.DataPath,
		CoordsPath: cfg.Dataset.CoordsPath,
	}, cleaning.New(rules, cleaning.WithLogger(log)),
		datasetservice.WithLogger(log),
		datasetservice.WithMetrics(datasetmetrics.New()),
		datasetservice.WithAuditor(publisher),
	)
	if err != nil {
		return err
	}

	analyses, err := analysisservice.New(datasets,
		analysisservice.WithLogger(log),
		analysisservice.WithMetrics(analysismetrics.New()),
		analysisservice.WithCache(infra.analysisCache(ctx), cfg.CacheTTL),
	)
	if err != nil {
		return err
	}

	// A failed initial load is not fatal: the server answers 404 until an
	// admin reload succeeds.
	if _, err := datasets.Reload(ctx); err != nil {
		log.Warn("initial dataset load failed", "error", err)
	}
	go func() {
		_ = datasets.Run(ctx, cfg.Dataset.ReloadInterval)
	}()

	limiter := infra.rateLimiter(ctx, cfg.RateLimit)
	dataset := datasethandler.New(datasets, log)
	tokens := jwttoken.NewJWTService(cfg.Auth.JWTSigningKey, cfg.Auth.Issuer, cfg.Auth.Audience)
	router := httpapi.NewRouter(httpapi.Deps{
		Logger:         log,
		Metrics:        metrics.New(),
		Gatherer:       prometheus.DefaultGatherer,
		RequestTimeout: cfg.Server.RequestTimeout,
		Validator:      jwttoken.NewJWTServiceAdapter(tokens),
		AdminRole:      jwttoken.RoleAdmin,
		Public: []httpapi.Registrar{
			dataset,
			analysishandler.New(analyses, log),
		},
		Admin:       []httpapi.Registrar{audit.NewHandler(publisher)},
		AdminRoutes: []httpapi.AdminRegistrar{dataset},
		PublicMiddleware: []func(http.Handler) http.Handler{
			limiter.RateLimit(ratelimitmodels.ClassRead),
		},
		AdminMiddleware: []func(http.Handler) http.Handler{
			limiter.RateLimit(ratelimitmodels.ClassAdmin),
		},
		Checks: infra.healthChecks(),
	})

	srv := httpserver.New(cfg.Server.Addr, router)
	errCh := make(chan error, 1)
	go func() {
		log.Info("starting podium", "addr", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cfg.Server.ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
