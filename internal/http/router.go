// Package httpapi assembles the HTTP surface: global middleware, health and
// metrics endpoints, and the module handlers.
package httpapi

import (
	"context"
	"log/slog"
	"net/http"
	"sort"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"podium/internal/platform/metrics"
	"podium/internal/platform/middleware"
	"podium/pkg/platform/httputil"
	"podium/pkg/platform/middleware/metadata"
	"podium/pkg/platform/middleware/requesttime"
)

// Registrar mounts routes on a router.
type Registrar interface {
	Register(r chi.Router)
}

// AdminRegistrar mounts routes that require an admin token.
type AdminRegistrar interface {
	RegisterAdmin(r chi.Router)
}

// HealthCheck reports whether one backing dependency is reachable.
type HealthCheck func(ctx context.Context) error

// Deps is everything NewRouter wires together. Nil handlers are skipped.
type Deps struct {
	Logger         *slog.Logger
	Metrics        *metrics.Metrics
	Gatherer       prometheus.Gatherer
	RequestTimeout time.Duration
	Validator      middleware.JWTValidator
	AdminRole      string

	Public []Registrar
	// Admin routes are mounted under /admin behind RequireAuth.
	Admin       []Registrar
	AdminRoutes []AdminRegistrar

	// PublicMiddleware wraps the public routes only; AdminMiddleware runs
	// after RequireAuth so it can read the actor.
	PublicMiddleware []func(http.Handler) http.Handler
	AdminMiddleware  []func(http.Handler) http.Handler

	Checks map[string]HealthCheck
}

// NewRouter builds the application router.
func NewRouter(d Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(metadata.ClientMetadata)
	r.Use(requesttime.Middleware)
	r.Use(middleware.Logger(d.Logger))
	r.Use(middleware.Recovery(d.Logger))
	r.Use(middleware.LatencyMiddleware(d.Metrics))
	if d.RequestTimeout > 0 {
		r.Use(middleware.Timeout(d.RequestTimeout))
	}

	if d.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Group(func(r chi.Router) {
		r.Use(middleware.ContentTypeJSON)
		r.Get("/healthz", healthHandler(d.Checks))

		r.Group(func(r chi.Router) {
			r.Use(d.PublicMiddleware...)
			for _, reg := range d.Public {
				reg.Register(r)
			}
		})

		if d.Validator != nil && (len(d.Admin) > 0 || len(d.AdminRoutes) > 0) {
			r.Route("/admin", func(r chi.Router) {
				r.Use(middleware.RequireAuth(d.Validator, d.AdminRole, d.Logger))
				r.Use(d.AdminMiddleware...)
				for _, reg := range d.Admin {
					reg.Register(r)
				}
				for _, reg := range d.AdminRoutes {
					reg.RegisterAdmin(r)
				}
			})
		}
	})
	return r
}

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

func healthHandler(checks map[string]HealthCheck) http.HandlerFunc {
	names := make([]string, 0, len(checks))
	for name := range checks {
		names = append(names, name)
	}
	sort.Strings(names)

	return func(w http.ResponseWriter, r *http.Request) {
		resp := healthResponse{Status: "ok"}
		status := http.StatusOK
		if len(names) > 0 {
			resp.Checks = make(map[string]string, len(names))
		}
		for _, name := range names {
			if err := checks[name](r.Context()); err != nil {
				resp.Checks[name] = err.Error()
				resp.Status = "degraded"
				status = http.StatusServiceUnavailable
				continue
			}
			resp.Checks[name] = "ok"
		}
		httputil.WriteJSON(w, status, resp)
	}
}
