// Package middleware enforces per-class request budgets on HTTP routes.
package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"podium/internal/ratelimit/metrics"
	"podium/internal/ratelimit/models"
	dErrors "podium/pkg/domain-errors"
	"podium/pkg/platform/circuit"
	"podium/pkg/platform/httputil"
	"podium/pkg/requestcontext"
)

// BucketStore counts requests in a sliding window per key.
type BucketStore interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (*models.RateLimitResult, error)
}

type Middleware struct {
	primary  BucketStore
	fallback BucketStore
	breaker  *circuit.Breaker
	limits   map[models.EndpointClass]models.Limit
	logger   *slog.Logger
	metrics  *metrics.Metrics
}

type Option func(*Middleware)

func WithLimit(class models.EndpointClass, limit models.Limit) Option {
	return func(m *Middleware) {
		m.limits[class] = limit
	}
}

// WithFallback serves decisions from store while the circuit on the primary
// store is open.
func WithFallback(store BucketStore) Option {
	return func(m *Middleware) {
		m.fallback = store
	}
}

func WithBreaker(b *circuit.Breaker) Option {
	return func(m *Middleware) {
		m.breaker = b
	}
}

func WithMetrics(mx *metrics.Metrics) Option {
	return func(m *Middleware) {
		m.metrics = mx
	}
}

func New(primary BucketStore, logger *slog.Logger, opts ...Option) *Middleware {
	if logger == nil {
		logger = slog.Default()
	}
	m := &Middleware{
		primary: primary,
		limits:  make(map[models.EndpointClass]models.Limit),
		logger:  logger,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.breaker == nil {
		m.breaker = circuit.New("ratelimit")
	}
	return m
}

// RateLimit returns middleware enforcing the budget of class. Read routes are
// keyed by client IP; admin routes by the authenticated actor, so they must
// be mounted after RequireAuth. A class without a limit passes through.
func (m *Middleware) RateLimit(class models.EndpointClass) func(http.Handler) http.Handler {
	limit := m.limits[class]
	return func(next http.Handler) http.Handler {
		if !limit.Enabled() {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			key := models.NewKey(class, identifier(ctx, class))

			result, degraded, err := m.check(ctx, key, limit)
			if err != nil {
				// fail open
				m.logger.ErrorContext(ctx, "rate limit check failed",
					"class", class,
					"error", err,
				)
				m.metrics.ObserveDecision(string(class), metrics.ResultError)
				next.ServeHTTP(w, r)
				return
			}

			addRateLimitHeaders(w, result, degraded)
			if !result.Allowed {
				m.metrics.ObserveDecision(string(class), metrics.ResultDenied)
				m.logger.WarnContext(ctx, "rate limit exceeded",
					"class", class,
					"request_id", requestcontext.RequestID(ctx),
					"retry_after", result.RetryAfter,
				)
				w.Header().Set("Retry-After", strconv.Itoa(result.RetryAfter))
				httputil.WriteError(w, dErrors.New(dErrors.CodeRateLimited, "too many requests, retry later"))
				return
			}
			m.metrics.ObserveDecision(string(class), metrics.ResultAllowed)
			next.ServeHTTP(w, r)
		})
	}
}

// check asks the primary store first, even while the circuit is open, so a
// recovered store closes the circuit after enough successes.
func (m *Middleware) check(ctx context.Context, key string, limit models.Limit) (*models.RateLimitResult, bool, error) {
	result, err := m.primary.Allow(ctx, key, limit.RequestsPerWindow, limit.Window)
	if err != nil {
		useFallback, change := m.breaker.RecordFailure()
		if change.Opened {
			m.logger.WarnContext(ctx, "rate limit circuit opened", "breaker", m.breaker.Name(), "error", err)
			m.metrics.SetCircuitOpen(true)
		}
		if useFallback && m.fallback != nil {
			result, err = m.fallback.Allow(ctx, key, limit.RequestsPerWindow, limit.Window)
			return result, true, err
		}
		return nil, false, err
	}

	usePrimary, change := m.breaker.RecordSuccess()
	if change.Closed {
		m.logger.InfoContext(ctx, "rate limit circuit closed", "breaker", m.breaker.Name())
		m.metrics.SetCircuitOpen(false)
	}
	if !usePrimary && m.fallback != nil {
		result, err = m.fallback.Allow(ctx, key, limit.RequestsPerWindow, limit.Window)
		return result, true, err
	}
	return result, false, nil
}

func identifier(ctx context.Context, class models.EndpointClass) string {
	if class == models.ClassAdmin {
		if actor := requestcontext.Actor(ctx); actor != "" {
			return actor
		}
	}
	return requestcontext.ClientIP(ctx)
}

func addRateLimitHeaders(w http.ResponseWriter, result *models.RateLimitResult, degraded bool) {
	if result == nil {
		return
	}
	w.Header().Set("X-RateLimit-Limit", strconv.Itoa(result.Limit))
	w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
	w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(result.ResetAt.Unix(), 10))
	if degraded {
		w.Header().Set("X-RateLimit-Status", "degraded")
	}
}
