package middleware

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	promtestutil "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/suite"

	"podium/internal/ratelimit/metrics"
	"podium/internal/ratelimit/models"
	"podium/internal/ratelimit/store/bucket"
	"podium/pkg/platform/circuit"
	"podium/pkg/requestcontext"
	"podium/pkg/testutil"
)

// flakyStore delegates to an in-memory store unless failing is set.
type flakyStore struct {
	*bucket.InMemoryBucketStore
	failing atomic.Bool
	calls   atomic.Int32
}

func (f *flakyStore) Allow(ctx context.Context, key string, limit int, window time.Duration) (*models.RateLimitResult, error) {
	f.calls.Add(1)
	if f.failing.Load() {
		return nil, errors.New("redis: connection refused")
	}
	return f.InMemoryBucketStore.Allow(ctx, key, limit, window)
}

type RateLimitSuite struct {
	suite.Suite
	now     time.Time
	primary *flakyStore
	metrics *metrics.Metrics
	logger  *slog.Logger
}

func TestRateLimitSuite(t *testing.T) {
	suite.Run(t, new(RateLimitSuite))
}

func (s *RateLimitSuite) SetupTest() {
	s.now = time.Date(2024, 7, 26, 12, 0, 0, 0, time.UTC)
	s.primary = &flakyStore{InMemoryBucketStore: bucket.NewInMemoryBucketStore(bucket.WithClock(s.clock))}
	s.metrics = metrics.NewWithRegistry(prometheus.NewRegistry())
	s.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
}

func (s *RateLimitSuite) clock() time.Time { return s.now }

func (s *RateLimitSuite) handler(m *Middleware, class models.EndpointClass) http.Handler {
	return m.RateLimit(class)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
}

func (s *RateLimitSuite) do(h http.Handler, ip, actor string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/dataset", nil)
	ctx := requestcontext.WithClientIP(req.Context(), ip)
	if actor != "" {
		ctx = requestcontext.WithActor(ctx, actor)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req.WithContext(ctx))
	return rec
}

func (s *RateLimitSuite) newMiddleware(opts ...Option) *Middleware {
	base := []Option{
		WithLimit(models.ClassRead, models.Limit{RequestsPerWindow: 2, Window: time.Minute}),
		WithLimit(models.ClassAdmin, models.Limit{RequestsPerWindow: 1, Window: time.Minute}),
		WithMetrics(s.metrics),
	}
	return New(s.primary, s.logger, append(base, opts...)...)
}

// =============================================================================
// Budget enforcement
// =============================================================================

func (s *RateLimitSuite) TestReadBudgetPerClientIP() {
	h := s.handler(s.newMiddleware(), models.ClassRead)

	first := s.do(h, "10.0.0.1", "")
	s.Equal(http.StatusOK, first.Code)
	testutil.AssertRateLimitHeaders(s.T(), first, 2, 1)
	s.Empty(first.Header().Get("X-RateLimit-Status"))

	s.Equal(http.StatusOK, s.do(h, "10.0.0.1", "").Code)

	s.now = s.now.Add(15 * time.Second)
	denied := s.do(h, "10.0.0.1", "")
	s.Equal(http.StatusTooManyRequests, denied.Code)
	s.Equal("45", denied.Header().Get("Retry-After"))
	s.Contains(denied.Body.String(), `"error":"rate_limit_exceeded"`)

	s.Equal(http.StatusOK, s.do(h, "10.0.0.2", "").Code, "other clients keep their own budget")

	s.Equal(3.0, promtestutil.ToFloat64(s.metrics.Decisions.WithLabelValues("read", metrics.ResultAllowed)))
	s.Equal(1.0, promtestutil.ToFloat64(s.metrics.Decisions.WithLabelValues("read", metrics.ResultDenied)))
}

func (s *RateLimitSuite) TestAdminBudgetPerActor() {
	h := s.handler(s.newMiddleware(), models.ClassAdmin)

	s.Equal(http.StatusOK, s.do(h, "10.0.0.1", "alice").Code)
	s.Equal(http.StatusTooManyRequests, s.do(h, "10.0.0.2", "alice").Code, "changing IP does not reset an actor")
	s.Equal(http.StatusOK, s.do(h, "10.0.0.1", "bob").Code)
}

func (s *RateLimitSuite) TestUnconfiguredClassPassesThrough() {
	m := New(s.primary, s.logger)
	rec := s.do(s.handler(m, models.ClassRead), "10.0.0.1", "")

	s.Equal(http.StatusOK, rec.Code)
	s.Empty(rec.Header().Get("X-RateLimit-Limit"))
	s.Zero(s.primary.calls.Load())
}

// =============================================================================
// Store failures
// =============================================================================

func (s *RateLimitSuite) TestFailsOpenWithoutFallback() {
	s.primary.failing.Store(true)
	h := s.handler(s.newMiddleware(), models.ClassRead)

	for range 5 {
		s.Equal(http.StatusOK, s.do(h, "10.0.0.1", "").Code)
	}
	s.Equal(5.0, promtestutil.ToFloat64(s.metrics.Decisions.WithLabelValues("read", metrics.ResultError)))
}

func (s *RateLimitSuite) TestCircuitSwitchesToFallbackAndBack() {
	fallback := bucket.NewInMemoryBucketStore(bucket.WithClock(s.clock))
	breaker := circuit.New("test", circuit.WithFailureThreshold(1), circuit.WithSuccessThreshold(2))
	h := s.handler(s.newMiddleware(WithFallback(fallback), WithBreaker(breaker)), models.ClassRead)

	s.primary.failing.Store(true)
	degraded := s.do(h, "10.0.0.1", "")
	s.Equal(http.StatusOK, degraded.Code)
	s.Equal("degraded", degraded.Header().Get("X-RateLimit-Status"))
	s.True(breaker.IsOpen())
	s.Equal(1.0, promtestutil.ToFloat64(s.metrics.CircuitOpen))

	s.Equal(http.StatusOK, s.do(h, "10.0.0.1", "").Code)
	s.Equal(http.StatusTooManyRequests, s.do(h, "10.0.0.1", "").Code, "fallback enforces the same budget")

	s.primary.failing.Store(false)
	s.do(h, "10.0.0.3", "")
	s.True(breaker.IsOpen(), "one success is below the threshold")
	recovered := s.do(h, "10.0.0.4", "")
	s.False(breaker.IsOpen())
	s.Empty(recovered.Header().Get("X-RateLimit-Status"))
	s.Equal(0.0, promtestutil.ToFloat64(s.metrics.CircuitOpen))
}
