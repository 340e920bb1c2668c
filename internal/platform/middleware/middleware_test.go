package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"podium/internal/platform/logger"
	"podium/internal/platform/metrics"
	"podium/pkg/requestcontext"
)

type stubValidator struct {
	claims *JWTClaims
	err    error
}

func (s stubValidator) ValidateToken(string) (*JWTClaims, error) {
	return s.claims, s.err
}

func TestRequireAuth(t *testing.T) {
	log := logger.Discard()
	var actor string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actor = requestcontext.Actor(r.Context())
		w.WriteHeader(http.StatusNoContent)
	})

	tests := []struct {
		name      string
		header    string
		validator stubValidator
		want      int
	}{
		{name: "missing header", validator: stubValidator{}, want: http.StatusUnauthorized},
		{name: "invalid token", header: "Bearer nope", validator: stubValidator{err: errors.New("bad signature")}, want: http.StatusUnauthorized},
		{name: "wrong role", header: "Bearer t", validator: stubValidator{claims: &JWTClaims{Subject: "ana", Role: "viewer"}}, want: http.StatusForbidden},
		{name: "admin token", header: "Bearer t", validator: stubValidator{claims: &JWTClaims{Subject: "ana", Role: "admin"}}, want: http.StatusNoContent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			actor = ""
			req := httptest.NewRequest(http.MethodPost, "/admin/dataset/reload", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			RequireAuth(tt.validator, "admin", log)(next).ServeHTTP(rec, req)
			assert.Equal(t, tt.want, rec.Code)
			if tt.want == http.StatusNoContent {
				assert.Equal(t, "ana", actor)
			}
		})
	}
}

func TestRequestIDIsGeneratedAndEchoed(t *testing.T) {
	var seen string
	h := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r.Context())
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	require.NotEmpty(t, seen)
	assert.Equal(t, seen, rec.Header().Get(RequestIDHeader))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "abc-123", seen)
}

func TestRecoveryReturnsInternalError(t *testing.T) {
	h := Recovery(logger.Discard())(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestLatencyMiddlewareUsesRoutePattern(t *testing.T) {
	m := metrics.NewWithRegistry(prometheus.NewRegistry())
	r := chi.NewRouter()
	r.Use(LatencyMiddleware(m))
	r.Get("/analysis/medal-trend/{noc}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/analysis/medal-trend/ESP", nil))
	assert.Equal(t, http.StatusTeapot, rec.Code)
	assert.Equal(t, 1, testutil.CollectAndCount(m.RequestDuration))
}
