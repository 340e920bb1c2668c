// Package testutil holds request builders and assertions shared by handler
// and router tests.
package testutil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"podium/pkg/platform/httputil"
)

// NewRequest creates a request without a body.
func NewRequest(t *testing.T, method, path string) *http.Request {
	t.Helper()
	return httptest.NewRequest(method, path, nil)
}

// WithBearer sets the Authorization header and returns req.
func WithBearer(req *http.Request, token string) *http.Request {
	req.Header.Set("Authorization", "Bearer "+token)
	return req
}

// DoRequest serves req and returns the recorder.
func DoRequest(handler http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	return rr
}

// UnmarshalResponse decodes the body into a T. The recorder body is left
// readable for later assertions.
func UnmarshalResponse[T any](t *testing.T, rr *httptest.ResponseRecorder) *T {
	t.Helper()
	var result T
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &result), "decode response: %s", rr.Body.String())
	return &result
}

// UnmarshalErrorResponse decodes the error body written by httputil.WriteError.
func UnmarshalErrorResponse(t *testing.T, rr *httptest.ResponseRecorder) httputil.ErrorResponse {
	t.Helper()
	return *UnmarshalResponse[httputil.ErrorResponse](t, rr)
}

func AssertStatus(t *testing.T, rr *httptest.ResponseRecorder, expected int) {
	t.Helper()
	assert.Equal(t, expected, rr.Code, "unexpected status code, body: %s", rr.Body.String())
}

func AssertStatusOK(t *testing.T, rr *httptest.ResponseRecorder) {
	t.Helper()
	AssertStatus(t, rr, http.StatusOK)
}

// AssertStatusAndError checks the status and the error code of the body.
func AssertStatusAndError(t *testing.T, rr *httptest.ResponseRecorder, expectedStatus int, expectedCode string) {
	t.Helper()
	AssertStatus(t, rr, expectedStatus)
	assert.Equal(t, expectedCode, UnmarshalErrorResponse(t, rr).Error, "unexpected error code")
}

// AssertJSONContains checks one top-level field of a JSON object body.
func AssertJSONContains(t *testing.T, rr *httptest.ResponseRecorder, key string, expectedValue any) {
	t.Helper()
	result := *UnmarshalResponse[map[string]any](t, rr)
	assert.Equal(t, expectedValue, result[key], "unexpected value for key %q", key)
}

func AssertJSONHasKey(t *testing.T, rr *httptest.ResponseRecorder, key string) {
	t.Helper()
	result := *UnmarshalResponse[map[string]any](t, rr)
	assert.Contains(t, result, key)
}

// AssertRateLimitHeaders checks the budget headers set by the rate limiter.
func AssertRateLimitHeaders(t *testing.T, rr *httptest.ResponseRecorder, limit, remaining int) {
	t.Helper()
	assert.Equal(t, strconv.Itoa(limit), rr.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, strconv.Itoa(remaining), rr.Header().Get("X-RateLimit-Remaining"))
	assert.NotEmpty(t, rr.Header().Get("X-RateLimit-Reset"))
}
