package testutil

import (
	"context"
	"net/http"
	"time"

	"podium/pkg/requestcontext"
)

// WithActor marks the request as made by actor, as the auth middleware does
// for a valid admin token.
func WithActor(req *http.Request, actor string) *http.Request {
	return req.WithContext(requestcontext.WithActor(req.Context(), actor))
}

// WithRequestID attaches a request id to the request context.
func WithRequestID(req *http.Request, requestID string) *http.Request {
	return req.WithContext(requestcontext.WithRequestID(req.Context(), requestID))
}

// WithRequestTime pins the request-scoped clock.
func WithRequestTime(req *http.Request, t time.Time) *http.Request {
	return req.WithContext(requestcontext.WithTime(req.Context(), t))
}

// WithContextValue adds an arbitrary key-value pair to the request context.
func WithContextValue(req *http.Request, key, value any) *http.Request {
	ctx := context.WithValue(req.Context(), key, value)
	return req.WithContext(ctx)
}
