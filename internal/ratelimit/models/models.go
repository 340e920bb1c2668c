package models

import (
	"strings"
	"time"
)

// EndpointClass groups routes that share a request budget.
type EndpointClass string

const (
	// ClassRead covers the public dataset and analysis queries, keyed by client IP.
	ClassRead EndpointClass = "read"
	// ClassAdmin covers admin routes, keyed by the token subject.
	ClassAdmin EndpointClass = "admin"
)

// Limit is a request budget over a sliding window. A non-positive
// RequestsPerWindow disables limiting for the class.
type Limit struct {
	RequestsPerWindow int
	Window            time.Duration
}

func (l Limit) Enabled() bool {
	return l.RequestsPerWindow > 0 && l.Window > 0
}

// RateLimitResult represents the outcome of a rate limit check.
type RateLimitResult struct {
	Allowed    bool      `json:"allowed"`
	Limit      int       `json:"limit"`
	Remaining  int       `json:"remaining"`
	ResetAt    time.Time `json:"reset_at"`
	RetryAfter int       `json:"retry_after,omitempty"` // seconds, only set when not allowed
}

// NewKey builds the bucket key for one class and identifier.
func NewKey(class EndpointClass, identifier string) string {
	if identifier == "" {
		identifier = "unknown"
	}
	return "podium:ratelimit:" + string(class) + ":" + strings.ToLower(identifier)
}
