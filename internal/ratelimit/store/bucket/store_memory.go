// Package bucket stores sliding-window request counters.
package bucket

import (
	"context"
	"math"
	"sync"
	"time"

	"podium/internal/ratelimit/models"
)

// InMemoryBucketStore keeps one sliding window of request timestamps per key.
// It is process local; RedisBucketStore shares windows across replicas.
type InMemoryBucketStore struct {
	mu      sync.Mutex
	buckets map[string]*slidingWindow
	now     func() time.Time
}

type slidingWindow struct {
	timestamps []time.Time
	window     time.Duration
}

type InMemoryOption func(*InMemoryBucketStore)

func WithClock(now func() time.Time) InMemoryOption {
	return func(s *InMemoryBucketStore) {
		s.now = now
	}
}

func NewInMemoryBucketStore(opts ...InMemoryOption) *InMemoryBucketStore {
	s := &InMemoryBucketStore{
		buckets: make(map[string]*slidingWindow),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Allow records one request for key if the window has room.
func (s *InMemoryBucketStore) Allow(ctx context.Context, key string, limit int, window time.Duration) (*models.RateLimitResult, error) {
	return s.AllowN(ctx, key, 1, limit, window)
}

// AllowN records cost requests at once; it is all or nothing.
func (s *InMemoryBucketStore) AllowN(_ context.Context, key string, cost, limit int, window time.Duration) (*models.RateLimitResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	sw := s.bucket(key, window)
	sw.cleanup(now)

	if len(sw.timestamps)+cost > limit {
		resetAt := sw.resetAt(now)
		return &models.RateLimitResult{
			Allowed:    false,
			Limit:      limit,
			Remaining:  0,
			ResetAt:    resetAt,
			RetryAfter: retryAfter(now, resetAt),
		}, nil
	}

	for range cost {
		sw.timestamps = append(sw.timestamps, now)
	}
	return &models.RateLimitResult{
		Allowed:   true,
		Limit:     limit,
		Remaining: limit - len(sw.timestamps),
		ResetAt:   sw.resetAt(now),
	}, nil
}

// Reset clears the window for key.
func (s *InMemoryBucketStore) Reset(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.buckets, key)
	return nil
}

// Sweep drops windows with no request left in them and returns how many
// were removed.
func (s *InMemoryBucketStore) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	removed := 0
	for key, sw := range s.buckets {
		sw.cleanup(now)
		if len(sw.timestamps) == 0 {
			delete(s.buckets, key)
			removed++
		}
	}
	return removed
}

// resetAt is when the oldest request leaves the window, or a full window
// from now when it is empty.
func (sw *slidingWindow) resetAt(now time.Time) time.Time {
	if len(sw.timestamps) == 0 {
		return now.Add(sw.window)
	}
	return sw.timestamps[0].Add(sw.window)
}

func (sw *slidingWindow) cleanup(now time.Time) {
	cutoff := now.Add(-sw.window)
	i := 0
	for ; i < len(sw.timestamps); i++ {
		if sw.timestamps[i].After(cutoff) {
			break
		}
	}
	sw.timestamps = sw.timestamps[i:]
}

// bucket must be called with s.mu held.
func (s *InMemoryBucketStore) bucket(key string, window time.Duration) *slidingWindow {
	if sw := s.buckets[key]; sw != nil {
		sw.window = window
		return sw
	}
	sw := &slidingWindow{window: window}
	s.buckets[key] = sw
	return sw
}

func retryAfter(now, resetAt time.Time) int {
	secs := int(math.Ceil(resetAt.Sub(now).Seconds()))
	if secs < 1 {
		return 1
	}
	return secs
}
