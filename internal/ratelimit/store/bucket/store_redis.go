package bucket

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"podium/internal/ratelimit/models"
)

// slidingWindowScript trims the window, then admits cost requests only when
// they all fit. Returns {allowed, count, oldest_ms}.
var slidingWindowScript = redis.NewScript(`
local key = KEYS[1]
local now = tonumber(ARGV[1])
local window = tonumber(ARGV[2])
local limit = tonumber(ARGV[3])
local cost = tonumber(ARGV[4])
local member = ARGV[5]

redis.call('ZREMRANGEBYSCORE', key, '-inf', now - window)
local count = redis.call('ZCARD', key)
local oldest = now
local head = redis.call('ZRANGE', key, 0, 0, 'WITHSCORES')
if head[2] then
  oldest = tonumber(head[2])
end

if count + cost > limit then
  return {0, count, oldest}
end

for i = 1, cost do
  redis.call('ZADD', key, now, member .. ':' .. i)
end
redis.call('PEXPIRE', key, window)
return {1, count + cost, oldest}
`)

// RedisBucketStore keeps each window in a sorted set scored by request time
// in milliseconds, so every replica shares one budget per key.
type RedisBucketStore struct {
	client redis.UniversalClient
	now    func() time.Time
}

type RedisOption func(*RedisBucketStore)

func WithRedisClock(now func() time.Time) RedisOption {
	return func(s *RedisBucketStore) {
		s.now = now
	}
}

func NewRedisBucketStore(client redis.UniversalClient, opts ...RedisOption) *RedisBucketStore {
	s := &RedisBucketStore{client: client, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *RedisBucketStore) Allow(ctx context.Context, key string, limit int, window time.Duration) (*models.RateLimitResult, error) {
	return s.AllowN(ctx, key, 1, limit, window)
}

func (s *RedisBucketStore) AllowN(ctx context.Context, key string, cost, limit int, window time.Duration) (*models.RateLimitResult, error) {
	now := s.now()
	nowMs := now.UnixMilli()
	args := []any{
		strconv.FormatInt(nowMs, 10),
		strconv.FormatInt(window.Milliseconds(), 10),
		strconv.Itoa(limit),
		strconv.Itoa(cost),
		uuid.NewString(),
	}
	out, err := slidingWindowScript.Run(ctx, s.client, []string{key}, args...).Int64Slice()
	if err != nil {
		return nil, fmt.Errorf("sliding window %s: %w", key, err)
	}
	if len(out) != 3 {
		return nil, fmt.Errorf("sliding window %s: unexpected reply length %d", key, len(out))
	}

	resetAt := time.UnixMilli(out[2]).Add(window)
	if out[0] == 0 {
		return &models.RateLimitResult{
			Allowed:    false,
			Limit:      limit,
			Remaining:  0,
			ResetAt:    resetAt,
			RetryAfter: retryAfter(now, resetAt),
		}, nil
	}
	return &models.RateLimitResult{
		Allowed:   true,
		Limit:     limit,
		Remaining: limit - int(out[1]),
		ResetAt:   resetAt,
	}, nil
}

func (s *RedisBucketStore) Reset(ctx context.Context, key string) error {
	return s.client.Del(ctx, key).Err()
}
