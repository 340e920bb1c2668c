//go:build integration

package containers

import (
	"context"
	"testing"

	"github.com/testcontainers/testcontainers-go"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"

	"podium/internal/platform/config"
	"podium/internal/platform/redis"
)

const redisImage = "redis:7-alpine"

// RedisContainer is a Redis instance reached through the same client
// constructor the server uses.
type RedisContainer struct {
	Container testcontainers.Container
	URL       string
	Client    *redis.Client
}

func NewRedisContainer(t *testing.T) *RedisContainer {
	t.Helper()
	ctx := context.Background()

	container, err := tcredis.Run(ctx, redisImage)
	if err != nil {
		t.Fatalf("start redis container: %v", err)
	}
	url, err := container.ConnectionString(ctx)
	if err != nil {
		_ = container.Terminate(ctx)
		t.Fatalf("redis connection string: %v", err)
	}

	client, err := redis.New(ctx, config.RedisConfig{URL: url})
	if err != nil {
		_ = container.Terminate(ctx)
		t.Fatalf("connect redis: %v", err)
	}

	// shared by the Manager across suites; ryuk terminates it
	return &RedisContainer{Container: container, URL: url, Client: client}
}

// FlushAll isolates tests that share the container.
func (r *RedisContainer) FlushAll(ctx context.Context) error {
	return r.Client.FlushAll(ctx).Err()
}
