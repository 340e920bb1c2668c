// Package redis opens the optional Redis connection shared by the analysis
// cache and the rate limiter.
package redis

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"podium/internal/platform/config"
)

type Client struct {
	*redis.Client
}

// New returns nil, nil when no URL is configured. Non-zero fields in cfg
// override the options carried by the URL.
func New(ctx context.Context, cfg config.RedisConfig) (*Client, error) {
	if cfg.URL == "" {
		return nil, nil
	}

	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse redis URL: %w", err)
	}
	if cfg.PoolSize > 0 {
		opts.PoolSize = cfg.PoolSize
	}
	if cfg.MinIdleConns > 0 {
		opts.MinIdleConns = cfg.MinIdleConns
	}
	if cfg.DialTimeout > 0 {
		opts.DialTimeout = cfg.DialTimeout
	}
	if cfg.ReadTimeout > 0 {
		opts.ReadTimeout = cfg.ReadTimeout
	}
	if cfg.WriteTimeout > 0 {
		opts.WriteTimeout = cfg.WriteTimeout
	}

	c := &Client{Client: redis.NewClient(opts)}
	pingCtx, cancel := context.WithTimeout(ctx, opts.DialTimeout)
	defer cancel()
	if err := c.Health(pingCtx); err != nil {
		_ = c.Client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", opts.Addr, err)
	}
	return c, nil
}

// Health pings the server; it backs the /healthz redis check.
func (c *Client) Health(ctx context.Context) error {
	return c.Ping(ctx).Err()
}
