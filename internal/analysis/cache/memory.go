// Package cache holds the analysis result caches: an in-process TTL map and a
// Redis-backed cache shared between instances.
package cache

import (
	"context"
	"sync"
	"time"
)

type memoryEntry struct {
	value     []byte
	expiresAt time.Time
}

// InMemory is a TTL map guarded by a RWMutex. Expired entries are removed
// lazily on read and by Sweep.
type InMemory struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	now     func() time.Time
}

type InMemoryOption func(*InMemory)

// WithClock overrides the time source.
func WithClock(now func() time.Time) InMemoryOption {
	return func(c *InMemory) {
		c.now = now
	}
}

func NewInMemory(opts ...InMemoryOption) *InMemory {
	c := &InMemory{
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *InMemory) Get(_ context.Context, key string) ([]byte, bool, error) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return nil, false, nil
	}
	if !e.expiresAt.IsZero() && !c.now().Before(e.expiresAt) {
		c.mu.Lock()
		if cur, ok := c.entries[key]; ok && cur.expiresAt.Equal(e.expiresAt) {
			delete(c.entries, key)
		}
		c.mu.Unlock()
		return nil, false, nil
	}
	return e.value, true, nil
}

// Set stores a copy of value. A non-positive ttl never expires.
func (c *InMemory) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	e := memoryEntry{value: append([]byte(nil), value...)}
	if ttl > 0 {
		e.expiresAt = c.now().Add(ttl)
	}
	c.mu.Lock()
	c.entries[key] = e
	c.mu.Unlock()
	return nil
}

// Sweep drops expired entries and returns how many were removed.
func (c *InMemory) Sweep() int {
	now := c.now()
	c.mu.Lock()
	defer c.mu.Unlock()
	removed := 0
	for k, e := range c.entries {
		if !e.expiresAt.IsZero() && !now.Before(e.expiresAt) {
			delete(c.entries, k)
			removed++
		}
	}
	return removed
}

func (c *InMemory) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
