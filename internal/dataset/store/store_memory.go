// Package store keeps the current dataset snapshot, in memory or in
// Postgres.
package store

import (
	"context"
	"sync"

	"podium/internal/athlete/models"
	"podium/pkg/platform/sentinel"
)

// InMemory holds the current snapshot behind a RWMutex. Save replaces it
// atomically; readers never observe a partial snapshot.
type InMemory struct {
	mu       sync.RWMutex
	snapshot *models.Snapshot
}

func NewInMemory() *InMemory {
	return &InMemory{}
}

func (s *InMemory) Save(_ context.Context, snapshot *models.Snapshot) error {
	if snapshot == nil {
		return sentinel.ErrInvalidState
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshot = snapshot
	return nil
}

func (s *InMemory) Current(_ context.Context) (*models.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.snapshot == nil {
		return nil, sentinel.ErrNotFound
	}
	return s.snapshot, nil
}
