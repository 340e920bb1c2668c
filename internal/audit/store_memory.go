package audit

import (
	"context"
	"sync"
)

// Store persists audit events.
type Store interface {
	Append(ctx context.Context, event Event) error
	ListRecent(ctx context.Context, limit int) ([]Event, error)
}

const defaultCapacity = 10000

// InMemoryStore keeps the most recent events, dropping the oldest when full.
type InMemoryStore struct {
	mu       sync.RWMutex
	events   []Event
	capacity int
}

func NewInMemoryStore(capacity int) *InMemoryStore {
	if capacity <= 0 {
		capacity = defaultCapacity
	}
	return &InMemoryStore{capacity: capacity}
}

func (s *InMemoryStore) Append(_ context.Context, event Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.events) >= s.capacity {
		s.events = append(s.events[:0], s.events[1:]...)
	}
	s.events = append(s.events, event)
	return nil
}

// ListRecent returns up to limit events, most recent first. A non-positive
// limit returns everything.
func (s *InMemoryStore) ListRecent(_ context.Context, limit int) ([]Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := len(s.events)
	if limit > 0 && limit < n {
		n = limit
	}
	out := make([]Event, 0, n)
	for i := len(s.events) - 1; i >= 0 && len(out) < n; i-- {
		out = append(out, s.events[i])
	}
	return out, nil
}

func (s *InMemoryStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = nil
}
