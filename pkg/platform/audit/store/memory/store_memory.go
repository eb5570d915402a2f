package memory

import (
	"context"
	"sync"

	audit "kyc-intake/pkg/platform/audit"
)

// InMemoryStore keeps the most recent events in insertion order. With a
// positive capacity the oldest event is dropped once the store is full.
type InMemoryStore struct {
	mu       sync.RWMutex
	events   []audit.Event
	capacity int
}

func NewInMemoryStore(capacity int) *InMemoryStore {
	return &InMemoryStore{capacity: capacity}
}

func (s *InMemoryStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = nil
}

func (s *InMemoryStore) Append(_ context.Context, event audit.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	if s.capacity > 0 && len(s.events) > s.capacity {
		s.events = append([]audit.Event(nil), s.events[len(s.events)-s.capacity:]...)
	}
	return nil
}

// ListAll returns every retained event, oldest first.
func (s *InMemoryStore) ListAll(_ context.Context) ([]audit.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]audit.Event{}, s.events...), nil
}

// ListRecent returns up to limit events, most recent first. A limit of zero
// or less returns everything retained.
func (s *InMemoryStore) ListRecent(_ context.Context, limit int) ([]audit.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := len(s.events)
	if limit > 0 && limit < n {
		n = limit
	}
	out := make([]audit.Event, 0, n)
	for i := len(s.events) - 1; i >= 0 && len(out) < n; i-- {
		out = append(out, s.events[i])
	}
	return out, nil
}
