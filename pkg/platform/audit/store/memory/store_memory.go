package memory

import (
	"context"
	"slices"
	"sync"

	audit "riskprofile/pkg/platform/audit"
)

// InMemoryStore keeps events in insertion order. Used by tests and as the
// default sink when no broker is configured.
type InMemoryStore struct {
	mu     sync.RWMutex
	events []audit.Event
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{}
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
	return nil
}

// ListAll returns every stored event, oldest first.
func (s *InMemoryStore) ListAll(_ context.Context) ([]audit.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.events), nil
}

// ListByRequest returns the events correlated with requestID.
func (s *InMemoryStore) ListByRequest(_ context.Context, requestID string) ([]audit.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matched []audit.Event
	for _, e := range s.events {
		if e.RequestID == requestID {
			matched = append(matched, e)
		}
	}
	return matched, nil
}

// ListRecent returns the most recent limit events, oldest first.
func (s *InMemoryStore) ListRecent(_ context.Context, limit int) ([]audit.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	start := max(len(s.events)-limit, 0)
	return slices.Clone(s.events[start:]), nil
}
