package memory

import (
	"context"
	"sync"

	"tradegate/pkg/platform/audit"
)

// Store keeps audit events in memory for tests and dev.
type Store struct {
	mu     sync.RWMutex
	events []audit.Event
}

// New constructs an empty in-memory audit store.
func New() *Store {
	return &Store{}
}

func (s *Store) Append(_ context.Context, event audit.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	return nil
}

func (s *Store) ListByUser(_ context.Context, userID string) ([]audit.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []audit.Event
	for _, event := range s.events {
		if event.UserID == userID {
			out = append(out, event)
		}
	}
	return out, nil
}

// All returns every recorded event, for assertions in tests.
func (s *Store) All() []audit.Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]audit.Event, len(s.events))
	copy(out, s.events)
	return out
}
