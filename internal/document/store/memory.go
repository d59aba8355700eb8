package store

import (
	"context"
	"sync"

	"tradegate/internal/document/models"
	id "tradegate/pkg/domain"
)

// Memory keeps submissions in memory for tests and dev.
type Memory struct {
	mu     sync.RWMutex
	byUser map[id.UserID][]*models.Submission
}

// NewMemory constructs an empty in-memory submission store.
func NewMemory() *Memory {
	return &Memory{byUser: make(map[id.UserID][]*models.Submission)}
}

func (s *Memory) Append(_ context.Context, submission *models.Submission) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *submission
	copied.Slots = submission.Slots.Union(nil)
	s.byUser[submission.UserID] = append(s.byUser[submission.UserID], &copied)
	return nil
}

func (s *Memory) ListByUser(_ context.Context, userID id.UserID) ([]*models.Submission, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	stored := s.byUser[userID]
	out := make([]*models.Submission, 0, len(stored))
	for _, submission := range stored {
		copied := *submission
		copied.Slots = submission.Slots.Union(nil)
		out = append(out, &copied)
	}
	return out, nil
}
