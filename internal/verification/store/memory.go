package store

import (
	"context"
	"sync"
	"time"

	"tradegate/internal/verification/models"
	"tradegate/pkg/platform/sentinel"
)

// Memory keeps tokens in memory for tests and dev.
type Memory struct {
	mu     sync.Mutex
	tokens map[string]*models.Token
}

// NewMemory constructs an empty in-memory token store.
func NewMemory() *Memory {
	return &Memory{tokens: make(map[string]*models.Token)}
}

func (s *Memory) Create(_ context.Context, token *models.Token) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.tokens[token.Value]; exists {
		return sentinel.ErrConflict
	}
	copied := *token
	s.tokens[token.Value] = &copied
	return nil
}

func (s *Memory) Consume(_ context.Context, value string, now time.Time) (*models.Token, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	token, ok := s.tokens[value]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	if token.Expired(now) {
		// Left in place so a retry still reads as expired, not unknown.
		return nil, sentinel.ErrExpired
	}
	delete(s.tokens, value)
	copied := *token
	return &copied, nil
}

func (s *Memory) DeleteExpired(_ context.Context, now time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	deleted := 0
	for value, token := range s.tokens {
		if token.Expired(now) {
			delete(s.tokens, value)
			deleted++
		}
	}
	return deleted, nil
}
