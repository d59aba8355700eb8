package store

import (
	"context"
	"fmt"
	"sync"

	"tradegate/internal/account/models"
	id "tradegate/pkg/domain"
	"tradegate/pkg/email"
	"tradegate/pkg/platform/sentinel"
)

// Memory stores accounts in memory for tests and dev.
type Memory struct {
	mu         sync.RWMutex
	byID       map[id.UserID]*models.User
	byUsername map[string]id.UserID
	byEmail    map[string]id.UserID // folded email + "\x00" + role
}

// NewMemory constructs an empty in-memory account store.
func NewMemory() *Memory {
	return &Memory{
		byID:       make(map[id.UserID]*models.User),
		byUsername: make(map[string]id.UserID),
		byEmail:    make(map[string]id.UserID),
	}
}

func emailRoleKey(address string, role models.Role) string {
	return email.Fold(address) + "\x00" + string(role)
}

func (s *Memory) Create(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := emailRoleKey(user.Email, user.Role)
	if _, exists := s.byEmail[key]; exists {
		return fmt.Errorf("account exists for email and role: %w", sentinel.ErrConflict)
	}
	if _, exists := s.byUsername[user.Username]; exists {
		return fmt.Errorf("username taken: %w", sentinel.ErrConflict)
	}

	copied := *user
	s.byID[user.ID] = &copied
	s.byUsername[user.Username] = user.ID
	s.byEmail[key] = user.ID
	return nil
}

func (s *Memory) FindByID(_ context.Context, userID id.UserID) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.byID[userID]
	if !ok {
		return nil, fmt.Errorf("user %s: %w", userID, sentinel.ErrNotFound)
	}
	copied := *user
	return &copied, nil
}

func (s *Memory) FindByUsername(_ context.Context, username string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	userID, ok := s.byUsername[username]
	if !ok {
		return nil, fmt.Errorf("username %s: %w", username, sentinel.ErrNotFound)
	}
	copied := *s.byID[userID]
	return &copied, nil
}

func (s *Memory) UpdateProfile(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.byID[user.ID]
	if !ok {
		return fmt.Errorf("user %s: %w", user.ID, sentinel.ErrNotFound)
	}
	existing.FirstName = user.FirstName
	existing.LastName = user.LastName
	existing.CompanyName = user.CompanyName
	existing.PhoneNumber = user.PhoneNumber
	existing.TaxID = user.TaxID
	return nil
}

func (s *Memory) SetVerification(_ context.Context, userID id.UserID, emailVerified bool, status models.VerificationStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.byID[userID]
	if !ok {
		return fmt.Errorf("user %s: %w", userID, sentinel.ErrNotFound)
	}
	existing.EmailVerified = emailVerified
	existing.Status = status
	return nil
}
