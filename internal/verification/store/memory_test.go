package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"tradegate/internal/verification/models"
	id "tradegate/pkg/domain"
	"tradegate/pkg/platform/sentinel"
)

type MemoryTokenSuite struct {
	suite.Suite
	store *Memory
	ctx   context.Context
	now   time.Time
}

func (s *MemoryTokenSuite) SetupTest() {
	s.store = NewMemory()
	s.ctx = context.Background()
	s.now = time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
}

func (s *MemoryTokenSuite) issue(issuedAt time.Time) *models.Token {
	token := models.NewToken(id.NewUserID(), issuedAt)
	s.Require().NoError(s.store.Create(s.ctx, token))
	return token
}

func (s *MemoryTokenSuite) TestConsumeWithinWindow() {
	token := s.issue(s.now)

	// One second inside the 24h window.
	consumed, err := s.store.Consume(s.ctx, token.Value, s.now.Add(models.TokenTTL-time.Second))
	s.Require().NoError(err)
	s.Equal(token.UserID, consumed.UserID)
}

func (s *MemoryTokenSuite) TestConsumeIsSingleUse() {
	token := s.issue(s.now)

	_, err := s.store.Consume(s.ctx, token.Value, s.now.Add(time.Hour))
	s.Require().NoError(err)

	_, err = s.store.Consume(s.ctx, token.Value, s.now.Add(time.Hour))
	s.Require().ErrorIs(err, sentinel.ErrNotFound)
}

func (s *MemoryTokenSuite) TestConsumeExpired() {
	token := s.issue(s.now)

	// One second past the window: expired, and still expired on retry.
	_, err := s.store.Consume(s.ctx, token.Value, s.now.Add(models.TokenTTL+time.Second))
	s.Require().ErrorIs(err, sentinel.ErrExpired)

	_, err = s.store.Consume(s.ctx, token.Value, s.now.Add(models.TokenTTL+time.Minute))
	s.Require().ErrorIs(err, sentinel.ErrExpired)
}

func (s *MemoryTokenSuite) TestConsumeUnknown() {
	_, err := s.store.Consume(s.ctx, "no-such-token", s.now)
	s.Require().ErrorIs(err, sentinel.ErrNotFound)
}

func (s *MemoryTokenSuite) TestCreateDuplicateValue() {
	token := s.issue(s.now)
	err := s.store.Create(s.ctx, &models.Token{Value: token.Value, UserID: id.NewUserID(), IssuedAt: s.now})
	s.Require().ErrorIs(err, sentinel.ErrConflict)
}

func (s *MemoryTokenSuite) TestDeleteExpired() {
	fresh := s.issue(s.now)
	s.issue(s.now.Add(-25 * time.Hour))
	s.issue(s.now.Add(-48 * time.Hour))

	deleted, err := s.store.DeleteExpired(s.ctx, s.now)
	s.Require().NoError(err)
	s.Equal(2, deleted)

	// The live token survives the sweep.
	_, err = s.store.Consume(s.ctx, fresh.Value, s.now)
	s.Require().NoError(err)
}

func TestMemoryTokenSuite(t *testing.T) {
	suite.Run(t, new(MemoryTokenSuite))
}
