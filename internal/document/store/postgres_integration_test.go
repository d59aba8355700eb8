//go:build integration

package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	account "tradegate/internal/account/models"
	accountstore "tradegate/internal/account/store"
	"tradegate/internal/document/models"
	id "tradegate/pkg/domain"
	"tradegate/pkg/testutil/containers"
)

type PostgresSubmissionSuite struct {
	suite.Suite
	pg       *containers.PostgresContainer
	store    *Postgres
	accounts *accountstore.Postgres
	ctx      context.Context
	userID   id.UserID
}

func (s *PostgresSubmissionSuite) SetupSuite() {
	s.pg = containers.NewPostgresContainer(s.T())
	s.store = NewPostgres(s.pg.DB)
	s.accounts = accountstore.NewPostgres(s.pg.DB)
	s.ctx = context.Background()
}

func (s *PostgresSubmissionSuite) SetupTest() {
	s.pg.Truncate(s.T(), "document_submissions", "users")

	user := &account.User{
		ID:        id.NewUserID(),
		Username:  account.NewUsername(),
		Email:     "ana@example.com",
		Role:      account.RoleImporter,
		Status:    account.StatusUnverified,
		CreatedAt: time.Now().UTC(),
	}
	s.Require().NoError(s.accounts.Create(s.ctx, user))
	s.userID = user.ID
}

func (s *PostgresSubmissionSuite) submission(at time.Time, slots ...models.Slot) *models.Submission {
	return &models.Submission{
		ID:        id.NewSubmissionID(),
		UserID:    s.userID,
		Role:      account.RoleImporter,
		Slots:     models.NewSlotSet(slots...),
		CreatedAt: at,
	}
}

func (s *PostgresSubmissionSuite) TestAppendAndListOrdered() {
	base := time.Now().UTC().Truncate(time.Microsecond)
	second := s.submission(base.Add(time.Second), models.SlotFacePhoto)
	first := s.submission(base, models.SlotIDFront, models.SlotIDBack)

	// Inserted out of order; ListByUser sorts by creation time.
	s.Require().NoError(s.store.Append(s.ctx, second))
	s.Require().NoError(s.store.Append(s.ctx, first))

	listed, err := s.store.ListByUser(s.ctx, s.userID)
	s.Require().NoError(err)
	s.Require().Len(listed, 2)
	s.Equal(first.ID, listed[0].ID)
	s.Equal(second.ID, listed[1].ID)
	s.True(listed[0].Slots.Has(models.SlotIDFront))
	s.True(listed[0].Slots.Has(models.SlotIDBack))
}

func (s *PostgresSubmissionSuite) TestObjectKeysRoundTrip() {
	submission := s.submission(time.Now().UTC(), models.SlotBusinessLicense)
	submission.ObjectKeys = map[models.Slot]string{
		models.SlotBusinessLicense: "uploads/license.pdf",
	}
	s.Require().NoError(s.store.Append(s.ctx, submission))

	listed, err := s.store.ListByUser(s.ctx, s.userID)
	s.Require().NoError(err)
	s.Require().Len(listed, 1)
	s.Equal(submission.ObjectKeys, listed[0].ObjectKeys)
}

func (s *PostgresSubmissionSuite) TestListOtherUserEmpty() {
	s.Require().NoError(s.store.Append(s.ctx, s.submission(time.Now().UTC(), models.SlotFacePhoto)))

	listed, err := s.store.ListByUser(s.ctx, id.NewUserID())
	s.Require().NoError(err)
	s.Empty(listed)
}

func TestPostgresSubmissionSuite(t *testing.T) {
	suite.Run(t, new(PostgresSubmissionSuite))
}
