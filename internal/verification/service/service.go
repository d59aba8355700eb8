// Package service drives the email verification gate: issuing single-use
// tokens, sending the confirmation mail, and consuming tokens to flip the
// account's email gate.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	account "tradegate/internal/account/models"
	docmodels "tradegate/internal/document/models"
	"tradegate/internal/document/policy"
	docservice "tradegate/internal/document/service"
	"tradegate/internal/mailer"
	"tradegate/internal/platform/metrics"
	"tradegate/internal/verification/models"
	id "tradegate/pkg/domain"
	dErrors "tradegate/pkg/domain-errors"
	"tradegate/pkg/platform/audit"
	"tradegate/pkg/platform/sentinel"
)

// TokenStore is the token persistence boundary the service consumes.
type TokenStore interface {
	Create(ctx context.Context, token *models.Token) error
	Consume(ctx context.Context, value string, now time.Time) (*models.Token, error)
	DeleteExpired(ctx context.Context, now time.Time) (int, error)
}

// AccountStore is the slice of the account store this service needs.
type AccountStore interface {
	FindByID(ctx context.Context, userID id.UserID) (*account.User, error)
	SetVerification(ctx context.Context, userID id.UserID, emailVerified bool, status account.VerificationStatus) error
}

// DocumentStore supplies submission history for the status recomputation.
type DocumentStore interface {
	ListByUser(ctx context.Context, userID id.UserID) ([]*docmodels.Submission, error)
}

// Service issues and confirms email verification tokens.
type Service struct {
	tokens    TokenStore
	accounts  AccountStore
	documents DocumentStore
	userTx    docservice.UserTx
	composer  *mailer.Composer
	mail      mailer.Mailer
	aud       audit.Sink
	metrics   *metrics.Metrics
	logger    *slog.Logger
	tracer    trace.Tracer

	now func() time.Time
}

// New wires the verification service.
func New(
	tokens TokenStore,
	accounts AccountStore,
	documents DocumentStore,
	userTx docservice.UserTx,
	composer *mailer.Composer,
	mail mailer.Mailer,
	aud audit.Sink,
	m *metrics.Metrics,
	logger *slog.Logger,
) *Service {
	return &Service{
		tokens:    tokens,
		accounts:  accounts,
		documents: documents,
		userTx:    userTx,
		composer:  composer,
		mail:      mail,
		aud:       aud,
		metrics:   m,
		logger:    logger,
		tracer:    otel.Tracer("tradegate/verification"),
		now:       time.Now,
	}
}

// Issue mints a fresh token for the account and sends the confirmation mail.
// A mail delivery failure does not fail the operation: the token stays valid
// and the account can request a resend.
func (s *Service) Issue(ctx context.Context, user *account.User) error {
	ctx, span := s.tracer.Start(ctx, "verification.Issue")
	defer span.End()

	token := models.NewToken(user.ID, s.now())
	if err := s.tokens.Create(ctx, token); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to store verification token")
	}
	s.metrics.TokensIssued.Inc()

	msg, err := s.composer.BuildVerification(user.Email, user.DisplayName(), token.Value)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to compose verification email")
	}
	if err := s.mail.Send(ctx, msg); err != nil {
		s.metrics.EmailsFailed.Inc()
		s.logger.ErrorContext(ctx, "verification email delivery failed",
			"user_id", user.ID.String(),
			"error", err,
		)
		return nil
	}
	s.metrics.EmailsSent.Inc()
	s.aud.Record(ctx, audit.Event{
		Action: audit.ActionVerificationEmail,
		UserID: user.ID.String(),
		Email:  user.Email,
	})
	return nil
}

// Resend issues a new token for an account that has not confirmed yet. Old
// tokens stay valid until they expire or get consumed.
func (s *Service) Resend(ctx context.Context, userID id.UserID) error {
	user, err := s.accounts.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "account not found")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load account")
	}
	if user.EmailVerified {
		return dErrors.New(dErrors.CodeConflict, "email already verified")
	}
	return s.Issue(ctx, user)
}

// ConfirmResult reports the account state after a successful confirmation.
type ConfirmResult struct {
	UserID id.UserID
	Status account.VerificationStatus
}

// Confirm consumes the token and flips the account's email gate. The consume
// is atomic, so a second click on the same link fails with an invalid-token
// error. Status is recomputed under the per-user lock so a confirmation
// racing a document submission still lands on the right final status.
func (s *Service) Confirm(ctx context.Context, value string) (*ConfirmResult, error) {
	ctx, span := s.tracer.Start(ctx, "verification.Confirm")
	defer span.End()

	if value == "" {
		return nil, dErrors.New(dErrors.CodeInvalidToken, "verification token is required")
	}

	token, err := s.tokens.Consume(ctx, value, s.now())
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		s.aud.Record(ctx, audit.Event{
			Action: audit.ActionTokenRejected,
			Reason: "unknown_or_used",
		})
		return nil, dErrors.New(dErrors.CodeInvalidToken, "verification token is invalid or already used")
	case errors.Is(err, sentinel.ErrExpired):
		s.metrics.TokensExpired.Inc()
		s.aud.Record(ctx, audit.Event{
			Action: audit.ActionTokenRejected,
			Reason: "expired",
		})
		return nil, dErrors.New(dErrors.CodeExpiredToken, "verification token has expired")
	case err != nil:
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to consume verification token")
	}
	s.metrics.TokensConsumed.Inc()

	result := &ConfirmResult{UserID: token.UserID}
	err = s.userTx.RunInUserTx(ctx, token.UserID, func(ctx context.Context) error {
		user, err := s.accounts.FindByID(ctx, token.UserID)
		if err != nil {
			if errors.Is(err, sentinel.ErrNotFound) {
				return dErrors.New(dErrors.CodeNotFound, "account not found")
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load account")
		}

		submissions, err := s.documents.ListByUser(ctx, token.UserID)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load submission history")
		}
		cumulative := docmodels.NewSlotSet()
		for _, submission := range submissions {
			cumulative = cumulative.Union(submission.Slots)
		}
		docsComplete := policy.IsVerificationComplete(user.Role, cumulative)

		result.Status = account.NextStatus(user.Status, true, docsComplete)
		if !user.EmailVerified || result.Status != user.Status {
			if err := s.accounts.SetVerification(ctx, token.UserID, true, result.Status); err != nil {
				return dErrors.Wrap(err, dErrors.CodeInternal, "failed to update verification status")
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.aud.Record(ctx, audit.Event{
		Action: audit.ActionEmailVerified,
		UserID: token.UserID.String(),
		Reason: string(result.Status),
	})
	return result, nil
}

// SweepExpired deletes tokens past their validity window. Run periodically
// from main; expiry correctness never depends on it.
func (s *Service) SweepExpired(ctx context.Context) (int, error) {
	return s.tokens.DeleteExpired(ctx, s.now())
}
