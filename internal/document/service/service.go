// Package service orchestrates document submissions: structural validation,
// persistence, cumulative recomputation, and the account status transition.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	account "tradegate/internal/account/models"
	"tradegate/internal/document/models"
	"tradegate/internal/document/policy"
	"tradegate/internal/platform/metrics"
	id "tradegate/pkg/domain"
	dErrors "tradegate/pkg/domain-errors"
	"tradegate/pkg/platform/audit"
	"tradegate/pkg/platform/sentinel"
)

// Store is the submission persistence boundary the service consumes.
type Store interface {
	Append(ctx context.Context, submission *models.Submission) error
	ListByUser(ctx context.Context, userID id.UserID) ([]*models.Submission, error)
}

// AccountStore is the slice of the account store this service needs.
type AccountStore interface {
	FindByID(ctx context.Context, userID id.UserID) (*account.User, error)
	SetVerification(ctx context.Context, userID id.UserID, emailVerified bool, status account.VerificationStatus) error
}

// Service validates and records document submissions.
type Service struct {
	documents Store
	accounts  AccountStore
	userTx    UserTx
	aud       audit.Sink
	metrics   *metrics.Metrics
	logger    *slog.Logger
	tracer    trace.Tracer
}

// New wires the document service.
func New(documents Store, accounts AccountStore, userTx UserTx, aud audit.Sink, m *metrics.Metrics, logger *slog.Logger) *Service {
	return &Service{
		documents: documents,
		accounts:  accounts,
		userTx:    userTx,
		aud:       aud,
		metrics:   m,
		logger:    logger,
		tracer:    otel.Tracer("tradegate/document"),
	}
}

// SubmitResult reports what a successful submission did to the account.
type SubmitResult struct {
	Submission *models.Submission
	Cumulative models.SlotSet

	// DocsComplete is the cumulative completion state after this submission.
	DocsComplete bool

	// CompletedNow is true when this submission was the one that first
	// satisfied the role requirement.
	CompletedNow bool

	Status account.VerificationStatus
}

// Submit validates one upload event and, when accepted, records it and
// recomputes the account's verification state. Accept + recompute run inside
// a per-user transaction so two racing submissions serialize.
func (s *Service) Submit(ctx context.Context, userID id.UserID, slots models.SlotSet, objectKeys map[models.Slot]string) (*SubmitResult, error) {
	ctx, span := s.tracer.Start(ctx, "document.Submit",
		trace.WithAttributes(attribute.Int("slots", len(slots))))
	defer span.End()

	user, err := s.accounts.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "account not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load account")
	}

	if err := policy.ValidateSubmission(user.Role, slots); err != nil {
		code := dErrors.CodeOf(err)
		if code == dErrors.CodeUnknownRole {
			// Configuration defect, not a user mistake. Fail closed and make noise.
			s.logger.ErrorContext(ctx, "no document requirement configured for role",
				"role", user.Role,
				"user_id", userID.String(),
			)
		}
		s.metrics.IncSubmissionRejected(string(code))
		s.aud.Record(ctx, audit.Event{
			Action:   audit.ActionDocumentRejected,
			UserID:   userID.String(),
			Role:     string(user.Role),
			Decision: "rejected",
			Reason:   string(code),
		})
		return nil, err
	}

	result := &SubmitResult{
		Submission: &models.Submission{
			ID:         id.NewSubmissionID(),
			UserID:     userID,
			Role:       user.Role,
			Slots:      slots,
			ObjectKeys: objectKeys,
			CreatedAt:  time.Now(),
		},
	}

	err = s.userTx.RunInUserTx(ctx, userID, func(ctx context.Context) error {
		// Re-read inside the lock: the email gate may have flipped since.
		current, err := s.accounts.FindByID(ctx, userID)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load account")
		}

		previous, err := s.documents.ListByUser(ctx, userID)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load submission history")
		}
		before := cumulativeOf(previous)

		if err := s.documents.Append(ctx, result.Submission); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to record submission")
		}

		result.Cumulative = before.Union(slots)
		result.DocsComplete = policy.IsVerificationComplete(current.Role, result.Cumulative)
		result.CompletedNow = result.DocsComplete && !policy.IsVerificationComplete(current.Role, before)

		result.Status = account.NextStatus(current.Status, current.EmailVerified, result.DocsComplete)
		if result.Status != current.Status {
			if err := s.accounts.SetVerification(ctx, userID, current.EmailVerified, result.Status); err != nil {
				return dErrors.Wrap(err, dErrors.CodeInternal, "failed to update verification status")
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.SubmissionsAccepted.Inc()
	span.SetAttributes(
		attribute.Bool("docs_complete", result.DocsComplete),
		attribute.String("status", string(result.Status)),
	)
	s.aud.Record(ctx, audit.Event{
		Action:   audit.ActionDocumentSubmitted,
		UserID:   userID.String(),
		Role:     string(user.Role),
		Decision: "accepted",
	})
	if result.CompletedNow {
		s.metrics.VerificationsCompleted.Inc()
		s.aud.Record(ctx, audit.Event{
			Action: audit.ActionVerificationCompleted,
			UserID: userID.String(),
			Role:   string(user.Role),
			Reason: string(result.Status),
		})
	}
	return result, nil
}

// List returns the user's accepted submissions, oldest first.
func (s *Service) List(ctx context.Context, userID id.UserID) ([]*models.Submission, error) {
	submissions, err := s.documents.ListByUser(ctx, userID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load submissions")
	}
	return submissions, nil
}

// Progress reports the cumulative slot set and whether it completes the
// role's requirement, recomputed from history.
func (s *Service) Progress(ctx context.Context, userID id.UserID) (models.SlotSet, bool, error) {
	user, err := s.accounts.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, false, dErrors.New(dErrors.CodeNotFound, "account not found")
		}
		return nil, false, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load account")
	}
	submissions, err := s.documents.ListByUser(ctx, userID)
	if err != nil {
		return nil, false, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load submissions")
	}
	cumulative := cumulativeOf(submissions)
	return cumulative, policy.IsVerificationComplete(user.Role, cumulative), nil
}

func cumulativeOf(submissions []*models.Submission) models.SlotSet {
	cumulative := models.NewSlotSet()
	for _, submission := range submissions {
		cumulative = cumulative.Union(submission.Slots)
	}
	return cumulative
}
