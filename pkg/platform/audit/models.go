// Package audit captures key domain actions for compliance review. Events are
// emitted from services, persisted through a background worker, and optionally
// fanned out to Kafka for downstream consumers.
package audit

import (
	"context"
	"time"
)

// Action identifies what happened.
type Action string

const (
	ActionUserRegistered Action = "user_registered"
	ActionLoginSucceeded Action = "login_succeeded"
	ActionLoginFailed    Action = "login_failed"

	ActionDocumentSubmitted Action = "document_submitted"
	ActionDocumentRejected  Action = "document_rejected"

	// ActionVerificationCompleted is emitted exactly once per account, when
	// the cumulative document set first satisfies the role requirement.
	ActionVerificationCompleted Action = "verification_completed"

	ActionEmailVerified     Action = "email_verified"
	ActionTokenRejected     Action = "token_rejected"
	ActionStatusTransition  Action = "status_transition"
	ActionVerificationEmail Action = "verification_email_sent"
)

// Event is emitted from domain logic. Keep it transport-agnostic so stores
// and sinks can fan out.
type Event struct {
	Timestamp time.Time `json:"timestamp"`
	Action    Action    `json:"action"`
	UserID    string    `json:"user_id,omitempty"`
	Role      string    `json:"role,omitempty"`
	Email     string    `json:"email,omitempty"`
	RequestID string    `json:"request_id,omitempty"`

	// Decision and Reason carry the outcome for rejection/transition events,
	// e.g. Decision "rejected", Reason "incomplete_pair".
	Decision string `json:"decision,omitempty"`
	Reason   string `json:"reason,omitempty"`
}

// Store persists events append-only.
type Store interface {
	Append(ctx context.Context, event Event) error
	ListByUser(ctx context.Context, userID string) ([]Event, error)
}

// Publisher fans events out to an external bus. Implementations must not
// block domain requests on broker availability.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
	Close()
}

// Sink is the narrow interface services emit through.
type Sink interface {
	Record(ctx context.Context, event Event)
}
