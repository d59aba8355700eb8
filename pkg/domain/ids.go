// Package domain holds typed identifiers shared across domains. Typed IDs make
// cross-entity mixups a compile error rather than a data bug.
package domain

import (
	"github.com/google/uuid"

	dErrors "tradegate/pkg/domain-errors"
)

type (
	// UserID identifies an account. One person may hold several: the same
	// email can register once per role, each registration is its own account.
	UserID uuid.UUID

	// SubmissionID identifies a single document upload event.
	SubmissionID uuid.UUID
)

func NewUserID() UserID             { return UserID(uuid.New()) }
func NewSubmissionID() SubmissionID { return SubmissionID(uuid.New()) }

func (id UserID) String() string       { return uuid.UUID(id).String() }
func (id SubmissionID) String() string { return uuid.UUID(id).String() }

func (id UserID) IsZero() bool { return uuid.UUID(id) == uuid.Nil }

// ParseUserID validates input at trust boundaries: non-empty, well-formed,
// non-nil UUID.
func ParseUserID(raw string) (UserID, error) {
	parsed, err := parseUUID(raw)
	if err != nil {
		return UserID{}, err
	}
	return UserID(parsed), nil
}

// ParseSubmissionID applies the same invariants as ParseUserID.
func ParseSubmissionID(raw string) (SubmissionID, error) {
	parsed, err := parseUUID(raw)
	if err != nil {
		return SubmissionID{}, err
	}
	return SubmissionID(parsed), nil
}

func parseUUID(raw string) (uuid.UUID, error) {
	if raw == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "id must not be empty")
	}
	parsed, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, dErrors.Wrap(err, dErrors.CodeInvalidInput, "id is not a valid uuid")
	}
	if parsed == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "id must not be the nil uuid")
	}
	return parsed, nil
}
