// Package store persists document submissions. The record is append-only:
// accepted submissions are never updated or deleted, they are the audit trail
// the cumulative check is recomputed from.
package store

import (
	"context"

	"tradegate/internal/document/models"
	id "tradegate/pkg/domain"
)

// Store is the submission persistence boundary.
type Store interface {
	// Append records an accepted submission.
	Append(ctx context.Context, submission *models.Submission) error

	// ListByUser returns every accepted submission for the user, oldest
	// first. Callers union the slot sets to rebuild the cumulative set.
	ListByUser(ctx context.Context, userID id.UserID) ([]*models.Submission, error)
}
