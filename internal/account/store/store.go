// Package store persists accounts. Implementations follow the store error
// contract: sentinel errors for resource facts (ErrNotFound, ErrConflict),
// wrapped infrastructure errors otherwise. Never domain errors.
package store

import (
	"context"

	"tradegate/internal/account/models"
	id "tradegate/pkg/domain"
)

// Store is the account persistence boundary consumed by services.
type Store interface {
	// Create inserts a new account. Returns sentinel.ErrConflict when an
	// account already exists for the same folded email and role.
	Create(ctx context.Context, user *models.User) error

	FindByID(ctx context.Context, userID id.UserID) (*models.User, error)
	FindByUsername(ctx context.Context, username string) (*models.User, error)

	// UpdateProfile persists caller-editable profile fields only.
	UpdateProfile(ctx context.Context, user *models.User) error

	// SetVerification updates the two workflow-owned fields. Participates in
	// a caller transaction when one is carried in ctx.
	SetVerification(ctx context.Context, userID id.UserID, emailVerified bool, status models.VerificationStatus) error
}
