// Package store persists email verification tokens. Implementations follow
// the store error contract: sentinel errors for resource facts, wrapped
// infrastructure errors otherwise.
package store

import (
	"context"
	"time"

	"tradegate/internal/verification/models"
)

// Store is the token persistence boundary.
//
// Consume must be atomic: of two concurrent calls with the same value, exactly
// one succeeds and the other observes sentinel.ErrNotFound. An expired token
// is reported as sentinel.ErrExpired and left for DeleteExpired, so the caller
// can distinguish "too late" from "never existed".
type Store interface {
	Create(ctx context.Context, token *models.Token) error

	// Consume atomically checks and deletes the token in a single step.
	Consume(ctx context.Context, value string, now time.Time) (*models.Token, error)

	// DeleteExpired removes tokens past their window. Returns how many.
	DeleteExpired(ctx context.Context, now time.Time) (int, error)
}
