// Package models defines the email verification token.
package models

import (
	"time"

	"github.com/google/uuid"

	id "tradegate/pkg/domain"
)

// TokenTTL is how long a verification link stays valid after issuance.
const TokenTTL = 24 * time.Hour

// Token is a single-use email verification credential. Expiry is evaluated
// against IssuedAt at consume time, never against store-side eviction, so an
// expired token is reported as expired rather than unknown.
type Token struct {
	Value    string
	UserID   id.UserID
	IssuedAt time.Time
}

// NewToken mints a token for the given account.
func NewToken(userID id.UserID, now time.Time) *Token {
	return &Token{
		Value:    uuid.NewString(),
		UserID:   userID,
		IssuedAt: now,
	}
}

// ExpiresAt is the instant after which the token no longer verifies.
func (t *Token) ExpiresAt() time.Time {
	return t.IssuedAt.Add(TokenTTL)
}

// Expired reports whether the token is past its window at the given instant.
func (t *Token) Expired(now time.Time) bool {
	return now.After(t.ExpiresAt())
}
