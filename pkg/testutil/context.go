package testutil

import (
	"context"

	"tradegate/internal/platform/middleware"
)

// WithAuth returns a context carrying the identity RequireAuth would have
// set, for exercising handlers without a real token.
func WithAuth(ctx context.Context, userID, role string) context.Context {
	ctx = context.WithValue(ctx, middleware.ContextKeyUserID, userID)
	return context.WithValue(ctx, middleware.ContextKeyRole, role)
}
