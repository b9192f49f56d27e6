package auth

import (
	"context"

	"github.com/google/uuid"
)

type contextKey struct{}

// WithOwner stores the verified owner identifier in the request context.
func WithOwner(ctx context.Context, ownerID uuid.UUID) context.Context {
	return context.WithValue(ctx, contextKey{}, ownerID)
}

// OwnerFromContext returns the owner identifier resolved by the middleware.
func OwnerFromContext(ctx context.Context) (uuid.UUID, bool) {
	ownerID, ok := ctx.Value(contextKey{}).(uuid.UUID)
	return ownerID, ok
}
