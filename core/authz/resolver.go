package authz

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// ErrNotFound is returned by resolvers when a user has no role assignment.
var ErrNotFound = errors.New("user role not found")

// Resolver answers user → role → permission set against the persistent
// store. Implementations must handle concurrent access safely.
type Resolver interface {
	ResolveUserRole(ctx context.Context, userID uuid.UUID) (*Grant, error)
}

// ResolverFunc adapts a function to the Resolver interface.
type ResolverFunc func(ctx context.Context, userID uuid.UUID) (*Grant, error)

func (f ResolverFunc) ResolveUserRole(ctx context.Context, userID uuid.UUID) (*Grant, error) {
	return f(ctx, userID)
}
