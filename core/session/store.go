package session

import (
	"context"

	"github.com/google/uuid"
)

// Store defines the persistent session backend this package accelerates.
// Implementations must handle concurrent access safely.
type Store interface {
	// ValidateSession returns the session for id, or ErrNotFound when the
	// session does not exist or has expired server-side.
	ValidateSession(ctx context.Context, id string) (*Session, error)

	// CreateSession persists a new session for the user and returns its ID.
	CreateSession(ctx context.Context, userID uuid.UUID) (string, error)

	// DestroySession removes a session. Destroying an absent session is not
	// an error.
	DestroySession(ctx context.Context, id string) error

	// DeleteExpired removes all expired sessions and returns the count of
	// deleted sessions. Should be called periodically to prevent growth.
	DeleteExpired(ctx context.Context) (int64, error)
}
