package session

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Session is the authenticated-user record cached in front of the persistent
// store. The authoritative copy lives in the backing store; a cached copy is
// never valid past its cache entry's expiry.
type Session struct {
	// ID is the opaque session identifier (32 bytes base64url), used as the
	// cookie value and the cache key.
	ID string

	UserID   uuid.UUID
	Username string

	// RoleID identifies the user's role assignment at validation time.
	RoleID  uuid.UUID
	IsAdmin bool

	// Permissions optionally embeds the resolved permission set. When empty,
	// authorization falls back to the permission cache.
	Permissions []string

	// DefaultPassword marks accounts still on a provisioning password and
	// gates access to everything except the password-change flow.
	DefaultPassword bool

	CreatedAt time.Time
	ExpiresAt time.Time
}

// IsExpired reports whether the backing session itself has expired,
// independent of any cache entry lifetime.
func (s Session) IsExpired() bool {
	return !s.ExpiresAt.IsZero() && time.Now().After(s.ExpiresAt)
}

// IsAuthenticated reports whether the session belongs to a known user.
func (s Session) IsAuthenticated() bool {
	return s.ID != "" && s.UserID != uuid.Nil
}

// HasEmbeddedPermissions reports whether authorization can be answered from
// the record itself without consulting the permission cache.
func (s Session) HasEmbeddedPermissions() bool {
	return len(s.Permissions) > 0
}

// NewID creates a cryptographically secure session identifier using 32 bytes
// (256 bits) encoded as base64 URL-safe string without padding.
func NewID() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", errors.Join(ErrIDGeneration, err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
