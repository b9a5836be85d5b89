package session

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"github.com/google/uuid"

	"github.com/playsquare/authkit/core/logger"
)

// Manager resolves sessions cache-aside: the cache is checked first, and on
// a miss the persistent store is queried and the result written back.
//
// Store failures never surface to callers as errors; they collapse to an
// unauthenticated outcome and are logged internally, so a flaky backend
// degrades requests to anonymous instead of crashing them.
type Manager struct {
	store  Store
	cache  *Cache
	logger *slog.Logger
}

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

// WithManagerLogger sets the logger for internal operations.
func WithManagerLogger(log *slog.Logger) ManagerOption {
	return func(m *Manager) {
		if log != nil {
			m.logger = log
		}
	}
}

// NewManager creates a session manager over the given persistent store and
// cache.
func NewManager(store Store, cache *Cache, opts ...ManagerOption) *Manager {
	m := &Manager{
		store:  store,
		cache:  cache,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}

	for _, opt := range opts {
		opt(m)
	}

	return m
}

// Resolve returns the session for id, consulting the cache before the store.
// A successful store lookup repopulates the cache. Absence, expiry, and
// store failures all report (Session{}, false).
func (m *Manager) Resolve(ctx context.Context, id string) (Session, bool) {
	if id == "" {
		return Session{}, false
	}

	if sess, ok := m.cache.Get(id); ok {
		return sess, true
	}

	sess, err := m.store.ValidateSession(ctx, id)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			m.logger.WarnContext(ctx, "session store lookup failed",
				logger.Component("session"),
				logger.SessionID(id),
				logger.Error(err))
		}
		return Session{}, false
	}
	if sess == nil || sess.IsExpired() {
		return Session{}, false
	}

	m.cache.Set(id, *sess)
	return *sess, true
}

// Create persists a new session for userID and returns its ID. The cache is
// populated lazily on the first Resolve, not here.
func (m *Manager) Create(ctx context.Context, userID uuid.UUID) (string, error) {
	id, err := m.store.CreateSession(ctx, userID)
	if err != nil {
		return "", errors.Join(ErrCreateSession, err)
	}
	return id, nil
}

// Destroy removes the session from the store and the cache. The cache entry
// is dropped even when the store delete fails, so a stale copy cannot
// outlive an attempted logout.
func (m *Manager) Destroy(ctx context.Context, id string) error {
	m.cache.Invalidate(id)

	if err := m.store.DestroySession(ctx, id); err != nil && !errors.Is(err, ErrNotFound) {
		return errors.Join(ErrDestroySession, err)
	}
	return nil
}

// Invalidate drops the cached copy of a session without touching the store.
// Used by write paths that change the backing record (password change, role
// edit) so the next request re-validates against the store.
func (m *Manager) Invalidate(id string) {
	m.cache.Invalidate(id)
}

// CleanupExpired removes all expired sessions from the persistent store.
func (m *Manager) CleanupExpired(ctx context.Context) (int64, error) {
	return m.store.DeleteExpired(ctx)
}

// Cache exposes the underlying cache for stats and lifecycle management.
func (m *Manager) Cache() *Cache {
	return m.cache
}
