package authkit

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/playsquare/authkit/core/authz"
	"github.com/playsquare/authkit/core/csrf"
	"github.com/playsquare/authkit/core/logger"
	"github.com/playsquare/authkit/core/session"
	"github.com/playsquare/authkit/pkg/ratelimiter"
)

// Config aggregates the configuration of every fast-path component. Load it
// in one call with config.Load.
type Config struct {
	Session   session.Config
	Authz     authz.Config
	CSRF      csrf.Config
	RateLimit ratelimiter.Config

	// StoreCleanupInterval controls how often expired sessions are deleted
	// from the persistent store. Zero disables the janitor; the in-memory
	// caches sweep themselves regardless.
	StoreCleanupInterval time.Duration `env:"SESSION_STORE_CLEANUP_INTERVAL" envDefault:"1h"`
}

// Kit wires the session cache, permission cache, anti-forgery token store,
// and rate limiter into one unit with a shared lifecycle, and carries the
// cross-component invalidation rules that keep them coherent.
type Kit struct {
	sessions     *session.Manager
	permissions  *authz.Cache
	csrf         *csrf.Store
	limiter      *ratelimiter.Limiter
	limiterStore *ratelimiter.MemoryStore

	store                session.Store
	storeCleanupInterval time.Duration
	logger               *slog.Logger
}

// Option configures a Kit.
type Option func(*Kit)

// WithLogger sets the logger shared by every component.
func WithLogger(log *slog.Logger) Option {
	return func(k *Kit) {
		if log != nil {
			k.logger = log
		}
	}
}

// userSessionDestroyer is implemented by stores that can revoke every
// session of a user in one call. The pg store does; stores without it fall
// back to cache-level invalidation only.
type userSessionDestroyer interface {
	DestroyUserSessions(ctx context.Context, userID uuid.UUID) (int64, error)
}

// New builds the fast-path over the given persistent stores. Construction
// fails only on invalid configuration; the anti-forgery secret is validated
// here so a misconfigured deployment dies at startup, not at first request.
func New(store session.Store, resolver authz.Resolver, cfg Config, opts ...Option) (*Kit, error) {
	k := &Kit{
		store:                store,
		storeCleanupInterval: cfg.StoreCleanupInterval,
		logger:               slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(k)
	}

	csrfStore, err := csrf.New(cfg.CSRF, csrf.WithLogger(k.logger))
	if err != nil {
		return nil, err
	}

	limiterStore := ratelimiter.NewMemoryStore(ratelimiter.WithMemoryStoreLogger(k.logger))
	limiter, err := ratelimiter.New(limiterStore, cfg.RateLimit, ratelimiter.WithLogger(k.logger))
	if err != nil {
		return nil, err
	}

	cache := session.NewCacheFromConfig(cfg.Session, session.WithLogger(k.logger))
	k.sessions = session.NewManager(store, cache, session.WithManagerLogger(k.logger))
	k.permissions = authz.NewCacheFromConfig(resolver, cfg.Authz, authz.WithLogger(k.logger))
	k.csrf = csrfStore
	k.limiter = limiter
	k.limiterStore = limiterStore

	return k, nil
}

// Sessions exposes the session manager.
func (k *Kit) Sessions() *session.Manager { return k.sessions }

// Permissions exposes the permission cache.
func (k *Kit) Permissions() *authz.Cache { return k.permissions }

// CSRF exposes the anti-forgery token store.
func (k *Kit) CSRF() *csrf.Store { return k.csrf }

// Limiter exposes the rate limiter.
func (k *Kit) Limiter() *ratelimiter.Limiter { return k.limiter }

// Run starts every background sweep and blocks until ctx is cancelled or one
// of them fails. Typical usage pairs it with the HTTP server in an errgroup.
func (k *Kit) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(k.sessions.Cache().Run(ctx))
	g.Go(k.permissions.Run(ctx))
	g.Go(k.csrf.Run(ctx))
	g.Go(k.limiterStore.Run(ctx))
	if k.storeCleanupInterval > 0 {
		g.Go(k.runStoreJanitor(ctx))
	}

	return g.Wait()
}

// runStoreJanitor periodically deletes expired sessions from the persistent
// store. Store failures are logged and retried on the next tick.
func (k *Kit) runStoreJanitor(ctx context.Context) func() error {
	return func() error {
		ticker := time.NewTicker(k.storeCleanupInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return nil
			case <-ticker.C:
				removed, err := k.sessions.CleanupExpired(ctx)
				if err != nil {
					k.logger.WarnContext(ctx, "expired session cleanup failed",
						logger.Component("authkit"),
						logger.Error(err))
					continue
				}
				if removed > 0 {
					k.logger.DebugContext(ctx, "removed expired sessions from store",
						logger.Component("authkit"),
						logger.Count("removed", int(removed)))
				}
			}
		}
	}
}

// Login creates a session for the user and returns its identifier for use as
// the cookie value.
func (k *Kit) Login(ctx context.Context, userID uuid.UUID) (string, error) {
	return k.sessions.Create(ctx, userID)
}

// Logout destroys the session and every anti-forgery token bound to it, so a
// leaked token cannot outlive the session it was issued for.
func (k *Kit) Logout(ctx context.Context, sessionID string) error {
	k.csrf.InvalidateForSession(sessionID)
	return k.sessions.Destroy(ctx, sessionID)
}

// OnPasswordChanged revokes the user's sessions everywhere: the persistent
// store when it supports user-scoped deletion, and the cache always, so a
// stolen cookie dies with the old password.
func (k *Kit) OnPasswordChanged(ctx context.Context, userID uuid.UUID) error {
	removed := k.sessions.Cache().InvalidateUser(userID)
	k.logger.InfoContext(ctx, "revoked sessions after password change",
		logger.Component("authkit"),
		logger.UserID(userID),
		logger.Count("cached", removed))

	if destroyer, ok := k.store.(userSessionDestroyer); ok {
		if _, err := destroyer.DestroyUserSessions(ctx, userID); err != nil {
			return err
		}
	}
	return nil
}

// OnRoleAssigned drops the user's cached grant and cached sessions after a
// role reassignment, so the next request resolves fresh permissions.
func (k *Kit) OnRoleAssigned(userID uuid.UUID) {
	k.permissions.InvalidateUser(userID)
	k.sessions.Cache().InvalidateUser(userID)
}

// OnRoleEdited drops every cached grant holding the edited role, so all its
// holders pick up the new permission set on their next lookup.
func (k *Kit) OnRoleEdited(roleID uuid.UUID) int {
	return k.permissions.InvalidateRole(roleID)
}
