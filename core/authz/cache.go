package authz

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/playsquare/authkit/core/logger"
)

// entry is a cached grant with its cache-level expiry.
type entry struct {
	grant     Grant
	expiresAt time.Time
}

// Cache is a TTL-bounded map from user ID to that user's resolved grant,
// filled cache-aside from a Resolver. There is no capacity bound: keys come
// from the bounded user population and expired entries are swept
// periodically.
type Cache struct {
	mu      sync.RWMutex
	entries map[uuid.UUID]*entry

	resolver Resolver

	// Configuration
	ttl             time.Duration
	cleanupInterval time.Duration
	logger          *slog.Logger

	// State management
	ctx     context.Context
	cancel  context.CancelFunc
	running atomic.Bool
	wg      sync.WaitGroup

	// Observability metrics
	hits   atomic.Int64
	misses atomic.Int64
}

// CacheStats provides observability metrics for monitoring and debugging.
type CacheStats struct {
	Size   int
	TTL    time.Duration
	Hits   int64
	Misses int64
}

// CacheOption configures a Cache.
type CacheOption func(*Cache)

// WithTTL sets the grant time-to-live.
func WithTTL(ttl time.Duration) CacheOption {
	return func(c *Cache) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// WithCleanupInterval sets how often the background sweep removes expired
// grants. Set to 0 to disable the periodic sweep.
func WithCleanupInterval(interval time.Duration) CacheOption {
	return func(c *Cache) {
		c.cleanupInterval = interval
	}
}

// WithLogger sets the logger for internal operations.
func WithLogger(log *slog.Logger) CacheOption {
	return func(c *Cache) {
		if log != nil {
			c.logger = log
		}
	}
}

// NewCache creates a permission cache over the given resolver with a
// 5 minute TTL and 60 second sweep interval by default. Call Start() to
// begin the background sweep.
func NewCache(resolver Resolver, opts ...CacheOption) *Cache {
	c := &Cache{
		entries:         make(map[uuid.UUID]*entry),
		resolver:        resolver,
		ttl:             5 * time.Minute,
		cleanupInterval: time.Minute,
		logger:          slog.New(slog.NewTextHandler(io.Discard, nil)),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Get returns the user's grant, resolving against the store on a miss. Only
// successful lookups are cached: a user without a role assignment is not
// negatively cached, so a just-created assignment is visible on the next
// request. Resolver failures are logged and collapse to a miss.
func (c *Cache) Get(ctx context.Context, userID uuid.UUID) (Grant, bool) {
	if userID == uuid.Nil {
		return Grant{}, false
	}

	c.mu.Lock()
	if e, ok := c.entries[userID]; ok {
		if time.Now().Before(e.expiresAt) {
			grant := e.grant
			c.mu.Unlock()
			c.hits.Add(1)
			return grant, true
		}
		delete(c.entries, userID)
	}
	c.mu.Unlock()
	c.misses.Add(1)

	grant, err := c.resolver.ResolveUserRole(ctx, userID)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			c.logger.WarnContext(ctx, "role resolution failed",
				logger.Component("authz"),
				logger.UserID(userID),
				logger.Error(err))
		}
		return Grant{}, false
	}
	if grant == nil {
		return Grant{}, false
	}

	c.mu.Lock()
	c.entries[userID] = &entry{
		grant:     *grant,
		expiresAt: time.Now().Add(c.ttl),
	}
	c.mu.Unlock()

	return *grant, true
}

// InvalidateUser removes a user's cached grant. Called whenever the user's
// role assignment changes.
func (c *Cache) InvalidateUser(userID uuid.UUID) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.entries, userID)
}

// InvalidateRole removes every cached grant holding the given role. Called
// whenever a role's permission set is edited, so every user holding it picks
// up fresh permissions on their next lookup. Full scan, acceptable at the
// bounded user population.
func (c *Cache) InvalidateRole(roleID uuid.UUID) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for userID, e := range c.entries {
		if e.grant.RoleID == roleID {
			delete(c.entries, userID)
			removed++
		}
	}

	if removed > 0 {
		c.logger.Debug("invalidated grants for edited role",
			logger.Component("authz"),
			logger.RoleID(roleID),
			logger.Count("removed", removed))
	}
	return removed
}

// Clear empties the cache.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	clear(c.entries)
}

// Cleanup removes all expired grants and returns how many were removed.
func (c *Cache) Cleanup() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	removed := 0
	for userID, e := range c.entries {
		if now.After(e.expiresAt) {
			delete(c.entries, userID)
			removed++
		}
	}

	return removed
}

// Stats returns current cache statistics for observability and monitoring.
func (c *Cache) Stats() CacheStats {
	c.mu.RLock()
	size := len(c.entries)
	c.mu.RUnlock()

	return CacheStats{
		Size:   size,
		TTL:    c.ttl,
		Hits:   c.hits.Load(),
		Misses: c.misses.Load(),
	}
}

// Start begins the background sweep. This is a blocking operation that runs
// until the context is cancelled. Use Run() for errgroup pattern or call
// this in a goroutine.
func (c *Cache) Start(ctx context.Context) error {
	c.mu.Lock()
	if c.cancel != nil {
		c.mu.Unlock()
		return fmt.Errorf("permission cache already started")
	}

	if c.cleanupInterval <= 0 {
		c.mu.Unlock()
		return fmt.Errorf("cleanup interval must be > 0, got %v (use WithCleanupInterval to configure)", c.cleanupInterval)
	}

	c.ctx, c.cancel = context.WithCancel(ctx)
	c.mu.Unlock()

	c.running.Store(true)
	defer c.running.Store(false)

	c.logger.Info("permission cache sweep started",
		logger.Component("authz"),
		slog.Duration("cleanup_interval", c.cleanupInterval))

	ticker := time.NewTicker(c.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.ctx.Done():
			return c.ctx.Err()
		case <-ticker.C:
			c.sweepWithWait()
		}
	}
}

// Stop cancels the background sweep and empties the cache.
func (c *Cache) Stop() error {
	c.mu.Lock()
	if c.cancel == nil {
		c.mu.Unlock()
		return fmt.Errorf("permission cache not started")
	}

	cancel := c.cancel
	c.cancel = nil
	c.mu.Unlock()

	cancel()
	c.wg.Wait()
	c.Clear()

	c.logger.Info("permission cache stopped", logger.Component("authz"))
	return nil
}

// Run provides errgroup compatibility for coordinated lifecycle management.
func (c *Cache) Run(ctx context.Context) func() error {
	return func() error {
		errCh := make(chan error, 1)
		go func() {
			errCh <- c.Start(ctx)
		}()

		select {
		case <-ctx.Done():
			_ = c.Stop()
			<-errCh
			return nil
		case err := <-errCh:
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil
			}
			return err
		}
	}
}

func (c *Cache) sweepWithWait() {
	c.mu.RLock()
	if c.cancel == nil {
		c.mu.RUnlock()
		return
	}
	c.wg.Add(1)
	c.mu.RUnlock()

	defer c.wg.Done()
	if removed := c.Cleanup(); removed > 0 {
		c.logger.Debug("removed expired grants",
			logger.Component("authz"),
			logger.Count("removed", removed))
	}
}
