package session

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

// entry is a cached session with its cache-level lifetime. expiresAt bounds
// staleness against the backing store; lastAccess drives LRU eviction.
type entry struct {
	session    Session
	expiresAt  time.Time
	lastAccess time.Time
}

// Cache is a TTL- and capacity-bounded map from session ID to a previously
// validated session. It is the sole owner of its entries: callers only reach
// them through Get/Set/Invalidate and the periodic sweep.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]*entry

	// Configuration
	ttl             time.Duration
	capacity        int
	cleanupInterval time.Duration
	logger          *slog.Logger

	// State management
	ctx     context.Context
	cancel  context.CancelFunc
	running atomic.Bool
	wg      sync.WaitGroup

	// Observability metrics
	hits      atomic.Int64
	misses    atomic.Int64
	evictions atomic.Int64
}

// CacheStats provides observability metrics for monitoring and debugging.
type CacheStats struct {
	Size      int           // Current number of cached sessions
	TTL       time.Duration // Configured entry time-to-live
	Hits      int64         // Total cache hits
	Misses    int64         // Total cache misses (absent or expired)
	Evictions int64         // Total LRU evictions
	Entries   []EntryStats  // Per-entry age and remaining life
}

// EntryStats describes one cached session for operational monitoring.
// It is read-only diagnostics, not part of the security contract.
type EntryStats struct {
	ID        string
	Age       time.Duration
	ExpiresIn time.Duration
}

// CacheOption configures a Cache.
type CacheOption func(*Cache)

// WithTTL sets the cache entry time-to-live.
func WithTTL(ttl time.Duration) CacheOption {
	return func(c *Cache) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// WithCapacity sets the maximum number of cached sessions. When the bound is
// exceeded the least-recently-accessed entry is evicted.
func WithCapacity(capacity int) CacheOption {
	return func(c *Cache) {
		if capacity > 0 {
			c.capacity = capacity
		}
	}
}

// WithCleanupInterval sets how often the background sweep removes expired
// entries. Set to 0 to disable the periodic sweep.
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

// NewCache creates a session cache with a 5 minute TTL, 1000 entry capacity,
// and 60 second sweep interval by default. Call Start() to begin the
// background sweep.
func NewCache(opts ...CacheOption) *Cache {
	c := &Cache{
		entries:         make(map[string]*entry),
		ttl:             5 * time.Minute,
		capacity:        1000,
		cleanupInterval: time.Minute,
		logger:          slog.New(slog.NewTextHandler(io.Discard, nil)),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Get returns the cached session for id. Absent and expired entries both
// report a miss; an expired entry found here is deleted immediately. A hit
// refreshes the entry's last access time.
func (c *Cache) Get(id string) (Session, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[id]
	if !ok {
		c.misses.Add(1)
		return Session{}, false
	}

	now := time.Now()
	if now.After(e.expiresAt) {
		delete(c.entries, id)
		c.misses.Add(1)
		return Session{}, false
	}

	e.lastAccess = now
	c.hits.Add(1)
	return e.session, true
}

// Set caches sess under id with a fresh TTL. When the capacity bound is
// exceeded the entry with the oldest last access is evicted. Eviction is a
// full scan, acceptable at the default bound of 1000 entries.
func (c *Cache) Set(id string, sess Session) {
	if id == "" {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	c.entries[id] = &entry{
		session:    sess,
		expiresAt:  now.Add(c.ttl),
		lastAccess: now,
	}

	if len(c.entries) > c.capacity {
		c.evictOldest()
	}
}

// evictOldest removes the entry with the oldest lastAccess.
// Caller must hold c.mu.
func (c *Cache) evictOldest() {
	var oldestID string
	var oldest time.Time

	for id, e := range c.entries {
		if oldestID == "" || e.lastAccess.Before(oldest) {
			oldestID = id
			oldest = e.lastAccess
		}
	}

	if oldestID != "" {
		delete(c.entries, oldestID)
		c.evictions.Add(1)
		c.logger.Debug("evicted least recently used session",
			logger.Component("session_cache"),
			logger.SessionID(oldestID))
	}
}

// Invalidate removes a specific session unconditionally. Called whenever the
// backing session is destroyed or its credentials or role change.
func (c *Cache) Invalidate(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.entries, id)
}

// InvalidateUser removes every cached session belonging to userID. Called on
// password change and role reassignment so stale copies do not outlive the
// event. Full scan, acceptable at the default bound of 1000 entries.
func (c *Cache) InvalidateUser(userID uuid.UUID) int {
	if userID == uuid.Nil {
		return 0
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for id, e := range c.entries {
		if e.session.UserID == userID {
			delete(c.entries, id)
			removed++
		}
	}

	if removed > 0 {
		c.logger.Debug("invalidated sessions for user",
			logger.Component("session_cache"),
			logger.UserID(userID),
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

// Cleanup removes all expired entries and returns how many were removed.
// The background sweep calls this on a fixed period so idle entries do not
// linger until the next Get.
func (c *Cache) Cleanup() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	removed := 0
	for id, e := range c.entries {
		if now.After(e.expiresAt) {
			delete(c.entries, id)
			removed++
		}
	}

	return removed
}

// Stats returns current cache statistics for observability and monitoring.
// This method is thread-safe and can be called at any time.
func (c *Cache) Stats() CacheStats {
	c.mu.RLock()
	defer c.mu.RUnlock()

	now := time.Now()
	entries := make([]EntryStats, 0, len(c.entries))
	for id, e := range c.entries {
		entries = append(entries, EntryStats{
			ID:        id,
			Age:       now.Sub(e.lastAccess),
			ExpiresIn: e.expiresAt.Sub(now),
		})
	}

	return CacheStats{
		Size:      len(c.entries),
		TTL:       c.ttl,
		Hits:      c.hits.Load(),
		Misses:    c.misses.Load(),
		Evictions: c.evictions.Load(),
		Entries:   entries,
	}
}

// Start begins the background sweep. This is a blocking operation that runs
// until the context is cancelled. Use Run() for errgroup pattern or call
// this in a goroutine.
func (c *Cache) Start(ctx context.Context) error {
	c.mu.Lock()
	if c.cancel != nil {
		c.mu.Unlock()
		return fmt.Errorf("session cache already started")
	}

	if c.cleanupInterval <= 0 {
		c.mu.Unlock()
		return fmt.Errorf("cleanup interval must be > 0, got %v (use WithCleanupInterval to configure)", c.cleanupInterval)
	}

	c.ctx, c.cancel = context.WithCancel(ctx)
	c.mu.Unlock()

	c.running.Store(true)
	defer c.running.Store(false)

	c.logger.Info("session cache sweep started",
		logger.Component("session_cache"),
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

// Stop cancels the background sweep and empties the cache, releasing all
// resources on shutdown.
func (c *Cache) Stop() error {
	c.mu.Lock()
	if c.cancel == nil {
		c.mu.Unlock()
		return fmt.Errorf("session cache not started")
	}

	cancel := c.cancel
	c.cancel = nil
	c.mu.Unlock()

	cancel()
	c.wg.Wait()
	c.Clear()

	c.logger.Info("session cache stopped", logger.Component("session_cache"))
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

// sweepWithWait tracks an in-flight sweep with the WaitGroup so Stop can
// wait for it to finish.
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
		c.logger.Debug("removed expired sessions",
			logger.Component("session_cache"),
			logger.Count("removed", removed))
	}
}
