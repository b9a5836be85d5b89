package ratelimiter

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

// window represents one fixed counting window for a key.
type window struct {
	count   int
	resetAt time.Time
}

// MemoryStore holds the fixed-window counters behind a Limiter. One store
// may back several limiters as long as their key spaces do not collide.
type MemoryStore struct {
	mu      sync.Mutex
	windows map[string]*window

	// Configuration
	cleanupInterval time.Duration
	logger          *slog.Logger

	// State management
	ctx     context.Context
	cancel  context.CancelFunc
	running atomic.Bool
	wg      sync.WaitGroup

	// Observability metrics
	windowsCreated atomic.Int64
	windowsRemoved atomic.Int64
}

// MemoryStoreStats provides observability metrics for monitoring and debugging.
type MemoryStoreStats struct {
	WindowsCreated int64 // Total number of windows started
	WindowsRemoved int64 // Total number of stale windows removed
	ActiveWindows  int   // Current number of tracked windows
	IsRunning      bool  // Whether the cleanup goroutine is running
}

// MemoryStoreOption configures a MemoryStore.
type MemoryStoreOption func(*MemoryStore)

// WithCleanupInterval sets the cleanup interval for removing stale windows.
// Set to 0 to disable automatic cleanup.
func WithCleanupInterval(interval time.Duration) MemoryStoreOption {
	return func(ms *MemoryStore) {
		ms.cleanupInterval = interval
	}
}

// WithMemoryStoreLogger sets the logger for internal operations.
func WithMemoryStoreLogger(log *slog.Logger) MemoryStoreOption {
	return func(ms *MemoryStore) {
		if log != nil {
			ms.logger = log
		}
	}
}

// NewMemoryStore creates a new in-memory store.
// Call Start() to begin background cleanup.
func NewMemoryStore(opts ...MemoryStoreOption) *MemoryStore {
	ms := &MemoryStore{
		windows:         make(map[string]*window),
		cleanupInterval: 5 * time.Minute,
		logger:          slog.New(slog.NewTextHandler(io.Discard, nil)),
	}

	for _, opt := range opts {
		opt(ms)
	}

	return ms
}

// Take counts one request against key under fixed-window semantics. A record
// whose window has passed is treated as absent and a fresh window starts
// with count 1. Within a live window the count only increases, and only
// while it is below limit: a request at or past the limit is refused without
// inflating the count.
func (ms *MemoryStore) Take(key string, limit int, windowDur time.Duration) (allowed bool, count int, resetAt time.Time) {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	now := time.Now()
	w, exists := ms.windows[key]

	if !exists || now.After(w.resetAt) {
		w = &window{count: 1, resetAt: now.Add(windowDur)}
		ms.windows[key] = w
		ms.windowsCreated.Add(1)
		return true, w.count, w.resetAt
	}

	if w.count >= limit {
		return false, w.count, w.resetAt
	}

	w.count++
	return true, w.count, w.resetAt
}

// Incr counts one request against key unconditionally, starting a fresh
// window when none is live. Used for deferred counting where admission was
// already decided.
func (ms *MemoryStore) Incr(key string, windowDur time.Duration) (count int, resetAt time.Time) {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	now := time.Now()
	w, exists := ms.windows[key]

	if !exists || now.After(w.resetAt) {
		w = &window{count: 1, resetAt: now.Add(windowDur)}
		ms.windows[key] = w
		ms.windowsCreated.Add(1)
		return w.count, w.resetAt
	}

	w.count++
	return w.count, w.resetAt
}

// Peek returns the current window state for key without counting. The second
// return value is false when no live window exists.
func (ms *MemoryStore) Peek(key string) (count int, resetAt time.Time, ok bool) {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	w, exists := ms.windows[key]
	if !exists || time.Now().After(w.resetAt) {
		return 0, time.Time{}, false
	}
	return w.count, w.resetAt, true
}

// Reset removes the window for key.
func (ms *MemoryStore) Reset(key string) {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	delete(ms.windows, key)
}

// Start begins the background cleanup goroutine. This is a blocking
// operation that runs until the context is cancelled. Use Run() for errgroup
// pattern or call this in a goroutine.
func (ms *MemoryStore) Start(ctx context.Context) error {
	ms.mu.Lock()
	if ms.cancel != nil {
		ms.mu.Unlock()
		return fmt.Errorf("memory store already started")
	}

	if ms.cleanupInterval <= 0 {
		ms.mu.Unlock()
		return fmt.Errorf("cleanup interval must be > 0, got %v (use WithCleanupInterval to configure)", ms.cleanupInterval)
	}

	ms.ctx, ms.cancel = context.WithCancel(ctx)
	ms.mu.Unlock()

	ms.running.Store(true)
	defer ms.running.Store(false)

	ms.logger.Info("rate limit store cleanup started",
		slog.Duration("cleanup_interval", ms.cleanupInterval))

	ticker := time.NewTicker(ms.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ms.ctx.Done():
			return ms.ctx.Err()
		case <-ticker.C:
			ms.cleanupWithWait()
		}
	}
}

// Stop cancels the background cleanup.
func (ms *MemoryStore) Stop() error {
	ms.mu.Lock()
	if ms.cancel == nil {
		ms.mu.Unlock()
		return fmt.Errorf("memory store not started")
	}

	cancel := ms.cancel
	ms.cancel = nil
	ms.mu.Unlock()

	cancel()
	ms.wg.Wait()

	ms.logger.Info("rate limit store stopped")
	return nil
}

// Run provides errgroup compatibility for coordinated lifecycle management.
func (ms *MemoryStore) Run(ctx context.Context) func() error {
	return func() error {
		errCh := make(chan error, 1)
		go func() {
			errCh <- ms.Start(ctx)
		}()

		select {
		case <-ctx.Done():
			_ = ms.Stop()
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

func (ms *MemoryStore) cleanupWithWait() {
	ms.mu.Lock()
	if ms.cancel == nil {
		ms.mu.Unlock()
		return
	}
	ms.wg.Add(1)
	ms.mu.Unlock()

	defer ms.wg.Done()
	ms.removeStale()
}

// removeStale drops windows whose reset time has long passed, bounding
// memory across many distinct keys. The grace period keeps windows that
// expired moments ago so Peek stays accurate around the boundary.
func (ms *MemoryStore) removeStale() {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	now := time.Now()
	const gracePeriod = time.Minute

	removed := 0
	for key, w := range ms.windows {
		if now.Sub(w.resetAt) > gracePeriod {
			delete(ms.windows, key)
			removed++
		}
	}

	if removed > 0 {
		ms.windowsRemoved.Add(int64(removed))
		ms.logger.Debug("removed stale rate limit windows", slog.Int("removed", removed))
	}
}

// Stats returns current memory store statistics for observability and
// monitoring. This method is thread-safe and can be called at any time.
func (ms *MemoryStore) Stats() MemoryStoreStats {
	ms.mu.Lock()
	isRunning := ms.cancel != nil
	activeWindows := len(ms.windows)
	ms.mu.Unlock()

	return MemoryStoreStats{
		WindowsCreated: ms.windowsCreated.Load(),
		WindowsRemoved: ms.windowsRemoved.Load(),
		ActiveWindows:  activeWindows,
		IsRunning:      isRunning,
	}
}

// Healthcheck validates that the memory store is operational.
// Returns nil if healthy, or an error describing the health issue.
func (ms *MemoryStore) Healthcheck(ctx context.Context) error {
	stats := ms.Stats()

	if ms.cleanupInterval > 0 && !stats.IsRunning {
		return fmt.Errorf("cleanup is configured but not running")
	}

	return nil
}
