package csrf

import (
	"context"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/playsquare/authkit/core/logger"
)

// tokenEntry is the server-side state of an issued token.
type tokenEntry struct {
	sessionID string
	expiresAt time.Time
}

// Store issues and validates signed, session-bound, time-limited anti-forgery
// tokens. A token is valid only while it is present and unexpired in the
// store, bound to the presented session, and its signature re-verifies
// against the signing secret.
type Store struct {
	mu     sync.Mutex
	tokens map[string]tokenEntry

	secret []byte

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
	issued   atomic.Int64
	rejected atomic.Int64
}

// StoreStats provides observability metrics for monitoring and debugging.
type StoreStats struct {
	Size     int           // Tokens currently held, expired included
	TTL      time.Duration // Configured token time-to-live
	Issued   int64         // Total tokens generated
	Rejected int64         // Total failed validations
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithLogger sets the logger for internal operations.
func WithLogger(log *slog.Logger) StoreOption {
	return func(s *Store) {
		if log != nil {
			s.logger = log
		}
	}
}

// New creates a token store after validating the signing secret. A missing,
// placeholder, or under-length secret (in production) aborts construction.
// Call Start() to begin the background sweep.
func New(cfg Config, opts ...StoreOption) (*Store, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	s := &Store{
		tokens:          make(map[string]tokenEntry),
		secret:          []byte(cfg.Secret),
		ttl:             cfg.TTL,
		cleanupInterval: cfg.CleanupInterval,
		logger:          slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	if s.ttl <= 0 {
		s.ttl = time.Hour
	}

	for _, opt := range opts {
		opt(s)
	}

	return s, nil
}

// Generate issues a token bound to sessionID: 32 bytes of cryptographically
// strong randomness and an HMAC-SHA256 signature over random:session, both
// hex-encoded and joined by a dot. Issuing also purges any tokens that have
// expired in the meantime.
func (s *Store) Generate(sessionID string) (string, error) {
	if sessionID == "" {
		return "", ErrEmptySessionID
	}

	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", errors.Join(ErrTokenGeneration, err)
	}
	random := hex.EncodeToString(buf)

	token := random + "." + s.sign(random, sessionID)

	s.mu.Lock()
	s.purgeExpired()
	s.tokens[token] = tokenEntry{
		sessionID: sessionID,
		expiresAt: time.Now().Add(s.ttl),
	}
	s.mu.Unlock()

	s.issued.Add(1)
	return token, nil
}

// Validate reports whether token is live and bound to sessionID. Every
// failure mode collapses to false; callers learn nothing about why a token
// was rejected.
func (s *Store) Validate(token, sessionID string) bool {
	if token == "" || sessionID == "" {
		return s.reject()
	}

	parts := strings.Split(token, ".")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return s.reject()
	}

	s.mu.Lock()
	entry, ok := s.tokens[token]
	if ok && time.Now().After(entry.expiresAt) {
		delete(s.tokens, token)
		ok = false
	}
	s.mu.Unlock()

	if !ok {
		return s.reject()
	}
	if entry.sessionID != sessionID {
		return s.reject()
	}

	// Constant-time comparison over the hex signature. The comparison being
	// timing-safe is a deliberate hardening over plain string equality.
	expected := s.sign(parts[0], sessionID)
	if !hmac.Equal([]byte(parts[1]), []byte(expected)) {
		return s.reject()
	}

	return true
}

// Invalidate removes a token unconditionally. Used after consuming a
// one-time-use token.
func (s *Store) Invalidate(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.tokens, token)
}

// InvalidateForSession removes every token bound to sessionID. Used on
// logout and credential rotation.
func (s *Store) InvalidateForSession(sessionID string) int {
	if sessionID == "" {
		return 0
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for token, entry := range s.tokens {
		if entry.sessionID == sessionID {
			delete(s.tokens, token)
			removed++
		}
	}
	return removed
}

// Cleanup removes all expired tokens and returns how many were removed.
func (s *Store) Cleanup() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.purgeExpired()
}

// purgeExpired removes expired tokens. Caller must hold s.mu.
func (s *Store) purgeExpired() int {
	now := time.Now()
	removed := 0
	for token, entry := range s.tokens {
		if now.After(entry.expiresAt) {
			delete(s.tokens, token)
			removed++
		}
	}
	return removed
}

// Stats returns current store statistics for observability and monitoring.
func (s *Store) Stats() StoreStats {
	s.mu.Lock()
	size := len(s.tokens)
	s.mu.Unlock()

	return StoreStats{
		Size:     size,
		TTL:      s.ttl,
		Issued:   s.issued.Load(),
		Rejected: s.rejected.Load(),
	}
}

// Start begins the background sweep. This is a blocking operation that runs
// until the context is cancelled. Use Run() for errgroup pattern or call
// this in a goroutine.
func (s *Store) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.cancel != nil {
		s.mu.Unlock()
		return fmt.Errorf("csrf store already started")
	}

	if s.cleanupInterval <= 0 {
		s.mu.Unlock()
		return fmt.Errorf("cleanup interval must be > 0, got %v", s.cleanupInterval)
	}

	s.ctx, s.cancel = context.WithCancel(ctx)
	s.mu.Unlock()

	s.running.Store(true)
	defer s.running.Store(false)

	s.logger.Info("csrf token sweep started",
		logger.Component("csrf"),
		slog.Duration("cleanup_interval", s.cleanupInterval))

	ticker := time.NewTicker(s.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.ctx.Done():
			return s.ctx.Err()
		case <-ticker.C:
			s.sweepWithWait()
		}
	}
}

// Stop cancels the background sweep and drops all issued tokens.
func (s *Store) Stop() error {
	s.mu.Lock()
	if s.cancel == nil {
		s.mu.Unlock()
		return fmt.Errorf("csrf store not started")
	}

	cancel := s.cancel
	s.cancel = nil
	s.mu.Unlock()

	cancel()
	s.wg.Wait()

	s.mu.Lock()
	clear(s.tokens)
	s.mu.Unlock()

	s.logger.Info("csrf store stopped", logger.Component("csrf"))
	return nil
}

// Run provides errgroup compatibility for coordinated lifecycle management.
func (s *Store) Run(ctx context.Context) func() error {
	return func() error {
		errCh := make(chan error, 1)
		go func() {
			errCh <- s.Start(ctx)
		}()

		select {
		case <-ctx.Done():
			_ = s.Stop()
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

func (s *Store) sweepWithWait() {
	s.mu.Lock()
	if s.cancel == nil {
		s.mu.Unlock()
		return
	}
	s.wg.Add(1)
	s.mu.Unlock()

	defer s.wg.Done()
	if removed := s.Cleanup(); removed > 0 {
		s.logger.Debug("removed expired csrf tokens",
			logger.Component("csrf"),
			logger.Count("removed", removed))
	}
}

// sign computes the hex HMAC-SHA256 of random:sessionID under the store
// secret.
func (s *Store) sign(random, sessionID string) string {
	mac := hmac.New(sha256.New, s.secret)
	mac.Write([]byte(random + ":" + sessionID))
	return hex.EncodeToString(mac.Sum(nil))
}

func (s *Store) reject() bool {
	s.rejected.Add(1)
	return false
}
