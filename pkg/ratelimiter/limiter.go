package ratelimiter

import (
	"fmt"
	"io"
	"log/slog"
	"time"
)

// UnknownIdentity is the sentinel for requests whose client identity could
// not be determined. Checks against it are governed by the FailOpen policy
// instead of a counter.
const UnknownIdentity = "unknown"

// Config provides environment-based configuration for a Limiter.
type Config struct {
	// MaxRequests is the number of requests admitted per window.
	MaxRequests int `env:"RATELIMIT_MAX_REQUESTS" envDefault:"100"`

	// Window is the fixed counting window. It resets wholesale; there is no
	// sliding behavior.
	Window time.Duration `env:"RATELIMIT_WINDOW" envDefault:"1m"`

	// Message is returned to rejected callers.
	Message string `env:"RATELIMIT_MESSAGE" envDefault:"Too many requests, please try again later."`

	// SkipSuccessfulRequests defers counting to the caller's success
	// signal: Check only inspects the window and the caller invokes Record
	// for requests that should count (typically failures, so an attacker
	// cannot burn a victim's budget with successful traffic).
	SkipSuccessfulRequests bool `env:"RATELIMIT_SKIP_SUCCESSFUL" envDefault:"false"`

	// FailOpen admits requests whose identity is indeterminate instead of
	// rejecting them. Availability-over-strictness: the right setting
	// depends on the deployment, so it is explicit configuration rather
	// than a hardcoded policy.
	FailOpen bool `env:"RATELIMIT_FAIL_OPEN" envDefault:"true"`
}

// DefaultConfig returns a Config with the default window bounds.
func DefaultConfig() Config {
	return Config{
		MaxRequests: 100,
		Window:      time.Minute,
		Message:     "Too many requests, please try again later.",
		FailOpen:    true,
	}
}

// Result is the outcome of one admission check.
type Result struct {
	Allowed   bool
	Limit     int
	Remaining int
	ResetAt   time.Time
	Message   string
}

// RetryAfter returns the whole seconds a rejected caller should wait before
// retrying, rounded up. Zero when the window has already reset.
func (r *Result) RetryAfter() int {
	until := time.Until(r.ResetAt)
	if until <= 0 {
		return 0
	}
	return int((until + time.Second - 1) / time.Second)
}

// Limiter admits or rejects requests keyed by (identity, resource) using
// fixed-window counting over a shared MemoryStore.
type Limiter struct {
	store  *MemoryStore
	cfg    Config
	logger *slog.Logger
}

// Option configures a Limiter.
type Option func(*Limiter)

// WithLogger sets the logger for internal operations.
func WithLogger(log *slog.Logger) Option {
	return func(l *Limiter) {
		if log != nil {
			l.logger = log
		}
	}
}

// New creates a Limiter over the given store.
func New(store *MemoryStore, cfg Config, opts ...Option) (*Limiter, error) {
	if cfg.MaxRequests <= 0 {
		return nil, fmt.Errorf("%w: max requests must be > 0, got %d", ErrInvalidConfig, cfg.MaxRequests)
	}
	if cfg.Window <= 0 {
		return nil, fmt.Errorf("%w: window must be > 0, got %v", ErrInvalidConfig, cfg.Window)
	}
	if cfg.Message == "" {
		cfg.Message = DefaultConfig().Message
	}

	l := &Limiter{
		store:  store,
		cfg:    cfg,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}

	for _, opt := range opts {
		opt(l)
	}

	return l, nil
}

// Check decides admission for one request. An indeterminate identity (empty
// or the "unknown" sentinel) bypasses counting entirely and is decided by
// the FailOpen policy; fail-open admissions are logged so they stay visible
// in operations.
func (l *Limiter) Check(identity, resource string) *Result {
	if identity == "" || identity == UnknownIdentity {
		if l.cfg.FailOpen {
			l.logger.Warn("rate limit bypassed for indeterminate client identity",
				slog.String("resource", resource))
			return &Result{
				Allowed:   true,
				Limit:     l.cfg.MaxRequests,
				Remaining: l.cfg.MaxRequests,
			}
		}
		return &Result{
			Allowed: false,
			Limit:   l.cfg.MaxRequests,
			ResetAt: time.Now().Add(l.cfg.Window),
			Message: l.cfg.Message,
		}
	}

	key := identity + ":" + resource

	if l.cfg.SkipSuccessfulRequests {
		return l.peek(key)
	}

	allowed, count, resetAt := l.store.Take(key, l.cfg.MaxRequests, l.cfg.Window)
	return l.result(allowed, count, resetAt)
}

// Record counts one request after the fact. Only meaningful in
// SkipSuccessfulRequests mode, where the caller signals which requests
// consume budget.
func (l *Limiter) Record(identity, resource string) {
	if identity == "" || identity == UnknownIdentity {
		return
	}
	l.store.Incr(identity+":"+resource, l.cfg.Window)
}

// Reset clears the window for (identity, resource). Administrative override.
func (l *Limiter) Reset(identity, resource string) {
	l.store.Reset(identity + ":" + resource)
}

// peek inspects the live window without counting.
func (l *Limiter) peek(key string) *Result {
	count, resetAt, ok := l.store.Peek(key)
	if !ok {
		return &Result{
			Allowed:   true,
			Limit:     l.cfg.MaxRequests,
			Remaining: l.cfg.MaxRequests,
		}
	}
	return l.result(count < l.cfg.MaxRequests, count, resetAt)
}

func (l *Limiter) result(allowed bool, count int, resetAt time.Time) *Result {
	remaining := l.cfg.MaxRequests - count
	if remaining < 0 {
		remaining = 0
	}

	r := &Result{
		Allowed:   allowed,
		Limit:     l.cfg.MaxRequests,
		Remaining: remaining,
		ResetAt:   resetAt,
	}
	if !allowed {
		r.Message = l.cfg.Message
	}
	return r
}
