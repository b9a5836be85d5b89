package middleware

import (
	"net/http"
	"strconv"

	"github.com/playsquare/authkit/pkg/clientip"
	"github.com/playsquare/authkit/pkg/ratelimiter"
)

// RateLimitConfig configures the rate limiting middleware.
type RateLimitConfig struct {
	// IdentityFunc extracts the client identity (default: clientip.GetIP).
	IdentityFunc func(r *http.Request) string
	// ResourceFunc names the guarded resource for counter keying
	// (default: method and path, so POST and GET on one route count apart).
	ResourceFunc func(r *http.Request) string
	// Skip defines a function to skip the middleware for specific requests.
	Skip func(r *http.Request) bool
}

// RateLimit admits or rejects requests through the limiter. The middleware
// itself produces the rejection — HTTP 429 with a JSON {error, retryAfter}
// body and Retry-After / X-RateLimit-* headers — so handlers behind it never
// see a rejected request.
func RateLimit(limiter *ratelimiter.Limiter) Middleware {
	return RateLimitWithConfig(limiter, RateLimitConfig{})
}

// RateLimitWithConfig is RateLimit with custom configuration.
// Panics if no limiter is provided.
func RateLimitWithConfig(limiter *ratelimiter.Limiter, cfg RateLimitConfig) Middleware {
	if limiter == nil {
		panic("ratelimit middleware: limiter is required")
	}

	if cfg.IdentityFunc == nil {
		cfg.IdentityFunc = clientip.GetIP
	}
	if cfg.ResourceFunc == nil {
		cfg.ResourceFunc = func(r *http.Request) string {
			return r.Method + " " + r.URL.Path
		}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if cfg.Skip != nil && cfg.Skip(r) {
				next.ServeHTTP(w, r)
				return
			}

			result := limiter.Check(cfg.IdentityFunc(r), cfg.ResourceFunc(r))

			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(result.Limit))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
			if !result.ResetAt.IsZero() {
				w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(result.ResetAt.Unix(), 10))
			}

			if !result.Allowed {
				retryAfter := result.RetryAfter()
				w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
				writeJSON(w, http.StatusTooManyRequests, map[string]any{
					"error":      result.Message,
					"retryAfter": retryAfter,
				})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
