// Package ratelimiter provides fixed-window request counting keyed by
// (client identity, resource), guarding sensitive operations such as login,
// registration, and password reset.
//
// # Fixed-Window Algorithm
//
// Each key owns a counter and a reset timestamp. The first request after the
// reset time starts a fresh window; within a window the count only
// increases. This is deliberately not a sliding window or token bucket: the
// window resets wholesale, which is simple, cheap, and sufficient for
// abuse-prevention limits.
//
// # Usage
//
//	store := ratelimiter.NewMemoryStore()
//	limiter, err := ratelimiter.New(store, ratelimiter.Config{
//		MaxRequests: 5,
//		Window:      time.Minute,
//	})
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	// Background cleanup of stale windows, typically via errgroup:
//	g.Go(store.Run(ctx))
//
//	result := limiter.Check(clientIP, "auth:login")
//	if !result.Allowed {
//		// reject with result.Message and result.RetryAfter() seconds
//	}
//
// # Indeterminate Identity
//
// A request whose client identity cannot be determined (empty or the
// "unknown" sentinel) is never counted. Whether it is admitted is the
// FailOpen policy: the default favors availability and admits with a
// warning log, but deployments that prefer strictness can fail closed.
//
// # Deferred Counting
//
// With SkipSuccessfulRequests set, Check only inspects the window and the
// caller invokes Record for requests that should consume budget. The usual
// pattern counts only failed logins, so legitimate successful traffic never
// locks an account's IP out.
package ratelimiter
