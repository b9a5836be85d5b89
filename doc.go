// Package authkit is the in-process authentication and authorization
// fast-path for a web backend: a TTL/LRU session cache in front of the
// persistent session store, a TTL permission cache in front of the role
// store, an HMAC-signed anti-forgery token store, and a fixed-window rate
// limiter.
//
// Each component lives in its own package (core/session, core/authz,
// core/csrf, pkg/ratelimiter) and is usable on its own; this package wires
// them into one unit with a shared lifecycle and the cross-component
// invalidation rules:
//
//	cfg := authkit.Config{ /* or config.Load(&cfg) */ }
//	kit, err := authkit.New(sessionStore, roleStore, cfg,
//		authkit.WithLogger(log))
//	if err != nil {
//		log.Fatal(err) // bad anti-forgery secret dies here, at startup
//	}
//
//	g, ctx := errgroup.WithContext(ctx)
//	g.Go(func() error { return kit.Run(ctx) })
//
// HTTP integration lives in the middleware package:
//
//	handler := middleware.Chain(mux,
//		middleware.RateLimit(kit.Limiter()),
//		middleware.Session(kit.Sessions()),
//		middleware.CSRF(kit.CSRF()),
//	)
//
// The failure posture is deliberately asymmetric: session and anti-forgery
// checks fail closed (an unverifiable request is unauthenticated or
// forbidden), while the rate limiter's treatment of requests with no
// determinable client identity is a configuration choice (FailOpen).
package authkit
