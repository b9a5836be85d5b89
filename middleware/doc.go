// Package middleware adapts the authkit security components to standard
// net/http handler chains.
//
// The intended chain for a state-changing route mirrors the request flow
// through the fast-path: rate limiting admits or rejects, session resolution
// establishes identity, anti-forgery validation checks the token against
// that identity, and authorization gates the handler:
//
//	handler = middleware.Chain(protectedHandler,
//		middleware.RateLimit(limiter),
//		middleware.Session(sessions),
//		middleware.CSRF(csrfStore),
//		middleware.RequirePermission(permissions, "tickets.manage"),
//	)
//
// Rejections are produced by the middleware themselves: handlers never see a
// rate-limited, forged, or unauthorized request, and rejection bodies are
// deliberately generic so no failure cause leaks to the client.
package middleware
