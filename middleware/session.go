package middleware

import (
	"context"
	"net/http"

	"github.com/playsquare/authkit/core/session"
)

// sessionContextKey is used as a key for storing the resolved session in the
// request context.
type sessionContextKey struct{}

// DefaultSessionCookie is the cookie carrying the session identifier.
const DefaultSessionCookie = "session_id"

// SessionConfig configures the session resolution middleware.
type SessionConfig struct {
	// CookieName overrides the session cookie name (default: "session_id").
	CookieName string
}

// Session resolves the request's session through the cache-aside manager and
// stores it in the request context. Requests without a resolvable session
// pass through unauthenticated; rejecting them is left to RequireAuth or the
// handler, so public and protected routes can share the chain.
func Session(manager *session.Manager) Middleware {
	return SessionWithConfig(manager, SessionConfig{})
}

// SessionWithConfig is Session with custom configuration.
func SessionWithConfig(manager *session.Manager, cfg SessionConfig) Middleware {
	if cfg.CookieName == "" {
		cfg.CookieName = DefaultSessionCookie
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(cfg.CookieName)
			if err != nil || cookie.Value == "" {
				next.ServeHTTP(w, r)
				return
			}

			sess, ok := manager.Resolve(r.Context(), cookie.Value)
			if !ok {
				next.ServeHTTP(w, r)
				return
			}

			ctx := context.WithValue(r.Context(), sessionContextKey{}, sess)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// SessionFromContext retrieves the resolved session from the request
// context. The second return value reports whether one was present.
func SessionFromContext(ctx context.Context) (session.Session, bool) {
	sess, ok := ctx.Value(sessionContextKey{}).(session.Session)
	return sess, ok
}

// SetSessionCookie writes the session cookie after login. HttpOnly and
// SameSite=Lax always; Secure when the request arrived over TLS.
func SetSessionCookie(w http.ResponseWriter, r *http.Request, name, sessionID string, maxAge int) {
	if name == "" {
		name = DefaultSessionCookie
	}
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    sessionID,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearSessionCookie expires the session cookie after logout.
func ClearSessionCookie(w http.ResponseWriter, name string) {
	if name == "" {
		name = DefaultSessionCookie
	}
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// RequireAuth rejects requests without an authenticated session with a
// generic 401. Must run after Session in the chain.
func RequireAuth() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess, ok := SessionFromContext(r.Context())
			if !ok || !sess.IsAuthenticated() {
				writeJSON(w, http.StatusUnauthorized, map[string]string{
					"error": "authentication required",
				})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
