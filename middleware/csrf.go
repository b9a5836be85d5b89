package middleware

import (
	"net/http"
	"strings"

	"github.com/playsquare/authkit/core/csrf"
)

const (
	// CSRFHeader is the request header carrying the anti-forgery token.
	CSRFHeader = "X-CSRF-Token"
	// CSRFField is the form field fallback for HTML form submissions.
	CSRFField = "csrf_token"
)

// safeMethods are exempt from anti-forgery validation by policy: they must
// not change state, so a forged cross-site request gains nothing.
func isSafeMethod(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return true
	}
	return false
}

// CSRF validates the anti-forgery token on state-changing requests
// (POST/PUT/DELETE/PATCH) against the context session. The token is read
// from the X-CSRF-Token header, falling back to the csrf_token form field
// for form submissions.
//
// Every failure mode produces the same generic 403: callers learn nothing
// about whether the token was missing, malformed, expired, or bound to a
// different session. Must run after Session in the chain.
func CSRF(store *csrf.Store) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if isSafeMethod(r.Method) {
				next.ServeHTTP(w, r)
				return
			}

			sess, ok := SessionFromContext(r.Context())
			if !ok || !store.Validate(extractToken(r), sess.ID) {
				writeJSON(w, http.StatusForbidden, map[string]string{
					"error": "invalid or missing csrf token",
				})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// extractToken pulls the token from the header or, for form posts, the body.
func extractToken(r *http.Request) string {
	if token := r.Header.Get(CSRFHeader); token != "" {
		return token
	}

	contentType := r.Header.Get("Content-Type")
	if strings.HasPrefix(contentType, "application/x-www-form-urlencoded") ||
		strings.HasPrefix(contentType, "multipart/form-data") {
		return r.PostFormValue(CSRFField)
	}

	return ""
}
