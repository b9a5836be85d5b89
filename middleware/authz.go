package middleware

import (
	"net/http"

	"github.com/playsquare/authkit/core/authz"
)

// RequirePermission rejects requests whose session lacks every one of the
// given permissions. Sessions carrying an embedded permission set are
// answered from the record itself; otherwise the user's grant is resolved
// through the permission cache. Must run after Session in the chain.
func RequirePermission(cache *authz.Cache, permissions ...string) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess, ok := SessionFromContext(r.Context())
			if !ok || !sess.IsAuthenticated() {
				writeJSON(w, http.StatusUnauthorized, map[string]string{
					"error": "authentication required",
				})
				return
			}

			grant := authz.Grant{RoleID: sess.RoleID, Permissions: sess.Permissions}
			if !sess.HasEmbeddedPermissions() {
				grant, ok = cache.Get(r.Context(), sess.UserID)
				if !ok {
					writeJSON(w, http.StatusForbidden, map[string]string{
						"error": "insufficient permissions",
					})
					return
				}
			}

			if !grant.HasAll(permissions...) {
				writeJSON(w, http.StatusForbidden, map[string]string{
					"error": "insufficient permissions",
				})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RequireAdmin rejects requests whose session is not flagged as an
// administrator. Must run after Session in the chain.
func RequireAdmin() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess, ok := SessionFromContext(r.Context())
			if !ok || !sess.IsAuthenticated() {
				writeJSON(w, http.StatusUnauthorized, map[string]string{
					"error": "authentication required",
				})
				return
			}
			if !sess.IsAdmin {
				writeJSON(w, http.StatusForbidden, map[string]string{
					"error": "insufficient permissions",
				})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
