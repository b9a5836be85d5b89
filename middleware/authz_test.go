package middleware_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/playsquare/authkit/core/authz"
	"github.com/playsquare/authkit/core/session"
	"github.com/playsquare/authkit/middleware"
)

// mockResolver implements authz.Resolver for testing.
type mockResolver struct {
	mock.Mock
}

func (m *mockResolver) ResolveUserRole(ctx context.Context, userID uuid.UUID) (*authz.Grant, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*authz.Grant), args.Error(1)
}

// permChain builds Session+RequirePermission around okHandler resolving the
// given session record.
func permChain(t *testing.T, sess *session.Session, cache *authz.Cache, permissions ...string) http.Handler {
	t.Helper()

	sessions := &mockSessionStore{}
	sessions.On("ValidateSession", mock.Anything, sess.ID).Return(sess, nil)

	return middleware.Chain(okHandler(),
		middleware.Session(newSessionManager(sessions)),
		middleware.RequirePermission(cache, permissions...),
	)
}

func sendWithSession(handler http.Handler, sessionID string) *httptest.ResponseRecorder {
	r := httptest.NewRequest("POST", "/admin/tickets", nil)
	r.AddCookie(&http.Cookie{Name: middleware.DefaultSessionCookie, Value: sessionID})
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, r)
	return w
}

func TestRequirePermission(t *testing.T) {
	t.Parallel()

	t.Run("rejects anonymous requests with 401", func(t *testing.T) {
		t.Parallel()

		cache := authz.NewCache(&mockResolver{})
		handler := middleware.RequirePermission(cache, "tickets.manage")(okHandler())

		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest("POST", "/admin/tickets", nil))

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("answers from embedded permissions without resolving", func(t *testing.T) {
		t.Parallel()

		resolver := &mockResolver{}
		cache := authz.NewCache(resolver)

		sess := authenticatedSession("s1")
		sess.Permissions = []string{"tickets.manage", "tickets.read"}

		handler := permChain(t, sess, cache, "tickets.manage")

		assert.Equal(t, http.StatusOK, sendWithSession(handler, "s1").Code)
		resolver.AssertNotCalled(t, "ResolveUserRole")
	})

	t.Run("rejects when embedded permissions lack the required one", func(t *testing.T) {
		t.Parallel()

		cache := authz.NewCache(&mockResolver{})

		sess := authenticatedSession("s1")
		sess.Permissions = []string{"tickets.read"}

		handler := permChain(t, sess, cache, "tickets.manage")

		w := sendWithSession(handler, "s1")
		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Contains(t, w.Body.String(), "insufficient permissions")
	})

	t.Run("falls back to the permission cache", func(t *testing.T) {
		t.Parallel()

		sess := authenticatedSession("s1")

		resolver := &mockResolver{}
		resolver.On("ResolveUserRole", mock.Anything, sess.UserID).Return(&authz.Grant{
			RoleID:      sess.RoleID,
			Permissions: []string{"tickets.manage"},
		}, nil)
		cache := authz.NewCache(resolver)

		handler := permChain(t, sess, cache, "tickets.manage")

		assert.Equal(t, http.StatusOK, sendWithSession(handler, "s1").Code)
		resolver.AssertExpectations(t)
	})

	t.Run("rejects when no grant resolves", func(t *testing.T) {
		t.Parallel()

		sess := authenticatedSession("s1")

		resolver := &mockResolver{}
		resolver.On("ResolveUserRole", mock.Anything, sess.UserID).Return(nil, authz.ErrNotFound)
		cache := authz.NewCache(resolver)

		handler := permChain(t, sess, cache, "tickets.manage")

		assert.Equal(t, http.StatusForbidden, sendWithSession(handler, "s1").Code)
	})

	t.Run("requires every listed permission", func(t *testing.T) {
		t.Parallel()

		cache := authz.NewCache(&mockResolver{})

		sess := authenticatedSession("s1")
		sess.Permissions = []string{"tickets.read"}

		handler := permChain(t, sess, cache, "tickets.read", "tickets.manage")

		assert.Equal(t, http.StatusForbidden, sendWithSession(handler, "s1").Code)
	})
}

func TestRequireAdmin(t *testing.T) {
	t.Parallel()

	t.Run("rejects anonymous requests with 401", func(t *testing.T) {
		t.Parallel()

		handler := middleware.RequireAdmin()(okHandler())

		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest("GET", "/admin", nil))

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("rejects non-admin sessions with 403", func(t *testing.T) {
		t.Parallel()

		sess := authenticatedSession("s1")
		sessions := &mockSessionStore{}
		sessions.On("ValidateSession", mock.Anything, "s1").Return(sess, nil)

		handler := middleware.Chain(okHandler(),
			middleware.Session(newSessionManager(sessions)),
			middleware.RequireAdmin(),
		)

		assert.Equal(t, http.StatusForbidden, sendWithSession(handler, "s1").Code)
	})

	t.Run("admits admin sessions", func(t *testing.T) {
		t.Parallel()

		sess := authenticatedSession("s1")
		sess.IsAdmin = true
		sessions := &mockSessionStore{}
		sessions.On("ValidateSession", mock.Anything, "s1").Return(sess, nil)

		handler := middleware.Chain(okHandler(),
			middleware.Session(newSessionManager(sessions)),
			middleware.RequireAdmin(),
		)

		assert.Equal(t, http.StatusOK, sendWithSession(handler, "s1").Code)
	})
}
