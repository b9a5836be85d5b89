package middleware_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/playsquare/authkit/core/session"
	"github.com/playsquare/authkit/middleware"
)

// mockSessionStore implements session.Store for testing.
type mockSessionStore struct {
	mock.Mock
}

func (m *mockSessionStore) ValidateSession(ctx context.Context, id string) (*session.Session, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*session.Session), args.Error(1)
}

func (m *mockSessionStore) CreateSession(ctx context.Context, userID uuid.UUID) (string, error) {
	args := m.Called(ctx, userID)
	return args.String(0), args.Error(1)
}

func (m *mockSessionStore) DestroySession(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockSessionStore) DeleteExpired(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func authenticatedSession(id string) *session.Session {
	return &session.Session{
		ID:        id,
		UserID:    uuid.New(),
		Username:  "player_one",
		RoleID:    uuid.New(),
		CreatedAt: time.Now(),
		ExpiresAt: time.Now().Add(time.Hour),
	}
}

func newSessionManager(store session.Store) *session.Manager {
	return session.NewManager(store, session.NewCache())
}

func TestSessionMiddleware(t *testing.T) {
	t.Parallel()

	t.Run("stores resolved session in context", func(t *testing.T) {
		t.Parallel()

		store := &mockSessionStore{}
		store.On("ValidateSession", mock.Anything, "s1").Return(authenticatedSession("s1"), nil)

		var got session.Session
		var ok bool
		inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got, ok = middleware.SessionFromContext(r.Context())
			w.WriteHeader(http.StatusOK)
		})

		handler := middleware.Session(newSessionManager(store))(inner)

		r := httptest.NewRequest("GET", "/", nil)
		r.AddCookie(&http.Cookie{Name: middleware.DefaultSessionCookie, Value: "s1"})
		handler.ServeHTTP(httptest.NewRecorder(), r)

		require.True(t, ok)
		assert.Equal(t, "s1", got.ID)
		assert.Equal(t, "player_one", got.Username)
	})

	t.Run("passes through without cookie", func(t *testing.T) {
		t.Parallel()

		store := &mockSessionStore{}
		handler := middleware.Session(newSessionManager(store))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, ok := middleware.SessionFromContext(r.Context())
			assert.False(t, ok)
			w.WriteHeader(http.StatusOK)
		}))

		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest("GET", "/", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		store.AssertNotCalled(t, "ValidateSession")
	})

	t.Run("passes through unauthenticated on unresolvable session", func(t *testing.T) {
		t.Parallel()

		store := &mockSessionStore{}
		store.On("ValidateSession", mock.Anything, "gone").Return(nil, session.ErrNotFound)

		handler := middleware.Session(newSessionManager(store))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, ok := middleware.SessionFromContext(r.Context())
			assert.False(t, ok)
			w.WriteHeader(http.StatusOK)
		}))

		r := httptest.NewRequest("GET", "/", nil)
		r.AddCookie(&http.Cookie{Name: middleware.DefaultSessionCookie, Value: "gone"})
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, r)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("honors custom cookie name", func(t *testing.T) {
		t.Parallel()

		store := &mockSessionStore{}
		store.On("ValidateSession", mock.Anything, "s1").Return(authenticatedSession("s1"), nil)

		handler := middleware.SessionWithConfig(newSessionManager(store), middleware.SessionConfig{
			CookieName: "sid",
		})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, ok := middleware.SessionFromContext(r.Context())
			assert.True(t, ok)
			w.WriteHeader(http.StatusOK)
		}))

		r := httptest.NewRequest("GET", "/", nil)
		r.AddCookie(&http.Cookie{Name: "sid", Value: "s1"})
		handler.ServeHTTP(httptest.NewRecorder(), r)
	})
}

func TestRequireAuth(t *testing.T) {
	t.Parallel()

	t.Run("rejects anonymous requests with 401", func(t *testing.T) {
		t.Parallel()

		handler := middleware.RequireAuth()(okHandler())

		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest("GET", "/", nil))

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("admits authenticated sessions", func(t *testing.T) {
		t.Parallel()

		store := &mockSessionStore{}
		store.On("ValidateSession", mock.Anything, "s1").Return(authenticatedSession("s1"), nil)

		handler := middleware.Chain(okHandler(),
			middleware.Session(newSessionManager(store)),
			middleware.RequireAuth(),
		)

		r := httptest.NewRequest("GET", "/", nil)
		r.AddCookie(&http.Cookie{Name: middleware.DefaultSessionCookie, Value: "s1"})
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, r)

		assert.Equal(t, http.StatusOK, w.Code)
	})
}
