package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/playsquare/authkit/core/csrf"
	"github.com/playsquare/authkit/middleware"
)

func newCSRFStore(t *testing.T) *csrf.Store {
	t.Helper()

	store, err := csrf.New(csrf.Config{
		Secret:      "0123456789abcdef0123456789abcdef",
		TTL:         time.Hour,
		Environment: "test",
	})
	require.NoError(t, err)
	return store
}

// csrfChain builds Session+CSRF around okHandler with a session resolvable
// under the given ID.
func csrfChain(t *testing.T, sessionID string, store *csrf.Store) http.Handler {
	t.Helper()

	sessions := &mockSessionStore{}
	sessions.On("ValidateSession", mock.Anything, sessionID).Return(authenticatedSession(sessionID), nil)

	return middleware.Chain(okHandler(),
		middleware.Session(newSessionManager(sessions)),
		middleware.CSRF(store),
	)
}

func TestCSRFMiddleware(t *testing.T) {
	t.Parallel()

	t.Run("safe methods are exempt", func(t *testing.T) {
		t.Parallel()

		handler := middleware.CSRF(newCSRFStore(t))(okHandler())

		for _, method := range []string{"GET", "HEAD", "OPTIONS"} {
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, httptest.NewRequest(method, "/", nil))
			assert.Equal(t, http.StatusOK, w.Code, method)
		}
	})

	t.Run("accepts a valid header token", func(t *testing.T) {
		t.Parallel()

		store := newCSRFStore(t)
		token, err := store.Generate("s1")
		require.NoError(t, err)

		handler := csrfChain(t, "s1", store)

		r := httptest.NewRequest("POST", "/tickets", nil)
		r.AddCookie(&http.Cookie{Name: middleware.DefaultSessionCookie, Value: "s1"})
		r.Header.Set(middleware.CSRFHeader, token)
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, r)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("accepts a valid form field token", func(t *testing.T) {
		t.Parallel()

		store := newCSRFStore(t)
		token, err := store.Generate("s1")
		require.NoError(t, err)

		handler := csrfChain(t, "s1", store)

		form := url.Values{middleware.CSRFField: {token}}
		r := httptest.NewRequest("POST", "/tickets", strings.NewReader(form.Encode()))
		r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		r.AddCookie(&http.Cookie{Name: middleware.DefaultSessionCookie, Value: "s1"})
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, r)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("rejects a missing token", func(t *testing.T) {
		t.Parallel()

		handler := csrfChain(t, "s1", newCSRFStore(t))

		r := httptest.NewRequest("POST", "/tickets", nil)
		r.AddCookie(&http.Cookie{Name: middleware.DefaultSessionCookie, Value: "s1"})
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, r)

		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Contains(t, w.Body.String(), "invalid or missing csrf token")
	})

	t.Run("rejects a token bound to another session", func(t *testing.T) {
		t.Parallel()

		store := newCSRFStore(t)
		token, err := store.Generate("other")
		require.NoError(t, err)

		handler := csrfChain(t, "s1", store)

		r := httptest.NewRequest("POST", "/tickets", nil)
		r.AddCookie(&http.Cookie{Name: middleware.DefaultSessionCookie, Value: "s1"})
		r.Header.Set(middleware.CSRFHeader, token)
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, r)

		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("rejects without a session", func(t *testing.T) {
		t.Parallel()

		store := newCSRFStore(t)
		token, err := store.Generate("s1")
		require.NoError(t, err)

		handler := middleware.CSRF(store)(okHandler())

		r := httptest.NewRequest("POST", "/tickets", nil)
		r.Header.Set(middleware.CSRFHeader, token)
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, r)

		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("ignores form field on non-form content types", func(t *testing.T) {
		t.Parallel()

		store := newCSRFStore(t)
		token, err := store.Generate("s1")
		require.NoError(t, err)

		handler := csrfChain(t, "s1", store)

		body := url.Values{middleware.CSRFField: {token}}.Encode()
		r := httptest.NewRequest("POST", "/tickets", strings.NewReader(body))
		r.Header.Set("Content-Type", "application/json")
		r.AddCookie(&http.Cookie{Name: middleware.DefaultSessionCookie, Value: "s1"})
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, r)

		assert.Equal(t, http.StatusForbidden, w.Code)
	})
}
