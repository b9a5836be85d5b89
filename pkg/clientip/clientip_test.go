package clientip_test

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/playsquare/authkit/pkg/clientip"
)

func TestGetIP(t *testing.T) {
	t.Parallel()

	t.Run("prefers cloudflare header over others", func(t *testing.T) {
		t.Parallel()

		r := httptest.NewRequest("GET", "/", nil)
		r.Header.Set("CF-Connecting-IP", "203.0.113.10")
		r.Header.Set("X-Forwarded-For", "198.51.100.1")
		r.RemoteAddr = "192.0.2.1:1234"

		assert.Equal(t, "203.0.113.10", clientip.GetIP(r))
	})

	t.Run("takes leftmost entry from x-forwarded-for", func(t *testing.T) {
		t.Parallel()

		r := httptest.NewRequest("GET", "/", nil)
		r.Header.Set("X-Forwarded-For", "198.51.100.1, 10.0.0.1, 10.0.0.2")

		assert.Equal(t, "198.51.100.1", clientip.GetIP(r))
	})

	t.Run("falls back to x-real-ip", func(t *testing.T) {
		t.Parallel()

		r := httptest.NewRequest("GET", "/", nil)
		r.Header.Set("X-Real-IP", "198.51.100.7")

		assert.Equal(t, "198.51.100.7", clientip.GetIP(r))
	})

	t.Run("falls back to remote address", func(t *testing.T) {
		t.Parallel()

		r := httptest.NewRequest("GET", "/", nil)
		r.RemoteAddr = "192.0.2.1:50123"

		assert.Equal(t, "192.0.2.1", clientip.GetIP(r))
	})

	t.Run("skips invalid header values", func(t *testing.T) {
		t.Parallel()

		r := httptest.NewRequest("GET", "/", nil)
		r.Header.Set("X-Forwarded-For", "not-an-ip")
		r.RemoteAddr = "192.0.2.1:50123"

		assert.Equal(t, "192.0.2.1", clientip.GetIP(r))
	})

	t.Run("rejects unspecified address", func(t *testing.T) {
		t.Parallel()

		r := httptest.NewRequest("GET", "/", nil)
		r.Header.Set("X-Real-IP", "0.0.0.0")
		r.RemoteAddr = "invalid"

		assert.Equal(t, clientip.Unknown, clientip.GetIP(r))
	})

	t.Run("normalizes ipv6", func(t *testing.T) {
		t.Parallel()

		r := httptest.NewRequest("GET", "/", nil)
		r.Header.Set("X-Real-IP", "2001:0db8:0000:0000:0000:0000:0000:0001")

		assert.Equal(t, "2001:db8::1", clientip.GetIP(r))
	})

	t.Run("returns unknown sentinel when nothing resolves", func(t *testing.T) {
		t.Parallel()

		r := httptest.NewRequest("GET", "/", nil)
		r.RemoteAddr = ""

		assert.Equal(t, clientip.Unknown, clientip.GetIP(r))
	})
}
