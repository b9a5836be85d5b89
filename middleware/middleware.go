package middleware

import (
	"encoding/json"
	"net/http"
)

// Middleware is a standard net/http middleware.
type Middleware func(http.Handler) http.Handler

// Chain wraps h with the given middleware, outermost first, so the listed
// order matches the order requests flow through them.
func Chain(h http.Handler, mws ...Middleware) http.Handler {
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return h
}

// writeJSON renders a JSON response body with the given status. Encoding
// errors are ignored: headers are already written and the payloads here are
// static maps that cannot fail to marshal.
func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
