package health

import (
	"context"
	"io"
	"log/slog"
	"net/http"

	"github.com/playsquare/authkit/core/logger"
)

// Liveness reports that the process is running. Always 200 "ALIVE", no
// dependency checks.
func Liveness() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = io.WriteString(w, "ALIVE")
	})
}

// NoContent returns 204 without a body. Minimal overhead for high-frequency
// probes.
func NoContent() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
}

// Readiness verifies every dependency probe. 200 "READY" when all pass, 503
// when any fails. Probes follow the func(context.Context) error signature
// returned by pg.Healthcheck and redis.Healthcheck.
func Readiness(log *slog.Logger, probes ...func(context.Context) error) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		for _, probe := range probes {
			if err := probe(r.Context()); err != nil {
				log.ErrorContext(r.Context(), "readiness check failed", logger.Error(err))
				http.Error(w, "NOT READY", http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = io.WriteString(w, "READY")
	})
}
