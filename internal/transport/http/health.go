package http

import (
	"context"
	"net/http"
	"time"

	"github.com/cimillas/boxoffice/internal/logging"
)

// HealthHandler reports basic liveness for the service.
func HealthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// Pinger is satisfied by *pgxpool.Pool.
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingerFunc adapts clients whose ping has another shape, such as go-redis.
type PingerFunc func(ctx context.Context) error

func (f PingerFunc) Ping(ctx context.Context) error { return f(ctx) }

const readinessTimeout = 2 * time.Second

// ReadyHandler answers 200 only when every dependency responds to a ping.
func ReadyHandler(deps map[string]Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
		defer cancel()

		status := make(map[string]string, len(deps))
		ready := true
		for name, dep := range deps {
			if err := dep.Ping(ctx); err != nil {
				logging.FromContext(ctx).WithError(err).WithField("dependency", name).Warn("readiness check failed")
				status[name] = "unavailable"
				ready = false
				continue
			}
			status[name] = "ok"
		}

		if !ready {
			writeJSON(w, http.StatusServiceUnavailable, status)
			return
		}
		writeJSON(w, http.StatusOK, status)
	}
}
