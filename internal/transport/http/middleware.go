package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/cimillas/boxoffice/internal/logging"
	"github.com/go-chi/chi/v5"
	"github.com/lithammer/shortuuid/v3"
	"github.com/sirupsen/logrus"
)

const correlationIDHeader = "X-Correlation-ID"

// CorrelationID reuses the caller's X-Correlation-ID or mints one, echoes it
// back and puts it, with a logger entry carrying it, in the request context.
func CorrelationID(logger *logrus.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get(correlationIDHeader)
			if id == "" {
				id = shortuuid.New()
			}
			w.Header().Set(correlationIDHeader, id)

			ctx := logging.ContextWithCorrelationID(r.Context(), id)
			ctx = logging.ToContext(ctx, logger.WithField("correlation_id", id))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequestLogger logs basic request details and latency.
func RequestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		logging.FromContext(r.Context()).WithFields(logrus.Fields{
			"method":   r.Method,
			"path":     r.URL.Path,
			"status":   rec.status,
			"duration": time.Since(start).String(),
		}).Info("request")
	})
}

type RequestObserver interface {
	ObserveRequest(method, route, status string, seconds float64)
}

// RequestMetrics records request latency labelled by the matched route
// pattern, so path parameters do not explode label cardinality.
func RequestMetrics(observer RequestObserver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)

			route := "unmatched"
			if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
				route = rctx.RoutePattern()
			}
			observer.ObserveRequest(r.Method, route, strconv.Itoa(rec.status), time.Since(start).Seconds())
		})
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func (r *statusRecorder) WriteHeader(code int) {
	if !r.wroteHeader {
		r.status = code
		r.wroteHeader = true
	}
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	r.wroteHeader = true
	return r.ResponseWriter.Write(b)
}
