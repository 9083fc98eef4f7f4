package api

import (
	"net/http"
	"strconv"
	"time"

	"sentiment-edge/observability"

	"github.com/go-chi/chi/v5"
)

// responseWriter captures the status code the handler wrote.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func newResponseWriter(w http.ResponseWriter) *responseWriter {
	// Handlers that never call WriteHeader implicitly send 200.
	return &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// MetricsMiddleware records method, route, status, and latency for every
// request. The chi route pattern is used instead of the raw path so that
// run ids in the URL don't explode label cardinality.
func MetricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		wrapped := newResponseWriter(w)
		next.ServeHTTP(wrapped, r)

		route := chi.RouteContext(r.Context()).RoutePattern()
		if route == "" {
			route = r.URL.Path
		}

		observability.GetMetrics().RecordHTTPRequest(
			r.Method, route, strconv.Itoa(wrapped.statusCode), time.Since(start))
	})
}
