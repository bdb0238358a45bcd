package middleware

import (
	"net/http"
	"time"

	"github.com/Harshitk-cp/orgdb/internal/metrics"
	"github.com/go-chi/chi/v5"
)

// Metrics returns middleware that records request counts and latency.
// Requests are labelled by route pattern so path parameters such as job
// ids do not create a series each.
func Metrics(m *metrics.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rw := newResponseWriter(w)
			next.ServeHTTP(rw, r)

			m.RecordHTTPRequest(r.Method, routePattern(r), rw.statusCode, time.Since(start))
		})
	}
}

func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if pattern := rctx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return "unmatched"
}
