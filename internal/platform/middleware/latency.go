package middleware

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"pulse/internal/platform/metrics"
)

// Latency records request duration against the route pattern (not the raw
// path, to keep label cardinality bounded).
func Latency(m *metrics.HTTP) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			next.ServeHTTP(w, r)

			pattern := r.URL.Path
			if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
				pattern = rctx.RoutePattern()
			}
			m.Observe(r.Method, pattern, time.Since(start).Seconds())
		})
	}
}
