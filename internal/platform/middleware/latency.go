package middleware

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"kyc-intake/internal/platform/metrics"
)

// Latency records request duration by chi route pattern, so path parameters
// do not explode label cardinality.
func Latency(m *metrics.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := record(w)
			next.ServeHTTP(rec, r)

			route := r.URL.Path
			if rc := chi.RouteContext(r.Context()); rc != nil {
				if pattern := rc.RoutePattern(); pattern != "" {
					route = pattern
				}
			}
			m.ObserveHTTP(route, r.Method, rec.status, time.Since(start))
		})
	}
}
