package middleware

import (
	"net/http"
	"slices"
	"strings"
)

// CORS opens a route to any origin for the given methods. Preflight requests
// are answered with 200 and an empty body; any other method not listed gets
// a 405 JSON error.
func CORS(methods ...string) func(http.Handler) http.Handler {
	allowed := append(slices.Clone(methods), http.MethodOptions)
	allowHeader := strings.Join(allowed, ", ")

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			h.Set("Access-Control-Allow-Origin", "*")
			h.Set("Access-Control-Allow-Methods", allowHeader)
			h.Set("Access-Control-Allow-Headers", "Content-Type, X-Request-ID")

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusOK)
				return
			}
			if !slices.Contains(methods, r.Method) {
				h.Set("Allow", allowHeader)
				h.Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusMethodNotAllowed)
				_, _ = w.Write([]byte(`{"error":"method_not_allowed","error_description":"Method not allowed"}`))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
