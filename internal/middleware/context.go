package middleware

import (
	"net/http"

	"waveify.dev/web/internal/telemetry"
)

// PagePath records the request path as the origin of metrics tracked while serving it.
func PagePath(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := telemetry.WithPath(r.Context(), r.URL.Path)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
