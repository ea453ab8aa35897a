package middleware

import (
	"net/http"
	"runtime/debug"

	"go.uber.org/zap"

	"waveify.dev/web/internal/httpx"
	"waveify.dev/web/internal/observability"
)

// Recoverer captures panics, logs the stack trace and returns a JSON error response.
func Recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}
			ctx := r.Context()
			observability.FromContext(ctx).Error("panic recovered",
				zap.Any("panic", rec),
				zap.ByteString("stack", debug.Stack()),
			)
			httpx.WriteError(ctx, w, httpx.NewError("internal_server_error", "internal server error", http.StatusInternalServerError))
		}()
		next.ServeHTTP(w, r)
	})
}
