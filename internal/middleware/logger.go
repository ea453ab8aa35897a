package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chiMid "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"waveify.dev/web/internal/observability"
)

// Logger stores a request-scoped logger on the context and emits one structured line per
// request once it completes.
func Logger(base *zap.Logger) func(http.Handler) http.Handler {
	base = observability.OrNop(base)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			logger := base.With(
				zap.String("request_id", chiMid.GetReqID(r.Context())),
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
			)
			if ip := clientIP(r); ip != "" {
				logger = logger.With(zap.String("remote_ip", ip))
			}
			r = r.WithContext(observability.WithLogger(r.Context(), logger))

			rw := NewResponseRecorder(w)
			start := time.Now()
			next.ServeHTTP(rw, r)

			fields := []zap.Field{
				zap.String("route", routePattern(r)),
				zap.Int("status", rw.Status()),
				zap.Duration("latency", time.Since(start)),
				zap.Int64("bytes", rw.BytesWritten()),
			}
			switch {
			case rw.Status() >= http.StatusInternalServerError:
				logger.Error("request completed", fields...)
			case rw.Status() >= http.StatusBadRequest:
				logger.Warn("request completed", fields...)
			default:
				logger.Info("request completed", fields...)
			}
		})
	}
}

func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if pattern := rctx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return r.URL.Path
}

func clientIP(r *http.Request) string {
	// Trust X-Forwarded-For set by the edge proxy (last IP is client)
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		p := strings.Split(xff, ",")
		return strings.TrimSpace(p[len(p)-1])
	}
	if xrip := r.Header.Get("X-Real-IP"); xrip != "" {
		return xrip
	}
	host := r.RemoteAddr
	if i := strings.LastIndex(host, ":"); i != -1 {
		return host[:i]
	}
	return host
}
