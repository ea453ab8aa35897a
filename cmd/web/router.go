package main

import (
	"net/http"
	"path/filepath"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	mw "waveify.dev/web/internal/middleware"
)

func newRouter(a *app) http.Handler {
	timeout := a.cfg.Server.RequestTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	// If deployed behind a trusted reverse proxy/load balancer, RealIP will use
	// X-Forwarded-For to determine the client IP. Ensure only trusted proxies
	// can set these headers in production environments.
	r.Use(middleware.RealIP)
	r.Use(mw.Logger(a.logger))
	r.Use(mw.Recoverer)
	r.Use(middleware.Compress(5))
	r.Use(middleware.Timeout(timeout))
	r.Use(mw.PagePath)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	assets := http.StripPrefix("/assets", mw.AssetsWithCache(filepath.Join(publicDir, "assets"), devMode))
	r.Handle("/assets/*", assets)

	r.Get("/", a.homeHandler)
	r.Get("/fragments/{name}", a.fragmentHandler)
	r.Get("/docs", a.docsIndexHandler)
	r.Get("/docs/*", a.docsHandler)
	r.Get("/performance", a.performanceHandler)

	r.Route("/api/telemetry", func(r chi.Router) {
		r.Post("/", a.trackHandler)
		r.Get("/", a.summaryHandler)
		r.Delete("/", a.clearHandler)
	})

	r.NotFound(a.notFoundHandler)
	return r
}
