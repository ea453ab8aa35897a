package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"waveify.dev/web/internal/devreload"
	"waveify.dev/web/internal/observability"
)

func newServeCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:     "serve",
		Aliases: []string{"s"},
		Short:   "Start the HTTP server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), flags)
		},
	}
}

func runServe(parent context.Context, flags *rootFlags) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := loadConfig(flags)
	if err != nil {
		return err
	}
	logger, err := observability.NewLogger()
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	templatesDir = cfg.Server.TemplatesDir
	publicDir = cfg.Server.PublicDir
	devMode = cfg.Server.DevMode

	a, err := newApp(cfg, logger)
	if err != nil {
		logger.Error("startup failed", zap.Error(err))
		return err
	}
	defer func() { _ = a.Close() }()

	if devMode {
		w, err := devreload.Watch(ctx, logger, templatesDir)
		if err != nil {
			logger.Warn("template reload disabled", zap.Error(err))
		} else {
			reloader = w
			a.closers = append(a.closers, w.Close)
		}
	}
	// Parse once up front so a broken template fails startup instead of the first request.
	if _, err := templates(); err != nil {
		logger.Error("parse templates", zap.Error(err))
		return err
	}

	addr := flags.addr
	if addr == "" {
		addr = cfg.Server.Addr()
	}
	srv := &http.Server{
		Addr:              addr,
		Handler:           newRouter(a),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
	}

	if cfg.Server.MetricsBind != "" {
		go metricsServer(ctx, a, cfg.Server.MetricsBind)
	}

	go func() {
		<-ctx.Done()
		c, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(c); err != nil {
			logger.Error("shutdown", zap.Error(err))
		}
	}()

	logger.Info("web listening", zap.String("addr", addr), zap.Bool("dev_mode", devMode))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("listen", zap.Error(err))
		return err
	}
	return nil
}

// metricsServer exposes Prometheus metrics on a separate listener.
func metricsServer(ctx context.Context, a *app, bind string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(a.metrics, promhttp.HandlerOpts{}))

	srv := &http.Server{Addr: bind, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		<-ctx.Done()
		c, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(c); err != nil {
			a.logger.Error("metrics shutdown", zap.Error(err))
		}
	}()

	a.logger.Info("metrics listening", zap.String("addr", bind))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		a.logger.Error("metrics listen", zap.Error(err))
	}
}
