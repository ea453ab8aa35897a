package main

import (
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"waveify.dev/web/internal/config"
	"waveify.dev/web/internal/docs"
	"waveify.dev/web/internal/handlers"
	"waveify.dev/web/internal/importer"
	"waveify.dev/web/internal/observability"
	"waveify.dev/web/internal/telemetry"
)

// app holds the wired components shared by every command.
type app struct {
	cfg       config.Config
	logger    *zap.Logger
	policy    importer.Policy
	index     *docs.Index
	resolver  *docs.Resolver
	buffer    *telemetry.Buffer
	metrics   *prometheus.Registry
	analytics handlers.Analytics

	closers []func() error
}

// loadConfig reads configuration and applies command-line overrides.
func loadConfig(flags *rootFlags) (config.Config, error) {
	cfg, err := config.Load(config.WithEnvFile(flags.envFile))
	if err != nil {
		return config.Config{}, err
	}
	if flags.templates != "" {
		cfg.Server.TemplatesDir = flags.templates
	}
	if flags.public != "" {
		cfg.Server.PublicDir = flags.public
	}
	return cfg, nil
}

func newApp(cfg config.Config, logger *zap.Logger) (*app, error) {
	logger = observability.OrNop(logger)
	a := &app{
		cfg:       cfg,
		logger:    logger,
		index:     docs.DefaultIndex,
		metrics:   prometheus.NewRegistry(),
		analytics: handlers.AnalyticsFromConfig(cfg.Analytics),
	}
	a.metrics.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	a.policy = importer.Policy{
		Retries:        cfg.Importer.Retries,
		Delay:          cfg.Importer.Delay,
		AttemptTimeout: cfg.Importer.AttemptTimeout,
		Notify: func(attempt int, err error, next time.Duration) {
			logger.Warn("importer: attempt failed, retrying",
				zap.Int("attempt", attempt),
				zap.Duration("next", next),
				zap.Error(err),
			)
		},
	}

	store, err := a.openStore()
	if err != nil {
		return nil, err
	}
	sink, err := a.sinks()
	if err != nil {
		_ = a.Close()
		return nil, err
	}
	a.buffer = telemetry.NewBuffer(store, telemetry.WithSink(sink), telemetry.WithLogger(logger))

	registry, err := docs.NewDefaultRegistry(a.policy)
	if err != nil {
		_ = a.Close()
		return nil, fmt.Errorf("build docs registry: %w", err)
	}
	if err := docs.Validate(registry, a.index); err != nil {
		if cfg.Docs.Strict {
			_ = a.Close()
			return nil, err
		}
		logger.Warn("docs: navigation diverges from registry", zap.Error(err))
	}
	a.resolver = docs.NewResolver(registry,
		docs.WithLogger(logger),
		docs.WithTelemetry(a.buffer),
		docs.WithCacheTTL(cfg.Docs.CacheTTL),
	)
	return a, nil
}

func (a *app) openStore() (telemetry.Store, error) {
	switch a.cfg.Telemetry.Backend {
	case config.BackendFile:
		return telemetry.NewFileStore(a.cfg.Telemetry.Path)
	case config.BackendSQLite:
		path := a.cfg.Telemetry.Path
		if filepath.Ext(path) == "" {
			path = filepath.Join(path, "telemetry.db")
		}
		if err := ensureDir(filepath.Dir(path)); err != nil {
			return nil, err
		}
		store, err := telemetry.OpenSQLite(path)
		if err != nil {
			return nil, fmt.Errorf("open telemetry store: %w", err)
		}
		a.closers = append(a.closers, store.Close)
		return store, nil
	default:
		return telemetry.NewMemoryStore(), nil
	}
}

func (a *app) sinks() (telemetry.Sink, error) {
	otelSink, err := telemetry.NewOTelSink(nil)
	if err != nil {
		return nil, err
	}
	sinks := telemetry.MultiSink{telemetry.NewPrometheusSink(a.metrics), otelSink}
	if httpSink := telemetry.NewHTTPSink(a.cfg.Analytics.Endpoint, a.cfg.Analytics.Timeout); httpSink != nil {
		if id := a.cfg.Analytics.GA4MeasurementID; id != "" {
			httpSink.WithHeader("X-Measurement-Id", id)
		}
		// Posting to the collector happens on a worker so requests never wait on it.
		async := telemetry.NewAsyncSink(httpSink, 0, a.logger)
		a.closers = append(a.closers, async.Close)
		sinks = append(sinks, async)
	}
	return sinks, nil
}

// Close releases stores and watchers in reverse order of acquisition.
func (a *app) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
