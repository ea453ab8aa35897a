package config

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

const (
	defaultEnvFile          = ".env"
	defaultPort             = "8080"
	defaultReadTimeout      = 15 * time.Second
	defaultWriteTimeout     = 15 * time.Second
	defaultIdleTimeout      = 60 * time.Second
	defaultRequestTimeout   = 30 * time.Second
	defaultTemplatesDir     = "templates"
	defaultPublicDir        = "public"
	defaultTelemetryBackend = "memory"
	defaultTelemetryPath    = "var/telemetry"
	defaultImportRetries    = 3
	defaultImportDelay      = time.Second
	defaultAnalyticsTimeout = 2 * time.Second
)

// Telemetry store backends.
const (
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendSQLite = "sqlite"
)

// Config captures all runtime configuration organised by concern.
type Config struct {
	Server    ServerConfig
	Docs      DocsConfig
	Importer  ImporterConfig
	Telemetry TelemetryConfig
	Analytics AnalyticsConfig
}

// ServerConfig configures HTTP server parameters.
type ServerConfig struct {
	Port           string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration
	RequestTimeout time.Duration
	TemplatesDir   string
	PublicDir      string
	DevMode        bool
	MetricsBind    string
	BaseURL        string
}

// DocsConfig controls documentation resolution.
type DocsConfig struct {
	// Strict refuses to start when the registry and navigation index diverge.
	Strict   bool
	CacheTTL time.Duration
}

// ImporterConfig controls the retry policy applied to content loads.
type ImporterConfig struct {
	Retries        int
	Delay          time.Duration
	AttemptTimeout time.Duration
}

// TelemetryConfig selects the durable store behind the telemetry buffer.
type TelemetryConfig struct {
	Backend string
	Path    string
}

// AnalyticsConfig holds client instrumentation and forwarding configuration.
type AnalyticsConfig struct {
	GA4MeasurementID string
	Endpoint         string
	Timeout          time.Duration
	Debug            bool
}

// ValidationError is returned when configuration fields are invalid.
type ValidationError struct {
	fields []string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("config validation failed: missing or invalid fields [%s]", strings.Join(e.fields, ", "))
}

// Fields returns a copy of the invalid field list.
func (e *ValidationError) Fields() []string {
	out := make([]string, len(e.fields))
	copy(out, e.fields)
	return out
}

// Option customises Load behaviour.
type Option func(*loaderOptions)

type loaderOptions struct {
	envFile      string
	envMap       map[string]string
	useSystemEnv bool
}

// WithEnvFile overrides the .env file path used for local overrides.
func WithEnvFile(path string) Option {
	return func(o *loaderOptions) {
		o.envFile = path
	}
}

// WithEnvMap injects an explicit key/value map for environment lookups. Values in the map
// take precedence over system environment variables.
func WithEnvMap(values map[string]string) Option {
	return func(o *loaderOptions) {
		o.envMap = values
	}
}

// WithoutSystemEnv disables reading from os.Getenv, relying only on provided maps and .env files.
func WithoutSystemEnv() Option {
	return func(o *loaderOptions) {
		o.useSystemEnv = false
	}
}

// Load assembles the application configuration by combining defaults, .env overrides
// and environment variables.
func Load(opts ...Option) (Config, error) {
	options := loaderOptions{
		envFile:      defaultEnvFile,
		useSystemEnv: true,
	}
	for _, opt := range opts {
		opt(&options)
	}

	dotEnvValues, err := loadDotEnv(options.envFile)
	if err != nil {
		return Config{}, err
	}

	lookup := func(key string) (string, bool) {
		if options.envMap != nil {
			if value, ok := options.envMap[key]; ok {
				return value, true
			}
		}
		if options.useSystemEnv {
			if value, ok := os.LookupEnv(key); ok {
				return value, true
			}
		}
		if dotEnvValues != nil {
			if value, ok := dotEnvValues[key]; ok {
				return value, true
			}
		}
		return "", false
	}

	// Port resolution: prefer WAVEIFY_WEB_PORT, then the platform's PORT.
	port := stringWithDefault(lookup, "WAVEIFY_WEB_PORT", "")
	if port == "" {
		port = stringWithDefault(lookup, "PORT", defaultPort)
	}

	cfg := Config{
		Server: ServerConfig{
			Port:           port,
			ReadTimeout:    durationWithDefault(lookup, "WAVEIFY_WEB_READ_TIMEOUT", defaultReadTimeout),
			WriteTimeout:   durationWithDefault(lookup, "WAVEIFY_WEB_WRITE_TIMEOUT", defaultWriteTimeout),
			IdleTimeout:    durationWithDefault(lookup, "WAVEIFY_WEB_IDLE_TIMEOUT", defaultIdleTimeout),
			RequestTimeout: durationWithDefault(lookup, "WAVEIFY_WEB_REQUEST_TIMEOUT", defaultRequestTimeout),
			TemplatesDir:   stringWithDefault(lookup, "WAVEIFY_WEB_TEMPLATES_DIR", defaultTemplatesDir),
			PublicDir:      stringWithDefault(lookup, "WAVEIFY_WEB_PUBLIC_DIR", defaultPublicDir),
			// Dev mode: prefer WAVEIFY_WEB_DEV, fallback to DEV
			DevMode:     boolWithDefault(lookup, "WAVEIFY_WEB_DEV", boolWithDefault(lookup, "DEV", false)),
			MetricsBind: stringWithDefault(lookup, "WAVEIFY_METRICS_BIND", ""),
			BaseURL:     strings.TrimRight(stringWithDefault(lookup, "WAVEIFY_WEB_BASE_URL", ""), "/"),
		},
		Docs: DocsConfig{
			Strict:   boolWithDefault(lookup, "WAVEIFY_DOCS_STRICT", true),
			CacheTTL: durationWithDefault(lookup, "WAVEIFY_DOCS_CACHE_TTL", 0),
		},
		Importer: ImporterConfig{
			Retries:        intWithDefault(lookup, "WAVEIFY_IMPORT_RETRIES", defaultImportRetries),
			Delay:          durationWithDefault(lookup, "WAVEIFY_IMPORT_RETRY_DELAY", defaultImportDelay),
			AttemptTimeout: durationWithDefault(lookup, "WAVEIFY_IMPORT_ATTEMPT_TIMEOUT", 0),
		},
		Telemetry: TelemetryConfig{
			Backend: strings.ToLower(stringWithDefault(lookup, "WAVEIFY_TELEMETRY_STORE", defaultTelemetryBackend)),
			Path:    stringWithDefault(lookup, "WAVEIFY_TELEMETRY_PATH", defaultTelemetryPath),
		},
		Analytics: AnalyticsConfig{
			GA4MeasurementID: stringWithDefault(lookup, "WAVEIFY_WEB_GA_MEASUREMENT_ID", ""),
			Endpoint:         stringWithDefault(lookup, "WAVEIFY_ANALYTICS_ENDPOINT", ""),
			Timeout:          durationWithDefault(lookup, "WAVEIFY_ANALYTICS_TIMEOUT", defaultAnalyticsTimeout),
			Debug:            boolWithDefault(lookup, "WAVEIFY_WEB_ANALYTICS_DEBUG", false),
		},
	}

	if err := validateConfig(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Addr returns the HTTP listen address for the configured port.
func (c ServerConfig) Addr() string {
	if strings.Contains(c.Port, ":") {
		return c.Port
	}
	return ":" + c.Port
}

func validateConfig(cfg Config) error {
	var invalid []string
	if strings.TrimSpace(cfg.Server.Port) == "" {
		invalid = append(invalid, "Server.Port")
	}
	if cfg.Importer.Retries < 0 {
		invalid = append(invalid, "Importer.Retries")
	}
	if cfg.Importer.Delay < 0 {
		invalid = append(invalid, "Importer.Delay")
	}
	if cfg.Docs.CacheTTL < 0 {
		invalid = append(invalid, "Docs.CacheTTL")
	}
	switch cfg.Telemetry.Backend {
	case BackendMemory:
	case BackendFile, BackendSQLite:
		if strings.TrimSpace(cfg.Telemetry.Path) == "" {
			invalid = append(invalid, "Telemetry.Path")
		}
	default:
		invalid = append(invalid, "Telemetry.Backend")
	}
	if len(invalid) > 0 {
		return &ValidationError{fields: invalid}
	}
	return nil
}

func loadDotEnv(path string) (map[string]string, error) {
	if path == "" {
		return nil, nil
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		absPath = path
	}

	file, err := os.Open(absPath)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("config: unable to read %s: %w", absPath, err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	values := make(map[string]string)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if strings.HasPrefix(line, "export ") {
			line = strings.TrimSpace(strings.TrimPrefix(line, "export "))
		}
		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			continue
		}
		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])
		if key == "" {
			continue
		}
		values[key] = strings.Trim(value, "\"'")
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("config: failed parsing %s: %w", absPath, err)
	}
	return values, nil
}

func stringWithDefault(lookup func(string) (string, bool), key, fallback string) string {
	if value, ok := lookup(key); ok && value != "" {
		return value
	}
	return fallback
}

func durationWithDefault(lookup func(string) (string, bool), key string, fallback time.Duration) time.Duration {
	if value, ok := lookup(key); ok && value != "" {
		d, err := time.ParseDuration(value)
		if err == nil {
			return d
		}
	}
	return fallback
}

func intWithDefault(lookup func(string) (string, bool), key string, fallback int) int {
	if value, ok := lookup(key); ok && value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func boolWithDefault(lookup func(string) (string, bool), key string, fallback bool) bool {
	if value, ok := lookup(key); ok && value != "" {
		switch strings.ToLower(value) {
		case "true", "1", "yes", "on":
			return true
		case "false", "0", "no", "off":
			return false
		}
	}
	return fallback
}
