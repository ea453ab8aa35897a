package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadWithDefaults(t *testing.T) {
	cfg, err := Load(WithEnvMap(map[string]string{}), WithoutSystemEnv(), WithEnvFile(""))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.Server.Port != "8080" {
		t.Errorf("expected default port 8080, got %s", cfg.Server.Port)
	}
	if cfg.Server.Addr() != ":8080" {
		t.Errorf("unexpected addr: %s", cfg.Server.Addr())
	}
	if cfg.Server.ReadTimeout != 15*time.Second {
		t.Errorf("unexpected read timeout: %s", cfg.Server.ReadTimeout)
	}
	if cfg.Server.DevMode {
		t.Errorf("expected dev mode off by default")
	}
	if !cfg.Docs.Strict {
		t.Errorf("expected strict docs validation by default")
	}
	if cfg.Docs.CacheTTL != 0 {
		t.Errorf("expected docs cache disabled, got %s", cfg.Docs.CacheTTL)
	}
	if cfg.Importer.Retries != 3 {
		t.Errorf("expected 3 import retries, got %d", cfg.Importer.Retries)
	}
	if cfg.Importer.Delay != time.Second {
		t.Errorf("expected 1s import delay, got %s", cfg.Importer.Delay)
	}
	if cfg.Telemetry.Backend != BackendMemory {
		t.Errorf("expected memory telemetry backend, got %s", cfg.Telemetry.Backend)
	}
	if cfg.Analytics.Endpoint != "" {
		t.Errorf("expected analytics forwarding disabled, got %s", cfg.Analytics.Endpoint)
	}
}

func TestLoadWithOverrides(t *testing.T) {
	env := map[string]string{
		"PORT":                        "9000",
		"WAVEIFY_WEB_DEV":             "yes",
		"WAVEIFY_DOCS_STRICT":         "false",
		"WAVEIFY_DOCS_CACHE_TTL":      "30s",
		"WAVEIFY_IMPORT_RETRIES":      "5",
		"WAVEIFY_IMPORT_RETRY_DELAY":  "250ms",
		"WAVEIFY_TELEMETRY_STORE":     "SQLite",
		"WAVEIFY_TELEMETRY_PATH":      "/tmp/waveify.db",
		"WAVEIFY_ANALYTICS_ENDPOINT":  "https://collect.example.com/v1",
		"WAVEIFY_WEB_BASE_URL":        "https://waveify.dev/",
		"WAVEIFY_METRICS_BIND":        ":9090",
		"WAVEIFY_WEB_TEMPLATES_DIR":   "/srv/templates",
		"WAVEIFY_WEB_REQUEST_TIMEOUT": "bogus",
	}

	cfg, err := Load(WithEnvMap(env), WithoutSystemEnv(), WithEnvFile(""))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Server.Port != "9000" {
		t.Errorf("expected PORT fallback, got %s", cfg.Server.Port)
	}
	if !cfg.Server.DevMode {
		t.Errorf("expected dev mode on")
	}
	if cfg.Docs.Strict {
		t.Errorf("expected lenient docs validation")
	}
	if cfg.Docs.CacheTTL != 30*time.Second {
		t.Errorf("unexpected cache ttl: %s", cfg.Docs.CacheTTL)
	}
	if cfg.Importer.Retries != 5 || cfg.Importer.Delay != 250*time.Millisecond {
		t.Errorf("unexpected importer config: %+v", cfg.Importer)
	}
	if cfg.Telemetry.Backend != BackendSQLite {
		t.Errorf("expected backend to be lower-cased, got %s", cfg.Telemetry.Backend)
	}
	if cfg.Server.BaseURL != "https://waveify.dev" {
		t.Errorf("expected trailing slash trimmed, got %s", cfg.Server.BaseURL)
	}
	if cfg.Server.RequestTimeout != defaultRequestTimeout {
		t.Errorf("invalid duration should fall back to default, got %s", cfg.Server.RequestTimeout)
	}
}

func TestLoadPrefersWaveifyPort(t *testing.T) {
	env := map[string]string{"PORT": "9000", "WAVEIFY_WEB_PORT": "7000"}
	cfg, err := Load(WithEnvMap(env), WithoutSystemEnv(), WithEnvFile(""))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Server.Port != "7000" {
		t.Errorf("expected WAVEIFY_WEB_PORT to win, got %s", cfg.Server.Port)
	}
}

func TestLoadValidationErrors(t *testing.T) {
	env := map[string]string{
		"WAVEIFY_IMPORT_RETRIES":  "-1",
		"WAVEIFY_TELEMETRY_STORE": "redis",
	}
	_, err := Load(WithEnvMap(env), WithoutSystemEnv(), WithEnvFile(""))
	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	fields := vErr.Fields()
	if len(fields) != 2 {
		t.Fatalf("expected two invalid fields, got %v", fields)
	}
	if fields[0] != "Importer.Retries" || fields[1] != "Telemetry.Backend" {
		t.Errorf("unexpected fields: %v", fields)
	}
}

func TestLoadReadsDotEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	content := "# local overrides\nexport WAVEIFY_WEB_PORT=\"8181\"\nWAVEIFY_TELEMETRY_STORE=file\nWAVEIFY_TELEMETRY_PATH='var/metrics'\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write env file: %v", err)
	}

	cfg, err := Load(WithEnvFile(path), WithoutSystemEnv())
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Server.Port != "8181" {
		t.Errorf("expected port from .env, got %s", cfg.Server.Port)
	}
	if cfg.Telemetry.Backend != BackendFile || cfg.Telemetry.Path != "var/metrics" {
		t.Errorf("unexpected telemetry config: %+v", cfg.Telemetry)
	}

	// explicit map beats .env
	cfg, err = Load(WithEnvFile(path), WithoutSystemEnv(), WithEnvMap(map[string]string{"WAVEIFY_WEB_PORT": "1"}))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Server.Port != "1" {
		t.Errorf("expected env map to win, got %s", cfg.Server.Port)
	}
}
