package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func clearEnv(t *testing.T) {
	t.Helper()
	envVars := []string{
		"FORECAST_PORT", "FORECAST_METRICS_PORT", "FORECAST_ADMIN_TOKEN",
		"FORECAST_RATE_LIMIT", "FORECAST_DATABASE_URL", "FORECAST_EVENTS_URL",
		"FORECAST_DEFAULT_METRIC", "FORECAST_MAX_BINS",
		"FORECAST_SWEEP_INTERVAL_MS", "FORECAST_COMPARISON_TTL_HOURS",
		"FORECAST_LOG_LEVEL",
	}
	for _, k := range envVars {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Server.Port != 8700 {
		t.Errorf("expected port 8700, got %d", cfg.Server.Port)
	}
	if cfg.Server.MetricsPort != 8701 {
		t.Errorf("expected metrics port 8701, got %d", cfg.Server.MetricsPort)
	}
	if cfg.Server.RateLimit != 120 {
		t.Errorf("expected rate limit 120, got %d", cfg.Server.RateLimit)
	}
	if cfg.Events.URL != "nats://localhost:4222" {
		t.Errorf("expected nats URL, got %s", cfg.Events.URL)
	}
	if cfg.Scoring.DefaultMetric != "logscore" {
		t.Errorf("expected default metric 'logscore', got %s", cfg.Scoring.DefaultMetric)
	}
	if cfg.Scoring.MaxBins != 4096 {
		t.Errorf("expected max bins 4096, got %d", cfg.Scoring.MaxBins)
	}
	if cfg.SweepInterval() != time.Hour {
		t.Errorf("expected hourly sweep, got %v", cfg.SweepInterval())
	}
	if cfg.ComparisonTTL() != 720*time.Hour {
		t.Errorf("expected 720h TTL, got %v", cfg.ComparisonTTL())
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("expected log level 'info', got '%s'", cfg.Logging.Level)
	}
	if cfg.Logging.Format != "json" {
		t.Errorf("expected log format 'json', got '%s'", cfg.Logging.Format)
	}
}

func TestLoadFromFile(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	data := `
server:
  port: 9000
  admin_token: secret
scoring:
  default_metric: divergence
  max_bins: 128
retention:
  comparison_ttl_hours: 24
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Server.Port != 9000 {
		t.Errorf("expected port 9000, got %d", cfg.Server.Port)
	}
	if cfg.Server.AdminToken != "secret" {
		t.Errorf("expected admin token from file, got %q", cfg.Server.AdminToken)
	}
	if cfg.Scoring.DefaultMetric != "divergence" {
		t.Errorf("expected metric 'divergence', got %s", cfg.Scoring.DefaultMetric)
	}
	if cfg.Scoring.MaxBins != 128 {
		t.Errorf("expected max bins 128, got %d", cfg.Scoring.MaxBins)
	}
	// Unset keys keep their defaults.
	if cfg.Server.MetricsPort != 8701 {
		t.Errorf("expected default metrics port, got %d", cfg.Server.MetricsPort)
	}
}

func TestEnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("FORECAST_PORT", "9100")
	t.Setenv("FORECAST_DATABASE_URL", "postgres://test")
	t.Setenv("FORECAST_DEFAULT_METRIC", "divergence")
	t.Setenv("FORECAST_LOG_LEVEL", "debug")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Server.Port != 9100 {
		t.Errorf("expected env port 9100, got %d", cfg.Server.Port)
	}
	if cfg.Database.URL != "postgres://test" {
		t.Errorf("expected env database URL, got %s", cfg.Database.URL)
	}
	if cfg.Scoring.DefaultMetric != "divergence" {
		t.Errorf("expected env metric, got %s", cfg.Scoring.DefaultMetric)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("expected env log level, got %s", cfg.Logging.Level)
	}
}

func TestLoadRejectsBadMetric(t *testing.T) {
	clearEnv(t)
	t.Setenv("FORECAST_DEFAULT_METRIC", "brier")

	if _, err := Load(""); err == nil {
		t.Error("expected error for unknown metric")
	}
}

func TestLoadMissingFile(t *testing.T) {
	clearEnv(t)
	if _, err := Load("/nonexistent/config.yaml"); err == nil {
		t.Error("expected error for missing config file")
	}
}
