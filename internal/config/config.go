package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Events    EventsConfig    `yaml:"events"`
	Scoring   ScoringConfig   `yaml:"scoring"`
	Retention RetentionConfig `yaml:"retention"`
	Logging   LoggingConfig   `yaml:"logging"`
}

type ServerConfig struct {
	Port        int    `yaml:"port"`
	MetricsPort int    `yaml:"metrics_port"`
	AdminToken  string `yaml:"admin_token"`
	RateLimit   int    `yaml:"rate_limit_per_minute"`
}

type DatabaseConfig struct {
	URL string `yaml:"url"`
}

type EventsConfig struct {
	URL string `yaml:"url"`
}

type ScoringConfig struct {
	// DefaultMetric is used when a comparison request does not name one.
	DefaultMetric string `yaml:"default_metric"`
	// MaxBins caps the length of distributions accepted over the API.
	MaxBins int `yaml:"max_bins"`
}

type RetentionConfig struct {
	SweepIntervalMs    int `yaml:"sweep_interval_ms"`
	ComparisonTTLHours int `yaml:"comparison_ttl_hours"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

func (c *Config) SweepInterval() time.Duration {
	return time.Duration(c.Retention.SweepIntervalMs) * time.Millisecond
}

func (c *Config) ComparisonTTL() time.Duration {
	return time.Duration(c.Retention.ComparisonTTLHours) * time.Hour
}

func Load(path string) (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port:        8700,
			MetricsPort: 8701,
			RateLimit:   120,
		},
		Events: EventsConfig{
			URL: "nats://localhost:4222",
		},
		Scoring: ScoringConfig{
			DefaultMetric: "logscore",
			MaxBins:       4096,
		},
		Retention: RetentionConfig{
			SweepIntervalMs:    3600000,
			ComparisonTTLHours: 720,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	applyEnv(cfg)

	if cfg.Scoring.DefaultMetric != "divergence" && cfg.Scoring.DefaultMetric != "logscore" {
		return nil, fmt.Errorf("unknown default metric %q", cfg.Scoring.DefaultMetric)
	}
	if cfg.Scoring.MaxBins <= 0 {
		return nil, fmt.Errorf("max_bins must be positive, got %d", cfg.Scoring.MaxBins)
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("FORECAST_PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = n
		}
	}
	if v := os.Getenv("FORECAST_METRICS_PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Server.MetricsPort = n
		}
	}
	if v := os.Getenv("FORECAST_ADMIN_TOKEN"); v != "" {
		cfg.Server.AdminToken = v
	}
	if v := os.Getenv("FORECAST_RATE_LIMIT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Server.RateLimit = n
		}
	}
	if v := os.Getenv("FORECAST_DATABASE_URL"); v != "" {
		cfg.Database.URL = v
	}
	if v := os.Getenv("FORECAST_EVENTS_URL"); v != "" {
		cfg.Events.URL = v
	}
	if v := os.Getenv("FORECAST_DEFAULT_METRIC"); v != "" {
		cfg.Scoring.DefaultMetric = v
	}
	if v := os.Getenv("FORECAST_MAX_BINS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Scoring.MaxBins = n
		}
	}
	if v := os.Getenv("FORECAST_SWEEP_INTERVAL_MS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Retention.SweepIntervalMs = n
		}
	}
	if v := os.Getenv("FORECAST_COMPARISON_TTL_HOURS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Retention.ComparisonTTLHours = n
		}
	}
	if v := os.Getenv("FORECAST_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
}
