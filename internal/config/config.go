// Package config provides configuration loading for knowledged.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Config holds the complete knowledged configuration.
type Config struct {
	Store         StoreConfig         `koanf:"store"`
	Matcher       MatcherConfig       `koanf:"matcher"`
	Cache         CacheConfig         `koanf:"cache"`
	Retry         RetryConfig         `koanf:"retry"`
	Logging       LoggingConfig       `koanf:"logging"`
	Observability ObservabilityConfig `koanf:"observability"`
}

// StoreConfig configures the SQLite database holding the knowledge table.
type StoreConfig struct {
	// Path is the database file; "~" expands to the home directory.
	// ":memory:" keeps everything in memory for the life of the process.
	Path         string   `koanf:"path"`
	BusyTimeout  Duration `koanf:"busy_timeout"`
	MaxOpenConns int      `koanf:"max_open_conns"`
}

// MatcherConfig selects and tunes the retrieval strategy.
type MatcherConfig struct {
	Strategy        string  `koanf:"strategy"`
	K1              float64 `koanf:"k1"`
	B               float64 `koanf:"b"`
	TagBoost        float64 `koanf:"tag_boost"`
	IncludeContents bool    `koanf:"include_contents"`
	DefaultTopN     int     `koanf:"default_top_n"`
}

// CacheConfig configures the query result cache.
type CacheConfig struct {
	Enabled    bool  `koanf:"enabled"`
	MaxEntries int64 `koanf:"max_entries"`
}

// RetryConfig bounds retries of failed reads.
type RetryConfig struct {
	MaxAttempts int      `koanf:"max_attempts"`
	BaseBackoff Duration `koanf:"base_backoff"`
}

// LoggingConfig holds the logging settings exposed through configuration.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// ObservabilityConfig holds OpenTelemetry settings.
type ObservabilityConfig struct {
	EnableTelemetry bool    `koanf:"enable_telemetry"`
	Endpoint        string  `koanf:"endpoint"`
	Protocol        string  `koanf:"protocol"`
	Insecure        bool    `koanf:"insecure"`
	ServiceName     string  `koanf:"service_name"`
	SampleRate      float64 `koanf:"sample_rate"`
}

// Default returns the configuration used when nothing is overridden.
func Default() *Config {
	return &Config{
		Store: StoreConfig{
			Path:         "~/.local/share/knowledged/knowledge.db",
			BusyTimeout:  Duration(5 * time.Second),
			MaxOpenConns: 4,
		},
		Matcher: MatcherConfig{
			Strategy:        "bm25",
			K1:              1.2,
			B:               0.75,
			TagBoost:        1,
			IncludeContents: true,
			DefaultTopN:     5,
		},
		Cache: CacheConfig{
			Enabled:    true,
			MaxEntries: 1024,
		},
		Retry: RetryConfig{
			MaxAttempts: 3,
			BaseBackoff: Duration(10 * time.Millisecond),
		},
		Logging: LoggingConfig{
			Level:  "warn",
			Format: "console",
		},
		Observability: ObservabilityConfig{
			EnableTelemetry: false,
			Endpoint:        "localhost:4317",
			Protocol:        "grpc",
			Insecure:        true,
			ServiceName:     "knowledged",
			SampleRate:      1.0,
		},
	}
}

var validLogLevels = map[string]bool{
	"trace": true, "debug": true, "info": true, "warn": true,
	"error": true, "dpanic": true, "panic": true, "fatal": true,
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Store.Path) == "" {
		return errors.New("store path is required")
	}
	if strings.ContainsRune(c.Store.Path, 0) {
		return errors.New("store path contains NUL byte")
	}
	if c.Store.MaxOpenConns < 0 {
		return fmt.Errorf("store max_open_conns must be >= 0, got %d", c.Store.MaxOpenConns)
	}

	switch strings.ToLower(strings.TrimSpace(c.Matcher.Strategy)) {
	case "exact", "bm25":
	default:
		return fmt.Errorf("unknown matcher strategy %q (must be exact or bm25)", c.Matcher.Strategy)
	}
	if c.Matcher.K1 < 0 {
		return fmt.Errorf("matcher k1 must be >= 0, got %v", c.Matcher.K1)
	}
	if c.Matcher.B < 0 || c.Matcher.B > 1 {
		return fmt.Errorf("matcher b must be between 0 and 1, got %v", c.Matcher.B)
	}
	if c.Matcher.TagBoost < 0 {
		return fmt.Errorf("matcher tag_boost must be >= 0, got %v", c.Matcher.TagBoost)
	}
	if c.Matcher.DefaultTopN < 1 {
		return fmt.Errorf("matcher default_top_n must be >= 1, got %d", c.Matcher.DefaultTopN)
	}

	if c.Cache.Enabled && c.Cache.MaxEntries <= 0 {
		return fmt.Errorf("cache max_entries must be > 0 when cache is enabled, got %d", c.Cache.MaxEntries)
	}

	if c.Retry.MaxAttempts < 1 {
		return fmt.Errorf("retry max_attempts must be >= 1, got %d", c.Retry.MaxAttempts)
	}

	if !validLogLevels[strings.ToLower(c.Logging.Level)] {
		return fmt.Errorf("invalid logging level %q", c.Logging.Level)
	}
	if c.Logging.Format != "json" && c.Logging.Format != "console" {
		return fmt.Errorf("logging format must be 'json' or 'console', got %q", c.Logging.Format)
	}

	if c.Observability.EnableTelemetry {
		if c.Observability.ServiceName == "" {
			return errors.New("service name required when telemetry is enabled")
		}
		if c.Observability.Endpoint == "" {
			return errors.New("endpoint required when telemetry is enabled")
		}
	}
	switch c.Observability.Protocol {
	case "grpc", "http":
	default:
		return fmt.Errorf("observability protocol must be 'grpc' or 'http', got %q", c.Observability.Protocol)
	}
	if c.Observability.SampleRate < 0 || c.Observability.SampleRate > 1 {
		return fmt.Errorf("observability sample_rate must be between 0 and 1, got %v", c.Observability.SampleRate)
	}

	return nil
}

// StorePath returns Store.Path with a leading "~" expanded.
func (c *Config) StorePath() (string, error) {
	return ExpandHome(c.Store.Path)
}

// ExpandHome replaces a leading "~" in path with the user's home directory.
func ExpandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}
