// Package config loads picturepolice settings from YAML.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// APIKeyEnv is read when vision.api_key is empty.
const APIKeyEnv = "PICTUREPOLICE_VISION_KEY"

// ErrMissingAPIKey means no Vision API key was configured.
var ErrMissingAPIKey = errors.New("vision api key is not set (vision.api_key or " + APIKeyEnv + ")")

// Config holds picturepolice configuration.
type Config struct {
	Vision     VisionConfig     `yaml:"vision"`
	Reddit     RedditConfig     `yaml:"reddit"`
	Provenance ProvenanceConfig `yaml:"provenance"`
	Cache      CacheConfig      `yaml:"cache"`
	Scan       ScanConfig       `yaml:"scan"`
	Logging    LoggingConfig    `yaml:"logging"`
	Metrics    MetricsConfig    `yaml:"metrics"`
}

// VisionConfig holds Cloud Vision settings.
type VisionConfig struct {
	APIKey     string `yaml:"api_key"`
	Endpoint   string `yaml:"endpoint"`
	MaxResults int    `yaml:"max_results"`
}

// RedditConfig holds author-resolution settings.
type RedditConfig struct {
	MinInterval    time.Duration     `yaml:"min_interval"`
	BrowserCookies bool              `yaml:"browser_cookies"`
	Cookies        map[string]string `yaml:"cookies"`
}

// ProvenanceConfig holds social-link attribution settings.
type ProvenanceConfig struct {
	FetchTimeout time.Duration `yaml:"fetch_timeout"`
	Concurrency  int           `yaml:"concurrency"`
	Threshold    int           `yaml:"threshold"` // 1-100
	Disabled     bool          `yaml:"disabled"`
}

// CacheConfig holds HTTP cache settings.
type CacheConfig struct {
	TTL      time.Duration `yaml:"ttl"`
	Dir      string        `yaml:"dir"` // default: ~/.cache/picturepolice
	Disabled bool          `yaml:"disabled"`
}

// ScanConfig holds aggregation settings.
type ScanConfig struct {
	Concurrency int `yaml:"concurrency"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
}

// MetricsConfig holds the Prometheus endpoint address; empty disables it.
type MetricsConfig struct {
	Addr string `yaml:"addr"`
}

// Load reads configuration from path. An empty path yields defaults plus
// environment overrides.
func Load(path string) (Config, error) {
	var cfg Config
	if path != "" {
		data, err := os.ReadFile(filepath.Clean(path))
		if err != nil {
			return Config{}, fmt.Errorf("failed to read config %s: %w", path, err)
		}
		data = expandEnvVars(data)
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	if cfg.Vision.APIKey == "" {
		cfg.Vision.APIKey = os.Getenv(APIKeyEnv)
	}
	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.Vision.MaxResults <= 0 {
		c.Vision.MaxResults = 20
	}
	if c.Reddit.MinInterval == 0 {
		c.Reddit.MinInterval = 650 * time.Millisecond
	}
	if c.Provenance.FetchTimeout <= 0 {
		c.Provenance.FetchTimeout = 5 * time.Second
	}
	if c.Provenance.Concurrency <= 0 {
		c.Provenance.Concurrency = 4
	}
	if c.Provenance.Threshold == 0 {
		c.Provenance.Threshold = 90
	}
	if c.Cache.TTL <= 0 {
		c.Cache.TTL = 24 * time.Hour
	}
	if c.Scan.Concurrency <= 0 {
		c.Scan.Concurrency = 4
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.Reddit.MinInterval < 0 {
		return fmt.Errorf("reddit.min_interval must not be negative, got %s", c.Reddit.MinInterval)
	}
	if c.Provenance.Threshold < 1 || c.Provenance.Threshold > 100 {
		return fmt.Errorf("provenance.threshold must be between 1 and 100, got %d", c.Provenance.Threshold)
	}
	if _, err := c.Logging.SlogLevel(); err != nil {
		return err
	}
	return nil
}

// RequireAPIKey returns ErrMissingAPIKey when no Vision key is configured.
func (c *Config) RequireAPIKey() error {
	if strings.TrimSpace(c.Vision.APIKey) == "" {
		return ErrMissingAPIKey
	}
	return nil
}

// SlogLevel maps the configured level name to a slog.Level.
func (l LoggingConfig) SlogLevel() (slog.Level, error) {
	switch strings.ToLower(l.Level) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("logging.level must be debug, info, warn or error, got %q", l.Level)
	}
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1])
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
