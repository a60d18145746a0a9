package config

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "picturepolice.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv(APIKeyEnv, "")
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Vision.MaxResults != 20 {
		t.Errorf("vision.max_results = %d, want 20", cfg.Vision.MaxResults)
	}
	if cfg.Reddit.MinInterval != 650*time.Millisecond {
		t.Errorf("reddit.min_interval = %s, want 650ms", cfg.Reddit.MinInterval)
	}
	if cfg.Provenance.FetchTimeout != 5*time.Second || cfg.Provenance.Threshold != 90 || cfg.Provenance.Concurrency != 4 {
		t.Errorf("provenance = %+v", cfg.Provenance)
	}
	if !errors.Is(cfg.RequireAPIKey(), ErrMissingAPIKey) {
		t.Errorf("RequireAPIKey() = %v, want ErrMissingAPIKey", cfg.RequireAPIKey())
	}
}

func TestLoadFile(t *testing.T) {
	t.Setenv("PP_TEST_KEY", "from-env")
	t.Setenv("PP_TEST_ENDPOINT", "")
	path := writeConfig(t, `
vision:
  api_key: ${PP_TEST_KEY}
  endpoint: ${PP_TEST_ENDPOINT:-https://vision.example.com/}
  max_results: 5
reddit:
  min_interval: 1s
  cookies:
    reddit_session: abc
provenance:
  fetch_timeout: 250ms
  threshold: 80
cache:
  disabled: true
logging:
  level: debug
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Vision.APIKey != "from-env" {
		t.Errorf("vision.api_key = %q, want from-env", cfg.Vision.APIKey)
	}
	if cfg.Vision.Endpoint != "https://vision.example.com/" {
		t.Errorf("vision.endpoint = %q", cfg.Vision.Endpoint)
	}
	if cfg.Vision.MaxResults != 5 || cfg.Reddit.MinInterval != time.Second {
		t.Errorf("vision/reddit = %+v %+v", cfg.Vision, cfg.Reddit)
	}
	if cfg.Reddit.Cookies["reddit_session"] != "abc" {
		t.Errorf("reddit.cookies = %v", cfg.Reddit.Cookies)
	}
	if cfg.Provenance.FetchTimeout != 250*time.Millisecond || cfg.Provenance.Threshold != 80 {
		t.Errorf("provenance = %+v", cfg.Provenance)
	}
	if !cfg.Cache.Disabled {
		t.Error("cache.disabled = false, want true")
	}
	if lvl, _ := cfg.Logging.SlogLevel(); lvl != slog.LevelDebug {
		t.Errorf("level = %v, want debug", lvl)
	}
	if err := cfg.RequireAPIKey(); err != nil {
		t.Errorf("RequireAPIKey() = %v", err)
	}
}

func TestLoadAPIKeyFromEnv(t *testing.T) {
	t.Setenv(APIKeyEnv, "env-key")
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Vision.APIKey != "env-key" {
		t.Errorf("vision.api_key = %q, want env-key", cfg.Vision.APIKey)
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"bad yaml", "vision: [", "failed to parse config"},
		{"threshold too high", "provenance:\n  threshold: 150\n", "provenance.threshold"},
		{"negative interval", "reddit:\n  min_interval: -1s\n", "reddit.min_interval"},
		{"bad level", "logging:\n  level: loud\n", "logging.level"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Load() error = %v, want mention of %q", err, tt.want)
			}
		})
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("Load() of a missing file should fail")
	}
}
