package picturepolice

import (
	"context"
	"errors"
	"testing"

	"github.com/codeGROOVE-dev/picturepolice/pkg/config"
	"github.com/codeGROOVE-dev/picturepolice/pkg/webdetect"
)

func testConfig(t *testing.T) config.Config {
	t.Helper()
	t.Setenv(config.APIKeyEnv, "")
	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("config.Load: %v", err)
	}
	return cfg
}

func TestNewRequiresAPIKey(t *testing.T) {
	_, err := New(context.Background(), testConfig(t))
	if !errors.Is(err, config.ErrMissingAPIKey) {
		t.Errorf("New() error = %v, want ErrMissingAPIKey", err)
	}
}

type stubResolver map[string]string

func (s stubResolver) Author(_ context.Context, permalink string) (string, error) {
	return s[permalink], nil
}

func TestNewWithDetector(t *testing.T) {
	const permalink = "https://www.reddit.com/r/pics/comments/abc/x/"
	det := webdetect.DetectorFunc(func(context.Context, string) (*webdetect.Detection, error) {
		return &webdetect.Detection{Pages: []webdetect.Page{
			{URL: permalink, FullMatches: []webdetect.Image{{URL: "https://i.redd.it/a.jpg"}}},
			{URL: "https://example.com/post", FullMatches: []webdetect.Image{{URL: "https://cdn.example.net/a"}}},
		}}, nil
	})

	cfg := testConfig(t)
	cfg.Provenance.Disabled = true
	s, err := New(context.Background(), cfg,
		WithDetector(det),
		WithResolver(stubResolver{permalink: "poster"}))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	results := s.Run(context.Background(), "poster", []string{"https://i.redd.it/query.jpg"})
	if len(results) != 1 {
		t.Fatalf("len(results) = %d, want 1", len(results))
	}
	var r *Result = results[0]
	if r.NumMatches() != 1 || r.Score() != 50 {
		t.Errorf("matches=%d score=%d, want 1/50", r.NumMatches(), r.Score())
	}
}

func TestNewBuildsDefaultClients(t *testing.T) {
	cfg := testConfig(t)
	cfg.Vision.APIKey = "test-key"
	cfg.Reddit.Cookies = map[string]string{"reddit_session": "x"}
	if _, err := New(context.Background(), cfg, WithCookies(map[string]string{"token_v2": "y"})); err != nil {
		t.Fatalf("New() error = %v", err)
	}
}
