// Package provenance estimates whether a URL belongs to a given author by
// scoring the URL and, for known social sites, the page's title and
// description.
package provenance

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/codeGROOVE-dev/picturepolice/pkg/confidence"
	"github.com/codeGROOVE-dev/picturepolice/pkg/htmlutil"
	"github.com/codeGROOVE-dev/picturepolice/pkg/httpcache"
	"github.com/codeGROOVE-dev/picturepolice/pkg/metrics"
	"github.com/codeGROOVE-dev/picturepolice/pkg/urlkind"
)

// DefaultTimeout bounds a single page fetch.
const DefaultTimeout = 5 * time.Second

// Strategy is how a URL's provenance is checked.
type Strategy int

const (
	// URLOnly scores the URL text and never fetches.
	URLOnly Strategy = iota
	// FetchAndScore also fetches the page and scores its summary.
	FetchAndScore
)

func (s Strategy) String() string {
	if s == FetchAndScore {
		return "fetch"
	}
	return "url-only"
}

// fetchFamilies are the host suffixes whose pages carry the owner's name in
// their title or description.
var fetchFamilies = []string{"facebook.com", "instagram.com", "pinterest.com"}

// socialInterval spaces page fetches to the fetch families, which start
// serving login walls to bursts.
const socialInterval = 500 * time.Millisecond

// StrategyFor returns the strategy for a host.
func StrategyFor(host string) Strategy {
	for _, d := range fetchFamilies {
		if urlkind.HostIs(host, d) {
			return FetchAndScore
		}
	}
	return URLOnly
}

// Checker scores URLs against an identity.
type Checker struct {
	httpClient *http.Client
	cache      httpcache.Cacher
	logger     *slog.Logger
	timeout    time.Duration
}

// Option configures a Checker.
type Option func(*config)

type config struct {
	cache     httpcache.Cacher
	logger    *slog.Logger
	timeout   time.Duration
	transport http.RoundTripper
}

// WithHTTPCache sets the HTTP cache.
func WithHTTPCache(httpCache httpcache.Cacher) Option {
	return func(c *config) { c.cache = httpCache }
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) { c.logger = logger }
}

// WithTimeout bounds each page fetch.
func WithTimeout(d time.Duration) Option {
	return func(c *config) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithTransport sets the underlying HTTP transport.
func WithTransport(rt http.RoundTripper) Option {
	return func(c *config) { c.transport = rt }
}

// New creates a Checker.
func New(opts ...Option) *Checker {
	cfg := &config{logger: slog.Default(), timeout: DefaultTimeout}
	for _, opt := range opts {
		opt(cfg)
	}
	for _, d := range fetchFamilies {
		httpcache.SetDomainInterval(d, socialInterval)
	}
	client := &http.Client{Timeout: cfg.timeout}
	if cfg.transport != nil {
		client.Transport = cfg.transport
	}
	return &Checker{httpClient: client, cache: cfg.cache, logger: cfg.logger, timeout: cfg.timeout}
}

// CheckURL returns how strongly rawURL appears to belong to identity, 0-100.
// Fetch failures fall back to the URL-only score.
func (c *Checker) CheckURL(ctx context.Context, rawURL, identity string) int {
	urlScore := confidence.Score(identity, rawURL)
	u, err := urlkind.Parse(rawURL)
	if err != nil || StrategyFor(u.Hostname()) == URLOnly {
		return urlScore
	}
	if urlScore == confidence.Exact {
		metrics.PageFetchesTotal.WithLabelValues(metrics.StatusSkipped).Inc()
		return urlScore
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	summary, err := c.summary(ctx, rawURL)
	if err != nil {
		metrics.PageFetchesTotal.WithLabelValues(metrics.StatusError).Inc()
		c.logger.DebugContext(ctx, "provenance fetch failed, using url score", "url", rawURL, "error", err)
		return urlScore
	}
	metrics.PageFetchesTotal.WithLabelValues(metrics.StatusOK).Inc()

	contentScore := confidence.Score(identity, summary)
	c.logger.DebugContext(ctx, "provenance checked",
		"url", rawURL, "url_score", urlScore, "content_score", contentScore)
	return max(urlScore, contentScore)
}

// summary fetches rawURL and returns its title, description and og:title.
func (c *Checker) summary(ctx context.Context, rawURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, http.NoBody)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", httpcache.UserAgent)
	req.Header.Set("Accept", "text/html")

	body, err := httpcache.FetchURL(ctx, c.cache, c.httpClient, req, c.logger)
	if err != nil {
		return "", fmt.Errorf("fetch %s: %w", rawURL, err)
	}
	return htmlutil.Summary(string(body)), nil
}
