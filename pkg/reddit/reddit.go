// Package reddit resolves the author of a Reddit post through the public
// JSON API.
package reddit

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"time"

	"github.com/codeGROOVE-dev/picturepolice/pkg/httpcache"
	"github.com/codeGROOVE-dev/picturepolice/pkg/metrics"
	"github.com/codeGROOVE-dev/picturepolice/pkg/urlkind"
	"golang.org/x/time/rate"
)

// DeletedAuthor is the author Reddit reports for posts by deleted accounts.
const DeletedAuthor = "[deleted]"

// DefaultMinInterval keeps lookups under Reddit's ~100 requests/minute ceiling.
const DefaultMinInterval = 650 * time.Millisecond

const apiBase = "https://www.reddit.com"

var (
	// ErrNoPostID means the URL carries no /comments/<id> segment.
	ErrNoPostID = errors.New("no post id in url")
	// ErrAuthorNotFound means the post listing had no author.
	ErrAuthorNotFound = errors.New("author not found")
)

// IsDeleted reports whether author is the deleted-account sentinel.
func IsDeleted(author string) bool { return author == DeletedAuthor }

// Client resolves post authors. All lookups made through one Client share a
// single rate limiter.
type Client struct {
	httpClient *http.Client
	cache      httpcache.Cacher
	logger     *slog.Logger
}

// Option configures a Client.
type Option func(*config)

type config struct {
	cache       httpcache.Cacher
	logger      *slog.Logger
	minInterval time.Duration
	cookies     map[string]string
	transport   http.RoundTripper
}

// WithHTTPCache sets the HTTP cache.
func WithHTTPCache(httpCache httpcache.Cacher) Option {
	return func(c *config) { c.cache = httpCache }
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) { c.logger = logger }
}

// WithMinInterval sets the minimum spacing between API calls.
func WithMinInterval(d time.Duration) Option {
	return func(c *config) { c.minInterval = d }
}

// WithCookies sends the given reddit.com cookies with every request.
func WithCookies(cookies map[string]string) Option {
	return func(c *config) { c.cookies = cookies }
}

// WithTransport sets the underlying HTTP transport.
func WithTransport(rt http.RoundTripper) Option {
	return func(c *config) { c.transport = rt }
}

// New creates a Reddit client.
func New(ctx context.Context, opts ...Option) (*Client, error) {
	cfg := &config{logger: slog.Default(), minInterval: DefaultMinInterval, transport: http.DefaultTransport}
	for _, opt := range opts {
		opt(cfg)
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("create cookie jar: %w", err)
	}
	if len(cfg.cookies) > 0 {
		base, err := url.Parse(apiBase)
		if err != nil {
			return nil, err
		}
		var cookies []*http.Cookie
		for name, value := range cfg.cookies {
			cookies = append(cookies, &http.Cookie{Name: name, Value: value, Domain: ".reddit.com", Path: "/"})
		}
		jar.SetCookies(base, cookies)
		cfg.logger.DebugContext(ctx, "using reddit session cookies", "count", len(cookies))
	}

	limit := rate.Inf
	if cfg.minInterval > 0 {
		limit = rate.Every(cfg.minInterval)
	}
	return &Client{
		httpClient: &http.Client{
			Timeout:   10 * time.Second,
			Jar:       jar,
			Transport: &limitedTransport{limiter: rate.NewLimiter(limit, 1), next: cfg.transport},
		},
		cache:  cfg.cache,
		logger: cfg.logger,
	}, nil
}

// limitedTransport spaces out requests that reach the network. Cached
// lookups never get here, so they cost nothing against the ceiling.
type limitedTransport struct {
	limiter *rate.Limiter
	next    http.RoundTripper
}

func (t *limitedTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if err := t.limiter.Wait(req.Context()); err != nil {
		return nil, fmt.Errorf("reddit rate limiter: %w", err)
	}
	return t.next.RoundTrip(req)
}

// Author returns the username that submitted the post at permalink. Deleted
// accounts come back as DeletedAuthor.
func (c *Client) Author(ctx context.Context, permalink string) (string, error) {
	id := urlkind.PostID(permalink)
	if id == "" {
		return "", fmt.Errorf("%w: %s", ErrNoPostID, permalink)
	}

	apiURL := fmt.Sprintf("%s/comments/%s.json?limit=1", apiBase, id)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, http.NoBody)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", httpcache.UserAgent)
	req.Header.Set("Accept", "application/json")

	body, err := httpcache.FetchURL(ctx, c.cache, c.httpClient, req, c.logger)
	if err != nil {
		metrics.AuthorLookupsTotal.WithLabelValues(metrics.StatusError).Inc()
		return "", fmt.Errorf("fetch post %s: %w", id, err)
	}

	author, err := parseAuthor(body)
	if err != nil {
		metrics.AuthorLookupsTotal.WithLabelValues(metrics.StatusEmpty).Inc()
		return "", fmt.Errorf("post %s: %w", id, err)
	}
	status := metrics.StatusOK
	if IsDeleted(author) {
		status = metrics.StatusDeleted
	}
	metrics.AuthorLookupsTotal.WithLabelValues(status).Inc()
	c.logger.DebugContext(ctx, "resolved post author", "post", id, "author", author)
	return author, nil
}

// listing is the first element of /comments/<id>.json: the post itself.
type listing struct {
	Data struct {
		Children []struct {
			Kind string `json:"kind"`
			Data struct {
				Author string `json:"author"`
			} `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

func parseAuthor(body []byte) (string, error) {
	var listings []listing
	if err := json.Unmarshal(body, &listings); err != nil {
		return "", fmt.Errorf("decode post listing: %w", err)
	}
	if len(listings) == 0 || len(listings[0].Data.Children) == 0 {
		return "", ErrAuthorNotFound
	}
	author := listings[0].Data.Children[0].Data.Author
	if author == "" {
		return "", ErrAuthorNotFound
	}
	return author, nil
}
