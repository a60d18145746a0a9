// Package picturepolice wires web detection, author resolution and social
// provenance checks into a single scanner.
//
// Basic usage:
//
//	cfg, _ := config.Load("picturepolice.yaml")
//	s, err := picturepolice.New(ctx, cfg, picturepolice.WithHTTPCache(cache))
//	results := s.Run(ctx, "post_author", imageURLs)
//
// Each result reports its evidence URLs and a 0-100 score:
//
//	for _, r := range results {
//	    fmt.Println(r.GalleryIndex(), r.Score(), r.Matches())
//	}
package picturepolice

import (
	"context"
	"fmt"
	"log/slog"
	"maps"

	"github.com/codeGROOVE-dev/picturepolice/pkg/auth"
	"github.com/codeGROOVE-dev/picturepolice/pkg/config"
	"github.com/codeGROOVE-dev/picturepolice/pkg/httpcache"
	"github.com/codeGROOVE-dev/picturepolice/pkg/match"
	"github.com/codeGROOVE-dev/picturepolice/pkg/provenance"
	"github.com/codeGROOVE-dev/picturepolice/pkg/reddit"
	"github.com/codeGROOVE-dev/picturepolice/pkg/scan"
	"github.com/codeGROOVE-dev/picturepolice/pkg/webdetect"
)

// Result is the scored evidence for one submitted image.
type Result = match.Result

// Option configures New.
type Option func(*options)

type options struct {
	cache          httpcache.Cacher
	logger         *slog.Logger
	cookies        map[string]string
	browserCookies bool
	detector       webdetect.Detector
	resolver       scan.AuthorResolver
}

// WithCookies sets explicit reddit.com cookie values for author lookups.
func WithCookies(cookies map[string]string) Option {
	return func(o *options) { o.cookies = cookies }
}

// WithBrowserCookies reads reddit.com cookies from local browser stores.
func WithBrowserCookies() Option {
	return func(o *options) { o.browserCookies = true }
}

// WithHTTPCache sets the HTTP cache for page fetches and author lookups.
func WithHTTPCache(httpCache httpcache.Cacher) Option {
	return func(o *options) { o.cache = httpCache }
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithDetector replaces the Cloud Vision detector.
func WithDetector(d webdetect.Detector) Option {
	return func(o *options) { o.detector = d }
}

// WithResolver replaces the Reddit author resolver.
func WithResolver(r scan.AuthorResolver) Option {
	return func(o *options) { o.resolver = r }
}

// New builds a Scanner from cfg. Without WithDetector, cfg must carry a
// Vision API key.
func New(ctx context.Context, cfg config.Config, opts ...Option) (*scan.Scanner, error) {
	o := &options{logger: slog.Default()}
	for _, opt := range opts {
		opt(o)
	}

	detector := o.detector
	if detector == nil {
		if err := cfg.RequireAPIKey(); err != nil {
			return nil, err
		}
		v, err := webdetect.NewVision(ctx, cfg.Vision.APIKey,
			webdetect.WithLogger(o.logger),
			webdetect.WithEndpoint(cfg.Vision.Endpoint),
			webdetect.WithMaxResults(cfg.Vision.MaxResults))
		if err != nil {
			return nil, err
		}
		detector = v
	}

	resolver := o.resolver
	if resolver == nil {
		rc, err := newRedditClient(ctx, cfg, o)
		if err != nil {
			return nil, err
		}
		resolver = rc
	}

	scanOpts := []scan.Option{
		scan.WithLogger(o.logger),
		scan.WithResolver(resolver),
		scan.WithConcurrency(cfg.Scan.Concurrency),
		scan.WithSocialConcurrency(cfg.Provenance.Concurrency),
		scan.WithThreshold(cfg.Provenance.Threshold),
	}
	if !cfg.Provenance.Disabled {
		popts := []provenance.Option{
			provenance.WithLogger(o.logger),
			provenance.WithTimeout(cfg.Provenance.FetchTimeout),
		}
		if o.cache != nil {
			popts = append(popts, provenance.WithHTTPCache(o.cache))
		}
		scanOpts = append(scanOpts, scan.WithChecker(provenance.New(popts...)))
	}
	return scan.New(detector, scanOpts...), nil
}

func newRedditClient(ctx context.Context, cfg config.Config, o *options) (*reddit.Client, error) {
	cookies := maps.Clone(cfg.Reddit.Cookies)
	if cookies == nil {
		cookies = make(map[string]string)
	}
	maps.Copy(cookies, o.cookies)

	if len(cookies) == 0 && (o.browserCookies || cfg.Reddit.BrowserCookies) {
		found, err := auth.NewBrowserSource(o.logger).Cookies(ctx, auth.RedditDomain, auth.RedditCookies)
		if err != nil {
			o.logger.WarnContext(ctx, "failed to read browser cookies", "error", err)
		}
		maps.Copy(cookies, found)
	}

	ropts := []reddit.Option{
		reddit.WithLogger(o.logger),
		reddit.WithMinInterval(cfg.Reddit.MinInterval),
		reddit.WithCookies(cookies),
	}
	if o.cache != nil {
		ropts = append(ropts, reddit.WithHTTPCache(o.cache))
	}
	rc, err := reddit.New(ctx, ropts...)
	if err != nil {
		return nil, fmt.Errorf("create reddit client: %w", err)
	}
	return rc, nil
}
