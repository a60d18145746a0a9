// Package scan runs web detection for a post's images and prunes the
// resulting evidence of the author's own earlier postings.
package scan

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"github.com/codeGROOVE-dev/picturepolice/pkg/match"
	"github.com/codeGROOVE-dev/picturepolice/pkg/metrics"
	"github.com/codeGROOVE-dev/picturepolice/pkg/provenance"
	"github.com/codeGROOVE-dev/picturepolice/pkg/reddit"
	"github.com/codeGROOVE-dev/picturepolice/pkg/urlkind"
	"github.com/codeGROOVE-dev/picturepolice/pkg/webdetect"
)

const (
	defaultConcurrency = 4
	// DefaultThreshold is the provenance score at which a social link is
	// treated as the author's own.
	DefaultThreshold = 90
)

// AuthorResolver returns the author of a post permalink. Deleted accounts
// resolve to reddit.DeletedAuthor.
type AuthorResolver interface {
	Author(ctx context.Context, permalink string) (string, error)
}

// ProvenanceChecker scores how strongly a URL belongs to an identity.
type ProvenanceChecker interface {
	CheckURL(ctx context.Context, rawURL, identity string) int
}

// Scanner ties a web-detection provider to the attribution passes.
type Scanner struct {
	detector          webdetect.Detector
	resolver          AuthorResolver
	checker           ProvenanceChecker
	logger            *slog.Logger
	concurrency       int
	socialConcurrency int
	threshold         int
}

// Option configures a Scanner.
type Option func(*Scanner)

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Scanner) { s.logger = logger }
}

// WithResolver enables author attribution.
func WithResolver(r AuthorResolver) Option {
	return func(s *Scanner) { s.resolver = r }
}

// WithChecker enables social-link attribution.
func WithChecker(c ProvenanceChecker) Option {
	return func(s *Scanner) { s.checker = c }
}

// WithConcurrency bounds concurrent web-detection calls.
func WithConcurrency(n int) Option {
	return func(s *Scanner) {
		if n > 0 {
			s.concurrency = n
		}
	}
}

// WithSocialConcurrency bounds concurrent provenance checks.
func WithSocialConcurrency(n int) Option {
	return func(s *Scanner) {
		if n > 0 {
			s.socialConcurrency = n
		}
	}
}

// WithThreshold sets the provenance score at which social links are removed.
func WithThreshold(score int) Option {
	return func(s *Scanner) {
		if score > 0 && score <= 100 {
			s.threshold = score
		}
	}
}

// New creates a Scanner.
func New(detector webdetect.Detector, opts ...Option) *Scanner {
	s := &Scanner{
		detector:          detector,
		logger:            slog.Default(),
		concurrency:       defaultConcurrency,
		socialConcurrency: defaultConcurrency,
		threshold:         DefaultThreshold,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run builds results for imageURLs and applies every configured attribution
// pass.
func (s *Scanner) Run(ctx context.Context, identity string, imageURLs []string) []*match.Result {
	results := s.BuildMatches(ctx, identity, imageURLs)
	if s.resolver != nil {
		s.AttributeAndFilter(ctx, identity, results)
	}
	if s.checker != nil {
		s.AttributeSocialLinks(ctx, identity, results)
	}
	return results
}

// BuildMatches classifies each image's web-detection results. Images whose
// lookup fails are left out; the rest keep their submission order and carry
// their 1-based gallery index.
func (s *Scanner) BuildMatches(ctx context.Context, identity string, imageURLs []string) []*match.Result {
	slots := make([]*match.Result, len(imageURLs))
	sem := make(chan struct{}, s.concurrency)

	var wg sync.WaitGroup
	for i, imageURL := range imageURLs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			d, err := s.detector.Detect(ctx, imageURL)
			if err != nil || d == nil {
				s.logger.WarnContext(ctx, "web detection failed", "index", i+1, "image", imageURL, "error", err)
				return
			}
			slots[i] = match.Classify(d.Pages, identity, i+1, match.WithLogger(s.logger))
		}()
	}
	wg.Wait()

	results := make([]*match.Result, 0, len(slots))
	for _, r := range slots {
		if r != nil {
			results = append(results, r)
		}
	}
	return results
}

// AttributeAndFilter resolves the author of every permalink in results,
// one call at a time. Permalinks by identity are removed; a deleted author
// marks the result unverifiable. Lookup failures keep the URL.
func (s *Scanner) AttributeAndFilter(ctx context.Context, identity string, results []*match.Result) {
	if s.resolver == nil {
		return
	}
	authors := make(map[string]string) // permalink -> author, "" when unresolved

	for _, r := range results {
		var remove []string
		for _, e := range r.Evidence() {
			if !e.Permalink {
				continue
			}
			author, seen := authors[e.URL]
			if !seen {
				var err error
				author, err = s.resolver.Author(ctx, e.URL)
				if err != nil {
					s.logger.WarnContext(ctx, "could not resolve author", "url", e.URL, "error", err)
					author = ""
				}
				authors[e.URL] = author
			}
			switch {
			case author == "":
			case strings.EqualFold(author, identity):
				remove = append(remove, e.URL)
			case reddit.IsDeleted(author) && !reddit.IsDeleted(identity):
				r.MarkAuthorUnverifiable()
			}
		}
		if n := r.Remove(remove...); n > 0 {
			metrics.EvidenceRemovedTotal.WithLabelValues("author").Add(float64(n))
			s.logger.InfoContext(ctx, "removed author's own posts", "index", r.GalleryIndex(), "removed", n)
		}
	}
}

// AttributeSocialLinks checks evidence on social sites against identity and
// removes links that score at or above the threshold. Checks run
// concurrently; each is bounded by the checker's own timeout.
func (s *Scanner) AttributeSocialLinks(ctx context.Context, identity string, results []*match.Result) {
	if s.checker == nil {
		return
	}
	type job struct {
		result int
		url    string
		owned  bool
	}
	var jobs []*job
	for i, r := range results {
		for _, u := range r.Matches() {
			pu, err := urlkind.Parse(u)
			if err != nil || provenance.StrategyFor(pu.Hostname()) != provenance.FetchAndScore {
				continue
			}
			jobs = append(jobs, &job{result: i, url: u})
		}
	}
	if len(jobs) == 0 {
		return
	}

	sem := make(chan struct{}, s.socialConcurrency)
	var wg sync.WaitGroup
	for _, j := range jobs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			score := s.checker.CheckURL(ctx, j.url, identity)
			j.owned = score >= s.threshold
			s.logger.DebugContext(ctx, "social link checked", "url", j.url, "score", score)
		}()
	}
	wg.Wait()

	remove := make([][]string, len(results))
	for _, j := range jobs {
		if j.owned {
			remove[j.result] = append(remove[j.result], j.url)
		}
	}
	for i, urls := range remove {
		if n := results[i].Remove(urls...); n > 0 {
			metrics.EvidenceRemovedTotal.WithLabelValues("social").Add(float64(n))
			s.logger.InfoContext(ctx, "removed author's own social links", "index", results[i].GalleryIndex(), "removed", n)
		}
	}
}
