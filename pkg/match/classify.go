package match

import (
	"log/slog"
	"net/url"
	"slices"
	"strings"

	"github.com/codeGROOVE-dev/picturepolice/pkg/confidence"
	"github.com/codeGROOVE-dev/picturepolice/pkg/urlkind"
	"github.com/codeGROOVE-dev/picturepolice/pkg/webdetect"
)

type config struct {
	logger *slog.Logger
}

// Option configures Classify.
type Option func(*config)

// WithLogger sets a logger for classification.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) { c.logger = logger }
}

// bucket is an insertion-ordered set of evidence.
type bucket struct {
	seen  map[string]bool
	items []Evidence
}

func newBucket() *bucket { return &bucket{seen: make(map[string]bool)} }

func (b *bucket) add(u string, t Tier) {
	if b.seen[u] {
		return
	}
	b.seen[u] = true
	b.items = append(b.items, Evidence{
		URL:         u,
		Tier:        t,
		DirectMedia: urlkind.IsDirectMedia(u),
		Permalink:   t == TierFullPermalink || t == TierPartialPermalink,
	})
}

// addMedia adds the direct-media URLs among imgs.
func (b *bucket) addMedia(imgs []webdetect.Image, t Tier) {
	for _, img := range imgs {
		if urlkind.IsDirectMedia(img.URL) {
			b.add(img.URL, t)
		}
	}
}

type classifier struct {
	logger    *slog.Logger
	selfForms []string
	primary   *bucket
	secondary *bucket
}

// Classify builds the Result for one image from its candidate pages. identity
// is the submitting author's username; index is the image's 1-based gallery
// position. Pages with malformed URLs are skipped.
func Classify(pages []webdetect.Page, identity string, index int, opts ...Option) *Result {
	cfg := &config{logger: slog.Default()}
	for _, opt := range opts {
		opt(cfg)
	}
	c := &classifier{
		logger:    cfg.logger,
		selfForms: selfForms(identity),
		primary:   newBucket(),
		secondary: newBucket(),
	}
	for _, p := range pages {
		c.admit(p)
	}

	r := &Result{index: index}
	switch {
	case len(c.primary.items) > 0:
		r.evidence = c.primary.items
	case len(c.secondary.items) > 0:
		r.evidence = c.secondary.items
		r.onlyPartial = true
	}
	slices.SortStableFunc(r.evidence, func(a, b Evidence) int { return int(a.Tier) - int(b.Tier) })
	r.originalCount = len(r.evidence)
	if r.onlyPartial {
		r.onlyDirectImage = !slices.ContainsFunc(r.evidence, func(e Evidence) bool {
			return !e.DirectMedia || e.Permalink
		})
	}

	c.logger.Debug("classified image",
		"index", index, "pages", len(pages), "evidence", r.originalCount,
		"only_partial", r.onlyPartial, "only_direct_image", r.onlyDirectImage)
	return r
}

// selfForms returns the lowercase spellings of identity that mark a URL as
// the author's own: verbatim, separator-stripped and hyphen-normalized.
func selfForms(identity string) []string {
	id := strings.ToLower(strings.TrimSpace(identity))
	if id == "" {
		return nil
	}
	forms := []string{id}
	for _, f := range []string{confidence.StripSeparators(id), strings.ReplaceAll(id, "_", "-")} {
		if f != "" && !slices.Contains(forms, f) {
			forms = append(forms, f)
		}
	}
	return forms
}

func (c *classifier) isSelf(rawURL string) bool {
	lower := strings.ToLower(rawURL)
	for _, f := range c.selfForms {
		if strings.Contains(lower, f) {
			return true
		}
	}
	return false
}

func (c *classifier) admit(p webdetect.Page) {
	u, err := urlkind.Parse(p.URL)
	if err != nil {
		c.logger.Warn("skipping page with malformed url", "url", p.URL, "error", err)
		return
	}
	if c.isSelf(p.URL) {
		c.logger.Debug("skipping author's own page", "url", p.URL)
		return
	}
	// Sites that hotlink Reddit's CDN often show unrelated content.
	if !urlkind.IsRedditHost(u.Hostname()) && p.HasFull() && all(p.FullMatches, urlkind.IsRedditMedia) {
		c.logger.Debug("skipping reddit media mirror", "url", p.URL)
		return
	}

	kind, canonical := urlkind.Classify(u)
	// Posts in one group share a canonical URL, so each bucket keeps the
	// group once whichever post reached it first.
	group := kind == urlkind.Group
	if group {
		kind = urlkind.External
	}

	switch {
	case p.HasFull() && kind == urlkind.Permalink:
		c.primary.add(canonical, TierFullPermalink)
	case p.HasFull() && kind == urlkind.External:
		if !group {
			canonical = sameSiteImage(u, p.FullMatches, canonical)
		}
		c.primary.add(canonical, TierFullExternal)
	case p.HasFull() && kind == urlkind.Listing:
		c.secondary.addMedia(p.FullMatches, TierFullListing)
	case p.HasPartial() && kind == urlkind.Permalink:
		if all(p.PartialMatches, urlkind.IsThumbnailAsset) || all(p.PartialMatches, urlkind.IsDirectMedia) {
			c.logger.Debug("skipping sidebar partial match", "url", p.URL)
			return
		}
		c.secondary.add(canonical, TierPartialPermalink)
	case p.HasPartial() && kind == urlkind.External:
		c.secondary.add(canonical, TierPartialExternal)
	case p.HasPartial() && kind == urlkind.Listing:
		c.secondary.addMedia(p.PartialMatches, TierPartialListing)
	default:
		c.logger.Debug("dropping unclassified page", "url", p.URL, "kind", kind.String())
	}
}

// sameSiteImage returns the first direct-media full match hosted on the
// page's own site, or fallback.
func sameSiteImage(page *url.URL, imgs []webdetect.Image, fallback string) string {
	for _, img := range imgs {
		if !urlkind.IsDirectMedia(img.URL) {
			continue
		}
		iu, err := urlkind.Parse(img.URL)
		if err != nil {
			continue
		}
		if urlkind.SameSite(page.Hostname(), iu.Hostname()) {
			return img.URL
		}
	}
	return fallback
}

func all(imgs []webdetect.Image, pred func(string) bool) bool {
	if len(imgs) == 0 {
		return false
	}
	for _, img := range imgs {
		if !pred(img.URL) {
			return false
		}
	}
	return true
}
