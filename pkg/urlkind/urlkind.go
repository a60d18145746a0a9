// Package urlkind classifies web-detection URLs: Reddit permalinks versus
// listing pages, external pages, social group pages, and direct media links.
package urlkind

import (
	"errors"
	"fmt"
	"net/url"
	"path"
	"regexp"
	"strings"
)

// Kind is the role a page URL plays as evidence.
type Kind int

// Page kinds, in no particular order.
const (
	Unknown   Kind = iota
	Permalink      // a Reddit URL identifying one post
	Listing        // a Reddit URL that is not a permalink (subreddit, gallery, user page)
	External       // an https page outside Reddit
	Group          // a social-media group page, normalized to the group itself
)

func (k Kind) String() string {
	switch k {
	case Permalink:
		return "permalink"
	case Listing:
		return "listing"
	case External:
		return "external"
	case Group:
		return "group"
	default:
		return "unknown"
	}
}

// ErrMalformed is returned by Parse for URLs without a scheme or host.
var ErrMalformed = errors.New("malformed url")

var (
	postIDRE = regexp.MustCompile(`(?i)/comments/([a-z0-9]+)`)
	groupRE  = regexp.MustCompile(`(?i)^/groups/([^/?#]+)`)

	mediaExtensions = map[string]bool{
		".jpg": true, ".jpeg": true, ".png": true, ".gif": true, ".gifv": true,
		".webp": true, ".avif": true, ".bmp": true, ".mp4": true, ".webm": true,
	}

	// Hosts that serve nothing but media files.
	mediaHosts = []string{
		"i.redd.it", "v.redd.it", "preview.redd.it", "external-preview.redd.it",
		"i.imgur.com", "i.pinimg.com", "pbs.twimg.com",
		"fbcdn.net", "cdninstagram.com", "redditmedia.com",
	}

	// Hosts Reddit uses for sidebar thumbnails, subreddit styling and emoji.
	thumbnailHosts = []string{
		"a.thumbs.redditmedia.com", "b.thumbs.redditmedia.com",
		"styles.redditmedia.com", "emoji.redditmedia.com",
		"external-preview.redd.it", "redditstatic.com",
	}
)

// Parse parses rawURL and rejects anything lacking a scheme or host.
func Parse(rawURL string) (*url.URL, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return nil, fmt.Errorf("parse %q: %w", rawURL, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("%w: %q", ErrMalformed, rawURL)
	}
	return u, nil
}

// HostIs reports whether host equals domain or is a subdomain of it.
func HostIs(host, domain string) bool {
	host = strings.ToLower(host)
	return host == domain || strings.HasSuffix(host, "."+domain)
}

func hostIsAny(host string, domains []string) bool {
	for _, d := range domains {
		if HostIs(host, d) {
			return true
		}
	}
	return false
}

// IsRedditHost reports whether host belongs to the Reddit family, including
// its media CDNs.
func IsRedditHost(host string) bool {
	return hostIsAny(host, []string{"reddit.com", "redd.it", "redditmedia.com", "redditstatic.com"})
}

// IsRedditPermalink reports whether u identifies a single Reddit post: a
// reddit.com host, "comments" in the path, and no query string. Query strings
// mark variants such as ?tl= auto-translations. User pages only count when
// they link a post, so /user/comments_fan/ stays a listing.
func IsRedditPermalink(u *url.URL) bool {
	if !HostIs(u.Hostname(), "reddit.com") || u.RawQuery != "" {
		return false
	}
	p := strings.ToLower(u.Path)
	if strings.HasPrefix(p, "/user/") || strings.HasPrefix(p, "/u/") {
		return strings.Contains(p, "/comments/")
	}
	return strings.Contains(p, "comments")
}

// PostID extracts the base-36 post ID from a Reddit comments URL.
func PostID(rawURL string) string {
	if m := postIDRE.FindStringSubmatch(rawURL); len(m) > 1 {
		return strings.ToLower(m[1])
	}
	return ""
}

// IsDirectMedia reports whether rawURL points straight at an image or video.
func IsDirectMedia(rawURL string) bool {
	u, err := Parse(rawURL)
	if err != nil {
		return false
	}
	if hostIsAny(u.Hostname(), mediaHosts) {
		return true
	}
	return mediaExtensions[strings.ToLower(path.Ext(u.Path))]
}

// IsRedditMedia reports whether rawURL is a direct media link on a Reddit host.
func IsRedditMedia(rawURL string) bool {
	u, err := Parse(rawURL)
	if err != nil {
		return false
	}
	return IsRedditHost(u.Hostname()) && IsDirectMedia(rawURL)
}

// IsThumbnailAsset reports whether rawURL is served from a Reddit thumbnail
// or styling host.
func IsThumbnailAsset(rawURL string) bool {
	u, err := Parse(rawURL)
	if err != nil {
		return false
	}
	return hostIsAny(u.Hostname(), thumbnailHosts)
}

// GroupURL returns the canonical group URL for a Facebook group page or post,
// e.g. https://www.facebook.com/groups/foo/posts/123 => https://www.facebook.com/groups/foo/.
func GroupURL(u *url.URL) (string, bool) {
	if !HostIs(u.Hostname(), "facebook.com") {
		return "", false
	}
	m := groupRE.FindStringSubmatch(u.Path)
	if len(m) < 2 {
		return "", false
	}
	return "https://www.facebook.com/groups/" + strings.ToLower(m[1]) + "/", true
}

// Classify returns the kind of a candidate page URL and the URL to record as
// evidence. Group pages are rewritten to their canonical group URL.
func Classify(u *url.URL) (Kind, string) {
	if IsRedditHost(u.Hostname()) {
		if IsRedditPermalink(u) {
			return Permalink, u.String()
		}
		return Listing, u.String()
	}
	if canonical, ok := GroupURL(u); ok {
		return Group, canonical
	}
	if u.Scheme == "https" {
		return External, u.String()
	}
	return Unknown, u.String()
}

// SameSite reports whether two hosts share a registrable domain, judged by
// their last two labels (www.example.com and cdn.example.com match).
func SameSite(a, b string) bool {
	return lastLabels(a, 2) != "" && lastLabels(a, 2) == lastLabels(b, 2)
}

func lastLabels(host string, n int) string {
	parts := strings.Split(strings.ToLower(strings.TrimSuffix(host, ".")), ".")
	if len(parts) < n {
		return ""
	}
	return strings.Join(parts[len(parts)-n:], ".")
}
