// Package match turns one image's web-detection pages into a scored set of
// evidence URLs.
package match

import (
	"encoding/json"
	"math"
	"slices"
)

// Tier is the priority an evidence URL was admitted under. Lower is stronger.
type Tier int

// Evidence tiers, strongest first.
const (
	TierFullPermalink    Tier = iota + 1 // full match on a Reddit post
	TierFullExternal                     // full match on an outside page
	TierFullListing                      // full match on a subreddit or gallery page
	TierPartialPermalink                 // partial match on a Reddit post
	TierPartialExternal                  // partial match on an outside page
	TierPartialListing                   // partial match on a subreddit or gallery page
)

// Primary reports whether the tier belongs in the primary evidence bucket.
func (t Tier) Primary() bool { return t == TierFullPermalink || t == TierFullExternal }

// Evidence is one evidence URL and how it was found.
type Evidence struct {
	URL         string `json:"url"`
	Tier        Tier   `json:"tier"`
	DirectMedia bool   `json:"directMedia"`
	Permalink   bool   `json:"permalink"`
}

// Result is the classification of a single submitted image. Evidence only
// shrinks after construction; OriginalCount never changes.
type Result struct {
	index              int
	evidence           []Evidence
	originalCount      int
	onlyPartial        bool
	onlyDirectImage    bool
	authorUnverifiable bool
}

// GalleryIndex is the 1-based position of the image among the submitted images.
func (r *Result) GalleryIndex() int { return r.index }

// Matches returns the current evidence URLs, ordered by tier then discovery.
func (r *Result) Matches() []string {
	out := make([]string, len(r.evidence))
	for i, e := range r.evidence {
		out[i] = e.URL
	}
	return out
}

// Evidence returns a copy of the current evidence records.
func (r *Result) Evidence() []Evidence { return slices.Clone(r.evidence) }

// NumMatches is the current evidence count (the cleaned count).
func (r *Result) NumMatches() int { return len(r.evidence) }

// CleanedCount is an alias for NumMatches.
func (r *Result) CleanedCount() int { return len(r.evidence) }

// OriginalCount is the evidence count immediately after classification.
func (r *Result) OriginalCount() int { return r.originalCount }

// OnlyPartialEvidence reports whether evidence came only from partial matches.
func (r *Result) OnlyPartialEvidence() bool { return r.onlyPartial }

// OnlyDirectImageEvidence reports whether the evidence is all direct media
// links with no reviewable post.
func (r *Result) OnlyDirectImageEvidence() bool { return r.onlyDirectImage }

// AuthorUnverifiable reports whether a matching post's author could not be
// confirmed.
func (r *Result) AuthorUnverifiable() bool { return r.authorUnverifiable }

// MarkAuthorUnverifiable flags the result as having an unconfirmable author.
func (r *Result) MarkAuthorUnverifiable() { r.authorUnverifiable = true }

// Remove drops the given URLs from the evidence and returns how many were removed.
func (r *Result) Remove(urls ...string) int {
	if len(urls) == 0 {
		return 0
	}
	drop := make(map[string]bool, len(urls))
	for _, u := range urls {
		drop[u] = true
	}
	before := len(r.evidence)
	r.evidence = slices.DeleteFunc(r.evidence, func(e Evidence) bool { return drop[e.URL] })
	return before - len(r.evidence)
}

// Score is the 0-100 confidence that the image was posted elsewhere first.
func (r *Result) Score() int {
	return Score(r.originalCount, len(r.evidence), r.onlyPartial, r.onlyDirectImage, r.authorUnverifiable)
}

// Score computes the share of original evidence that survived removal as a
// percentage, then divides by 2 for partial-only evidence, by 2.1 for
// direct-image-only evidence and by 2 for an unverifiable author.
// An original count of zero scores 0.
func Score(original, cleaned int, onlyPartial, onlyDirectImage, authorUnverifiable bool) int {
	if original <= 0 {
		return 0
	}
	cleaned = max(0, min(cleaned, original))
	s := math.Round((1 - float64(original-cleaned)/float64(original)) * 100)
	if onlyPartial {
		s /= 2
	}
	if onlyDirectImage {
		s /= 2.1
	}
	if authorUnverifiable {
		s /= 2
	}
	return int(math.Round(s))
}

type resultJSON struct {
	GalleryIndex            int        `json:"galleryIndex"`
	Matches                 []string   `json:"matches"`
	NumMatches              int        `json:"numMatches"`
	OriginalCount           int        `json:"originalCount"`
	Score                   int        `json:"score"`
	OnlyPartialEvidence     bool       `json:"onlyPartialEvidence"`
	OnlyDirectImageEvidence bool       `json:"onlyDirectImageEvidence"`
	AuthorUnverifiable      bool       `json:"authorUnverifiable"`
	Evidence                []Evidence `json:"evidence"`
}

// MarshalJSON renders the result with its derived score.
func (r *Result) MarshalJSON() ([]byte, error) {
	return json.Marshal(resultJSON{
		GalleryIndex:            r.index,
		Matches:                 r.Matches(),
		NumMatches:              len(r.evidence),
		OriginalCount:           r.originalCount,
		Score:                   r.Score(),
		OnlyPartialEvidence:     r.onlyPartial,
		OnlyDirectImageEvidence: r.onlyDirectImage,
		AuthorUnverifiable:      r.authorUnverifiable,
		Evidence:                r.Evidence(),
	})
}
