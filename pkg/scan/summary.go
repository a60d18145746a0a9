package scan

import (
	"github.com/codeGROOVE-dev/picturepolice/pkg/match"
	"github.com/codeGROOVE-dev/picturepolice/pkg/urlkind"
)

// MaxScore returns the highest score among results, or 0.
func MaxScore(results []*match.Result) int {
	best := 0
	for _, r := range results {
		best = max(best, r.Score())
	}
	return best
}

// TotalMatches returns the number of evidence URLs across results.
func TotalMatches(results []*match.Result) int {
	n := 0
	for _, r := range results {
		n += r.NumMatches()
	}
	return n
}

// Example is one representative evidence URL for a gallery image.
type Example struct {
	GalleryIndex int    `json:"galleryIndex"`
	URL          string `json:"url"`
}

// ExampleURLs picks one evidence URL per result that still has evidence,
// preferring the first Reddit URL.
func ExampleURLs(results []*match.Result) []Example {
	var out []Example
	for _, r := range results {
		urls := r.Matches()
		if len(urls) == 0 {
			continue
		}
		pick := urls[0]
		for _, u := range urls {
			if pu, err := urlkind.Parse(u); err == nil && urlkind.IsRedditHost(pu.Hostname()) {
				pick = u
				break
			}
		}
		out = append(out, Example{GalleryIndex: r.GalleryIndex(), URL: pick})
	}
	return out
}
