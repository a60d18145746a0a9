// Package webdetect fetches reverse-image-search results ("web detection")
// for an image URL and validates them into Candidate Pages.
package webdetect

import (
	"context"
	"errors"
	"strings"

	vision "google.golang.org/api/vision/v1"
)

// ErrNoResult means the provider answered but had nothing usable for the image.
var ErrNoResult = errors.New("no web detection result")

// Image is one matching-image record.
type Image struct {
	URL string `json:"url"`
}

// Page is one web-detection hit: a page that shows the image.
type Page struct {
	URL            string  `json:"url"`
	Title          string  `json:"pageTitle,omitempty"`
	FullMatches    []Image `json:"fullMatchingImages,omitempty"`
	PartialMatches []Image `json:"partialMatchingImages,omitempty"`
}

// HasFull reports whether the page carries any full (pixel-identical) match.
func (p Page) HasFull() bool { return len(p.FullMatches) > 0 }

// HasPartial reports whether the page carries any partial match.
func (p Page) HasPartial() bool { return len(p.PartialMatches) > 0 }

// Detection is the validated provider response for one image.
type Detection struct {
	Pages []Page `json:"pagesWithMatchingImages"`
}

// Detector looks up web-detection results for an image URL.
type Detector interface {
	Detect(ctx context.Context, imageURL string) (*Detection, error)
}

// DetectorFunc adapts a function to the Detector interface.
type DetectorFunc func(ctx context.Context, imageURL string) (*Detection, error)

// Detect calls f.
func (f DetectorFunc) Detect(ctx context.Context, imageURL string) (*Detection, error) {
	return f(ctx, imageURL)
}

// FromVision converts a Cloud Vision web-detection block into a Detection.
// Pages without a URL and image records without a URL are dropped. It
// returns nil when wd is nil.
func FromVision(wd *vision.WebDetection) *Detection {
	if wd == nil {
		return nil
	}
	d := &Detection{Pages: make([]Page, 0, len(wd.PagesWithMatchingImages))}
	for _, wp := range wd.PagesWithMatchingImages {
		if wp == nil {
			continue
		}
		u := strings.TrimSpace(wp.Url)
		if u == "" {
			continue
		}
		d.Pages = append(d.Pages, Page{
			URL:            u,
			Title:          wp.PageTitle,
			FullMatches:    images(wp.FullMatchingImages),
			PartialMatches: images(wp.PartialMatchingImages),
		})
	}
	return d
}

func images(in []*vision.WebImage) []Image {
	var out []Image
	for _, wi := range in {
		if wi == nil || strings.TrimSpace(wi.Url) == "" {
			continue
		}
		out = append(out, Image{URL: strings.TrimSpace(wi.Url)})
	}
	return out
}
