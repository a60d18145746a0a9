// Package htmlutil pulls a small page summary out of raw HTML using patterns.
// It never builds a DOM; pages are only inspected for a handful of tags.
package htmlutil

import (
	"html"
	"regexp"
	"strings"
)

var (
	titlePattern = regexp.MustCompile(`(?is)<title[^>]*>(.*?)</title>`)
	// Attribute values are matched per quote style so an apostrophe inside a
	// double-quoted value stays part of it.
	descPattern       = metaPattern(`name=["']description["']`)
	descPatternAlt    = metaPatternReversed(`name=["']description["']`)
	ogTitlePattern    = metaPattern(`property=["']og:title["']`)
	ogTitlePatternAlt = metaPatternReversed(`property=["']og:title["']`)
	multiSpace        = regexp.MustCompile(`\s+`)
)

const contentAttr = `content=(?:"([^"]*)"|'([^']*)')`

// metaPattern matches a <meta> tag whose key attribute precedes content.
func metaPattern(key string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)<meta[^>]+` + key + `[^>]+` + contentAttr)
}

// metaPatternReversed matches a <meta> tag whose content precedes the key.
func metaPatternReversed(key string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)<meta[^>]+` + contentAttr + `[^>]+` + key)
}

// Title extracts the <title> element text.
func Title(htmlContent string) string {
	return first(htmlContent, titlePattern)
}

// Description extracts <meta name="description"> content.
func Description(htmlContent string) string {
	return first(htmlContent, descPattern, descPatternAlt)
}

// OGTitle extracts <meta property="og:title"> content.
func OGTitle(htmlContent string) string {
	return first(htmlContent, ogTitlePattern, ogTitlePatternAlt)
}

// Summary joins title, description and og:title into one string suitable for
// identity scoring. Empty parts are skipped.
func Summary(htmlContent string) string {
	var parts []string
	for _, s := range []string{Title(htmlContent), Description(htmlContent), OGTitle(htmlContent)} {
		if s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, " ")
}

func first(htmlContent string, patterns ...*regexp.Regexp) string {
	for _, p := range patterns {
		m := p.FindStringSubmatch(htmlContent)
		if m == nil {
			continue
		}
		// The value sits in whichever quote-style group matched.
		var s string
		for _, g := range m[1:] {
			if g != "" {
				s = g
				break
			}
		}
		s = html.UnescapeString(s)
		return strings.TrimSpace(multiSpace.ReplaceAllString(s, " "))
	}
	return ""
}
