// Package confidence scores how strongly an identity (username) appears in
// arbitrary text such as a URL or a page summary.
package confidence

import (
	"regexp"
	"strings"
)

// Score levels returned by Score.
const (
	Exact     = 100 // identity appears verbatim
	Variation = 90  // identity appears once separators are ignored
	Most      = 80  // more than two thirds of the identity's tokens appear
	Some      = 50  // at least one token appears
	None      = 0
)

var (
	separatorRE   = regexp.MustCompile(`[-_]`)
	camelRE       = regexp.MustCompile(`([a-z])([A-Z])`)
	letterDigitRE = regexp.MustCompile(`([a-zA-Z])([0-9])`)
	digitLetterRE = regexp.MustCompile(`([0-9])([a-zA-Z])`)
)

// Tokenize splits an identity on hyphens, underscores, camel-case
// transitions, and letter/digit boundaries. Tokens are lower-cased.
//
//	Tokenize("MyReallyCoolUsername-88") => ["my", "really", "cool", "username", "88"]
func Tokenize(identity string) []string {
	s := separatorRE.ReplaceAllString(identity, " ")
	s = camelRE.ReplaceAllString(s, "$1 $2")
	s = letterDigitRE.ReplaceAllString(s, "$1 $2")
	s = digitLetterRE.ReplaceAllString(s, "$1 $2")

	fields := strings.Fields(s)
	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		tokens = append(tokens, strings.ToLower(f))
	}
	return tokens
}

// StripSeparators removes hyphens and underscores.
func StripSeparators(s string) string {
	return separatorRE.ReplaceAllString(s, "")
}

// Score returns 0-100 describing how strongly identity appears in text.
// Matching is case-insensitive. Empty input scores 0.
func Score(identity, text string) int {
	if identity == "" || text == "" {
		return None
	}

	id := strings.ToLower(identity)
	lower := strings.ToLower(text)

	if strings.Contains(lower, id) {
		return Exact
	}

	if stripped := StripSeparators(id); stripped != "" &&
		strings.Contains(StripSeparators(lower), stripped) {
		return Variation
	}

	tokens := Tokenize(identity)
	if len(tokens) == 0 {
		return None
	}

	var found int
	for _, t := range tokens {
		if strings.Contains(lower, t) {
			found++
		}
	}

	// found/len > 2/3, kept in integers.
	if found*3 > len(tokens)*2 {
		return Most
	}
	if found > 0 {
		return Some
	}
	return None
}
