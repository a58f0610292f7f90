// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package slug turns page titles into the path segment a page is served
// under.
package slug

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// MaxLen bounds generated slugs. Longer results are cut at a hyphen.
const MaxLen = 80

// separators matches every run of characters that cannot appear in a slug.
var separators = regexp.MustCompile(`[^a-z0-9]+`)

// Generate lower-cases s, folds accented letters to ASCII and joins the
// remaining words with single hyphens: "Café & Bar, Zürich" becomes
// "cafe-bar-zurich".
func Generate(s string) string {
	folded, _, err := transform.String(foldMarks(), s)
	if err != nil {
		folded = s
	}
	result := separators.ReplaceAllString(strings.ToLower(folded), "-")
	result = strings.Trim(result, "-")
	if len(result) > MaxLen {
		cut := result[:MaxLen]
		if result[MaxLen] != '-' {
			if i := strings.LastIndexByte(cut, '-'); i > 0 {
				cut = cut[:i]
			}
		}
		result = strings.TrimRight(cut, "-")
	}
	return result
}

// foldMarks decomposes letters and drops the combining marks, leaving the
// base letter.
func foldMarks() transform.Transformer {
	return transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
}
