// Package normalize canonicalizes job-title strings for matching. All
// functions are pure, total, and idempotent; they never return an error.
package normalize

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/width"
)

// punctFolder unifies the separator variants that differ between upstream
// payloads and the portal's displayed titles. Decorative brackets fold to
// ASCII parentheses so a second Normalize pass is a no-op after width folding.
var punctFolder = strings.NewReplacer(
	"・", "/",
	"−", "-", // U+2212 minus sign
	"‐", "-", // U+2010 hyphen
	"〈", "(",
	"〉", ")",
)

// Normalize reduces a title to its comparable form: half/full-width variants
// folded, all whitespace removed, separator punctuation unified, case folded.
// Empty input yields the empty string.
func Normalize(title string) string {
	if title == "" {
		return ""
	}

	// Fold width variants first: full-width ASCII and punctuation become
	// their narrow forms, half-width katakana becomes full-width.
	folded := width.Fold.String(title)

	var b strings.Builder
	b.Grow(len(folded))
	for _, r := range folded {
		if unicode.IsSpace(r) || r == '　' {
			continue
		}
		b.WriteRune(r)
	}

	return strings.ToLower(punctFolder.Replace(b.String()))
}

var (
	decorationChars = regexp.MustCompile(`[【】〈〉（）()★☆◆◇■□▲△▼▽]`)
	separatorRuns   = regexp.MustCompile(`[・/\-]{2,}`)
	edgeSeparators  = regexp.MustCompile(`^[・/\-]+|[・/\-]+$`)
)

// StripDecoration removes bracket/star/geometric clutter from a title,
// collapses runs of separator punctuation, and trims separators from both
// ends. Single interior separators are kept: they are part of the title.
func StripDecoration(title string) string {
	if title == "" {
		return ""
	}

	s := decorationChars.ReplaceAllString(title, "")
	s = separatorRuns.ReplaceAllString(s, "")
	s = edgeSeparators.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}

// CoreForm is the maximally reduced comparable form of a title: normalized,
// then stripped of decoration.
func CoreForm(title string) string {
	return StripDecoration(Normalize(title))
}
