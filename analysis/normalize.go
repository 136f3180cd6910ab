// Package analysis derives structured facts from the free-form text of
// first-instance judicial decisions: the dispositivo window, the outcome
// label, and header metadata. All heuristics are lexical and best-effort;
// a document no rule matches degrades to empty fields or OUTRO, never to
// an error.
package analysis

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// deaccent decomposes to NFD, drops combining marks, and recomposes.
var deaccent = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Normalize lowercases, strips diacritics, and collapses whitespace runs
// to single spaces. Classification rules match against this form only.
func Normalize(s string) string {
	s = strings.ToLower(s)
	if out, _, err := transform.String(deaccent, s); err == nil {
		s = out
	}
	return strings.Join(strings.Fields(s), " ")
}

// foldSpace collapses whitespace runs to single spaces without touching
// case or diacritics. Used where the original text must stay readable.
func foldSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// clampEnd returns the largest rune-boundary offset <= limit.
func clampEnd(s string, limit int) int {
	if limit >= len(s) {
		return len(s)
	}
	for limit > 0 && s[limit]&0xC0 == 0x80 {
		limit--
	}
	return limit
}

// clampStart returns the smallest rune-boundary offset >= off.
func clampStart(s string, off int) int {
	if off <= 0 {
		return 0
	}
	if off >= len(s) {
		return len(s)
	}
	for off < len(s) && s[off]&0xC0 == 0x80 {
		off++
	}
	return off
}
