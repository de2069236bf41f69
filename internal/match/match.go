// Package match implements whole-word phrase matching over lowercased narration.
// Phrases come from compendium data, so they are always treated as literal text.
package match

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Matcher reports whole-word occurrences of literal phrases and caches the
// compiled pattern for every normalized phrase it has seen.
// A Matcher is not safe for concurrent use.
type Matcher struct {
	cache map[string]*regexp.Regexp
}

// New returns an empty Matcher.
func New() *Matcher {
	return &Matcher{cache: make(map[string]*regexp.Regexp)}
}

// Normalize lowercases and trims a phrase, collapsing inner whitespace.
func Normalize(phrase string) string {
	return strings.Join(strings.Fields(strings.ToLower(phrase)), " ")
}

// Contains reports whether phrase occurs in haystack as a whole word or phrase.
// Callers pass lowercased narration; matching is case-insensitive regardless.
// Empty phrases never match.
func (m *Matcher) Contains(haystack, phrase string) bool {
	return m.Count(haystack, phrase) > 0
}

// ContainsAny returns the first phrase (in slice order) that Contains matches.
func (m *Matcher) ContainsAny(haystack string, phrases []string) (string, bool) {
	for _, p := range phrases {
		if m.Contains(haystack, p) {
			return p, true
		}
	}
	return "", false
}

// Count returns how many non-overlapping whole-word occurrences of phrase
// appear in haystack.
func (m *Matcher) Count(haystack, phrase string) int {
	re := m.compile(phrase)
	if re == nil {
		return 0
	}
	n := 0
	for _, loc := range re.FindAllStringIndex(haystack, -1) {
		if atBoundary(haystack, loc[0], loc[1]) {
			n++
		}
	}
	return n
}

// Len returns the number of cached patterns.
func (m *Matcher) Len() int {
	return len(m.cache)
}

func (m *Matcher) compile(phrase string) *regexp.Regexp {
	key := Normalize(phrase)
	if key == "" {
		return nil
	}
	if re, ok := m.cache[key]; ok {
		return re
	}

	// Inner whitespace in the phrase matches any run of whitespace in the text.
	words := strings.Split(key, " ")
	for i, w := range words {
		words[i] = regexp.QuoteMeta(w)
	}
	// RE2 has no lookbehind, so word boundaries are checked by atBoundary
	// instead of \b, which misbehaves around phrases ending in punctuation.
	re := regexp.MustCompile(`(?i)` + strings.Join(words, `\s+`))
	m.cache[key] = re
	return re
}

func atBoundary(s string, start, end int) bool {
	if start > 0 {
		if r, _ := utf8.DecodeLastRuneInString(s[:start]); isWordRune(r) {
			return false
		}
	}
	if end < len(s) {
		if r, _ := utf8.DecodeRuneInString(s[end:]); isWordRune(r) {
			return false
		}
	}
	return true
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}
