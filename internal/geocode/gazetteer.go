package geocode

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Gazetteer decides whether recognized map text is worth geocoding.
//
// Text qualifies when it has at least MinLength runes, is not purely
// numeric, and its lower-cased form contains one of the keywords.
type Gazetteer struct {
	keywords  []string
	minLength int
}

// NewGazetteer builds a filter from keywords. Matching lower-cases with
// Czech rules so diacritics such as "Ř" fold to "ř".
func NewGazetteer(keywords []string, minLength int) *Gazetteer {
	lower := cases.Lower(language.Czech)
	kw := make([]string, 0, len(keywords))
	for _, k := range keywords {
		k = strings.TrimSpace(lower.String(k))
		if k != "" {
			kw = append(kw, k)
		}
	}
	return &Gazetteer{keywords: kw, minLength: minLength}
}

// Relevant reports whether text looks like a place reference.
func (g *Gazetteer) Relevant(text string) bool {
	if utf8.RuneCountInString(text) < g.minLength || allDigits(text) {
		return false
	}
	// A Caser is not safe for concurrent use.
	lower := cases.Lower(language.Czech).String(text)
	for _, k := range g.keywords {
		if strings.Contains(lower, k) {
			return true
		}
	}
	return false
}

// Keywords returns the normalized keyword list.
func (g *Gazetteer) Keywords() []string {
	return append([]string(nil), g.keywords...)
}

func allDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
