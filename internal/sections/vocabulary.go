package sections

import (
	"strings"
	"unicode"

	ahocorasick "github.com/cloudflare/ahocorasick"
)

// Term maps a keyword found in free text to a canonical value. Surrounding
// spaces in Keyword are kept and act as word boundaries (" ai ").
type Term struct {
	Keyword string
	Value   string
}

// Vocabulary is an ordered keyword list; the earliest listed term that
// occurs anywhere in the text wins.
type Vocabulary struct {
	terms   []Term
	matcher *ahocorasick.Matcher
}

// NewVocabulary builds the matcher. Keywords are matched lower-cased.
func NewVocabulary(terms []Term) *Vocabulary {
	v := &Vocabulary{}
	keywords := make([]string, 0, len(terms))
	for _, t := range terms {
		if strings.TrimSpace(t.Keyword) == "" {
			continue
		}
		kw := strings.ToLower(t.Keyword)
		v.terms = append(v.terms, Term{Keyword: kw, Value: t.Value})
		keywords = append(keywords, kw)
	}
	if len(keywords) > 0 {
		v.matcher = ahocorasick.NewStringMatcher(keywords)
	}
	return v
}

// Lookup scans text and returns the value of the first listed keyword present.
func (v *Vocabulary) Lookup(text string) (string, bool) {
	if v == nil || v.matcher == nil {
		return "", false
	}

	normalized := normalizeForLookup(text)
	first := -1
	for _, h := range v.matcher.Match([]byte(normalized)) {
		if h < 0 || h >= len(v.terms) || (first >= 0 && h >= first) {
			continue
		}
		// The matcher can report keywords sharing a suffix state; confirm.
		if strings.Contains(normalized, v.terms[h].Keyword) {
			first = h
		}
	}
	if first < 0 {
		return "", false
	}
	return v.terms[first].Value, true
}

// normalizeForLookup lower-cases text, turns whitespace and punctuation other
// than '-' and '&' into spaces and pads both ends so boundary keywords match
// at the start and end of the text.
func normalizeForLookup(text string) string {
	mapped := strings.Map(func(r rune) rune {
		switch {
		case r == '-' || r == '&':
			return r
		case unicode.IsSpace(r) || unicode.IsPunct(r) || unicode.IsSymbol(r):
			return ' '
		default:
			return unicode.ToLower(r)
		}
	}, text)
	return " " + mapped + " "
}
