// Package similarity compares short texts by edit distance and token overlap.
package similarity

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// minTokenLength is the exclusive lower bound on token length counted by TokenOverlap.
const minTokenLength = 3

// Ratio returns 1 - levenshtein(longer, shorter)/len(longer).
// Identical strings score 1.0; an empty side scores 0.0.
func Ratio(a, b string) float64 {
	if a == b {
		return 1.0
	}
	if a == "" || b == "" {
		return 0.0
	}

	longer, shorter := a, b
	if utf8.RuneCountInString(b) > utf8.RuneCountInString(a) {
		longer, shorter = b, a
	}

	longLen := utf8.RuneCountInString(longer)
	return 1.0 - float64(Levenshtein(longer, shorter))/float64(longLen)
}

// Levenshtein is the unit-cost edit distance between a and b, counted in runes.
func Levenshtein(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	if len(ra) == 0 {
		return len(rb)
	}
	if len(rb) == 0 {
		return len(ra)
	}

	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			curr[j] = min(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}

	return prev[len(rb)]
}

// TokenOverlap is the number of shared whitespace tokens longer than three
// runes divided by the size of the larger token set.
func TokenOverlap(a, b string) float64 {
	if a == b {
		return 1.0
	}
	if a == "" || b == "" {
		return 0.0
	}

	setA, setB := tokenSet(a), tokenSet(b)
	larger := max(len(setA), len(setB))
	if larger == 0 {
		return 0.0
	}

	shared := 0
	for token := range setA {
		if _, ok := setB[token]; ok {
			shared++
		}
	}

	return float64(shared) / float64(larger)
}

// Normalize lower-cases s, drops punctuation and collapses whitespace.
func Normalize(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range strings.ToLower(s) {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r):
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

func tokenSet(s string) map[string]struct{} {
	set := map[string]struct{}{}
	for _, token := range strings.Fields(s) {
		if utf8.RuneCountInString(token) > minTokenLength {
			set[token] = struct{}{}
		}
	}
	return set
}
