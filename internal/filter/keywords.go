// Package filter holds the cheap keyword pre-filter run before any model call.
package filter

import (
	"strings"

	ahocorasick "github.com/cloudflare/ahocorasick"

	"IdeaScanner/internal/domain"
)

// DefaultKeywords signal a post describing an unmet need or a pain point.
var DefaultKeywords = []string{
	"i wish",
	"wish there was",
	"is there a tool",
	"is there an app",
	"looking for a tool",
	"looking for an app",
	"would pay",
	"pain point",
	"frustrat",
	"struggl",
	"hate when",
	"annoying",
	"problem",
	"need a way",
	"how do you",
	"alternative to",
	"idea",
	"startup",
	"side project",
	"business",
	"customers",
	"marketing",
}

// Keywords passes posts whose title or body mentions any keyword.
type Keywords struct {
	keywords []string
	matcher  *ahocorasick.Matcher
}

// NewKeywords builds the matcher. With no keywords every post passes.
func NewKeywords(keywords []string) *Keywords {
	normalized := make([]string, 0, len(keywords))
	for _, kw := range keywords {
		if kw = strings.ToLower(strings.TrimSpace(kw)); kw != "" {
			normalized = append(normalized, kw)
		}
	}
	if len(normalized) == 0 {
		return &Keywords{}
	}
	return &Keywords{keywords: normalized, matcher: ahocorasick.NewStringMatcher(normalized)}
}

// Match reports whether the post is worth sending further.
func (k *Keywords) Match(post domain.CandidatePost) bool {
	if k == nil || k.matcher == nil {
		return true
	}
	text := strings.ToLower(post.Title + "\n" + post.Body)
	for _, h := range k.matcher.Match([]byte(text)) {
		// Hits are confirmed; the matcher can report a keyword it did not see.
		if h >= 0 && h < len(k.keywords) && strings.Contains(text, k.keywords[h]) {
			return true
		}
	}
	return false
}

// Apply keeps matching posts in input order.
func (k *Keywords) Apply(posts []domain.CandidatePost) (kept, dropped []domain.CandidatePost) {
	for _, p := range posts {
		if k.Match(p) {
			kept = append(kept, p)
		} else {
			dropped = append(dropped, p)
		}
	}
	return kept, dropped
}
