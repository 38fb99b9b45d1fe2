// Package fingerprint derives cheap content digests for intra-run deduplication.
package fingerprint

import (
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// Of returns a stable hex digest of the post title and body. Case and
// whitespace differences do not change the result.
func Of(title, body string) string {
	d := xxhash.New()
	_, _ = d.WriteString(canonical(title))
	_, _ = d.WriteString("\x00")
	_, _ = d.WriteString(canonical(body))
	return strconv.FormatUint(d.Sum64(), 16)
}

func canonical(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// Set is an append-only record of fingerprints seen during one run.
type Set struct {
	seen map[string]struct{}
}

// NewSet builds an empty set.
func NewSet() *Set {
	return &Set{seen: map[string]struct{}{}}
}

// Add records fp and reports whether it was new.
func (s *Set) Add(fp string) bool {
	if _, ok := s.seen[fp]; ok {
		return false
	}
	s.seen[fp] = struct{}{}
	return true
}

// Len returns the number of distinct fingerprints.
func (s *Set) Len() int {
	return len(s.seen)
}
