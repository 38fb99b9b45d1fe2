package domain

import "time"

// CandidatePost is a unit of community content eligible for idea extraction.
type CandidatePost struct {
	ExternalID   string
	Title        string
	Body         string
	Community    string
	Author       string
	Score        int
	CommentCount int
	URL          string
	Permalink    string
	CreatedAt    time.Time

	// InternalID is set when the post already has a persisted parent row.
	// Empty means the parent must be inserted before derived records.
	InternalID string
}

// Persisted reports whether the post already owns a parent row.
func (p CandidatePost) Persisted() bool {
	return p.InternalID != ""
}

// StoredPost is the slice of a persisted parent row the detector inspects.
type StoredPost struct {
	ID         string
	ExternalID string
	Title      string
	Body       string
	Community  string
	Author     string
	CreatedAt  time.Time
}

// DuplicateVerdict is produced per candidate by the duplicate detector.
type DuplicateVerdict struct {
	IsDuplicate bool
	Reason      string
	MatchedID   string
}
