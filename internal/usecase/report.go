package usecase

import (
	"fmt"
	"strings"
	"time"

	"IdeaScanner/internal/domain"
)

// Skip stages.
const (
	SkipFilter      = "filter"
	SkipCap         = "cap"
	SkipPreFilter   = "prefilter"
	SkipFingerprint = "fingerprint"
	SkipDuplicate   = "duplicate"
	SkipExtraction  = "extraction"
	SkipValidation  = "validation"
	SkipPersistence = "persistence"
	SkipBatch       = "batch"
)

// Skip explains why a post or one of its ideas produced no record.
type Skip struct {
	PostID string
	Stage  string
	Reason string
}

// Report summarises one run.
type Report struct {
	RunID     string
	StartedAt time.Time
	Duration  time.Duration

	Fetched       int
	Filtered      int
	Duplicates    int
	Extracted     int
	Rejected      int
	Persisted     int
	Batches       int
	FailedBatches int

	Records []domain.ExtractedRecord
	Skips   []Skip
}

// Summary renders the run for chat notifications.
func (r *Report) Summary() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Idea scan %s\n", shortID(r.RunID))
	fmt.Fprintf(&b, "fetched %d, filtered %d, duplicates %d, extracted %d, rejected %d, saved %d\n",
		r.Fetched, r.Filtered, r.Duplicates, r.Extracted, r.Rejected, r.Persisted)
	if r.FailedBatches > 0 {
		fmt.Fprintf(&b, "failed batches: %d of %d\n", r.FailedBatches, r.Batches)
	}
	for _, rec := range r.Records {
		fmt.Fprintf(&b, "\n- %s (%s)", rec.Name, rec.PostExternalID)
	}
	return b.String()
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
