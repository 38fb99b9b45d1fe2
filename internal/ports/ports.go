package ports

import (
	"context"
	"fmt"
	"time"

	"IdeaScanner/internal/domain"
)

// PostSource pulls candidate posts from community platforms.
type PostSource interface {
	FetchCandidates(ctx context.Context, communities []string, limitPerCommunity int) ([]domain.CandidatePost, error)
}

// RecordStore is the persistence collaborator. Lookups return nil, nil when
// nothing matches.
type RecordStore interface {
	FindPostByExternalID(ctx context.Context, externalID string) (*domain.StoredPost, error)
	FindPostByTitle(ctx context.Context, title string) (*domain.StoredPost, error)
	RecentPostsByAuthor(ctx context.Context, author string, limit int) ([]domain.StoredPost, error)
	InsertPost(ctx context.Context, post domain.CandidatePost) (string, error)
	InsertRecord(ctx context.Context, record domain.ExtractedRecord) (string, error)
}

// Prompt is a single text-completion request.
type Prompt struct {
	System    string
	User      string
	MaxTokens int
}

// Generator is the text-generation model collaborator.
type Generator interface {
	Complete(ctx context.Context, prompt Prompt) (string, error)
}

// FingerprintStore remembers content fingerprints across runs.
type FingerprintStore interface {
	Seen(ctx context.Context, fingerprint string) (bool, error)
	Mark(ctx context.Context, fingerprint string) error
}

// Notifier streams run summaries to Telegram or other channels.
type Notifier interface {
	PublishDigest(ctx context.Context, digest string) error
}

// Stage labels passed to Metrics.AddStage.
const (
	StageFetched   = "fetched"
	StageFiltered  = "filtered"
	StageDuplicate = "duplicate"
	StageExtracted = "extracted"
	StageRejected  = "rejected"
	StagePersisted = "persisted"
)

// Metrics records pipeline stage counters.
type Metrics interface {
	AddStage(stage string, n int)
	BatchFailed()
	ObserveRun(d time.Duration)
}

// Scheduler controls when pipelines execute.
type Scheduler interface {
	Start(ctx context.Context, job func(time.Time)) error
	Stop(ctx context.Context) error
}

// ConstraintKind classifies persistence constraint violations.
type ConstraintKind string

const (
	ConstraintUnique ConstraintKind = "unique"
	ConstraintCheck  ConstraintKind = "check"
)

// ConstraintError is returned by RecordStore inserts when the row violates a
// unique or check constraint. Callers skip the record and continue.
type ConstraintError struct {
	Kind       ConstraintKind
	Constraint string
	Err        error
}

func (e *ConstraintError) Error() string {
	if e.Constraint == "" {
		return fmt.Sprintf("%s constraint violated: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("%s constraint %s violated: %v", e.Kind, e.Constraint, e.Err)
}

func (e *ConstraintError) Unwrap() error {
	return e.Err
}
