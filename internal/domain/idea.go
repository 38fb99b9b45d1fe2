package domain

import "time"

// IdeaKind selects which record variant the pipeline derives.
type IdeaKind string

const (
	KindBusiness  IdeaKind = "business"
	KindMarketing IdeaKind = "marketing"
)

// RecordStatus is the outcome of validating a parsed record.
type RecordStatus string

const (
	StatusCompleted RecordStatus = "completed"
	StatusFailed    RecordStatus = "failed"
)

// BusinessIdea holds the business-specific fields of a record.
type BusinessIdea struct {
	Opportunities     []string
	ProblemsSolved    []string
	TargetCustomers   []string
	MarketSize        []string
	MarketingStrategy []string
	Niche             string
	Category          string
}

// MarketingIdea holds the marketing-specific fields of a record.
type MarketingIdea struct {
	Channels       []string
	TargetAudience []string
	KeyMessages    []string
	Tactics        []string
	ImpactLevel    string
}

// ExtractedRecord is a structured idea derived from one candidate post.
// Exactly one of Business or Marketing is set, matching Kind.
type ExtractedRecord struct {
	ID             string
	ParentID       string
	PostExternalID string
	Kind           IdeaKind
	Name           string
	Business       *BusinessIdea
	Marketing      *MarketingIdea
	FullAnalysis   string
	Status         RecordStatus
	CreatedAt      time.Time
}
