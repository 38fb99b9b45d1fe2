package ideas

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"IdeaScanner/internal/domain"
	"IdeaScanner/internal/sections"
)

const (
	defaultMinNameLength     = 5
	defaultMinAnalysisLength = 50
)

var blockSeparator = regexp.MustCompile(`(?m)^[ \t]*-{3,}[ \t]*$`)

// SplitBlocks splits one post's model output into idea blocks separated by
// "---" lines. Empty blocks are dropped.
func SplitBlocks(raw string) []string {
	var blocks []string
	for _, part := range blockSeparator.Split(strings.ReplaceAll(raw, "\r\n", "\n"), -1) {
		if strings.TrimSpace(part) != "" {
			blocks = append(blocks, strings.TrimSpace(part))
		}
	}
	return blocks
}

// Build maps a parsed block onto a record of the template's kind. The raw
// block is kept as the full analysis. Status is left for Validator.
func (t *Template) Build(post domain.CandidatePost, raw string) domain.ExtractedRecord {
	res := t.Parse(raw)
	rec := domain.ExtractedRecord{
		PostExternalID: post.ExternalID,
		ParentID:       post.InternalID,
		Kind:           t.Kind,
		Name:           res.Scalar(KeyName),
		FullAnalysis:   strings.TrimSpace(raw),
	}

	switch t.Kind {
	case domain.KindMarketing:
		rec.Marketing = marketingFrom(res)
	default:
		rec.Business = businessFrom(res)
	}
	return rec
}

func businessFrom(res sections.Result) *domain.BusinessIdea {
	return &domain.BusinessIdea{
		Opportunities:     res.List(KeyOpportunities),
		ProblemsSolved:    res.List(KeyProblemsSolved),
		TargetCustomers:   res.List(KeyTargetCustomers),
		MarketSize:        res.List(KeyMarketSize),
		MarketingStrategy: res.List(KeyMarketingStrategy),
		Niche:             res.Scalar(KeyNiche),
		Category:          res.Scalar(KeyCategory),
	}
}

func marketingFrom(res sections.Result) *domain.MarketingIdea {
	return &domain.MarketingIdea{
		Channels:       res.List(KeyChannels),
		TargetAudience: res.List(KeyTargetAudience),
		KeyMessages:    res.List(KeyKeyMessages),
		Tactics:        res.List(KeyTactics),
		ImpactLevel:    res.Scalar(KeyImpactLevel),
	}
}

// Validator accepts or rejects built records by length thresholds.
type Validator struct {
	MinNameLength     int
	MinAnalysisLength int
}

// NewValidator applies defaults to non-positive thresholds.
func NewValidator(minName, minAnalysis int) Validator {
	if minName <= 0 {
		minName = defaultMinNameLength
	}
	if minAnalysis <= 0 {
		minAnalysis = defaultMinAnalysisLength
	}
	return Validator{MinNameLength: minName, MinAnalysisLength: minAnalysis}
}

// Validate sets rec.Status and returns a rejection reason when failed.
func (v Validator) Validate(rec *domain.ExtractedRecord) (string, bool) {
	nameLen := utf8.RuneCountInString(strings.TrimSpace(rec.Name))
	analysisLen := utf8.RuneCountInString(strings.TrimSpace(rec.FullAnalysis))

	switch {
	case analysisLen < v.MinAnalysisLength:
		rec.Status = domain.StatusFailed
		return fmt.Sprintf("analysis too short (%d < %d chars)", analysisLen, v.MinAnalysisLength), false
	case nameLen < v.MinNameLength:
		rec.Status = domain.StatusFailed
		return fmt.Sprintf("name too short (%d < %d chars)", nameLen, v.MinNameLength), false
	}

	rec.Status = domain.StatusCompleted
	return "", true
}
