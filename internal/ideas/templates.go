// Package ideas defines the business and marketing idea templates and turns
// parsed model output into validated records.
package ideas

import (
	"fmt"
	"strings"

	"IdeaScanner/internal/domain"
	"IdeaScanner/internal/sections"
)

// Field keys shared by the templates.
const (
	KeyName              = "name"
	KeyOpportunities     = "opportunities"
	KeyProblemsSolved    = "problems_solved"
	KeyTargetCustomers   = "target_customers"
	KeyMarketSize        = "market_size"
	KeyNiche             = "niche"
	KeyCategory          = "category"
	KeyMarketingStrategy = "marketing_strategy"

	KeyChannels       = "channels"
	KeyTargetAudience = "target_audience"
	KeyKeyMessages    = "key_messages"
	KeyTactics        = "tactics"
	KeyImpactLevel    = "impact_level"
)

const (
	defaultCategory = "Other"
	defaultImpact   = "Medium"
)

var nicheTerms = []sections.Term{
	{Keyword: "saas", Value: "SaaS"},
	{Keyword: "software as a service", Value: "SaaS"},
	{Keyword: "e-commerce", Value: "E-commerce"},
	{Keyword: "ecommerce", Value: "E-commerce"},
	{Keyword: "online store", Value: "E-commerce"},
	{Keyword: "fintech", Value: "Fintech"},
	{Keyword: "invoic", Value: "Fintech"},
	{Keyword: "payment", Value: "Fintech"},
	{Keyword: "healthcare", Value: "Healthcare"},
	{Keyword: "patient", Value: "Healthcare"},
	{Keyword: "fitness", Value: "Health & Fitness"},
	{Keyword: "workout", Value: "Health & Fitness"},
	{Keyword: "education", Value: "Education"},
	{Keyword: "students", Value: "Education"},
	{Keyword: "real estate", Value: "Real Estate"},
	{Keyword: "landlord", Value: "Real Estate"},
	{Keyword: "restaurant", Value: "Food & Beverage"},
	{Keyword: "food", Value: "Food & Beverage"},
	{Keyword: "travel", Value: "Travel"},
	{Keyword: "pet ", Value: "Pet Care"},
	{Keyword: "veterinar", Value: "Pet Care"},
	{Keyword: "gaming", Value: "Gaming"},
	{Keyword: "marketing agency", Value: "Marketing"},
	{Keyword: "freelance", Value: "Freelancing"},
	{Keyword: "developer", Value: "Developer Tools"},
	{Keyword: "artificial intelligence", Value: "AI"},
	{Keyword: " ai ", Value: "AI"},
	{Keyword: "productivity", Value: "Productivity"},
	{Keyword: "sustainab", Value: "Sustainability"},
}

var nicheCategories = map[string]string{
	"saas":             "Technology",
	"developer tools":  "Technology",
	"ai":               "Technology",
	"productivity":     "Technology",
	"gaming":           "Entertainment",
	"e-commerce":       "Retail",
	"fintech":          "Finance",
	"healthcare":       "Health",
	"health & fitness": "Health",
	"education":        "Education",
	"real estate":      "Real Estate",
	"food & beverage":  "Consumer Services",
	"travel":           "Consumer Services",
	"pet care":         "Consumer Services",
	"marketing":        "Services",
	"freelancing":      "Services",
	"sustainability":   "Environment",
}

var impactTerms = []sections.Term{
	{Keyword: "high impact", Value: "High"},
	{Keyword: "high-impact", Value: "High"},
	{Keyword: "low impact", Value: "Low"},
	{Keyword: "low-impact", Value: "Low"},
	{Keyword: "medium impact", Value: "Medium"},
	{Keyword: "moderate", Value: "Medium"},
}

// Template couples an idea kind with its section layout.
type Template struct {
	Kind   domain.IdeaKind
	Fields []sections.Field
	parser *sections.Parser
}

// Labels lists the section labels in template order.
func (t *Template) Labels() []string {
	labels := make([]string, 0, len(t.Fields))
	for _, f := range t.Fields {
		labels = append(labels, f.Label)
	}
	return labels
}

// Skeleton renders the expected output layout for prompts.
func (t *Template) Skeleton() string {
	var b strings.Builder
	for i, f := range t.Fields {
		if i > 0 {
			b.WriteString("\n")
		}
		switch f.Kind {
		case sections.List:
			fmt.Fprintf(&b, "%s:\n- [item]\n- [item]\n", f.Label)
		default:
			fmt.Fprintf(&b, "%s: [value]\n", f.Label)
		}
	}
	return b.String()
}

// Parse runs the section parser over one idea block.
func (t *Template) Parse(raw string) sections.Result {
	return t.parser.Parse(raw)
}

func newTemplate(kind domain.IdeaKind, fields []sections.Field) *Template {
	return &Template{Kind: kind, Fields: fields, parser: sections.NewParser(fields)}
}

// Business is the business idea layout. Marketing Strategy is last.
var Business = newTemplate(domain.KindBusiness, []sections.Field{
	{Key: KeyName, Label: "Idea Name", Kind: sections.Scalar},
	{Key: KeyOpportunities, Label: "Opportunities", Kind: sections.List},
	{Key: KeyProblemsSolved, Label: "Problems Solved", Kind: sections.List},
	{Key: KeyTargetCustomers, Label: "Target Customers", Kind: sections.List},
	{Key: KeyMarketSize, Label: "Market Size", Kind: sections.List},
	{Key: KeyNiche, Label: "Niche", Kind: sections.Scalar, Vocabulary: sections.NewVocabulary(nicheTerms)},
	{
		Key: KeyCategory, Label: "Category", Kind: sections.Scalar,
		Infer: &sections.Inference{From: KeyNiche, Table: nicheCategories, Fallback: defaultCategory},
	},
	{Key: KeyMarketingStrategy, Label: "Marketing Strategy", Kind: sections.List, Trailing: true},
})

// Marketing is the marketing idea layout. Tactics is last.
var Marketing = newTemplate(domain.KindMarketing, []sections.Field{
	{Key: KeyName, Label: "Campaign Name", Kind: sections.Scalar},
	{Key: KeyChannels, Label: "Channels", Kind: sections.List},
	{Key: KeyTargetAudience, Label: "Target Audience", Kind: sections.List},
	{Key: KeyKeyMessages, Label: "Key Messages", Kind: sections.List},
	{
		Key: KeyImpactLevel, Label: "Impact Level", Kind: sections.Scalar,
		Vocabulary: sections.NewVocabulary(impactTerms),
		Infer:      &sections.Inference{Fallback: defaultImpact},
	},
	{Key: KeyTactics, Label: "Tactics", Kind: sections.List, Trailing: true},
})

// ForKind returns the template for kind, defaulting to Business.
func ForKind(kind domain.IdeaKind) *Template {
	if kind == domain.KindMarketing {
		return Marketing
	}
	return Business
}
