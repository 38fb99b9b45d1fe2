package sections

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testFields() []Field {
	return []Field{
		{Key: "name", Label: "Idea Name", Kind: Scalar},
		{Key: "opportunities", Label: "Opportunities", Kind: List},
		{Key: "problems", Label: "Problems Solved", Kind: List},
		{Key: "customers", Label: "Target Customers", Kind: List},
		{
			Key: "niche", Label: "Niche", Kind: Scalar,
			Vocabulary: NewVocabulary([]Term{
				{Keyword: "veterinar", Value: "Pet Care"},
				{Keyword: "invoice", Value: "Fintech"},
			}),
		},
		{
			Key: "category", Label: "Category", Kind: Scalar,
			Infer: &Inference{
				From:     "niche",
				Table:    map[string]string{"pet care": "Consumer Services", "fintech": "Finance"},
				Fallback: "General",
			},
		},
		{Key: "strategy", Label: "Marketing Strategy", Kind: List, Trailing: true},
	}
}

const wellFormed = `Idea Name: PawPlan

Opportunities:
- Subscription wellness plans for pets
- Partnerships with local clinics
- Upsell grooming bundles

Problems Solved:
- Surprise vet bills
- Forgotten vaccinations

Target Customers:
- First-time dog owners
- Busy urban cat owners

Niche: [Pet Care]

Category: Consumer Services

Marketing Strategy:
- Instagram pet influencers
- Referral credits
`

func TestParseWellFormed(t *testing.T) {
	t.Parallel()

	res := Parse(wellFormed, testFields())

	assert.Equal(t, "PawPlan", res.Scalar("name"))
	assert.Equal(t, []string{
		"Subscription wellness plans for pets",
		"Partnerships with local clinics",
		"Upsell grooming bundles",
	}, res.List("opportunities"))
	assert.Equal(t, []string{"Surprise vet bills", "Forgotten vaccinations"}, res.List("problems"))
	assert.Equal(t, []string{"First-time dog owners", "Busy urban cat owners"}, res.List("customers"))
	assert.Equal(t, "Pet Care", res.Scalar("niche"))
	assert.Equal(t, "Consumer Services", res.Scalar("category"))
	assert.Equal(t, []string{"Instagram pet influencers", "Referral credits"}, res.List("strategy"))

	for _, key := range []string{"name", "niche", "category"} {
		assert.Equal(t, SourceSection, res.Source(key), key)
	}
}

func TestParseWithoutBlankLines(t *testing.T) {
	t.Parallel()

	compact := strings.ReplaceAll(wellFormed, "\n\n", "\n")
	require.NotContains(t, compact, "\n\n")

	res := Parse(compact, testFields())

	assert.Equal(t, "PawPlan", res.Scalar("name"))
	assert.Len(t, res.List("opportunities"), 3)
	assert.Equal(t, []string{"Surprise vet bills", "Forgotten vaccinations"}, res.List("problems"))
	assert.Equal(t, []string{"First-time dog owners", "Busy urban cat owners"}, res.List("customers"))
	assert.Equal(t, "Pet Care", res.Scalar("niche"))
	assert.Equal(t, "Consumer Services", res.Scalar("category"))
	assert.Equal(t, []string{"Instagram pet influencers", "Referral credits"}, res.List("strategy"))
}

func TestParseLabelsOnSameLine(t *testing.T) {
	t.Parallel()

	raw := "Idea Name: LedgerLite Niche: Fintech Category: Finance\nOpportunities:\n- Automate receipts"
	res := Parse(raw, testFields())

	assert.Equal(t, "LedgerLite", res.Scalar("name"))
	assert.Equal(t, "Fintech", res.Scalar("niche"))
	assert.Equal(t, "Finance", res.Scalar("category"))
	assert.Equal(t, []string{"Automate receipts"}, res.List("opportunities"))
}

func TestParseMarkdownDecorations(t *testing.T) {
	t.Parallel()

	raw := "**Idea Name:** ClinicQueue\n**Opportunities**:\n* Online check-in\n1. SMS reminders\n2) Waitlist analytics\n"
	res := Parse(raw, testFields())

	assert.Equal(t, "ClinicQueue", res.Scalar("name"))
	assert.Equal(t, []string{"Online check-in", "SMS reminders", "Waitlist analytics"}, res.List("opportunities"))
}

func TestParseEveryKeyPresent(t *testing.T) {
	t.Parallel()

	res := Parse("", testFields())
	for _, f := range testFields() {
		assert.True(t, res.Has(f.Key), f.Key)
	}
	assert.Equal(t, "", res.Scalar("name"))
	assert.NotNil(t, res.List("opportunities"))
	assert.Empty(t, res.List("opportunities"))
	assert.Equal(t, "General", res.Scalar("category"))
	assert.Equal(t, SourceDefault, res.Source("category"))
}

func TestParseListKeepsOnlyBullets(t *testing.T) {
	t.Parallel()

	raw := "Opportunities:\nHere are a few:\n- First\n\n-   \nnot a bullet\n- Second\n"
	res := Parse(raw, testFields())
	assert.Equal(t, []string{"First", "Second"}, res.List("opportunities"))
}

func TestParseListDropsLinesWithOtherLabels(t *testing.T) {
	t.Parallel()

	// A header written as a bullet still ends the previous section.
	raw := "Opportunities:\n- Real item\n- Niche: Pet Care\n"
	res := Parse(raw, testFields())
	assert.Equal(t, []string{"Real item"}, res.List("opportunities"))
	assert.Equal(t, "Pet Care", res.Scalar("niche"))
}

func TestParseTrailingSectionFallback(t *testing.T) {
	t.Parallel()

	// The strategy bullets follow a stray "Category:" line, so the bounded
	// section is empty and the trailing re-scan picks them up.
	raw := "Idea Name: PawPlan\nMarketing Strategy:\nCategory: Consumer Services\n" +
		"- Referral credits\n- Niche: Pet Care\n- Vet partnerships\n"
	res := Parse(raw, testFields())

	assert.Equal(t, []string{"Referral credits", "Vet partnerships"}, res.List("strategy"))
	assert.Equal(t, "Consumer Services", res.Scalar("category"))
	assert.Equal(t, SourceTrailing, res.Source("strategy"))
}

func TestScalarFallbackEquals(t *testing.T) {
	t.Parallel()

	res := Parse("Idea Name = InvoiceBot\nOpportunities:\n- x", testFields())
	assert.Equal(t, "InvoiceBot", res.Scalar("name"))
	assert.Equal(t, SourceRegex, res.Source("name"))
}

func TestScalarFallbackBareWhitespace(t *testing.T) {
	t.Parallel()

	res := Parse("Our Idea Name    RouteSaver for couriers", testFields())
	assert.Equal(t, "RouteSaver for couriers", res.Scalar("name"))
	assert.Equal(t, SourceRegex, res.Source("name"))
}

func TestScalarFallbackSubstring(t *testing.T) {
	t.Parallel()

	res := Parse("Summary line\nthe niche — Pet Care Subscriptions\n", testFields())
	assert.Equal(t, "Pet Care Subscriptions", res.Scalar("niche"))
	assert.Equal(t, SourceSubstring, res.Source("niche"))
}

func TestScalarFallbackVocabularyAndInference(t *testing.T) {
	t.Parallel()

	raw := "Idea Name: VetVisit\nOpportunities:\n- Book veterinary appointments online\n"
	res := Parse(raw, testFields())

	assert.Equal(t, "Pet Care", res.Scalar("niche"))
	assert.Equal(t, SourceVocabulary, res.Source("niche"))
	assert.Equal(t, "Consumer Services", res.Scalar("category"))
	assert.Equal(t, SourceInferred, res.Source("category"))
}

func TestVocabularyFirstListedTermWins(t *testing.T) {
	t.Parallel()

	v := NewVocabulary([]Term{
		{Keyword: "invoice", Value: "Fintech"},
		{Keyword: "veterinar", Value: "Pet Care"},
	})

	got, ok := v.Lookup("Veterinary clinics hate paper invoices")
	require.True(t, ok)
	assert.Equal(t, "Fintech", got)

	_, ok = v.Lookup("nothing relevant")
	assert.False(t, ok)

	var empty *Vocabulary
	_, ok = empty.Lookup("invoice")
	assert.False(t, ok)
}

func TestVocabularyPaddedKeywordMatchesWholeWords(t *testing.T) {
	t.Parallel()

	v := NewVocabulary([]Term{
		{Keyword: " ai ", Value: "AI"},
		{Keyword: "sustainab", Value: "Sustainability"},
	})

	got, ok := v.Lookup("Refillable containers for sustainable packaging")
	require.True(t, ok)
	assert.Equal(t, "Sustainability", got)

	got, ok = v.Lookup("AI: triage for support inboxes")
	require.True(t, ok)
	assert.Equal(t, "AI", got)

	_, ok = v.Lookup("Daily plans for retail chains")
	assert.False(t, ok)
}

func TestScalarFallbackStopsAtNextLabel(t *testing.T) {
	t.Parallel()

	res := Parse("Idea Name: LedgerLite\nNiche: Category: Finance\n", testFields())

	assert.Empty(t, res.Scalar("niche"))
	assert.Equal(t, "Finance", res.Scalar("category"))
	assert.Equal(t, SourceSection, res.Source("category"))

	res = Parse("Idea Name: LedgerLite\nthe niche Category: Finance\n", testFields())
	assert.Empty(t, res.Scalar("niche"))
}
