package similarity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRatio(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		a, b string
		want float64
	}{
		{name: "identical", a: "kitten", b: "kitten", want: 1.0},
		{name: "both empty", a: "", b: "", want: 1.0},
		{name: "left empty", a: "", b: "abc", want: 0.0},
		{name: "right empty", a: "abc", b: "", want: 0.0},
		{name: "kitten sitting", a: "kitten", b: "sitting", want: 1.0 - 3.0/7.0},
		{name: "one substitution", a: "abcd", b: "abce", want: 0.75},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.InDelta(t, tt.want, Ratio(tt.a, tt.b), 1e-9)
		})
	}
}

func TestLevenshteinBounds(t *testing.T) {
	t.Parallel()

	pairs := [][2]string{
		{"", ""},
		{"", "abc"},
		{"flaw", "lawn"},
		{"intention", "execution"},
		{"héllo", "hello"},
		{"short", "a much longer string"},
	}

	for _, p := range pairs {
		d := Levenshtein(p[0], p[1])
		limit := max(len([]rune(p[0])), len([]rune(p[1])))
		assert.LessOrEqual(t, d, limit, "%q vs %q", p[0], p[1])
		assert.Equal(t, d, Levenshtein(p[1], p[0]), "distance must be symmetric")
	}

	assert.Equal(t, 2, Levenshtein("flaw", "lawn"))
	assert.Equal(t, 5, Levenshtein("intention", "execution"))
	assert.Equal(t, 1, Levenshtein("héllo", "hello"))
}

func TestTokenOverlap(t *testing.T) {
	t.Parallel()

	a := "looking for invoicing software that handles recurring clients"
	b := "invoicing software for freelancers with recurring billing"

	assert.Equal(t, 1.0, TokenOverlap(a, a))
	assert.Equal(t, 0.0, TokenOverlap("", b))
	assert.Equal(t, TokenOverlap(a, b), TokenOverlap(b, a))

	// a: looking invoicing software that handles recurring clients (7)
	// b: invoicing software freelancers with recurring billing (6)
	assert.InDelta(t, 3.0/7.0, TokenOverlap(a, b), 1e-9)
}

func TestTokenOverlapIgnoresShortTokens(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 0.0, TokenOverlap("a an the cat", "the cat an a"))
}

func TestNormalize(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "hello world 2024", Normalize("  Hello,   World! 2024?? "))
	assert.Equal(t, "dont stop", Normalize("Don't\tstop."))
}
