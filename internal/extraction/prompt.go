package extraction

import (
	"fmt"
	"strings"

	"IdeaScanner/internal/domain"
	"IdeaScanner/internal/ideas"
)

const bodyLimit = 3000

func systemPrompt(custom string, t *ideas.Template) string {
	base := strings.TrimSpace(custom)
	if base == "" {
		base = fmt.Sprintf("You analyse community posts and extract concrete %s ideas.", t.Kind)
	}

	var b strings.Builder
	b.WriteString(base)
	b.WriteString("\n\nFor every post, start a line with \"=== POST <n> ===\" using the post number, ")
	b.WriteString("then answer with this exact layout. Separate several ideas for the same post with a line containing only ---.\n\n")
	b.WriteString(t.Skeleton())
	return b.String()
}

func preFilterPrompt(custom string) string {
	if p := strings.TrimSpace(custom); p != "" {
		return p
	}
	return "Does this post describe a problem, unmet need or opportunity someone could build a product around? Answer YES or NO."
}

func batchPrompt(posts []domain.CandidatePost) string {
	var b strings.Builder
	for i, p := range posts {
		fmt.Fprintf(&b, "=== POST %d ===\n", i+1)
		fmt.Fprintf(&b, "Community: r/%s\n", p.Community)
		fmt.Fprintf(&b, "Title: %s\n", p.Title)
		fmt.Fprintf(&b, "Score: %d, Comments: %d\n", p.Score, p.CommentCount)
		b.WriteString(truncateRunes(strings.TrimSpace(p.Body), bodyLimit))
		b.WriteString("\n\n")
	}
	return b.String()
}
