// Package extraction wraps the text-generation model: a cheap yes/no relevance
// check and the batch idea extraction call.
package extraction

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"IdeaScanner/internal/domain"
	"IdeaScanner/internal/ideas"
	"IdeaScanner/internal/ports"
)

const (
	preFilterInputLimit = 200
	preFilterMaxTokens  = 5
	defaultMaxTokens    = 2048
)

var postMarker = regexp.MustCompile(`(?im)^[ \t#=*]*POST[ \t]+(\d+)[ \t=#*:]*$`)

// ErrNoGenerator is returned by Extract when no model backend is wired.
var ErrNoGenerator = errors.New("extraction: generator is not configured")

// RawOutput is the model text produced for one post.
type RawOutput struct {
	PostExternalID string
	Text           string
}

// Options tunes prompts and pacing.
type Options struct {
	Template          *ideas.Template
	SystemPrompt      string
	PreFilterPrompt   string
	MaxTokens         int
	RequestsPerMinute int
}

// Client is the generative extraction client.
type Client struct {
	gen       ports.Generator
	template  *ideas.Template
	system    string
	preSystem string
	maxTokens int
	limiter   *rate.Limiter
	logger    *slog.Logger
}

// NewClient wires a generator. RequestsPerMinute <= 0 disables pacing.
func NewClient(gen ports.Generator, opts Options, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if opts.Template == nil {
		opts.Template = ideas.Business
	}
	if opts.MaxTokens <= 0 {
		opts.MaxTokens = defaultMaxTokens
	}

	limiter := rate.NewLimiter(rate.Inf, 1)
	if opts.RequestsPerMinute > 0 {
		limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(opts.RequestsPerMinute)), 1)
	}

	return &Client{
		gen:       gen,
		template:  opts.Template,
		system:    systemPrompt(opts.SystemPrompt, opts.Template),
		preSystem: preFilterPrompt(opts.PreFilterPrompt),
		maxTokens: opts.MaxTokens,
		limiter:   limiter,
		logger:    logger,
	}
}

// PreFilter asks the model whether text is worth extracting. Any failure
// answers true.
func (c *Client) PreFilter(ctx context.Context, text string) bool {
	if c == nil || c.gen == nil {
		return true
	}
	if err := c.limiter.Wait(ctx); err != nil {
		c.logger.Warn("pre-filter rate wait failed, keeping post", "error", err)
		return true
	}

	answer, err := c.gen.Complete(ctx, ports.Prompt{
		System:    c.preSystem,
		User:      truncateRunes(text, preFilterInputLimit),
		MaxTokens: preFilterMaxTokens,
	})
	if err != nil {
		c.logger.Warn("pre-filter call failed, keeping post", "error", err)
		return true
	}

	return !isNegative(answer)
}

// Extract makes one model call for the batch and splits the answer per post.
// Posts the model skipped are absent from the result.
func (c *Client) Extract(ctx context.Context, posts []domain.CandidatePost) ([]RawOutput, error) {
	if len(posts) == 0 {
		return nil, nil
	}
	if c == nil || c.gen == nil {
		return nil, ErrNoGenerator
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("wait for rate limit: %w", err)
	}

	answer, err := c.gen.Complete(ctx, ports.Prompt{
		System:    c.system,
		User:      batchPrompt(posts),
		MaxTokens: c.maxTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("extract batch of %d: %w", len(posts), err)
	}

	outputs := splitAnswer(answer, posts)
	if len(outputs) < len(posts) {
		c.logger.Debug("model answered fewer posts than requested",
			"requested", len(posts),
			"answered", len(outputs))
	}
	return outputs, nil
}

func splitAnswer(answer string, posts []domain.CandidatePost) []RawOutput {
	answer = strings.ReplaceAll(answer, "\r\n", "\n")
	markers := postMarker.FindAllStringSubmatchIndex(answer, -1)

	if len(markers) == 0 {
		if len(posts) == 1 && strings.TrimSpace(answer) != "" {
			return []RawOutput{{PostExternalID: posts[0].ExternalID, Text: strings.TrimSpace(answer)}}
		}
		return nil
	}

	texts := make([]string, len(posts))
	for i, m := range markers {
		n, err := strconv.Atoi(answer[m[2]:m[3]])
		if err != nil || n < 1 || n > len(posts) || texts[n-1] != "" {
			continue
		}
		end := len(answer)
		if i+1 < len(markers) {
			end = markers[i+1][0]
		}
		texts[n-1] = strings.TrimSpace(answer[m[1]:end])
	}

	outputs := make([]RawOutput, 0, len(posts))
	for i, text := range texts {
		if text == "" {
			continue
		}
		outputs = append(outputs, RawOutput{PostExternalID: posts[i].ExternalID, Text: text})
	}
	return outputs
}

func isNegative(answer string) bool {
	var yes, no bool
	prev := ""
	for _, token := range strings.FieldsFunc(strings.ToLower(answer), func(r rune) bool {
		return !(r >= 'a' && r <= 'z')
	}) {
		switch token {
		case "yes", "true":
			yes = true
		case "relevant":
			if prev == "not" {
				no = true
			} else {
				yes = true
			}
		case "no", "false", "irrelevant":
			no = true
		}
		prev = token
	}
	return no && !yes
}

func truncateRunes(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
