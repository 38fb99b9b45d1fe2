// Package dedup decides whether a candidate post already has derived records.
package dedup

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"IdeaScanner/internal/domain"
	"IdeaScanner/internal/ports"
	"IdeaScanner/internal/similarity"
)

// Strictness selects which detection strategies run.
type Strictness string

const (
	// StrictnessBasic checks the external id only.
	StrictnessBasic Strictness = "basic"
	// StrictnessStandard adds the exact title check.
	StrictnessStandard Strictness = "standard"
	// StrictnessAuthor adds same-author content similarity.
	StrictnessAuthor Strictness = "author"
)

const (
	defaultAuthorThreshold = 0.30
	defaultAuthorHistory   = 5
)

// ParseStrictness maps a config string to a level, defaulting to standard.
func ParseStrictness(value string) Strictness {
	switch Strictness(strings.ToLower(strings.TrimSpace(value))) {
	case StrictnessBasic:
		return StrictnessBasic
	case StrictnessAuthor:
		return StrictnessAuthor
	default:
		return StrictnessStandard
	}
}

// Options tunes the detector.
type Options struct {
	Strictness      Strictness
	AuthorThreshold float64
	AuthorHistory   int
}

// Detector runs the configured strategies in order; the first hit wins.
type Detector struct {
	store      ports.RecordStore
	strategies []strategy
	logger     *slog.Logger
}

type strategy func(ctx context.Context, post domain.CandidatePost) (domain.DuplicateVerdict, error)

// NewDetector wires a detector against the record store.
func NewDetector(store ports.RecordStore, opts Options, logger *slog.Logger) *Detector {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if opts.AuthorThreshold <= 0 {
		opts.AuthorThreshold = defaultAuthorThreshold
	}
	if opts.AuthorHistory <= 0 {
		opts.AuthorHistory = defaultAuthorHistory
	}

	d := &Detector{store: store, logger: logger}
	d.strategies = append(d.strategies, d.byExternalID)
	switch opts.Strictness {
	case StrictnessBasic:
	case StrictnessAuthor:
		d.strategies = append(d.strategies, d.byTitle, d.byAuthor(opts.AuthorThreshold, opts.AuthorHistory))
	default:
		d.strategies = append(d.strategies, d.byTitle)
	}
	return d
}

// Detect never fails: store errors are logged and the post is let through.
func (d *Detector) Detect(ctx context.Context, post domain.CandidatePost) domain.DuplicateVerdict {
	if d == nil || d.store == nil {
		return domain.DuplicateVerdict{}
	}

	for _, check := range d.strategies {
		verdict, err := check(ctx, post)
		if err != nil {
			d.logger.Warn("duplicate check failed, treating as new",
				"post_id", post.ExternalID,
				"error", err)
			return domain.DuplicateVerdict{}
		}
		if verdict.IsDuplicate {
			return verdict
		}
	}

	return domain.DuplicateVerdict{}
}

func (d *Detector) byExternalID(ctx context.Context, post domain.CandidatePost) (domain.DuplicateVerdict, error) {
	if post.ExternalID == "" {
		return domain.DuplicateVerdict{}, nil
	}
	existing, err := d.store.FindPostByExternalID(ctx, post.ExternalID)
	if err != nil {
		return domain.DuplicateVerdict{}, fmt.Errorf("lookup external id: %w", err)
	}
	if existing == nil || ownRow(post, *existing) {
		return domain.DuplicateVerdict{}, nil
	}
	return domain.DuplicateVerdict{
		IsDuplicate: true,
		Reason:      fmt.Sprintf("same post id %s", post.ExternalID),
		MatchedID:   existing.ID,
	}, nil
}

func (d *Detector) byTitle(ctx context.Context, post domain.CandidatePost) (domain.DuplicateVerdict, error) {
	if post.Title == "" {
		return domain.DuplicateVerdict{}, nil
	}
	existing, err := d.store.FindPostByTitle(ctx, post.Title)
	if err != nil {
		return domain.DuplicateVerdict{}, fmt.Errorf("lookup title: %w", err)
	}
	if existing == nil || ownRow(post, *existing) {
		return domain.DuplicateVerdict{}, nil
	}
	return domain.DuplicateVerdict{
		IsDuplicate: true,
		Reason:      fmt.Sprintf("exact title collision with post %s in r/%s", existing.ExternalID, existing.Community),
		MatchedID:   existing.ID,
	}, nil
}

func (d *Detector) byAuthor(threshold float64, history int) strategy {
	return func(ctx context.Context, post domain.CandidatePost) (domain.DuplicateVerdict, error) {
		if post.Author == "" || post.Body == "" {
			return domain.DuplicateVerdict{}, nil
		}
		recent, err := d.store.RecentPostsByAuthor(ctx, post.Author, history)
		if err != nil {
			return domain.DuplicateVerdict{}, fmt.Errorf("lookup author history: %w", err)
		}

		body := similarity.Normalize(post.Body)
		for _, prior := range recent {
			if prior.Body == "" || ownRow(post, prior) {
				continue
			}
			score := similarity.TokenOverlap(body, similarity.Normalize(prior.Body))
			if score > threshold {
				d.logger.Debug("same-author repost",
					"post_id", post.ExternalID,
					"matched_id", prior.ID,
					"content_overlap", score,
					"title_similarity", similarity.Ratio(post.Title, prior.Title))
				return domain.DuplicateVerdict{
					IsDuplicate: true,
					Reason: fmt.Sprintf("%.0f%% content overlap with earlier post by %s in r/%s",
						score*100, post.Author, prior.Community),
					MatchedID: prior.ID,
				}, nil
			}
		}
		return domain.DuplicateVerdict{}, nil
	}
}

// ownRow reports whether stored is the parent row of an already persisted
// candidate; new ideas are appended to it instead of flagging a duplicate.
func ownRow(post domain.CandidatePost, stored domain.StoredPost) bool {
	return post.Persisted() && stored.ID == post.InternalID
}
