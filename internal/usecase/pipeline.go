package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"IdeaScanner/internal/dedup"
	"IdeaScanner/internal/domain"
	"IdeaScanner/internal/extraction"
	"IdeaScanner/internal/filter"
	"IdeaScanner/internal/fingerprint"
	"IdeaScanner/internal/ideas"
	"IdeaScanner/internal/ports"
)

const defaultBatchSize = 10

// Extractor is the generative extraction collaborator.
type Extractor interface {
	PreFilter(ctx context.Context, text string) bool
	Extract(ctx context.Context, posts []domain.CandidatePost) ([]extraction.RawOutput, error)
}

// PipelineDeps wires all driven adapters into the orchestration pipeline.
// Only Extractor is required; a nil Store runs without persistence.
type PipelineDeps struct {
	Source       ports.PostSource
	Store        ports.RecordStore
	Extractor    Extractor
	Fingerprints ports.FingerprintStore
	Notifier     ports.Notifier
	Metrics      ports.Metrics
	Logger       *slog.Logger
}

// PipelineOptions tunes the orchestrator. MaxDaily <= 0 disables the cap.
type PipelineOptions struct {
	Template          *ideas.Template
	Validator         ideas.Validator
	Keywords          *filter.Keywords
	Communities       []string
	LimitPerCommunity int
	BatchSize         int
	MaxDaily          int
	ModelPreFilter    bool
	PreDedup          dedup.Options
	BatchDedup        dedup.Options
}

// Pipeline implements the post-to-idea workflow.
type Pipeline struct {
	source       ports.PostSource
	store        ports.RecordStore
	extractor    Extractor
	fingerprints ports.FingerprintStore
	notifier     ports.Notifier
	metrics      ports.Metrics
	logger       *slog.Logger

	opts          PipelineOptions
	preDetector   *dedup.Detector
	batchDetector *dedup.Detector
}

// NewPipeline constructs the orchestration component.
func NewPipeline(deps PipelineDeps, opts PipelineOptions) *Pipeline {
	logger := deps.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if opts.Template == nil {
		opts.Template = ideas.Business
	}
	if opts.Validator == (ideas.Validator{}) {
		opts.Validator = ideas.NewValidator(0, 0)
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = defaultBatchSize
	}
	if opts.PreDedup.Strictness == "" {
		opts.PreDedup.Strictness = dedup.StrictnessStandard
	}
	if opts.BatchDedup.Strictness == "" {
		opts.BatchDedup.Strictness = dedup.StrictnessAuthor
	}

	return &Pipeline{
		source:        deps.Source,
		store:         deps.Store,
		extractor:     deps.Extractor,
		fingerprints:  deps.Fingerprints,
		notifier:      deps.Notifier,
		metrics:       deps.Metrics,
		logger:        logger,
		opts:          opts,
		preDetector:   dedup.NewDetector(deps.Store, opts.PreDedup, logger.With("component", "dedup.pre")),
		batchDetector: dedup.NewDetector(deps.Store, opts.BatchDedup, logger.With("component", "dedup.batch")),
	}
}

// Run fetches candidates, processes them and publishes the summary. Only a
// fetch failure fails the run.
func (p *Pipeline) Run(ctx context.Context) (*Report, error) {
	if p.source == nil {
		return nil, fmt.Errorf("post source is not configured")
	}

	started := time.Now()
	posts, err := p.source.FetchCandidates(ctx, p.opts.Communities, p.opts.LimitPerCommunity)
	if err != nil {
		return nil, fmt.Errorf("fetch candidates: %w", err)
	}

	report := p.Process(ctx, posts, p.opts.BatchSize)
	report.StartedAt = started
	report.Duration = time.Since(started)
	if p.metrics != nil {
		p.metrics.ObserveRun(report.Duration)
	}

	p.publish(ctx, report)
	return report, nil
}

// RunBatch processes posts and returns the accepted records in input order.
func (p *Pipeline) RunBatch(ctx context.Context, posts []domain.CandidatePost, batchSize int) []domain.ExtractedRecord {
	return p.Process(ctx, posts, batchSize).Records
}

// Process filters, caps, deduplicates and extracts posts in sequential
// batches. A failing batch is logged and the next batch still runs.
func (p *Pipeline) Process(ctx context.Context, posts []domain.CandidatePost, batchSize int) *Report {
	if batchSize <= 0 {
		batchSize = p.opts.BatchSize
	}

	runID := uuid.NewString()
	run := &runState{
		report: &Report{RunID: runID, StartedAt: time.Now(), Fetched: len(posts)},
		logger: p.logger.With("run_id", runID),
		fps:    make(map[string]string, len(posts)),
	}
	p.count(ports.StageFetched, len(posts))

	candidates := p.keywordFilter(run, posts)
	candidates = p.applyCap(run, candidates)
	candidates = p.modelPreFilter(ctx, run, candidates)
	candidates = p.dedupByFingerprint(ctx, run, candidates)
	candidates = p.dedupPersisted(ctx, run, candidates)

	batches := partition(candidates, batchSize)
	run.report.Batches = len(batches)

	for i, batch := range batches {
		if err := ctx.Err(); err != nil {
			for _, post := range batch {
				run.skip(post.ExternalID, SkipBatch, "run cancelled: "+err.Error())
			}
			continue
		}

		blog := run.logger.With("batch", i+1, "batch_size", len(batch))
		if err := p.processBatch(ctx, run, blog, batch); err != nil {
			run.report.FailedBatches++
			if p.metrics != nil {
				p.metrics.BatchFailed()
			}
			blog.Error("batch failed, continuing with next batch", "error", err)
		}
	}

	run.report.Duration = time.Since(run.report.StartedAt)
	run.logger.Info("run finished",
		"fetched", run.report.Fetched,
		"filtered", run.report.Filtered,
		"duplicates", run.report.Duplicates,
		"extracted", run.report.Extracted,
		"rejected", run.report.Rejected,
		"persisted", run.report.Persisted,
		"failed_batches", run.report.FailedBatches,
		"skips", len(run.report.Skips))

	return run.report
}

type runState struct {
	report *Report
	logger *slog.Logger
	seen   *fingerprint.Set
	fps    map[string]string
}

func (r *runState) skip(postID, stage, reason string) {
	r.report.Skips = append(r.report.Skips, Skip{PostID: postID, Stage: stage, Reason: reason})
	r.logger.Info("post skipped", "post_id", postID, "stage", stage, "reason", reason)
}

func (p *Pipeline) keywordFilter(run *runState, posts []domain.CandidatePost) []domain.CandidatePost {
	kept, dropped := p.opts.Keywords.Apply(posts)
	for _, post := range dropped {
		run.skip(post.ExternalID, SkipFilter, "no keyword match")
	}
	run.report.Filtered += len(dropped)
	p.count(ports.StageFiltered, len(dropped))
	return kept
}

func (p *Pipeline) applyCap(run *runState, posts []domain.CandidatePost) []domain.CandidatePost {
	limit := p.opts.MaxDaily
	if limit <= 0 || len(posts) <= limit {
		return posts
	}
	for _, post := range posts[limit:] {
		run.skip(post.ExternalID, SkipCap, fmt.Sprintf("over daily cap of %d", limit))
	}
	run.report.Filtered += len(posts) - limit
	p.count(ports.StageFiltered, len(posts)-limit)
	return posts[:limit]
}

func (p *Pipeline) modelPreFilter(ctx context.Context, run *runState, posts []domain.CandidatePost) []domain.CandidatePost {
	if !p.opts.ModelPreFilter || p.extractor == nil {
		return posts
	}

	kept := make([]domain.CandidatePost, 0, len(posts))
	for _, post := range posts {
		if p.extractor.PreFilter(ctx, post.Title+"\n\n"+post.Body) {
			kept = append(kept, post)
			continue
		}
		run.skip(post.ExternalID, SkipPreFilter, "model judged post irrelevant")
		run.report.Filtered++
		p.count(ports.StageFiltered, 1)
	}
	return kept
}

func (p *Pipeline) dedupByFingerprint(ctx context.Context, run *runState, posts []domain.CandidatePost) []domain.CandidatePost {
	run.seen = fingerprint.NewSet()

	kept := make([]domain.CandidatePost, 0, len(posts))
	for _, post := range posts {
		fp := fingerprint.Of(post.Title, post.Body)
		if !run.seen.Add(fp) {
			p.duplicate(run, post.ExternalID, SkipFingerprint, "same content already seen in this run")
			continue
		}

		if p.fingerprints != nil {
			seen, err := p.fingerprints.Seen(ctx, fp)
			if err != nil {
				run.logger.Warn("fingerprint store lookup failed, treating as new",
					"post_id", post.ExternalID, "error", err)
			} else if seen {
				p.duplicate(run, post.ExternalID, SkipFingerprint, "same content processed in an earlier run")
				continue
			}
		}

		run.fps[post.ExternalID] = fp
		kept = append(kept, post)
	}
	return kept
}

func (p *Pipeline) dedupPersisted(ctx context.Context, run *runState, posts []domain.CandidatePost) []domain.CandidatePost {
	kept := make([]domain.CandidatePost, 0, len(posts))
	for _, post := range posts {
		if verdict := p.preDetector.Detect(ctx, post); verdict.IsDuplicate {
			p.duplicate(run, post.ExternalID, SkipDuplicate, verdict.Reason)
			continue
		}
		kept = append(kept, post)
	}
	return kept
}

func (p *Pipeline) duplicate(run *runState, postID, stage, reason string) {
	run.skip(postID, stage, reason)
	run.report.Duplicates++
	p.count(ports.StageDuplicate, 1)
}

func (p *Pipeline) processBatch(ctx context.Context, run *runState, logger *slog.Logger, batch []domain.CandidatePost) error {
	fresh := make([]domain.CandidatePost, 0, len(batch))
	for _, post := range batch {
		if verdict := p.batchDetector.Detect(ctx, post); verdict.IsDuplicate {
			p.duplicate(run, post.ExternalID, SkipDuplicate, verdict.Reason)
			continue
		}
		fresh = append(fresh, post)
	}
	if len(fresh) == 0 {
		return nil
	}

	if p.extractor == nil {
		err := errors.New("extractor is not configured")
		p.skipAll(run, fresh, SkipExtraction, err.Error())
		return err
	}

	outputs, err := p.extractor.Extract(ctx, fresh)
	if err != nil {
		p.skipAll(run, fresh, SkipExtraction, "model call failed: "+err.Error())
		return fmt.Errorf("extract: %w", err)
	}

	byPost := make(map[string]string, len(outputs))
	for _, out := range outputs {
		byPost[out.PostExternalID] = out.Text
	}

	for i, post := range fresh {
		text, ok := byPost[post.ExternalID]
		if !ok {
			run.skip(post.ExternalID, SkipExtraction, "no model output for post")
			continue
		}

		if err := p.processPost(ctx, run, post, text); err != nil {
			run.skip(post.ExternalID, SkipPersistence, err.Error())
			p.skipAll(run, fresh[i+1:], SkipBatch, "batch aborted by persistence failure")
			return fmt.Errorf("post %s: %w", post.ExternalID, err)
		}
	}

	logger.Debug("batch done", "posts", len(fresh), "outputs", len(outputs))
	return nil
}

// processPost parses, validates and stores every idea block of one post.
// Constraint violations are skips; other store errors are returned.
func (p *Pipeline) processPost(ctx context.Context, run *runState, post domain.CandidatePost, text string) error {
	blocks := ideas.SplitBlocks(text)
	if len(blocks) == 0 {
		run.skip(post.ExternalID, SkipExtraction, "empty model output")
		return nil
	}

	for _, block := range blocks {
		rec := p.opts.Template.Build(post, block)
		run.report.Extracted++
		p.count(ports.StageExtracted, 1)

		if reason, ok := p.opts.Validator.Validate(&rec); !ok {
			run.skip(post.ExternalID, SkipValidation, reason)
			run.report.Rejected++
			p.count(ports.StageRejected, 1)
			continue
		}

		if p.store == nil {
			p.accept(run, rec)
			continue
		}

		if !post.Persisted() {
			id, err := p.store.InsertPost(ctx, post)
			if err != nil {
				if reason, ok := constraintReason(err); ok {
					run.skip(post.ExternalID, SkipPersistence, "parent post rejected: "+reason)
					return nil
				}
				return fmt.Errorf("insert parent: %w", err)
			}
			post.InternalID = id
			p.remember(ctx, run, post.ExternalID)
		}
		rec.ParentID = post.InternalID

		id, err := p.store.InsertRecord(ctx, rec)
		if err != nil {
			if reason, ok := constraintReason(err); ok {
				run.skip(post.ExternalID, SkipPersistence, fmt.Sprintf("idea %q rejected: %s", rec.Name, reason))
				continue
			}
			return fmt.Errorf("insert idea %q: %w", rec.Name, err)
		}
		rec.ID = id
		p.accept(run, rec)
	}
	return nil
}

func (p *Pipeline) accept(run *runState, rec domain.ExtractedRecord) {
	run.report.Records = append(run.report.Records, rec)
	run.report.Persisted++
	p.count(ports.StagePersisted, 1)
	run.logger.Info("idea stored", "post_id", rec.PostExternalID, "kind", rec.Kind, "name", rec.Name, "id", rec.ID)
}

// remember marks the post's fingerprint once its parent row exists.
func (p *Pipeline) remember(ctx context.Context, run *runState, postID string) {
	fp, ok := run.fps[postID]
	if p.fingerprints == nil || !ok {
		return
	}
	if err := p.fingerprints.Mark(ctx, fp); err != nil {
		run.logger.Warn("fingerprint store mark failed", "post_id", postID, "error", err)
	}
}

func (p *Pipeline) skipAll(run *runState, posts []domain.CandidatePost, stage, reason string) {
	for _, post := range posts {
		run.skip(post.ExternalID, stage, reason)
	}
}

func (p *Pipeline) count(stage string, n int) {
	if p.metrics != nil {
		p.metrics.AddStage(stage, n)
	}
}

func (p *Pipeline) publish(ctx context.Context, report *Report) {
	if p.notifier == nil || report.Persisted == 0 {
		return
	}
	if err := p.notifier.PublishDigest(ctx, report.Summary()); err != nil {
		p.logger.Warn("publish run summary failed", "run_id", report.RunID, "error", err)
	}
}

func constraintReason(err error) (string, bool) {
	var constraint *ports.ConstraintError
	if !errors.As(err, &constraint) {
		return "", false
	}
	if constraint.Constraint == "" {
		return fmt.Sprintf("%s constraint violated", constraint.Kind), true
	}
	return fmt.Sprintf("%s constraint %s violated", constraint.Kind, constraint.Constraint), true
}

func partition(posts []domain.CandidatePost, size int) [][]domain.CandidatePost {
	if len(posts) == 0 {
		return nil
	}
	batches := make([][]domain.CandidatePost, 0, (len(posts)+size-1)/size)
	for start := 0; start < len(posts); start += size {
		end := min(start+size, len(posts))
		batches = append(batches, posts[start:end])
	}
	return batches
}
