package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"IdeaScanner/internal/config"
	"IdeaScanner/internal/dedup"
	"IdeaScanner/internal/domain"
	"IdeaScanner/internal/extraction"
	"IdeaScanner/internal/filter"
	"IdeaScanner/internal/ideas"
	"IdeaScanner/internal/infrastructure/llm"
	"IdeaScanner/internal/infrastructure/metrics"
	"IdeaScanner/internal/infrastructure/reddit"
	"IdeaScanner/internal/infrastructure/redis"
	"IdeaScanner/internal/infrastructure/scheduler"
	"IdeaScanner/internal/infrastructure/storage"
	"IdeaScanner/internal/infrastructure/telegram"
	"IdeaScanner/internal/logging"
	"IdeaScanner/internal/scanner"
	"IdeaScanner/internal/usecase"
)

const shutdownTimeout = 10 * time.Second

// Options adjusts wiring for a single invocation.
type Options struct {
	// DryRun skips Postgres; accepted records are reported but not saved.
	DryRun bool
	// RunOnStart fires the scheduled job once right after Schedule starts.
	RunOnStart bool
}

// Application wires configs to use cases and lifecycle orchestration.
type Application struct {
	cfg      config.Config
	opts     Options
	logger   *slog.Logger
	pipeline *usecase.Pipeline
	metrics  *metrics.Metrics

	db    *sql.DB
	redis *goredis.Client
}

// New builds the application. Postgres is required unless DryRun is set;
// Redis and Telegram are optional and skipped when unconfigured.
func New(ctx context.Context, cfg config.Config, baseLogger *slog.Logger, opts Options) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level, cfg.Logging.Format)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	for _, w := range cfg.Warnings() {
		baseLogger.Warn("configuration warning", "detail", w)
	}

	a := &Application{cfg: cfg, opts: opts, logger: baseLogger, metrics: metrics.New()}

	registry := scanner.NewRegistry()
	registry.Register(reddit.NewRedditScanner(nil, ""))
	source := reddit.NewStrategySource(registry, cfg.Sources, baseLogger.With("component", "source"))

	generator, err := llm.New(cfg.LLM)
	if err != nil {
		return nil, err
	}

	template := ideas.ForKind(domain.IdeaKind(cfg.Pipeline.Kind))
	extractor := extraction.NewClient(generator, extraction.Options{
		Template:          template,
		SystemPrompt:      cfg.LLM.SystemPrompt,
		PreFilterPrompt:   cfg.LLM.PreFilterPrompt,
		MaxTokens:         cfg.LLM.MaxTokens,
		RequestsPerMinute: cfg.LLM.RequestsPerMinute,
	}, baseLogger.With("component", "extraction"))

	deps := usecase.PipelineDeps{
		Source:    source,
		Extractor: extractor,
		Metrics:   a.metrics,
		Logger:    baseLogger.With("component", "pipeline"),
	}

	if !opts.DryRun {
		db, err := storage.Open(ctx, cfg.Database.DSN)
		if err != nil {
			return nil, err
		}
		a.db = db
		deps.Store = storage.NewPostgresRepository(db)
	} else {
		baseLogger.Warn("dry run: records will not be persisted")
	}

	if cfg.Redis.Addr != "" {
		client, err := redis.NewClient(cfg.Redis)
		if err != nil {
			baseLogger.Warn("fingerprint store unavailable, continuing with in-run dedup only", "error", err)
		} else {
			a.redis = client
			deps.Fingerprints = redis.NewFingerprintStore(client, cfg.Redis.TTL)
		}
	}

	if cfg.Notifications.Telegram.Enabled() {
		deps.Notifier = telegram.NewNotifier(cfg.Notifications.Telegram)
	}

	keywords := cfg.Pipeline.Keywords
	if len(keywords) == 0 {
		keywords = filter.DefaultKeywords
	}

	a.pipeline = usecase.NewPipeline(deps, usecase.PipelineOptions{
		Template:          template,
		Validator:         ideas.NewValidator(cfg.Validation.MinNameLength, cfg.Validation.MinAnalysisLength),
		Keywords:          filter.NewKeywords(keywords),
		Communities:       cfg.Pipeline.Communities,
		LimitPerCommunity: cfg.Pipeline.LimitPerCommunity,
		BatchSize:         cfg.Pipeline.BatchSize,
		MaxDaily:          cfg.Pipeline.MaxDaily,
		ModelPreFilter:    cfg.Pipeline.ModelPreFilter,
		PreDedup:          a.dedupOptions(cfg.Pipeline.PreDedup),
		BatchDedup:        a.dedupOptions(cfg.Pipeline.BatchDedup),
	})

	return a, nil
}

func (a *Application) dedupOptions(strictness string) dedup.Options {
	return dedup.Options{
		Strictness:      dedup.ParseStrictness(strictness),
		AuthorThreshold: a.cfg.Validation.AuthorThreshold,
		AuthorHistory:   a.cfg.Validation.AuthorHistory,
	}
}

// Run performs a single pipeline execution.
func (a *Application) Run(ctx context.Context) (*usecase.Report, error) {
	return a.pipeline.Run(ctx)
}

// Schedule runs the pipeline on the configured cron expression and serves
// metrics until ctx is cancelled.
func (a *Application) Schedule(ctx context.Context) error {
	driver := scheduler.NewCronScheduler(a.cfg.Scheduler.CronExpression, a.cfg.Scheduler.Location(), a.opts.RunOnStart).
		WithLogger(a.logger)
	sched := usecase.NewScheduler(driver, a.pipeline, a.logger.With("component", "scheduler"))

	if next, err := driver.Next(time.Now()); err == nil {
		a.logger.Info("scheduler started", "cron", a.cfg.Scheduler.CronExpression, "next_run", next.Format(time.RFC3339))
	}
	if err := sched.Start(ctx); err != nil {
		return err
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", a.metrics.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	server := &http.Server{Addr: a.cfg.Metrics.Addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	serveErr := make(chan error, 1)
	go func() {
		a.logger.Info("metrics listener started", "addr", a.cfg.Metrics.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	var runErr error
	select {
	case <-ctx.Done():
	case err, ok := <-serveErr:
		if ok {
			runErr = fmt.Errorf("metrics listener: %w", err)
		}
	}

	stopCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	return errors.Join(runErr, sched.Stop(stopCtx), server.Shutdown(stopCtx))
}

// Close releases database and cache connections.
func (a *Application) Close() error {
	var errs []error
	if a.db != nil {
		errs = append(errs, a.db.Close())
	}
	if a.redis != nil {
		errs = append(errs, a.redis.Close())
	}
	return errors.Join(errs...)
}
