package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"IdeaScanner/internal/app"
	"IdeaScanner/internal/config"
	"IdeaScanner/internal/logging"
)

// overrides holds command-line values layered over the loaded config.
type overrides struct {
	configFile  string
	logLevel    string
	kind        string
	communities []string
	limit       int
	batchSize   int
	dryRun      bool
	runOnStart  bool
}

func (o overrides) apply(cfg *config.Config) {
	if o.logLevel != "" {
		cfg.Logging.Level = o.logLevel
	}
	if o.kind != "" {
		cfg.Pipeline.Kind = o.kind
	}
	if len(o.communities) > 0 {
		cfg.Pipeline.Communities = o.communities
	}
	if o.limit > 0 {
		cfg.Pipeline.LimitPerCommunity = o.limit
	}
	if o.batchSize > 0 {
		cfg.Pipeline.BatchSize = o.batchSize
	}
}

func newRootCmd() *cobra.Command {
	var o overrides

	root := &cobra.Command{
		Use:           "ideascanner",
		Short:         "Turn community posts into business and marketing ideas",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&o.configFile, "config", "", "YAML config file (default $IDEA_SCANNER_CONFIG)")
	root.PersistentFlags().StringVar(&o.logLevel, "log-level", "", "debug, info, warn or error")
	root.PersistentFlags().StringVar(&o.kind, "kind", "", "idea kind: business or marketing")
	root.PersistentFlags().StringSliceVar(&o.communities, "communities", nil, "communities to scan instead of the configured ones")
	root.PersistentFlags().IntVar(&o.limit, "limit", 0, "posts fetched per community")
	root.PersistentFlags().IntVar(&o.batchSize, "batch-size", 0, "posts per model batch")
	root.PersistentFlags().BoolVar(&o.dryRun, "dry-run", false, "extract and validate without writing to Postgres")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Scan once and print the run summary",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			application, err := build(cmd.Context(), o)
			if err != nil {
				return err
			}
			defer application.Close()

			report, err := application.Run(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), report.Summary())
			return nil
		},
	}

	scheduleCmd := &cobra.Command{
		Use:   "schedule",
		Short: "Run on the configured cron expression and serve metrics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			application, err := build(cmd.Context(), o)
			if err != nil {
				return err
			}
			defer application.Close()
			return application.Schedule(cmd.Context())
		},
	}
	scheduleCmd.Flags().BoolVar(&o.runOnStart, "run-now", false, "trigger one run immediately")

	root.AddCommand(runCmd, scheduleCmd)
	return root
}

func build(ctx context.Context, o overrides) (*app.Application, error) {
	cfg := config.LoadPath(o.configFile)
	o.apply(&cfg)
	logger := logging.New(cfg.Logging.Level, cfg.Logging.Format)
	return app.New(ctx, cfg, logger, app.Options{DryRun: o.dryRun, RunOnStart: o.runOnStart})
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}
