package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	gojson "github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/hupe1980/dedupe"
	"github.com/hupe1980/dedupe/dataset"
	"github.com/hupe1980/dedupe/evaluation"
	"github.com/hupe1980/dedupe/partition"
	"github.com/hupe1980/dedupe/record"
	"github.com/hupe1980/dedupe/resultstore"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions

	Nodes      int
	Planner    string
	Threshold  float64
	Gold       string
	GoldHeader bool
	MaxWorkers int
	Rate       float64
	RunID      string
	Config     string

	StoreOptions
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run <dataset.tsv>",
		Short: "Find duplicate pairs in a dataset",
		Long: `Run duplicate detection over a tab-separated dataset.

The dataset's first row names its columns and must contain an "id"
column. Every record pair is scored with the bibliographic similarity
oracle; pairs at or above the threshold are reported to stdout, one
tab-separated id pair per line. Diagnostics go to stderr.

Example:
  dedupe run cora.tsv -n 32 --gold cora_gold.tsv
  dedupe run cora.tsv --store dir --dir ./results --compression zstd`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDedupe(opts, args[0], cmd)
		},
	}

	cmd.Flags().IntVarP(&opts.Nodes, "nodes", "n", 16, "number of parallel workers")
	cmd.Flags().StringVar(&opts.Planner, "planner", "greedy", "partitioning strategy (greedy|ranges)")
	cmd.Flags().Float64Var(&opts.Threshold, "threshold", dataset.DefaultThreshold, "duplicate decision threshold")
	cmd.Flags().StringVar(&opts.Gold, "gold", "", "gold standard pair file for evaluation")
	cmd.Flags().BoolVar(&opts.GoldHeader, "gold-header", false, "gold standard file has a header row")
	cmd.Flags().IntVar(&opts.MaxWorkers, "max-workers", 0, "cap on concurrently running workers (0 = one per bucket)")
	cmd.Flags().Float64Var(&opts.Rate, "rate", 0, "comparisons per second across all workers (0 = unlimited)")
	cmd.Flags().StringVar(&opts.RunID, "run-id", "", "identifier for stored results (default: random)")
	cmd.Flags().StringVar(&opts.Config, "config", "", "YAML config file; flags set on the command line win")
	registerStoreFlags(cmd, &opts.StoreOptions)

	return cmd
}

func runDedupe(opts *RunOptions, datasetPath string, cmd *cobra.Command) error {
	if opts.Config != "" {
		cfg, err := LoadConfig(opts.Config)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to load config", err)
		}
		cfg.apply(cmd, opts)
	}
	if opts.LedgerTable != "" && opts.LedgerScope == "" {
		opts.LedgerScope = filepath.Base(datasetPath)
	}

	logger := newLogger(opts.RootOptions)

	// Setup signal handling for graceful cancellation
	// Use command's context if available (for testing), otherwise create one
	parentCtx := cmd.Context()
	if parentCtx == nil {
		parentCtx = context.Background()
	}
	ctx, cancel := context.WithCancel(parentCtx)
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	go func() {
		select {
		case sig := <-sigChan:
			logger.Info("received signal, cancelling run", "signal", sig)
			cancel()
		case <-ctx.Done():
		}
	}()

	planner, err := parsePlanner(opts.Planner)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid planner", err)
	}

	logger.Info("loading dataset", "path", datasetPath)
	records, err := dataset.Load(datasetPath)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load dataset", err)
	}
	logger.Info("dataset loaded", "records", records.Len())

	store, ledger, err := buildStore(ctx, &opts.StoreOptions)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to configure result store", err)
	}
	if store != nil && opts.RunID == "" {
		// Publishing needs a known run id up front; the engine would
		// otherwise generate its own.
		opts.RunID = uuid.NewString()
	}

	oracle := dataset.NewBibliographic(func(o *dataset.Options) {
		o.Threshold = opts.Threshold
	})

	collector := &dedupe.BasicMetricsCollector{}
	deduperOpts := []dedupe.Option{
		dedupe.WithPlanner(planner),
		dedupe.WithLogger(logger),
		dedupe.WithMetricsCollector(collector),
	}
	if store != nil {
		deduperOpts = append(deduperOpts, dedupe.WithResultStore(store))
	}
	if opts.RunID != "" {
		deduperOpts = append(deduperOpts, dedupe.WithRunID(opts.RunID))
	}
	if opts.MaxWorkers > 0 {
		deduperOpts = append(deduperOpts, dedupe.WithMaxWorkers(opts.MaxWorkers))
	}
	if opts.Rate > 0 {
		deduperOpts = append(deduperOpts, dedupe.WithComparisonRate(opts.Rate))
	}

	deduper, err := dedupe.New(opts.Nodes, records.Len(), records, oracle, deduperOpts...)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to configure deduper", err)
	}

	parts, err := deduper.Plan()
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to plan partitioning", err)
	}
	stats := partition.Summarize(parts, records.Len())
	logger.LogPlan(ctx, stats.Buckets, stats.Comparisons, nil)

	start := time.Now()
	pairs, err := deduper.Deduplicate(ctx)
	if err != nil {
		return WrapExitError(ExitFailure, "deduplication failed", err)
	}
	elapsed := time.Since(start)

	if store != nil {
		logger.LogStore(ctx, resultstore.ResultKey(opts.RunID), nil)
	}

	mstats := collector.GetStats()
	logger.Debug("run metrics",
		"buckets", mstats.BucketCount,
		"avg_bucket_nanos", mstats.BucketAvgNanos,
		"comparisons", mstats.ComparisonsTotal,
		"pairs", mstats.PairsTotal,
		"store_writes", mstats.StoreCount,
	)

	var report *evaluation.Report
	if opts.Gold != "" {
		gold, err := evaluation.LoadGold(opts.Gold, func(o *evaluation.Options) {
			o.Header = opts.GoldHeader
		})
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to load gold standard", err)
		}
		r := evaluation.Evaluate(pairs, gold)
		report = &r
		logger.LogEvaluation(ctx, r.Precision, r.Recall, r.F1)
	}

	if ledger != nil {
		commit, err := ledger.Commit(ctx, opts.RunID, resultstore.ResultKey(opts.RunID))
		if err != nil {
			return WrapExitError(ExitFailure, "failed to commit run to ledger", err)
		}
		logger.Info("run committed", "scope", opts.LedgerScope, "version", commit.Version, "result_key", commit.ResultKey)
	}

	if opts.Format == "json" {
		res := runResult{
			RunID:       opts.RunID,
			Records:     records.Len(),
			Buckets:     stats.Buckets,
			Comparisons: stats.Comparisons,
			Pairs:       pairs.Pairs(),
			Elapsed:     elapsed.String(),
			Report:      report,
		}
		enc := gojson.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	}

	w := cmd.OutOrStdout()
	for _, p := range pairs.Pairs() {
		fmt.Fprintf(w, "%s\t%s\n", p.Low, p.High)
	}
	return nil
}

// runResult is the payload printed by run with --format json.
type runResult struct {
	RunID       string             `json:"run_id,omitempty"`
	Records     int                `json:"records"`
	Buckets     int                `json:"buckets"`
	Comparisons int64              `json:"comparisons"`
	Pairs       []record.Pair      `json:"pairs"`
	Elapsed     string             `json:"elapsed"`
	Report      *evaluation.Report `json:"report,omitempty"`
}

// newLogger builds the CLI logger from the global flags. Logs go to
// stderr so result output on stdout stays parseable.
func newLogger(opts *RootOptions) *dedupe.Logger {
	level := slog.LevelInfo
	if opts.Verbose {
		level = slog.LevelDebug
	}
	if opts.Format == "json" {
		return dedupe.NewJSONLogger(level)
	}
	return dedupe.NewTextLogger(level)
}
