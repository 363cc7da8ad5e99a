// Package dedupe provides parallel brute-force duplicate detection for Go.
//
// Dedupe compares every record pair in a dataset exactly once through a
// pluggable similarity oracle and reports the pairs whose score reaches the
// oracle's threshold, with production-ready features including:
//
//   - Workload-balanced partitioning of the triangular comparison space
//   - Fork-join execution: one worker per bucket, set-union merge
//   - Pluggable similarity oracles (bibliographic token matching included)
//   - Result persistence to local disk, memory, S3 or MinIO
//   - Transparent payload compression (LZ4, ZSTD) and pluggable codecs
//   - Worker caps and global comparison rate limiting
//   - Structured logging and metrics collection hooks
//
// # Quick Start
//
// Load a tab separated dataset and find near-duplicate records:
//
//	ctx := context.Background()
//
//	records, err := dataset.Load("cora.tsv")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	d, err := dedupe.New(16, records.Len(), records, dataset.NewBibliographic())
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	pairs, err := d.Deduplicate(ctx)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	for _, p := range pairs.Pairs() {
//	    fmt.Println(p)
//	}
//
// # Custom Oracles
//
// Any scoring function can drive the engine:
//
//	oracle := engine.OracleFunc(1.0, func(a, b record.Record) (float64, error) {
//	    if a["email"] == b["email"] {
//	        return 1.0, nil
//	    }
//	    return 0.0, nil
//	})
//
// # Result Persistence
//
// With a result store configured, every bucket's local duplicate set and
// the merged result are written under the run's key prefix:
//
//	store := resultstore.New(resultstore.NewLocalStore("./results"))
//
//	d, err := dedupe.New(8, records.Len(), records, oracle,
//	    dedupe.WithResultStore(store),
//	    dedupe.WithRunID("nightly"),
//	)
//
// # Resource Limits
//
// Large datasets can swamp a shared host; cap concurrency and throughput:
//
//	d, err := dedupe.New(64, records.Len(), records, oracle,
//	    dedupe.WithMaxWorkers(8),
//	    dedupe.WithComparisonRate(50_000),
//	)
package dedupe

import (
	"context"
	"time"

	"github.com/hupe1980/dedupe/engine"
	"github.com/hupe1980/dedupe/partition"
	"github.com/hupe1980/dedupe/record"
)

// Deduper runs brute-force duplicate detection over an immutable record
// set. A Deduper is safe for concurrent use and can execute any number of
// runs.
type Deduper struct {
	engine  *engine.Engine
	metrics MetricsCollector
	logger  *Logger
}

// New creates a Deduper that spreads the comparison workload across n
// nodes and expects the record set to hold exactly m records. A negative
// m disables the count check.
//
// All configuration problems are reported here, before any comparison
// work starts.
func New(n, m int, records *record.Set, oracle engine.Oracle, optFns ...Option) (*Deduper, error) {
	opts := applyOptions(optFns)

	d := &Deduper{
		metrics: opts.metricsCollector,
		logger:  opts.logger,
	}

	engineOpts := []engine.Option{
		engine.WithNodes(n),
		engine.WithExpectedRecords(m),
		engine.WithMetricsObserver(&observerAdapter{metrics: opts.metricsCollector}),
	}
	if opts.planner != nil {
		engineOpts = append(engineOpts, engine.WithPlanner(opts.planner))
	}
	if opts.parts != nil {
		engineOpts = append(engineOpts, engine.WithPartitioning(opts.parts))
	}
	if opts.store != nil {
		engineOpts = append(engineOpts, engine.WithStore(opts.store))
	}
	if opts.runID != "" {
		engineOpts = append(engineOpts, engine.WithRunID(opts.runID))
	}
	if opts.maxWorkers > 0 {
		engineOpts = append(engineOpts, engine.WithMaxWorkers(opts.maxWorkers))
	}
	if opts.comparisonsPerSec > 0 {
		engineOpts = append(engineOpts, engine.WithComparisonRate(opts.comparisonsPerSec))
	}

	eng, err := engine.New(records, oracle, engineOpts...)
	if err != nil {
		return nil, translateError(err)
	}
	d.engine = eng

	return d, nil
}

// Plan returns the partitioning the next run will execute: the supplied
// partitioning when one was configured, otherwise a fresh plan from the
// planner.
func (d *Deduper) Plan() (partition.Partitioning, error) {
	parts, err := d.engine.Plan()
	if err != nil {
		return nil, translateError(err)
	}
	return parts, nil
}

// Deduplicate compares every record pair exactly once and returns the
// merged duplicate set. Bucket workers run concurrently; the first
// failure cancels the remaining workers and fails the run.
func (d *Deduper) Deduplicate(ctx context.Context) (record.PairSet, error) {
	start := time.Now()

	run, err := d.engine.Deduplicate(ctx)
	duration := time.Since(start)
	if err != nil {
		err = translateError(err)
		d.metrics.RecordRun(duration, 0, 0, err)
		d.logger.LogRun(ctx, "", 0, 0, err)
		return nil, err
	}

	d.metrics.RecordRun(duration, run.Comparisons, run.Pairs.Len(), nil)
	d.logger.LogRun(ctx, run.ID, run.Comparisons, run.Pairs.Len(), nil)

	return run.Pairs, nil
}

// observerAdapter forwards engine events to a MetricsCollector. Run
// completion is recorded by the Deduper itself, so OnRun stays a no-op
// through the embedded observer.
type observerAdapter struct {
	engine.NoopMetricsObserver
	metrics MetricsCollector
}

func (a *observerAdapter) OnPlan(duration time.Duration, buckets int, err error) {
	a.metrics.RecordPlan(duration, buckets, err)
}

func (a *observerAdapter) OnBucket(bucket int, duration time.Duration, comparisons int64, pairs int, err error) {
	a.metrics.RecordBucket(duration, comparisons, pairs)
}

func (a *observerAdapter) OnStore(key string, duration time.Duration, err error) {
	a.metrics.RecordStore(duration, err)
}
