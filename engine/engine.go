package engine

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"github.com/google/uuid"
	"github.com/hupe1980/dedupe/internal/resource"
	"github.com/hupe1980/dedupe/partition"
	"github.com/hupe1980/dedupe/record"
	"github.com/hupe1980/dedupe/resultstore"
	"golang.org/x/sync/errgroup"
)

// Engine executes brute-force deduplication runs over an immutable record
// set. An Engine is safe for concurrent use; each run plans, forks and
// joins independently.
type Engine struct {
	records *record.Set
	oracle  Oracle

	nodes    int
	expected int
	planner  partition.Planner
	parts    partition.Partitioning

	store *resultstore.Store
	runID string

	maxWorkers        int
	comparisonsPerSec float64
	ctrl              *resource.Controller

	metrics MetricsObserver
	logger  Logger
}

// Logger is a simple interface for logging.
type Logger interface {
	Infof(format string, args ...interface{})
	Errorf(format string, args ...interface{})
}

// noopLogger is a default logger that does nothing.
type noopLogger struct{}

func (l *noopLogger) Infof(format string, args ...interface{})  {}
func (l *noopLogger) Errorf(format string, args ...interface{}) {}

// Option defines a configuration option for the Engine.
type Option func(*Engine)

// WithNodes sets the node count the planner divides the comparison
// workload across. Defaults to the number of CPUs.
func WithNodes(n int) Option {
	return func(e *Engine) {
		e.nodes = n
	}
}

// WithExpectedRecords declares how many records the caller intends to
// deduplicate. New fails when the declared count does not match the
// actual set length. A negative value disables the check.
func WithExpectedRecords(m int) Option {
	return func(e *Engine) {
		e.expected = m
	}
}

// WithPlanner overrides the default greedy planner.
func WithPlanner(p partition.Planner) Option {
	return func(e *Engine) {
		if p != nil {
			e.planner = p
		}
	}
}

// WithPartitioning supplies a precomputed partitioning instead of running
// a planner. New rejects partitionings that do not cover every record
// index exactly once.
func WithPartitioning(parts partition.Partitioning) Option {
	return func(e *Engine) {
		e.parts = parts
	}
}

// WithStore tees every bucket's local duplicate set and the merged result
// into the given result store.
func WithStore(store *resultstore.Store) Option {
	return func(e *Engine) {
		e.store = store
	}
}

// WithRunID fixes the run identifier used for store keys and logging.
// When unset, every run generates a fresh UUID.
func WithRunID(id string) Option {
	return func(e *Engine) {
		e.runID = id
	}
}

// WithMaxWorkers caps how many bucket workers scan concurrently.
// Zero or negative means no cap.
func WithMaxWorkers(n int) Option {
	return func(e *Engine) {
		e.maxWorkers = n
	}
}

// WithComparisonRate limits the global comparison throughput to roughly
// perSec comparisons per second across all workers. Zero or negative
// means unlimited.
func WithComparisonRate(perSec float64) Option {
	return func(e *Engine) {
		e.comparisonsPerSec = perSec
	}
}

// WithMetricsObserver sets the metrics observer for the engine.
func WithMetricsObserver(observer MetricsObserver) Option {
	return func(e *Engine) {
		if observer != nil {
			e.metrics = observer
		}
	}
}

// WithLogger sets the logger for the engine.
func WithLogger(l Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// New creates an Engine for the given records and oracle. Configuration
// problems are reported here, before any comparison work starts.
func New(records *record.Set, oracle Oracle, opts ...Option) (*Engine, error) {
	e := &Engine{
		records:  records,
		oracle:   oracle,
		nodes:    runtime.NumCPU(),
		expected: -1,
		planner:  partition.Greedy{},
		metrics:  &NoopMetricsObserver{},
		logger:   &noopLogger{},
	}

	for _, opt := range opts {
		opt(e)
	}

	if e.oracle == nil {
		return nil, ErrMissingOracle
	}
	if e.nodes <= 0 {
		return nil, fmt.Errorf("%w: got %d", partition.ErrInvalidNodeCount, e.nodes)
	}
	if e.expected >= 0 && e.expected != e.records.Len() {
		return nil, &ErrRecordCountMismatch{Expected: e.expected, Actual: e.records.Len()}
	}
	if e.parts != nil {
		if err := partition.Validate(e.parts, e.records.Len()); err != nil {
			return nil, err
		}
	}

	e.ctrl = resource.NewController(resource.Config{
		MaxWorkers:        int64(e.maxWorkers),
		ComparisonsPerSec: e.comparisonsPerSec,
	})

	return e, nil
}

// Run describes a completed deduplication run.
type Run struct {
	// ID is the run identifier. Store keys for this run live under
	// the prefix derived from it.
	ID string

	// Pairs is the merged duplicate set.
	Pairs record.PairSet

	// Buckets is the number of partition buckets that were scanned.
	Buckets int

	// Comparisons is the number of record pairs actually compared.
	Comparisons int64

	// Elapsed is the wall-clock duration of the run.
	Elapsed time.Duration
}

// Plan returns the partitioning the next run will execute: the supplied
// partitioning when one was configured, otherwise a fresh plan from the
// planner.
func (e *Engine) Plan() (partition.Partitioning, error) {
	if e.parts != nil {
		return e.parts, nil
	}
	return e.planner.Plan(e.records.Len(), e.nodes)
}

// Deduplicate compares every record pair exactly once and returns the
// merged duplicate set together with run statistics. Workers run
// concurrently; the first worker error cancels the rest and fails the
// run.
func (e *Engine) Deduplicate(ctx context.Context) (run *Run, err error) {
	started := time.Now()
	defer func() {
		elapsed := time.Since(started)
		if err != nil {
			e.metrics.OnRun(elapsed, 0, 0, err)
			e.logger.Errorf("deduplication run failed: %v", err)
			return
		}
		run.Elapsed = elapsed
		e.metrics.OnRun(elapsed, run.Comparisons, run.Pairs.Len(), nil)
	}()

	m := e.records.Len()

	planStarted := time.Now()
	parts, err := e.Plan()
	if err == nil {
		err = partition.Validate(parts, m)
	}
	e.metrics.OnPlan(time.Since(planStarted), len(parts), err)
	if err != nil {
		return nil, err
	}

	runID := e.runID
	if runID == "" {
		runID = uuid.NewString()
	}
	e.logger.Infof("run %s: %d records, %d comparisons across %d buckets",
		runID, m, partition.TotalComparisons(m), len(parts))

	results := make([]record.PairSet, len(parts))
	counts := make([]int64, len(parts))

	g, gctx := errgroup.WithContext(ctx)
	for b, bucket := range parts {
		b, bucket := b, bucket
		g.Go(func() error {
			if err := e.ctrl.AcquireWorker(gctx); err != nil {
				return fmt.Errorf("bucket %d: %w", b, err)
			}
			defer e.ctrl.ReleaseWorker()

			bucketStarted := time.Now()
			w := &worker{bucket: bucket, records: e.records, oracle: e.oracle, ctrl: e.ctrl}
			set, n, err := w.run(gctx)
			e.metrics.OnBucket(b, time.Since(bucketStarted), n, set.Len(), err)
			if err != nil {
				return fmt.Errorf("bucket %d: %w", b, err)
			}

			if e.store != nil {
				if err := e.putSet(gctx, resultstore.BucketKey(runID, b), set); err != nil {
					return fmt.Errorf("bucket %d: %w", b, err)
				}
			}

			results[b] = set
			counts[b] = n

			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	merged := record.NewPairSet()
	var comparisons int64
	for b, set := range results {
		merged.Union(set)
		comparisons += counts[b]
	}

	if e.store != nil {
		if err := e.putSet(ctx, resultstore.ResultKey(runID), merged); err != nil {
			return nil, err
		}
	}

	e.logger.Infof("run %s: %d comparisons, %d duplicate pairs", runID, comparisons, merged.Len())

	return &Run{
		ID:          runID,
		Pairs:       merged,
		Buckets:     len(parts),
		Comparisons: comparisons,
	}, nil
}

func (e *Engine) putSet(ctx context.Context, key string, set record.PairSet) error {
	started := time.Now()
	err := e.store.Put(ctx, key, set)
	e.metrics.OnStore(key, time.Since(started), err)
	if err != nil {
		return fmt.Errorf("store %s: %w", key, err)
	}
	return nil
}
