package dedupe

import (
	"log/slog"

	"github.com/hupe1980/dedupe/partition"
	"github.com/hupe1980/dedupe/resultstore"
)

type options struct {
	planner           partition.Planner
	parts             partition.Partitioning
	store             *resultstore.Store
	runID             string
	maxWorkers        int
	comparisonsPerSec float64
	metricsCollector  MetricsCollector
	logger            *Logger
}

// Option configures Deduper constructor behavior.
type Option func(*options)

// WithPlanner overrides the default greedy planner.
//
// If nil is passed, the default planner is kept.
func WithPlanner(p partition.Planner) Option {
	return func(o *options) {
		o.planner = p
	}
}

// WithPartitioning supplies a precomputed partitioning instead of running
// a planner. New rejects partitionings that do not assign every record
// index exactly once.
func WithPartitioning(parts partition.Partitioning) Option {
	return func(o *options) {
		o.parts = parts
	}
}

// WithResultStore persists every bucket's local duplicate set and the
// merged result of each run.
//
// Example with a compressed local store:
//
//	backend := resultstore.NewCompressedStore(
//	    resultstore.NewLocalStore("./results"), resultstore.CompressionZSTD)
//	d, _ := dedupe.New(8, m, records, oracle,
//	    dedupe.WithResultStore(resultstore.New(backend)))
func WithResultStore(store *resultstore.Store) Option {
	return func(o *options) {
		o.store = store
	}
}

// WithRunID fixes the run identifier used for store keys and logging.
// When unset, every run generates a fresh UUID.
func WithRunID(id string) Option {
	return func(o *options) {
		o.runID = id
	}
}

// WithMaxWorkers caps how many bucket workers scan concurrently.
// Zero or negative means no cap.
//
// The cap bounds memory and CPU pressure, not the partitioning: a run
// over 64 buckets with a cap of 8 still scans all 64 buckets, at most 8
// at a time.
func WithMaxWorkers(n int) Option {
	return func(o *options) {
		o.maxWorkers = n
	}
}

// WithComparisonRate limits global comparison throughput to roughly
// perSec comparisons per second across all workers. Zero or negative
// means unlimited.
//
// Useful when the oracle calls out to an external scoring service with
// its own rate limits.
func WithComparisonRate(perSec float64) Option {
	return func(o *options) {
		o.comparisonsPerSec = perSec
	}
}

// WithMetricsCollector configures a metrics collector for monitoring runs.
// Pass nil to disable metrics collection.
//
// Example with BasicMetricsCollector:
//
//	metrics := &dedupe.BasicMetricsCollector{}
//	d, _ := dedupe.New(8, m, records, oracle, dedupe.WithMetricsCollector(metrics))
//	// ... run ...
//	stats := metrics.GetStats()
//	fmt.Printf("Comparisons: %d, Pairs: %d\n", stats.ComparisonsTotal, stats.PairsTotal)
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		if mc == nil {
			mc = NoopMetricsCollector{}
		}
		o.metricsCollector = mc
	}
}

// WithLogger configures structured logging for runs.
// Pass nil to disable logging.
//
// Example with JSON logging:
//
//	logger := dedupe.NewJSONLogger(slog.LevelInfo)
//	d, _ := dedupe.New(8, m, records, oracle, dedupe.WithLogger(logger))
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		if logger == nil {
			logger = NoopLogger()
		}
		o.logger = logger
	}
}

// WithLogLevel creates a text logger with the specified level and sets it.
// Convenience wrapper for WithLogger(NewTextLogger(level)).
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewTextLogger(level)
	}
}

func applyOptions(optFns []Option) options {
	o := options{
		metricsCollector: NoopMetricsCollector{},
		logger:           NoopLogger(),
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	return o
}
