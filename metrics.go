package dedupe

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems like Prometheus.
//
// Example Prometheus integration:
//
//	type PrometheusCollector struct {
//	    runCounter      prometheus.Counter
//	    bucketHistogram prometheus.Histogram
//	}
//
//	func (p *PrometheusCollector) RecordRun(duration time.Duration, comparisons int64, pairs int, err error) {
//	    p.runCounter.Inc()
//	    // ... record error state, duration, etc.
//	}
type MetricsCollector interface {
	// RecordPlan is called after the comparison space has been partitioned.
	// buckets is the number of buckets planned, err is nil if successful.
	RecordPlan(duration time.Duration, buckets int, err error)

	// RecordBucket is called after each bucket worker finishes its scan.
	// comparisons is the number of pairs compared and pairs the number of
	// duplicates found in the bucket.
	RecordBucket(duration time.Duration, comparisons int64, pairs int)

	// RecordRun is called after each deduplication run.
	// comparisons is the total number of pairs compared, pairs the size of
	// the merged duplicate set, err is nil if successful.
	RecordRun(duration time.Duration, comparisons int64, pairs int, err error)

	// RecordStore is called after each result store write.
	RecordStore(duration time.Duration, err error)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordPlan(time.Duration, int, error)       {}
func (NoopMetricsCollector) RecordBucket(time.Duration, int64, int)     {}
func (NoopMetricsCollector) RecordRun(time.Duration, int64, int, error) {}
func (NoopMetricsCollector) RecordStore(time.Duration, error)           {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	PlanCount        atomic.Int64
	PlanErrors       atomic.Int64
	BucketCount      atomic.Int64
	BucketTotalNanos atomic.Int64
	RunCount         atomic.Int64
	RunErrors        atomic.Int64
	RunTotalNanos    atomic.Int64
	ComparisonsTotal atomic.Int64
	PairsTotal       atomic.Int64
	StoreCount       atomic.Int64
	StoreErrors      atomic.Int64
}

// RecordPlan implements MetricsCollector.
func (b *BasicMetricsCollector) RecordPlan(duration time.Duration, buckets int, err error) {
	b.PlanCount.Add(1)
	if err != nil {
		b.PlanErrors.Add(1)
	}
}

// RecordBucket implements MetricsCollector.
func (b *BasicMetricsCollector) RecordBucket(duration time.Duration, comparisons int64, pairs int) {
	b.BucketCount.Add(1)
	b.BucketTotalNanos.Add(duration.Nanoseconds())
}

// RecordRun implements MetricsCollector.
func (b *BasicMetricsCollector) RecordRun(duration time.Duration, comparisons int64, pairs int, err error) {
	b.RunCount.Add(1)
	b.RunTotalNanos.Add(duration.Nanoseconds())
	b.ComparisonsTotal.Add(comparisons)
	b.PairsTotal.Add(int64(pairs))
	if err != nil {
		b.RunErrors.Add(1)
	}
}

// RecordStore implements MetricsCollector.
func (b *BasicMetricsCollector) RecordStore(duration time.Duration, err error) {
	b.StoreCount.Add(1)
	if err != nil {
		b.StoreErrors.Add(1)
	}
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		PlanCount:        b.PlanCount.Load(),
		PlanErrors:       b.PlanErrors.Load(),
		BucketCount:      b.BucketCount.Load(),
		BucketAvgNanos:   b.getAvgBucketNanos(),
		RunCount:         b.RunCount.Load(),
		RunErrors:        b.RunErrors.Load(),
		RunAvgNanos:      b.getAvgRunNanos(),
		ComparisonsTotal: b.ComparisonsTotal.Load(),
		PairsTotal:       b.PairsTotal.Load(),
		StoreCount:       b.StoreCount.Load(),
		StoreErrors:      b.StoreErrors.Load(),
	}
}

func (b *BasicMetricsCollector) getAvgBucketNanos() int64 {
	count := b.BucketCount.Load()
	if count == 0 {
		return 0
	}
	return b.BucketTotalNanos.Load() / count
}

func (b *BasicMetricsCollector) getAvgRunNanos() int64 {
	count := b.RunCount.Load()
	if count == 0 {
		return 0
	}
	return b.RunTotalNanos.Load() / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	PlanCount        int64
	PlanErrors       int64
	BucketCount      int64
	BucketAvgNanos   int64
	RunCount         int64
	RunErrors        int64
	RunAvgNanos      int64
	ComparisonsTotal int64
	PairsTotal       int64
	StoreCount       int64
	StoreErrors      int64
}
