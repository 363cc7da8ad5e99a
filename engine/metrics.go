package engine

import "time"

// MetricsObserver defines the interface for observing engine events.
type MetricsObserver interface {
	// OnPlan is called after the comparison space has been partitioned.
	OnPlan(duration time.Duration, buckets int, err error)

	// OnBucket is called when a bucket worker finishes its scan.
	OnBucket(bucket int, duration time.Duration, comparisons int64, pairs int, err error)

	// OnRun is called when a deduplication run completes.
	OnRun(duration time.Duration, comparisons int64, pairs int, err error)

	// OnStore is called after a result store write.
	OnStore(key string, duration time.Duration, err error)
}

// NoopMetricsObserver is a no-op implementation of MetricsObserver.
type NoopMetricsObserver struct{}

func (o *NoopMetricsObserver) OnPlan(duration time.Duration, buckets int, err error) {}
func (o *NoopMetricsObserver) OnBucket(bucket int, duration time.Duration, comparisons int64, pairs int, err error) {
}
func (o *NoopMetricsObserver) OnRun(duration time.Duration, comparisons int64, pairs int, err error) {
}
func (o *NoopMetricsObserver) OnStore(key string, duration time.Duration, err error) {}
