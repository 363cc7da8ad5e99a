// Package engine provides the coordinator layer for dedupe.
//
// The engine executes a full pairwise comparison over an ordered record
// set: every unordered pair (i, j) with i < j is scored exactly once by a
// similarity Oracle, and pairs that reach the oracle threshold become
// duplicates.
//
// # Fork-Join Architecture
//
// A run proceeds in three phases:
//
//   - Plan: a partition.Planner splits the m*(m-1)/2 comparisons into
//     buckets of anchor indices with near-equal workloads.
//   - Fork: one worker goroutine per bucket compares each anchor i
//     against every record j > i and collects a bucket-local duplicate
//     set. Workers share nothing but the immutable record set.
//   - Join: worker results are merged with a set union. Union is
//     commutative, so bucket completion order never changes the outcome.
//
// Any worker error cancels the remaining workers and fails the run with
// the first error observed.
//
// # Resource Limits
//
// Concurrency is bounded by an optional worker cap (WithMaxWorkers) and
// comparison throughput by an optional rate limit (WithComparisonRate).
// Both default to unlimited.
//
// # Result Persistence
//
// With WithStore, every bucket's local set and the merged result are
// written to a resultstore.Store under the run's key prefix, so partial
// results survive for inspection and the merged set can be fetched later.
package engine
