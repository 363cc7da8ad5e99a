// Package resource provides centralized resource governance for
// deduplication runs.
//
// The Controller bounds two global quantities:
//
//   - Worker slots: a weighted semaphore caps how many bucket workers
//     scan concurrently. Acquire blocks until a slot frees up, so a run
//     with more buckets than slots degrades gracefully instead of
//     oversubscribing the scheduler.
//   - Comparison throughput: a token-bucket limiter spreads comparisons
//     over time. Workers reserve an anchor's whole span up front, in
//     burst-sized chunks, so throttling happens between anchors rather
//     than inside the tight inner loop.
//
// Both limits are optional. A zero Config, or a nil *Controller,
// enforces nothing: every method is safe on a nil receiver and degrades
// to a no-op, which keeps call sites free of conditionals.
package resource
