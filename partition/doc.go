// Package partition plans how the pairwise comparison workload of a record
// set is split across worker nodes.
//
// Comparing every unordered pair of m records costs m*(m-1)/2 comparisons.
// The work of anchor index i is the m-i-1 comparisons against all later
// indices, so early indices are far heavier than late ones. Planners assign
// anchor indices to buckets, one bucket per worker task.
//
// # Planners
//
//   - Greedy: the default. Closes a bucket as soon as it reaches the
//     per-node average workload. The bucket count may differ from the node
//     count; with more nodes than comparisons every index gets its own
//     bucket.
//   - Ranges: always produces exactly min(n, m) contiguous buckets with
//     near-equal workloads.
//
// # Usage
//
//	parts, err := partition.Greedy{}.Plan(len(records), 16)
//	if err != nil {
//	    return err
//	}
//	if err := partition.Validate(parts, len(records)); err != nil {
//	    return err
//	}
//	stats := partition.Summarize(parts, len(records))
//	fmt.Printf("%d buckets, max workload %d\n", stats.Buckets, stats.Max)
package partition
