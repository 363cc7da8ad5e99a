package partition

import "errors"

// ErrInvalidNodeCount is returned when the node count is not positive.
var ErrInvalidNodeCount = errors.New("node count must be positive")

// Planner computes a partitioning of the pairwise comparison workload for m
// records across n nodes.
//
// Implementations must be deterministic and stateless: the same (m, n)
// always yields the same partitioning, and concurrent calls are safe.
type Planner interface {
	Plan(m, n int) (Partitioning, error)
}

// Bucket is the set of anchor indices assigned to one node. The index i
// stands for all pairs (i, j) with i < j < m, so its workload is m-i-1
// comparisons. Indices within a bucket are ascending.
type Bucket []int

// Workload returns the number of comparisons the bucket performs over a set
// of m records.
func (b Bucket) Workload(m int) int64 {
	var total int64
	for _, i := range b {
		total += int64(m - i - 1)
	}
	return total
}

// Partitioning assigns every record index to exactly one bucket. The bucket
// count is a planner decision and need not equal the node count.
type Partitioning []Bucket

// NumIndices returns the total number of indices across all buckets.
func (p Partitioning) NumIndices() int {
	total := 0
	for _, b := range p {
		total += len(b)
	}
	return total
}

// TotalComparisons returns the number of unordered pairs over m records.
func TotalComparisons(m int) int64 {
	if m < 2 {
		return 0
	}
	return int64(m) * int64(m-1) / 2
}

// Greedy is the default planner. It scans indices in ascending order,
// accumulating each index's triangular workload (m-i-1) into the current
// bucket and closing the bucket once the accumulated workload reaches the
// per-node average totalCmp/n (integer division). A non-empty trailing
// bucket is closed regardless of its workload, so every index is always
// assigned, including a final zero-workload index.
//
// The bucket count is a consequence of the greedy scan, not a target: heavy
// early indices can satisfy the average in fewer buckets than n, and when
// the average is zero (n > totalCmp) every index gets its own bucket, m in
// total. Callers that need exactly one bucket per node should use Ranges.
type Greedy struct{}

// Plan implements Planner.
func (Greedy) Plan(m, n int) (Partitioning, error) {
	if n <= 0 {
		return nil, ErrInvalidNodeCount
	}
	if m <= 0 {
		return Partitioning{}, nil
	}

	avgCmp := TotalComparisons(m) / int64(n)

	parts := make(Partitioning, 0, n)
	var (
		pending  Bucket
		workload int64
	)
	for i := 0; i < m; i++ {
		pending = append(pending, i)
		workload += int64(m - i - 1)
		if workload >= avgCmp {
			parts = append(parts, pending)
			pending = nil
			workload = 0
		}
	}
	if len(pending) > 0 {
		parts = append(parts, pending)
	}
	return parts, nil
}

// Ranges is an alternative planner that always produces exactly min(n, m)
// buckets of contiguous indices with near-equal workloads. Unlike Greedy,
// the bucket count is fixed, which simplifies per-node accounting at the
// cost of a coarser balance: each bucket grows until it reaches the average
// of the remaining workload, and the last bucket absorbs the tail.
type Ranges struct{}

// Plan implements Planner.
func (Ranges) Plan(m, n int) (Partitioning, error) {
	if n <= 0 {
		return nil, ErrInvalidNodeCount
	}
	if m <= 0 {
		return Partitioning{}, nil
	}
	if n > m {
		n = m
	}

	parts := make(Partitioning, 0, n)
	remaining := TotalComparisons(m)
	i := 0
	for b := 0; b < n; b++ {
		left := n - b
		if left == 1 {
			last := make(Bucket, 0, m-i)
			for ; i < m; i++ {
				last = append(last, i)
			}
			parts = append(parts, last)
			break
		}

		target := remaining / int64(left)
		bucket := Bucket{i}
		workload := int64(m - i - 1)
		i++
		// Grow toward the target while leaving at least one index for
		// each remaining bucket.
		for workload < target && m-i > left-1 {
			workload += int64(m - i - 1)
			bucket = append(bucket, i)
			i++
		}
		remaining -= workload
		parts = append(parts, bucket)
	}
	return parts, nil
}
