package partition

import (
	"fmt"

	"github.com/RoaringBitmap/roaring/v2"
)

// ErrInvalidPartitioning reports a partitioning that does not assign every
// record index in [0, m) exactly once.
//
// A validation failure means the planner (or a hand-built partitioning) is
// defective; runs treat it as fatal and never retry.
type ErrInvalidPartitioning struct {
	Index  int
	Reason string
}

func (e *ErrInvalidPartitioning) Error() string {
	return fmt.Sprintf("invalid partitioning: index %d %s", e.Index, e.Reason)
}

// Validate checks that p assigns every record index in [0, m) exactly once.
//
// Bucket order and contiguity are planner conventions, not correctness
// requirements: any exact cover computes the same duplicate set, so custom
// partitionings with interleaved buckets pass validation.
func Validate(p Partitioning, m int) error {
	seen := roaring.New()
	for _, bucket := range p {
		for _, i := range bucket {
			if i < 0 || i >= m {
				return &ErrInvalidPartitioning{Index: i, Reason: fmt.Sprintf("out of range [0, %d)", m)}
			}
			if seen.Contains(uint32(i)) {
				return &ErrInvalidPartitioning{Index: i, Reason: "assigned twice"}
			}
			seen.Add(uint32(i))
		}
	}
	if seen.GetCardinality() != uint64(m) {
		for i := 0; i < m; i++ {
			if !seen.Contains(uint32(i)) {
				return &ErrInvalidPartitioning{Index: i, Reason: "not assigned"}
			}
		}
	}
	return nil
}
