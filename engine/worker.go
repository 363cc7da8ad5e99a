package engine

import (
	"context"
	"fmt"

	"github.com/hupe1980/dedupe/internal/resource"
	"github.com/hupe1980/dedupe/partition"
	"github.com/hupe1980/dedupe/record"
)

// worker scans one bucket of anchor indices. For each anchor i it compares
// record i against every record j > i and collects the pairs whose score
// reaches the oracle threshold.
type worker struct {
	bucket  partition.Bucket
	records *record.Set
	oracle  Oracle
	ctrl    *resource.Controller
}

// run executes the bucket scan and returns the worker-local duplicate set
// together with the number of comparisons performed. The scan aborts on
// the first oracle error or once ctx is done.
func (w *worker) run(ctx context.Context) (record.PairSet, int64, error) {
	var (
		pairs       = record.NewPairSet()
		comparisons int64
		m           = w.records.Len()
		threshold   = w.oracle.Threshold()
	)

	for _, i := range w.bucket {
		if err := ctx.Err(); err != nil {
			return nil, comparisons, err
		}

		span := int64(m - i - 1)
		if span == 0 {
			// The last index anchors no pairs.
			continue
		}
		if err := w.ctrl.WaitComparisons(ctx, span); err != nil {
			return nil, comparisons, err
		}

		a := w.records.At(i)
		aID := a.ID()
		for j := i + 1; j < m; j++ {
			b := w.records.At(j)

			score, err := w.oracle.Similarity(a, b)
			if err != nil {
				return nil, comparisons, fmt.Errorf("compare (%d, %d): %w", i, j, err)
			}
			comparisons++

			if score >= threshold {
				pairs.Add(record.NewPair(aID, b.ID()))
			}
		}
	}

	return pairs, comparisons, nil
}
