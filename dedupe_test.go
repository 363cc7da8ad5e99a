package dedupe_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/dedupe"
	"github.com/hupe1980/dedupe/dataset"
	"github.com/hupe1980/dedupe/engine"
	"github.com/hupe1980/dedupe/partition"
	"github.com/hupe1980/dedupe/record"
	"github.com/hupe1980/dedupe/resultstore"
	"github.com/hupe1980/dedupe/testutil"
)

func testRecords(n int) *record.Set {
	records := make([]record.Record, n)
	for i := range records {
		records[i] = record.Record{record.IDField: fmt.Sprintf("r%03d", i)}
	}
	return record.NewSet(records)
}

// pairOracle scores the listed id pairs 1.0 regardless of orientation and
// everything else 0.0.
func pairOracle(threshold float64, pairs ...record.Pair) engine.Oracle {
	scores := make(map[record.Pair]struct{}, len(pairs))
	for _, p := range pairs {
		scores[p] = struct{}{}
	}
	return engine.OracleFunc(threshold, func(a, b record.Record) (float64, error) {
		if _, ok := scores[record.NewPair(a.ID(), b.ID())]; ok {
			return 1.0, nil
		}
		if _, ok := scores[record.NewPair(b.ID(), a.ID())]; ok {
			return 1.0, nil
		}
		return 0.0, nil
	})
}

func TestDeduplicateFindsPlantedPairs(t *testing.T) {
	records, gold := testutil.NewRNG(4711).Corpus(60, 4)

	d, err := dedupe.New(8, records.Len(), records, dataset.NewBibliographic())
	require.NoError(t, err)

	pairs, err := d.Deduplicate(context.Background())
	require.NoError(t, err)

	assert.True(t, pairs.Equal(gold), "got %v, want %v", pairs.Pairs(), gold.Pairs())
}

func TestDeduplicateDeterministicAcrossNodeCounts(t *testing.T) {
	records := testRecords(40)
	planted := []record.Pair{
		record.NewPair("r001", "r017"),
		record.NewPair("r003", "r038"),
		record.NewPair("r020", "r021"),
	}

	var results []record.PairSet
	for _, n := range []int{1, 3, 16, 64} {
		d, err := dedupe.New(n, records.Len(), records, pairOracle(0.5, planted...))
		require.NoError(t, err)

		pairs, err := d.Deduplicate(context.Background())
		require.NoError(t, err)

		results = append(results, pairs)
	}

	want := record.NewPairSet(planted...)
	for i, got := range results {
		assert.True(t, got.Equal(want), "node count variant %d diverged", i)
	}
}

func TestDeduplicateComparesEveryPairExactlyOnce(t *testing.T) {
	const m = 30
	records := testRecords(m)

	var (
		mu   sync.Mutex
		seen = make(map[record.Pair]int)
	)
	oracle := engine.OracleFunc(0.5, func(a, b record.Record) (float64, error) {
		mu.Lock()
		seen[record.NewPair(a.ID(), b.ID())]++
		mu.Unlock()
		return 0.0, nil
	})

	d, err := dedupe.New(4, m, records, oracle)
	require.NoError(t, err)

	_, err = d.Deduplicate(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int(partition.TotalComparisons(m)), len(seen))
	for p, count := range seen {
		assert.Equal(t, 1, count, "pair %s compared more than once", p)
	}
}

func TestDeduplicateEmptyAndSingleRecordSets(t *testing.T) {
	for _, m := range []int{0, 1} {
		records := testRecords(m)

		d, err := dedupe.New(4, m, records, pairOracle(0.5))
		require.NoError(t, err)

		pairs, err := d.Deduplicate(context.Background())
		require.NoError(t, err)

		assert.Equal(t, 0, pairs.Len())
	}
}

func TestNewValidation(t *testing.T) {
	records := testRecords(3)

	t.Run("MissingOracle", func(t *testing.T) {
		_, err := dedupe.New(4, 3, records, nil)
		require.Error(t, err)

		assert.ErrorIs(t, err, dedupe.ErrMissingOracle)
		assert.ErrorIs(t, err, engine.ErrMissingOracle)
	})

	t.Run("NonPositiveNodeCount", func(t *testing.T) {
		_, err := dedupe.New(0, 3, records, pairOracle(0.5))
		require.Error(t, err)

		assert.ErrorIs(t, err, dedupe.ErrInvalidNodeCount)
		assert.ErrorIs(t, err, partition.ErrInvalidNodeCount)
	})

	t.Run("RecordCountMismatch", func(t *testing.T) {
		_, err := dedupe.New(4, 10, records, pairOracle(0.5))
		require.Error(t, err)

		var rcm *dedupe.ErrRecordCountMismatch
		require.ErrorAs(t, err, &rcm)
		assert.Equal(t, 10, rcm.Expected)
		assert.Equal(t, 3, rcm.Actual)

		var inner *engine.ErrRecordCountMismatch
		assert.ErrorAs(t, err, &inner)
	})

	t.Run("NegativeExpectedDisablesCheck", func(t *testing.T) {
		_, err := dedupe.New(4, -1, records, pairOracle(0.5))
		assert.NoError(t, err)
	})

	t.Run("InvalidPartitioning", func(t *testing.T) {
		_, err := dedupe.New(4, 3, records, pairOracle(0.5),
			dedupe.WithPartitioning(partition.Partitioning{{0, 0}, {1, 2}}))
		require.Error(t, err)

		var ip *dedupe.ErrInvalidPartitioning
		require.ErrorAs(t, err, &ip)
		assert.Equal(t, 0, ip.Index)
		assert.Equal(t, "assigned twice", ip.Reason)
	})

	t.Run("ValidPartitioning", func(t *testing.T) {
		d, err := dedupe.New(4, 3, records, pairOracle(0.5),
			dedupe.WithPartitioning(partition.Partitioning{{0, 2}, {1}}))
		require.NoError(t, err)

		pairs, err := d.Deduplicate(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 0, pairs.Len())
	})
}

func TestPlanCoversEveryRecord(t *testing.T) {
	records := testRecords(25)

	d, err := dedupe.New(6, 25, records, pairOracle(0.5))
	require.NoError(t, err)

	parts, err := d.Plan()
	require.NoError(t, err)

	require.NoError(t, partition.Validate(parts, 25))

	stats := partition.Summarize(parts, 25)
	assert.Equal(t, partition.TotalComparisons(25), stats.Comparisons)
}

func TestDeduperReusableAcrossRuns(t *testing.T) {
	records := testRecords(20)
	planted := record.NewPair("r002", "r011")

	d, err := dedupe.New(4, 20, records, pairOracle(0.5, planted))
	require.NoError(t, err)

	first, err := d.Deduplicate(context.Background())
	require.NoError(t, err)

	second, err := d.Deduplicate(context.Background())
	require.NoError(t, err)

	assert.True(t, first.Equal(second))
	assert.True(t, first.Contains(planted))
}

func TestWithResultStore(t *testing.T) {
	records := testRecords(20)
	store := resultstore.New(resultstore.NewMemoryStore())

	d, err := dedupe.New(4, 20, records, pairOracle(0.5, record.NewPair("r001", "r019")),
		dedupe.WithResultStore(store),
		dedupe.WithRunID("facade-run"),
	)
	require.NoError(t, err)

	parts, err := d.Plan()
	require.NoError(t, err)

	pairs, err := d.Deduplicate(context.Background())
	require.NoError(t, err)

	stored, err := store.Get(context.Background(), resultstore.ResultKey("facade-run"))
	require.NoError(t, err)
	assert.True(t, stored.Equal(pairs))

	keys, err := store.List(context.Background(), "runs/facade-run/buckets/")
	require.NoError(t, err)
	assert.Len(t, keys, len(parts))
}

func TestMetricsCollectorWired(t *testing.T) {
	records := testRecords(20)
	metrics := &dedupe.BasicMetricsCollector{}
	store := resultstore.New(resultstore.NewMemoryStore())

	d, err := dedupe.New(4, 20, records, pairOracle(0.5, record.NewPair("r000", "r001")),
		dedupe.WithMetricsCollector(metrics),
		dedupe.WithResultStore(store),
	)
	require.NoError(t, err)

	parts, err := d.Plan()
	require.NoError(t, err)

	_, err = d.Deduplicate(context.Background())
	require.NoError(t, err)

	stats := metrics.GetStats()
	assert.Equal(t, int64(1), stats.PlanCount)
	assert.Equal(t, int64(1), stats.RunCount)
	assert.Equal(t, int64(0), stats.RunErrors)
	assert.Equal(t, int64(len(parts)), stats.BucketCount)
	assert.Equal(t, partition.TotalComparisons(20), stats.ComparisonsTotal)
	assert.Equal(t, int64(1), stats.PairsTotal)
	// One write per bucket plus the merged result.
	assert.Equal(t, int64(len(parts)+1), stats.StoreCount)
	assert.Equal(t, int64(0), stats.StoreErrors)
}

func TestOracleErrorFailsRun(t *testing.T) {
	records := testRecords(10)
	boom := errors.New("scoring service unavailable")

	oracle := engine.OracleFunc(0.5, func(a, b record.Record) (float64, error) {
		if a.ID() == "r004" && b.ID() == "r007" {
			return 0, boom
		}
		return 0.0, nil
	})

	d, err := dedupe.New(2, 10, records, oracle)
	require.NoError(t, err)

	metrics := &dedupe.BasicMetricsCollector{}
	d2, err := dedupe.New(2, 10, records, oracle, dedupe.WithMetricsCollector(metrics))
	require.NoError(t, err)

	_, err = d.Deduplicate(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)

	_, err = d2.Deduplicate(context.Background())
	require.Error(t, err)
	assert.Equal(t, int64(1), metrics.GetStats().RunErrors)
}

func TestDeduplicateContextCancelled(t *testing.T) {
	records := testRecords(200)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	d, err := dedupe.New(4, 200, records, pairOracle(0.5))
	require.NoError(t, err)

	_, err = d.Deduplicate(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}
