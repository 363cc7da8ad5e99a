package integration_test

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/dedupe"
	"github.com/hupe1980/dedupe/dataset"
	"github.com/hupe1980/dedupe/evaluation"
	"github.com/hupe1980/dedupe/partition"
	"github.com/hupe1980/dedupe/record"
	"github.com/hupe1980/dedupe/testutil"
)

// writeFixtures writes a synthetic corpus and its gold standard to disk,
// exercising the same TSV path a real dataset would take.
func writeFixtures(t *testing.T, n, dupEvery int) (datasetPath, goldPath string, gold record.PairSet) {
	t.Helper()

	records, gold := testutil.NewRNG(4711).Corpus(n, dupEvery)
	dir := t.TempDir()

	datasetPath = filepath.Join(dir, "corpus.tsv")
	require.NoError(t, os.WriteFile(datasetPath, testutil.TSV(records, testutil.CorpusFields...), 0o600))

	goldPath = filepath.Join(dir, "gold.tsv")
	f, err := os.Create(goldPath)
	require.NoError(t, err)
	fmt.Fprintln(f, "id1\tid2")
	for _, p := range gold.Pairs() {
		fmt.Fprintf(f, "%s\t%s\n", p.Low, p.High)
	}
	require.NoError(t, f.Close())

	return datasetPath, goldPath, gold
}

func TestPipelineEndToEnd(t *testing.T) {
	datasetPath, goldPath, _ := writeFixtures(t, 200, 5)

	records, err := dataset.Load(datasetPath)
	require.NoError(t, err)
	require.Equal(t, 200, records.Len())

	deduper, err := dedupe.New(12, records.Len(), records, dataset.NewBibliographic())
	require.NoError(t, err)

	pairs, err := deduper.Deduplicate(context.Background())
	require.NoError(t, err)

	gold, err := evaluation.LoadGold(goldPath, func(o *evaluation.Options) {
		o.Header = true
	})
	require.NoError(t, err)

	report := evaluation.Evaluate(pairs, gold)
	assert.Equal(t, 1.0, report.Precision, report.String())
	assert.Equal(t, 1.0, report.Recall, report.String())
	assert.Equal(t, 1.0, report.F1, report.String())
	assert.Equal(t, gold.Len(), report.TruePositives)
}

func TestPipelineDeterministicAcrossPlans(t *testing.T) {
	datasetPath, _, gold := writeFixtures(t, 150, 4)

	records, err := dataset.Load(datasetPath)
	require.NoError(t, err)

	planners := map[string]partition.Planner{
		"greedy": partition.Greedy{},
		"ranges": partition.Ranges{},
	}

	for name, planner := range planners {
		for _, nodes := range []int{1, 7, 32} {
			t.Run(fmt.Sprintf("%s/n=%d", name, nodes), func(t *testing.T) {
				deduper, err := dedupe.New(nodes, records.Len(), records, dataset.NewBibliographic(),
					dedupe.WithPlanner(planner),
				)
				require.NoError(t, err)

				pairs, err := deduper.Deduplicate(context.Background())
				require.NoError(t, err)
				assert.True(t, pairs.Equal(gold), "partitioning must not change the result")
			})
		}
	}
}

func TestPipelineWithResourceLimits(t *testing.T) {
	datasetPath, _, gold := writeFixtures(t, 60, 4)

	records, err := dataset.Load(datasetPath)
	require.NoError(t, err)

	// High enough to finish fast, low enough to engage the limiter.
	deduper, err := dedupe.New(8, records.Len(), records, dataset.NewBibliographic(),
		dedupe.WithMaxWorkers(2),
		dedupe.WithComparisonRate(200_000),
	)
	require.NoError(t, err)

	pairs, err := deduper.Deduplicate(context.Background())
	require.NoError(t, err)
	assert.True(t, pairs.Equal(gold))
}
