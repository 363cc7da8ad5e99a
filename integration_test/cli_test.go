package integration_test

import (
	"bytes"
	"context"
	"testing"

	gojson "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/dedupe/internal/cli"
	"github.com/hupe1980/dedupe/partition"
	"github.com/hupe1980/dedupe/resultstore"
)

// cliRunResult mirrors the run command's JSON payload.
type cliRunResult struct {
	RunID       string `json:"run_id"`
	Records     int    `json:"records"`
	Buckets     int    `json:"buckets"`
	Comparisons int64  `json:"comparisons"`
	Pairs       []struct {
		Low  string `json:"low"`
		High string `json:"high"`
	} `json:"pairs"`
	Report *struct {
		TruePositives int     `json:"true_positives"`
		Precision     float64 `json:"precision"`
		Recall        float64 `json:"recall"`
		F1            float64 `json:"f1"`
	} `json:"report"`
}

func TestCLIRunPipeline(t *testing.T) {
	datasetPath, goldPath, gold := writeFixtures(t, 60, 4)
	storeDir := t.TempDir()

	buf := &bytes.Buffer{}
	cmd := cli.NewRootCommand()
	cmd.SetOut(buf)
	cmd.SetArgs([]string{
		"run", datasetPath,
		"--format", "json",
		"--nodes", "6",
		"--gold", goldPath,
		"--gold-header",
		"--store", "dir",
		"--dir", storeDir,
		"--run-id", "cli-e2e",
		"--compression", "lz4",
	})

	require.NoError(t, cmd.Execute())

	var res cliRunResult
	require.NoError(t, gojson.Unmarshal(buf.Bytes(), &res))
	assert.Equal(t, "cli-e2e", res.RunID)
	assert.Equal(t, 60, res.Records)
	assert.Equal(t, partition.TotalComparisons(60), res.Comparisons)
	assert.Len(t, res.Pairs, gold.Len())
	require.NotNil(t, res.Report)
	assert.Equal(t, gold.Len(), res.Report.TruePositives)
	assert.Equal(t, 1.0, res.Report.F1)

	// The stored result must match what the CLI reported.
	store := resultstore.New(resultstore.NewCompressedStore(resultstore.NewLocalStore(storeDir), resultstore.CompressionLZ4))
	stored, err := store.Get(context.Background(), resultstore.ResultKey("cli-e2e"))
	require.NoError(t, err)
	assert.True(t, stored.Equal(gold))
}

func TestCLIPlanMatchesLibrary(t *testing.T) {
	buf := &bytes.Buffer{}
	cmd := cli.NewRootCommand()
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"plan", "--format", "json", "--records", "500", "--nodes", "10"})

	require.NoError(t, cmd.Execute())

	var res struct {
		Buckets     int     `json:"buckets"`
		Comparisons int64   `json:"comparisons"`
		Min         int64   `json:"min_workload"`
		Max         int64   `json:"max_workload"`
		Mean        float64 `json:"mean_workload"`
	}
	require.NoError(t, gojson.Unmarshal(buf.Bytes(), &res))

	parts, err := partition.Greedy{}.Plan(500, 10)
	require.NoError(t, err)
	stats := partition.Summarize(parts, 500)

	assert.Equal(t, stats.Buckets, res.Buckets)
	assert.Equal(t, stats.Comparisons, res.Comparisons)
	assert.Equal(t, stats.Min, res.Min)
	assert.Equal(t, stats.Max, res.Max)
	assert.InDelta(t, stats.Mean, res.Mean, 1e-9)
}
