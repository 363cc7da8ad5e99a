package cli

import (
	"fmt"

	gojson "github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/hupe1980/dedupe/dataset"
	"github.com/hupe1980/dedupe/partition"
)

// ValidPlanners defines the allowed partitioning strategies.
var ValidPlanners = []string{"greedy", "ranges"}

// PlanOptions holds flags for the plan command.
type PlanOptions struct {
	*RootOptions
	Records int
	Nodes   int
	Planner string
}

// NewPlanCommand creates the plan command.
func NewPlanCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &PlanOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "plan [dataset.tsv]",
		Short: "Print the comparison workload layout without running",
		Long: `Plan splits the all-pairs comparison workload for a record count
across the given number of workers and prints per-bucket statistics.

The record count comes from --records, or from the dataset when a path
is given.

Example:
  dedupe plan --records 100000 -n 64
  dedupe plan cora.tsv -n 16 --verbose`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlan(opts, args, cmd)
		},
	}

	cmd.Flags().IntVarP(&opts.Nodes, "nodes", "n", 16, "number of parallel workers")
	cmd.Flags().IntVar(&opts.Records, "records", 0, "record count (overridden by a dataset path)")
	cmd.Flags().StringVar(&opts.Planner, "planner", "greedy", "partitioning strategy (greedy|ranges)")

	return cmd
}

func runPlan(opts *PlanOptions, args []string, cmd *cobra.Command) error {
	planner, err := parsePlanner(opts.Planner)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid planner", err)
	}

	m := opts.Records
	if len(args) == 1 {
		records, err := dataset.Load(args[0])
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to load dataset", err)
		}
		m = records.Len()
	}
	if m <= 0 {
		return NewExitError(ExitCommandError, "either a dataset path or --records is required")
	}

	parts, err := planner.Plan(m, opts.Nodes)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to plan partitioning", err)
	}
	stats := partition.Summarize(parts, m)

	if opts.Format == "json" {
		res := planResult{
			Records:     m,
			Nodes:       opts.Nodes,
			Buckets:     stats.Buckets,
			Comparisons: stats.Comparisons,
			Min:         stats.Min,
			Max:         stats.Max,
			Mean:        stats.Mean,
		}
		if opts.Verbose {
			res.Workloads = stats.Workloads
		}
		enc := gojson.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "records:     %d\n", m)
	fmt.Fprintf(w, "nodes:       %d\n", opts.Nodes)
	fmt.Fprintf(w, "buckets:     %d\n", stats.Buckets)
	fmt.Fprintf(w, "comparisons: %d\n", stats.Comparisons)
	fmt.Fprintf(w, "workload:    min=%d max=%d mean=%.1f\n", stats.Min, stats.Max, stats.Mean)
	if opts.Verbose {
		for i, b := range parts {
			fmt.Fprintf(w, "bucket %4d: %d indices, %d comparisons\n", i, len(b), stats.Workloads[i])
		}
	}
	return nil
}

// planResult is the payload printed by plan with --format json.
type planResult struct {
	Records     int     `json:"records"`
	Nodes       int     `json:"nodes"`
	Buckets     int     `json:"buckets"`
	Comparisons int64   `json:"comparisons"`
	Min         int64   `json:"min_workload"`
	Max         int64   `json:"max_workload"`
	Mean        float64 `json:"mean_workload"`
	Workloads   []int64 `json:"workloads,omitempty"`
}

// parsePlanner maps a strategy name to its planner.
func parsePlanner(name string) (partition.Planner, error) {
	switch name {
	case "", "greedy":
		return partition.Greedy{}, nil
	case "ranges":
		return partition.Ranges{}, nil
	default:
		return nil, fmt.Errorf("unknown planner %q: must be one of %v", name, ValidPlanners)
	}
}
