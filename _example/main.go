package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/hupe1980/dedupe"
	"github.com/hupe1980/dedupe/dataset"
	"github.com/hupe1980/dedupe/evaluation"
	"github.com/hupe1980/dedupe/partition"
	"github.com/hupe1980/dedupe/testutil"
)

func main() {
	size := 300
	dupEvery := 5
	nodes := 16

	records, gold := testutil.Corpus(size, dupEvery)

	fmt.Println("--- Corpus ---")
	fmt.Println("Records:", records.Len())
	fmt.Println("Planted duplicates:", gold.Len())
	fmt.Println()

	deduper, err := dedupe.New(nodes, records.Len(), records, dataset.NewBibliographic())
	if err != nil {
		log.Fatal(err)
	}

	fmt.Println("--- Plan ---")

	parts, err := deduper.Plan()
	if err != nil {
		log.Fatal(err)
	}

	stats := partition.Summarize(parts, records.Len())
	fmt.Println("Nodes:", nodes)
	fmt.Println("Buckets:", stats.Buckets)
	fmt.Println("Comparisons:", stats.Comparisons)
	fmt.Printf("Workload: min=%d max=%d mean=%.1f\n\n", stats.Min, stats.Max, stats.Mean)

	fmt.Println("--- Run ---")

	start := time.Now()

	pairs, err := deduper.Deduplicate(context.Background())
	if err != nil {
		log.Fatal(err)
	}

	end := time.Since(start)

	fmt.Println("Found pairs:", pairs.Len())
	fmt.Printf("Seconds: %.2f\n", end.Seconds())
	fmt.Printf("Comparisons/sec: %.0f\n\n", float64(stats.Comparisons)/end.Seconds())

	fmt.Println("--- Evaluate ---")

	report := evaluation.Evaluate(pairs, gold)
	fmt.Println(report)

	fmt.Println("\n--- Sample ---")

	for i, p := range pairs.Pairs() {
		if i == 5 {
			break
		}
		fmt.Printf("%s duplicates %s\n", p.High, p.Low)
	}
}
