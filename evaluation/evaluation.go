package evaluation

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/hupe1980/dedupe/record"
)

// Report summarizes how a computed duplicate set compares against a gold
// standard.
type Report struct {
	TruePositives  int     `json:"true_positives"`
	FalsePositives int     `json:"false_positives"`
	FalseNegatives int     `json:"false_negatives"`
	Precision      float64 `json:"precision"`
	Recall         float64 `json:"recall"`
	F1             float64 `json:"f1"`
}

// String renders the report in one line for logs and CLI output.
func (r Report) String() string {
	return fmt.Sprintf("precision=%.4f recall=%.4f f1=%.4f (tp=%d fp=%d fn=%d)",
		r.Precision, r.Recall, r.F1, r.TruePositives, r.FalsePositives, r.FalseNegatives)
}

// Evaluate compares got against gold and returns the match statistics.
// Pairs are matched by their two ids regardless of orientation.
//
// The degenerate denominators are defined vacuously: with nothing
// reported, precision is 1; with nothing to find, recall is 1. Two empty
// sets therefore score a perfect report.
func Evaluate(got, gold record.PairSet) Report {
	gotC := canonicalize(got)
	goldC := canonicalize(gold)

	var report Report
	for p := range gotC {
		if _, ok := goldC[p]; ok {
			report.TruePositives++
		} else {
			report.FalsePositives++
		}
	}
	for p := range goldC {
		if _, ok := gotC[p]; !ok {
			report.FalseNegatives++
		}
	}

	report.Precision = 1
	if report.TruePositives+report.FalsePositives > 0 {
		report.Precision = float64(report.TruePositives) / float64(report.TruePositives+report.FalsePositives)
	}
	report.Recall = 1
	if report.TruePositives+report.FalseNegatives > 0 {
		report.Recall = float64(report.TruePositives) / float64(report.TruePositives+report.FalseNegatives)
	}
	if report.Precision+report.Recall > 0 {
		report.F1 = 2 * report.Precision * report.Recall / (report.Precision + report.Recall)
	}

	return report
}

// canonicalize maps every pair to a fixed orientation so that engine
// output (ordered by record index) and gold pairs (arbitrary order)
// compare by id content alone.
func canonicalize(s record.PairSet) record.PairSet {
	c := record.NewPairSet()
	for p := range s {
		if p.Low <= p.High {
			c.Add(p)
		} else {
			c.Add(record.NewPair(p.High, p.Low))
		}
	}
	return c
}

// Options configures gold standard parsing.
type Options struct {
	// Header skips the first row. Gold files ship both with and without
	// column names; there is no reliable way to sniff it.
	Header bool
}

// LoadGold reads a gold standard file of known duplicate id pairs.
func LoadGold(path string, optFns ...func(o *Options)) (record.PairSet, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open gold standard: %w", err)
	}
	defer func() { _ = f.Close() }()

	pairs, err := ReadGold(f, optFns...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return pairs, nil
}

// ReadGold parses a tab-separated gold standard from r: two id columns,
// one known duplicate pair per row.
func ReadGold(r io.Reader, optFns ...func(o *Options)) (record.PairSet, error) {
	opts := Options{}

	for _, fn := range optFns {
		fn(&opts)
	}

	cr := csv.NewReader(r)
	cr.Comma = '\t'
	cr.FieldsPerRecord = 2
	cr.LazyQuotes = true

	if opts.Header {
		if _, err := cr.Read(); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("failed to read header: %w", err)
		}
	}

	pairs := record.NewPairSet()
	for row := 1; ; row++ {
		fields, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", row, err)
		}

		a := strings.TrimSpace(fields[0])
		b := strings.TrimSpace(fields[1])
		if a == "" || b == "" {
			return nil, fmt.Errorf("row %d: blank id", row)
		}
		if a == b {
			return nil, fmt.Errorf("row %d: pair references the same id %q", row, a)
		}

		if a <= b {
			pairs.Add(record.NewPair(a, b))
		} else {
			pairs.Add(record.NewPair(b, a))
		}
	}

	return pairs, nil
}
