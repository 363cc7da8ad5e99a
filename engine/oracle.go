package engine

import "github.com/hupe1980/dedupe/record"

// Oracle scores the similarity of two records. Implementations decide what
// evidence to use; the engine only interprets the score against the
// threshold.
//
// Oracles are called concurrently from multiple workers and must be safe
// for concurrent use. Scores must be symmetric and stable for the
// lifetime of a run: Similarity(a, b) == Similarity(b, a).
type Oracle interface {
	// Similarity returns the similarity score for the pair (a, b).
	// Higher means more similar.
	Similarity(a, b record.Record) (float64, error)

	// Threshold is the decision cutoff: a pair whose score is greater
	// than or equal to the threshold is reported as a duplicate.
	Threshold() float64
}

// OracleFunc adapts an ordinary similarity function to the Oracle
// interface.
func OracleFunc(threshold float64, fn func(a, b record.Record) (float64, error)) Oracle {
	return &oracleFunc{threshold: threshold, fn: fn}
}

type oracleFunc struct {
	threshold float64
	fn        func(a, b record.Record) (float64, error)
}

func (o *oracleFunc) Similarity(a, b record.Record) (float64, error) {
	return o.fn(a, b)
}

func (o *oracleFunc) Threshold() float64 { return o.threshold }
