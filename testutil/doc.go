// Package testutil provides testing utilities for Dedupe.
//
// This package is intended for use in tests and benchmarks only.
// It provides a deterministic, thread-safe random number generator and
// a synthetic bibliographic corpus generator with planted
// near-duplicates.
//
// # Synthetic Corpora
//
//	rng := testutil.NewRNG(4711)
//	records, gold := rng.Corpus(200, 4)
//
// Every fourth record is a perturbed copy of an earlier one and gold
// holds exactly those planted pairs, so a brute-force run over a small
// corpus can be checked against gold with the evaluation package.
//
// # TSV Fixtures
//
//	data := testutil.TSV(records, testutil.CorpusFields...)
//
// renders a corpus in the tab separated format dataset.Read consumes.
package testutil
