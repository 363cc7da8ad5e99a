// Package dataset loads tab-separated record files and provides a
// reference similarity oracle for bibliographic data.
//
// # File Format
//
// Datasets are tab-delimited text with a header row. The header must
// contain an "id" column; every data row becomes one record.Record with
// the header names as field names and all values as strings:
//
//	id	author	title	year
//	r1	Smith, J.	A Survey of Things	1998
//	r2	Smith J	Survey of things	1998
//
// Row order is preserved: the i-th data row becomes index i of the
// resulting record.Set, which is what pairwise comparison results are
// defined against.
//
// # Bibliographic Similarity
//
// Bibliographic scores two records by weighted per-field token overlap
// (Jaccard), after Unicode normalization that removes accents and case
// differences. It implements the oracle interface the comparison engine
// expects:
//
//	oracle := dataset.NewBibliographic(func(o *dataset.Options) {
//	    o.Threshold = 0.6
//	    o.Weights = dataset.CoraWeights
//	})
package dataset
