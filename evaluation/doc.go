// Package evaluation measures a computed duplicate set against a gold
// standard.
//
// Gold standards are tab-separated files of id pairs, one known
// duplicate per row. Pair orientation never matters: gold files carry no
// notion of record order, so (a, b) and (b, a) are the same pair.
//
//	gold, err := evaluation.LoadGold("cora_gold.tsv")
//	report := evaluation.Evaluate(pairs, gold)
//	fmt.Println(report)
package evaluation
