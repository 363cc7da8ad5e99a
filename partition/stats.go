package partition

// Stats summarizes how evenly a partitioning spreads the comparison
// workload across its buckets.
type Stats struct {
	Buckets     int
	Records     int
	Comparisons int64

	// Per-bucket workloads in bucket order, plus their extremes and mean.
	Workloads []int64
	Min       int64
	Max       int64
	Mean      float64
}

// Summarize computes workload statistics for a partitioning over m records.
func Summarize(p Partitioning, m int) Stats {
	s := Stats{
		Buckets:   len(p),
		Records:   p.NumIndices(),
		Workloads: make([]int64, 0, len(p)),
	}
	for _, b := range p {
		w := b.Workload(m)
		s.Workloads = append(s.Workloads, w)
		s.Comparisons += w
		if w > s.Max {
			s.Max = w
		}
	}
	s.Min = s.Max
	for _, w := range s.Workloads {
		if w < s.Min {
			s.Min = w
		}
	}
	if s.Buckets > 0 {
		s.Mean = float64(s.Comparisons) / float64(s.Buckets)
	}
	return s
}
