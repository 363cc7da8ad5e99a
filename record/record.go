package record

import "fmt"

// IDField is the field that carries a record's stable identifier.
const IDField = "id"

// Record is a single dataset row: a mapping from field names to values.
// The "id" field holds the stable identifier used to report duplicates;
// every other field is opaque to the comparison engine and only interpreted
// by similarity oracles.
type Record map[string]any

// ID returns the record's stable identifier as a string.
// Non-string values are formatted with fmt.Sprint. Returns "" if the id
// field is absent.
func (r Record) ID() string {
	v, ok := r[IDField]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

// Clone returns a shallow copy of the record. Field values are shared.
func (r Record) Clone() Record {
	copied := make(Record, len(r))
	for k, v := range r {
		copied[k] = v
	}
	return copied
}

// Set is an ordered, immutable collection of records. Index order is
// comparison order: pairwise comparisons and reported pairs are defined in
// terms of a record's position in the Set, so two Sets with the same records
// in a different order are different inputs.
//
// The constructor copies the record slice; the records themselves are
// shared. A Set is safe for concurrent readers.
type Set struct {
	records []Record
}

// NewSet creates a Set from the given records, preserving their order.
func NewSet(records []Record) *Set {
	copied := make([]Record, len(records))
	copy(copied, records)
	return &Set{records: copied}
}

// Len returns the number of records in the set.
func (s *Set) Len() int {
	if s == nil {
		return 0
	}
	return len(s.records)
}

// At returns the record at index i. Panics if i is out of range.
func (s *Set) At(i int) Record {
	return s.records[i]
}

// Records returns a copy of the underlying record slice.
func (s *Set) Records() []Record {
	copied := make([]Record, len(s.records))
	copy(copied, s.records)
	return copied
}
