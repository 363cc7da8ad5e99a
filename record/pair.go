package record

import (
	"fmt"
	"sort"

	gojson "github.com/goccy/go-json"
)

// Pair identifies two records suspected to be duplicates.
//
// Low is the ID of the record at the smaller original index in the Set and
// High the ID at the larger index. Ordering follows Set positions, not
// lexicographic ID order: the pair of records 3 and 7 is the same Pair no
// matter which bucket reported it, even when ID(7) sorts before ID(3).
type Pair struct {
	Low  string `json:"low"`
	High string `json:"high"`
}

// NewPair creates a Pair from the IDs of two records, low being the ID at
// the smaller original index.
func NewPair(low, high string) Pair {
	return Pair{Low: low, High: high}
}

// String returns a human-readable representation of the pair.
func (p Pair) String() string {
	return fmt.Sprintf("(%s, %s)", p.Low, p.High)
}

// PairSet is a set of duplicate pairs. Duplicate insertions are absorbed, so
// merging worker results is a plain union.
//
// A PairSet is not safe for concurrent use; each worker owns its local set
// and the engine owns the merged one.
type PairSet map[Pair]struct{}

// NewPairSet creates a PairSet containing the given pairs.
func NewPairSet(pairs ...Pair) PairSet {
	s := make(PairSet, len(pairs))
	for _, p := range pairs {
		s[p] = struct{}{}
	}
	return s
}

// Add inserts a pair into the set.
func (s PairSet) Add(p Pair) {
	s[p] = struct{}{}
}

// Contains reports whether the set holds the given pair.
func (s PairSet) Contains(p Pair) bool {
	_, ok := s[p]
	return ok
}

// Len returns the number of pairs in the set.
func (s PairSet) Len() int {
	return len(s)
}

// Union adds every pair of other to s. The operation is commutative over
// the resulting contents, so worker results can be folded in any order.
func (s PairSet) Union(other PairSet) {
	for p := range other {
		s[p] = struct{}{}
	}
}

// Equal reports whether both sets hold exactly the same pairs.
func (s PairSet) Equal(other PairSet) bool {
	if len(s) != len(other) {
		return false
	}
	for p := range s {
		if _, ok := other[p]; !ok {
			return false
		}
	}
	return true
}

// Pairs returns the pairs sorted by (Low, High). The deterministic order
// makes serialized sets and test assertions stable.
func (s PairSet) Pairs() []Pair {
	pairs := make([]Pair, 0, len(s))
	for p := range s {
		pairs = append(pairs, p)
	}
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].Low != pairs[j].Low {
			return pairs[i].Low < pairs[j].Low
		}
		return pairs[i].High < pairs[j].High
	})
	return pairs
}

// MarshalJSON encodes the set as a sorted pair list.
func (s PairSet) MarshalJSON() ([]byte, error) {
	return gojson.Marshal(s.Pairs())
}

// UnmarshalJSON decodes a pair list into the set, replacing its contents.
func (s *PairSet) UnmarshalJSON(data []byte) error {
	var pairs []Pair
	if err := gojson.Unmarshal(data, &pairs); err != nil {
		return err
	}
	*s = NewPairSet(pairs...)
	return nil
}
