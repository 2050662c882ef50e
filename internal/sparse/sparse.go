// Package sparse provides a sparse set data structure for efficient membership
// testing over a bounded universe of small integers.
//
// The automaton package uses it to track NFA state IDs visited while
// computing an epsilon-closure and while subset-constructing DFA states from
// sets of NFA states; both are hot loops during schema compilation.
package sparse

import "sort"

// Set is a set of uint32 values that supports O(1) insertion, membership
// testing, and removal while maintaining a dense list for fast iteration.
//
// It maintains a sparse array (value -> index in dense) alongside a dense
// array (the actual values), which is the classic Briggs/Torczon sparse set:
// lookups never touch more memory than the dense array plus one sparse slot,
// and Clear is O(1) because it never has to zero the sparse array.
type Set struct {
	sparse []uint32
	dense  []uint32
}

// NewSet creates a Set whose universe is [0, capacity).
// Inserting a value >= capacity panics.
func NewSet(capacity int) *Set {
	return &Set{
		sparse: make([]uint32, capacity),
		dense:  make([]uint32, 0, capacity),
	}
}

// Insert adds value to the set. Returns true if the value was not already
// present.
func (s *Set) Insert(value uint32) bool {
	if s.Contains(value) {
		return false
	}
	idx := uint32(len(s.dense))
	s.dense = append(s.dense, value)
	s.sparse[value] = idx
	return true
}

// Contains reports whether value is in the set.
func (s *Set) Contains(value uint32) bool {
	if int(value) >= len(s.sparse) {
		return false
	}
	idx := s.sparse[value]
	return int(idx) < len(s.dense) && s.dense[idx] == value
}

// Remove deletes value from the set, if present.
func (s *Set) Remove(value uint32) {
	if !s.Contains(value) {
		return
	}
	idx := s.sparse[value]
	last := s.dense[len(s.dense)-1]
	s.dense[idx] = last
	s.sparse[last] = idx
	s.dense = s.dense[:len(s.dense)-1]
}

// Clear empties the set in O(1) time without touching the sparse array.
func (s *Set) Clear() {
	s.dense = s.dense[:0]
}

// Len returns the number of elements currently in the set.
func (s *Set) Len() int {
	return len(s.dense)
}

// IsEmpty reports whether the set has no elements.
func (s *Set) IsEmpty() bool {
	return len(s.dense) == 0
}

// Values returns the set's elements in unspecified order. The returned
// slice aliases internal storage and is only valid until the next mutation.
func (s *Set) Values() []uint32 {
	return s.dense
}

// Sorted returns a newly allocated, ascending-sorted copy of the set's
// elements. Subset construction uses this to derive a stable interning key
// for a set of NFA state IDs (two DFA states are the same iff their sorted
// NFA-state sets are equal).
func (s *Set) Sorted() []uint32 {
	out := make([]uint32, len(s.dense))
	copy(out, s.dense)
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
