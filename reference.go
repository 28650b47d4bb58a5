// Package banyan host-side reference implementations for verification
package banyan

import (
	"sort"

	"github.com/intel/forGoParallel/parallel"
	"github.com/intel/forGoParallel/psort"
)

// Reference contains simple, correct host implementations used for
// testing and verification of the device networks. The reference sort
// is a parallel stable merge sort over (key, value) pairs; stability
// here pins down the reference ordering of equal keys, it is not a
// claim the device networks reproduce it.
type Reference struct{}

// pairSorter stably sorts a key slice and an optional value slice in
// lockstep. With tieBreak set, equal keys are ordered by value, which
// canonicalizes a pair sequence for multiset comparison.
type pairSorter struct {
	keys     []uint32
	values   []uint32
	desc     bool
	tieBreak bool
}

func (s pairSorter) Assign(source psort.StableSorter) func(i, j, len int) {
	src := source.(pairSorter)
	return func(i, j, len int) {
		if s.values == nil {
			copy(s.keys[i:i+len], src.keys[j:j+len])
			return
		}
		parallel.Do(func() {
			copy(s.keys[i:i+len], src.keys[j:j+len])
		}, func() {
			copy(s.values[i:i+len], src.values[j:j+len])
		})
	}
}

func (s pairSorter) Len() int {
	return len(s.keys)
}

func (s pairSorter) Less(i, j int) bool {
	ki, kj := s.keys[i], s.keys[j]
	if s.desc {
		ki, kj = kj, ki
	}
	if ki != kj {
		return ki < kj
	}
	if s.tieBreak && s.values != nil {
		vi, vj := s.values[i], s.values[j]
		if s.desc {
			vi, vj = vj, vi
		}
		return vi < vj
	}
	return false
}

func (s pairSorter) NewTemp() psort.StableSorter {
	t := pairSorter{
		keys:     make([]uint32, len(s.keys)),
		desc:     s.desc,
		tieBreak: s.tieBreak,
	}
	if s.values != nil {
		t.values = make([]uint32, len(s.values))
	}
	return t
}

func (s pairSorter) SequentialSort(i, j int) {
	sub := pairSorter{
		keys:     s.keys[i:j],
		desc:     s.desc,
		tieBreak: s.tieBreak,
	}
	if s.values != nil {
		sub.values = s.values[i:j]
	}
	sort.Stable(sub)
}

func (s pairSorter) Swap(i, j int) {
	s.keys[i], s.keys[j] = s.keys[j], s.keys[i]
	if s.values != nil {
		s.values[i], s.values[j] = s.values[j], s.values[i]
	}
}

// SortPairs stably sorts keys in the given direction, carrying values
// (which may be nil) along with their keys.
func (Reference) SortPairs(keys, values []uint32, dir Direction) {
	psort.StableSort(pairSorter{
		keys:   keys,
		values: values,
		desc:   dir == Descending,
	})
}

// CanonicalOrder sorts (key, value) pairs ascending with values
// breaking key ties. Two pair sequences are equal as multisets exactly
// when their canonical orders are equal elementwise.
func (Reference) CanonicalOrder(keys, values []uint32) {
	psort.StableSort(pairSorter{
		keys:     keys,
		values:   values,
		tieBreak: true,
	})
}

// Sorted reports whether keys is ordered in the given direction.
func (Reference) Sorted(keys []uint32, dir Direction) bool {
	for i := 1; i < len(keys); i++ {
		if dir == Ascending && keys[i-1] > keys[i] {
			return false
		}
		if dir == Descending && keys[i-1] < keys[i] {
			return false
		}
	}
	return true
}
