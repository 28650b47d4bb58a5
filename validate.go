package banyan

import (
	"sync/atomic"

	"github.com/intel/forGoParallel/parallel"
)

// CountMismatches returns the number of positions where got differs
// from want. The slices must have equal length.
func CountMismatches(got, want []uint32) int {
	var n int64
	parallel.Range(0, len(got), 0, func(low, high int) {
		local := 0
		for i := low; i < high; i++ {
			if got[i] != want[i] {
				local++
			}
		}
		if local > 0 {
			atomic.AddInt64(&n, int64(local))
		}
	})
	return int(n)
}

// FirstMismatch returns the first position where got differs from
// want, or -1 if the slices are identical.
func FirstMismatch(got, want []uint32) int {
	for i := range got {
		if got[i] != want[i] {
			return i
		}
	}
	return -1
}

// ValidateSort checks device network output against the original host
// input: per batch, output keys must equal a reference-sorted copy of
// the input keys elementwise, and, when values are present, the
// multiset of (key, value) pairs must be unchanged, every value still
// bound to the key it entered with. The return value is 0 on success,
// otherwise the total number of mismatching positions across both
// checks. A nonzero result is a logical test failure, not an error.
func ValidateSort(gotKeys, gotValues, origKeys, origValues []uint32, batches, length int, dir Direction) int {
	var ref Reference

	refKeys := make([]uint32, len(origKeys))
	copy(refKeys, origKeys)
	var refValues []uint32
	if origValues != nil {
		refValues = make([]uint32, len(origValues))
		copy(refValues, origValues)
	}
	for b := 0; b < batches; b++ {
		lo, hi := b*length, (b+1)*length
		if refValues != nil {
			ref.SortPairs(refKeys[lo:hi], refValues[lo:hi], dir)
		} else {
			ref.SortPairs(refKeys[lo:hi], nil, dir)
		}
	}

	mismatches := CountMismatches(gotKeys, refKeys)

	if gotValues != nil && origValues != nil {
		// Canonicalize both pair sequences per batch; equal canonical
		// orders mean the key→value binding survived every swap and
		// permutation.
		gk := make([]uint32, len(gotKeys))
		gv := make([]uint32, len(gotValues))
		ok := make([]uint32, len(origKeys))
		ov := make([]uint32, len(origValues))
		parallel.Do(func() {
			copy(gk, gotKeys)
			copy(gv, gotValues)
		}, func() {
			copy(ok, origKeys)
			copy(ov, origValues)
		})
		for b := 0; b < batches; b++ {
			lo, hi := b*length, (b+1)*length
			ref.CanonicalOrder(gk[lo:hi], gv[lo:hi])
			ref.CanonicalOrder(ok[lo:hi], ov[lo:hi])
		}
		mismatches += CountMismatches(gk, ok)
		mismatches += CountMismatches(gv, ov)
	}

	return mismatches
}
