package banyan

// The wiring of a Batcher-style network between comparator stages is
// pure index arithmetic. The two patterns used here are the perfect
// unshuffle and the butterfly exchange. Both are expressed as gather
// maps: the function returns, for an output position, the input
// position whose element lands there. Keeping them as standalone pure
// functions makes the bijection property exhaustively testable without
// any kernel machinery.

// ShuffleIndex returns the source position feeding output position i of
// a perfect unshuffle over 2^bits elements: even source positions fill
// the first half in order, odd source positions fill the second half.
// Viewed on the binary representation of the position, the map rotates
// the index bits: output i gathers from (i<<1 | msb(i)) mod 2^bits.
//
// Precondition: bits >= 1 and 0 <= i < 2^bits.
// Postcondition: over all i in [0, 2^bits), the returned sources form a
// bijection on [0, 2^bits).
func ShuffleIndex(i, bits int) int {
	size := 1 << bits
	return ((i << 1) & (size - 1)) | (i >> (bits - 1))
}

// ButterflyIndex returns the source position feeding output position i
// of a butterfly exchange over 2^bits elements: positions whose top and
// bottom index bits differ trade places across the half boundary, all
// others (including 0 and 2^bits-1) stay fixed. The map swaps the most
// and least significant bits of the position and is its own inverse.
//
// Precondition: bits >= 1 and 0 <= i < 2^bits.
// Postcondition: bijection on [0, 2^bits); ButterflyIndex is an involution.
func ButterflyIndex(i, bits int) int {
	lo := i & 1
	hi := (i >> (bits - 1)) & 1
	if lo == hi {
		return i
	}
	return i ^ (1 | 1<<(bits-1))
}

// applyPermutation routes every element of every batch through the
// given gather map. Because a permutation reads and writes the same
// logical array, it never runs in place: a scatter kernel writes the
// permuted order into the scratch buffers, a device-wide barrier drains
// it, then a copy-back kernel restores the primary buffers, followed by
// a second barrier before the next stage may read. Elements never cross
// batch boundaries: the map is applied to batch-local positions.
//
// values/valuesTmp may be nil for key-only sorts.
func (ctx *Context) applyPermutation(
	keys, values, keysTmp, valuesTmp []uint32,
	batches, length, bits int,
	index func(i, bits int) int,
) error {
	total := batches * length

	scatter := KernelFunc(func(tid ThreadID, args ...interface{}) {
		g := tid.Global()
		if g >= total {
			return
		}
		base := g - g%length
		src := base + index(g-base, bits)
		keysTmp[g] = keys[src]
		if values != nil {
			valuesTmp[g] = values[src]
		}
	})
	if err := ctx.launchBarrier(scatter, total); err != nil {
		return NewExecutionError("applyPermutation", "scatter launch failed", err)
	}

	copyBack := KernelFunc(func(tid ThreadID, args ...interface{}) {
		g := tid.Global()
		if g >= total {
			return
		}
		keys[g] = keysTmp[g]
		if values != nil {
			values[g] = valuesTmp[g]
		}
	})
	if err := ctx.launchBarrier(copyBack, total); err != nil {
		return NewExecutionError("applyPermutation", "copy-back launch failed", err)
	}
	return nil
}
