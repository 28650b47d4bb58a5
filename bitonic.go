package banyan

// BitonicSort sorts each of the batches independently with the classic
// bitonic merge network. keys holds batches*length uint32 keys; values,
// if not the zero DevicePtr, holds one uint32 payload per key and is
// permuted in lockstep. Both buffers are sorted in place.
//
// The network runs merge stages of doubling size; within a stage the
// compare distance halves from size/2 down to 1. For each (size,
// stride) pair every element at batch-local index i is compared with
// the element at i XOR stride, ascending when bit "size" of i is clear,
// inverted for a descending sort. The staged structure establishes the
// bitonic invariant inductively: entering a stage, the data consists of
// sorted runs of the previous size in alternating directions.
//
// A device-wide barrier separates consecutive launches; within one
// launch the i < (i XOR stride) guard makes all operand pairs disjoint,
// so no intra-stage synchronization is needed.
//
// length must be a power of two; anything else fails before any device
// work is launched. length 1 runs zero stages, length 2 runs a single
// compare-exchange.
func (ctx *Context) BitonicSort(keys, values DevicePtr, batches, length int, dir Direction) error {
	if err := validateSortArgs("BitonicSort", keys, values, batches, length); err != nil {
		return err
	}

	total := batches * length
	k := keys.Uint32()[:total]
	var v []uint32
	if !values.IsNil() {
		v = values.Uint32()[:total]
	}

	for size := 2; size <= length; size <<= 1 {
		for stride := size >> 1; stride > 0; stride >>= 1 {
			sz, st := size, stride
			kernel := KernelFunc(func(tid ThreadID, args ...interface{}) {
				g := tid.Global()
				if g >= total {
					return
				}
				base := g - g%length
				i := g - base
				j := i ^ st
				if j <= i {
					return
				}
				asc := i&sz == 0
				if dir == Descending {
					asc = !asc
				}
				CompareExchange(k, v, base+i, base+j, asc)
			})
			if err := ctx.launchBarrier(kernel, total); err != nil {
				return NewExecutionError("BitonicSort", "compare stage launch failed", err)
			}
		}
	}
	return nil
}

// BitonicSort sorts on the default context. See Context.BitonicSort.
func BitonicSort(keys, values DevicePtr, batches, length int, dir Direction) error {
	return defaultContext.BitonicSort(keys, values, batches, length, dir)
}
