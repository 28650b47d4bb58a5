package banyan

// The Batcher banyan network expresses the same sorting guarantee as
// the bitonic merge network, but keeps every comparator at a fixed
// physical position: comparator c always works on the adjacent pair
// (2c, 2c+1). Between compare launches the data itself is routed with
// shuffle and butterfly permutations so that the index bit the current
// substage must compare on arrives at the pair boundary.
//
// The router tracks the placement of index bits explicitly. A shuffle
// rotates the bits of every physical position down by one; a butterfly
// trades the top and bottom bits. Starting from the identity placement,
// the driver below keeps the invariant that immediately before each
// compare launch the substage's compare bit occupies the lowest
// physical bit, and the stage's direction bit occupies physical bit
// level+1. That is why a comparator's sort direction can be read off
// bit "level" of its own linear index. After the final stage the
// routing state is wound back so the output appears in natural order.
//
// Every launch is followed by a device-wide barrier: each permutation
// and compare step reads positions written by arbitrary other lanes of
// the previous step.

// banyanRun carries one in-flight network invocation. The element
// buffers, the ping-pong scratch buffers, and the direction table are
// exclusively owned by the run until it returns.
type banyanRun struct {
	ctx                   *Context
	keys, values          []uint32
	keysTmp, valuesTmp    []uint32
	dirs                  []byte
	batches, length, bits int
	total                 int
}

// BanyanSort sorts each of the batches independently with the Batcher
// banyan network. Arguments and in-place semantics match BitonicSort;
// so does the fail-fast contract: a non-power-of-two length is rejected
// before any allocation or launch.
func (ctx *Context) BanyanSort(keys, values DevicePtr, batches, length int, dir Direction) error {
	if err := validateSortArgs("BanyanSort", keys, values, batches, length); err != nil {
		return err
	}
	if length == 1 {
		return nil // trivially sorted, no stages
	}

	total := batches * length

	keysTmp, err := ctx.Malloc(total * 4)
	if err != nil {
		return NewMemoryError("BanyanSort", "scratch key buffer allocation failed", err)
	}
	defer ctx.Free(keysTmp)

	var valuesTmp DevicePtr
	if !values.IsNil() {
		valuesTmp, err = ctx.Malloc(total * 4)
		if err != nil {
			return NewMemoryError("BanyanSort", "scratch value buffer allocation failed", err)
		}
		defer ctx.Free(valuesTmp)
	}

	dirTable, err := ctx.Malloc(total)
	if err != nil {
		return NewMemoryError("BanyanSort", "direction table allocation failed", err)
	}
	defer ctx.Free(dirTable)

	run := &banyanRun{
		ctx:     ctx,
		keys:    keys.Uint32()[:total],
		keysTmp: keysTmp.Uint32()[:total],
		dirs:    dirTable.Byte()[:total],
		batches: batches,
		length:  length,
		bits:    log2(length),
		total:   total,
	}
	if !values.IsNil() {
		run.values = values.Uint32()[:total]
		run.valuesTmp = valuesTmp.Uint32()[:total]
	}

	return run.sort(dir)
}

// BanyanSort sorts on the default context. See Context.BanyanSort.
func BanyanSort(keys, values DevicePtr, batches, length int, dir Direction) error {
	return defaultContext.BanyanSort(keys, values, batches, length, dir)
}

// sort drives the stage/substage recurrence. rot is the current
// downward bit rotation applied to physical positions; fly records a
// butterfly that has not yet been undone. Together they describe the
// placement of every index bit, so each compare launch can derive both
// its compare bit (always physical bit 0) and its direction level.
func (r *banyanRun) sort(dir Direction) error {
	n := r.bits
	rot, fly := 0, false

	for stage := 1; stage <= n; stage++ {
		// Align the rotation so the stage's widest compare distance
		// sits on the adjacent-pair boundary.
		if fly {
			if err := r.butterfly(); err != nil {
				return err
			}
			fly = false
		}
		for rot != (stage-1)%n {
			if err := r.shuffle(); err != nil {
				return err
			}
			rot = (rot + 1) % n
		}

		for substage := 0; substage < stage; substage++ {
			// The merge direction of the final stage is uniform; every
			// earlier stage alternates per comparator so the next stage
			// sees bitonic input.
			uniform := stage == n
			level := 0
			if !uniform {
				level = (stage-rot+n)%n - 1
			}
			if err := r.compare(level, uniform, dir); err != nil {
				return err
			}
			if substage == stage-1 {
				break
			}

			// Route the next compare bit to the pair boundary. A lone
			// butterfly brings the bit waiting at the top position
			// down; once it has been consumed, a second butterfly
			// restores the pure rotation and n-2 shuffles advance it
			// to the following bit.
			if !fly {
				if err := r.butterfly(); err != nil {
					return err
				}
				fly = true
			} else {
				if err := r.butterfly(); err != nil {
					return err
				}
				fly = false
				for i := 0; i < n-2; i++ {
					if err := r.shuffle(); err != nil {
						return err
					}
					rot = (rot + 1) % n
				}
			}
		}
	}

	// Wind the routing state back to the identity so the sorted output
	// is read in natural order.
	if fly {
		if err := r.butterfly(); err != nil {
			return err
		}
	}
	for rot != 0 {
		if err := r.shuffle(); err != nil {
			return err
		}
		rot = (rot + 1) % n
	}
	return nil
}

func (r *banyanRun) shuffle() error {
	return r.ctx.applyPermutation(r.keys, r.values, r.keysTmp, r.valuesTmp,
		r.batches, r.length, r.bits, ShuffleIndex)
}

func (r *banyanRun) butterfly() error {
	return r.ctx.applyPermutation(r.keys, r.values, r.keysTmp, r.valuesTmp,
		r.batches, r.length, r.bits, ButterflyIndex)
}

// compare regenerates the direction table for the current level and
// then runs one compare-exchange launch across all comparators. The
// table is rebuilt from scratch every compare stage and never carried
// across stages. Two barriers order the sequence: the compare kernel
// must see the fully written table, and the next routing step must see
// the fully compared array.
func (r *banyanRun) compare(level int, uniform bool, dir Direction) error {
	length := r.length

	fill := KernelFunc(func(tid ThreadID, args ...interface{}) {
		g := tid.Global()
		if g >= r.total {
			return
		}
		asc := dir == Ascending
		if !uniform {
			lc := (g % length) >> 1
			asc = (lc>>level)&1 == 0
			if dir == Descending {
				asc = !asc
			}
		}
		if asc {
			r.dirs[g] = 1
		} else {
			r.dirs[g] = 0
		}
	})
	if err := r.ctx.launchBarrier(fill, r.total); err != nil {
		return NewExecutionError("BanyanSort", "direction table launch failed", err)
	}

	comparators := r.total / 2
	half := length / 2
	ce := KernelFunc(func(tid ThreadID, args ...interface{}) {
		c := tid.Global()
		if c >= comparators {
			return
		}
		i := (c/half)*length + (c%half)*2
		CompareExchange(r.keys, r.values, i, i+1, r.dirs[i] == 1)
	})
	if err := r.ctx.launchBarrier(ce, comparators); err != nil {
		return NewExecutionError("BanyanSort", "compare launch failed", err)
	}
	return nil
}
