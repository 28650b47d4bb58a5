package banyan

// Direction selects the order a network sorts into.
type Direction int

const (
	Ascending Direction = iota
	Descending
)

func (d Direction) String() string {
	if d == Descending {
		return "descending"
	}
	return "ascending"
}

// CompareExchange conditionally swaps keys[i] and keys[j] so that the
// smaller key ends up at i when ascending, or at j when descending.
// If values is non-nil, values[i] and values[j] travel with their keys.
//
// Equal keys are never swapped, in either direction: ties produce no
// observable effect. Equal-key elements may still end up reordered
// relative to each other by the surrounding network (the networks in
// this package are not stable) but never by this primitive alone.
//
// The operation is total and touches only its two operands, so any
// number of threads may run it concurrently on disjoint index pairs
// without synchronization. Every compare stage in this package is
// constructed so that its operand pairs are disjoint.
func CompareExchange(keys, values []uint32, i, j int, ascending bool) {
	var swap bool
	if ascending {
		swap = keys[i] > keys[j]
	} else {
		swap = keys[i] < keys[j]
	}
	if swap {
		keys[i], keys[j] = keys[j], keys[i]
		if values != nil {
			values[i], values[j] = values[j], values[i]
		}
	}
}

// powerOfTwo reports whether x is a positive power of two.
func powerOfTwo(x int) bool {
	return x > 0 && x&(x-1) == 0
}

// log2 returns floor(log2(x)) for x >= 1.
func log2(x int) int {
	n := 0
	for x > 1 {
		x >>= 1
		n++
	}
	return n
}

// validateSortArgs checks the invocation contract shared by both
// networks: at least one batch, power-of-two batch length, a key buffer
// large enough for batches*length keys, and (when present) a value
// buffer at least as large. Violations are reported before any kernel
// is launched.
func validateSortArgs(op string, keys, values DevicePtr, batches, length int) error {
	if batches < 1 {
		return NewInvalidArgError(op, "batch count must be at least 1")
	}
	if !powerOfTwo(length) {
		return ErrNotPowerOfTwo
	}
	total := batches * length * 4
	if keys.IsNil() || keys.Size() < total {
		return NewInvalidArgError(op, "key buffer smaller than batches*length keys")
	}
	if !values.IsNil() && values.Size() < total {
		return ErrLengthMismatch
	}
	return nil
}
