package banyan

import (
	"math/rand"
	"testing"
)

// Every output position of a permutation must read exactly one input
// position, and every input position must be read exactly once. This is
// the central correctness property of the network wiring.
func TestShuffleIndexBijection(t *testing.T) {
	for bits := 1; bits <= 10; bits++ {
		size := 1 << bits
		seen := make([]bool, size)
		for i := 0; i < size; i++ {
			src := ShuffleIndex(i, bits)
			if src < 0 || src >= size {
				t.Fatalf("bits=%d: ShuffleIndex(%d) = %d out of range", bits, i, src)
			}
			if seen[src] {
				t.Fatalf("bits=%d: source %d read twice", bits, src)
			}
			seen[src] = true
		}
	}
}

func TestButterflyIndexBijection(t *testing.T) {
	for bits := 1; bits <= 10; bits++ {
		size := 1 << bits
		seen := make([]bool, size)
		for i := 0; i < size; i++ {
			src := ButterflyIndex(i, bits)
			if src < 0 || src >= size {
				t.Fatalf("bits=%d: ButterflyIndex(%d) = %d out of range", bits, i, src)
			}
			if seen[src] {
				t.Fatalf("bits=%d: source %d read twice", bits, src)
			}
			seen[src] = true
		}
	}
}

// The unshuffle routes even sources to the first half and odd sources
// to the second half, both in order.
func TestShuffleIndexDeinterleaves(t *testing.T) {
	for bits := 1; bits <= 6; bits++ {
		size := 1 << bits
		half := size / 2
		for i := 0; i < size; i++ {
			src := ShuffleIndex(i, bits)
			want := 2 * i
			if i >= half {
				want = 2*(i-half) + 1
			}
			if src != want {
				t.Errorf("bits=%d: ShuffleIndex(%d) = %d, want %d", bits, i, src, want)
			}
		}
	}
}

func TestButterflyIndexProperties(t *testing.T) {
	for bits := 1; bits <= 10; bits++ {
		size := 1 << bits

		// Index 0 and the top index stay fixed.
		if ButterflyIndex(0, bits) != 0 {
			t.Errorf("bits=%d: position 0 not fixed", bits)
		}
		if ButterflyIndex(size-1, bits) != size-1 {
			t.Errorf("bits=%d: position %d not fixed", bits, size-1)
		}

		// The exchange is its own inverse.
		for i := 0; i < size; i++ {
			if ButterflyIndex(ButterflyIndex(i, bits), bits) != i {
				t.Fatalf("bits=%d: not an involution at %d", bits, i)
			}
		}

		// Crossing elements trade halves; everything else stays put.
		for i := 0; i < size; i++ {
			src := ButterflyIndex(i, bits)
			if src != i && (src < size/2) == (i < size/2) {
				t.Errorf("bits=%d: %d and %d exchanged within one half", bits, i, src)
			}
		}
	}
}

func TestApplyPermutationShuffle(t *testing.T) {
	const batches, length, bits = 3, 16, 4
	total := batches * length

	keys := make([]uint32, total)
	values := make([]uint32, total)
	for i := range keys {
		keys[i] = uint32(i)
		values[i] = uint32(i) ^ 0xABCD
	}
	keysTmp := make([]uint32, total)
	valuesTmp := make([]uint32, total)

	err := DefaultContext().applyPermutation(keys, values, keysTmp, valuesTmp, batches, length, bits, ShuffleIndex)
	if err != nil {
		t.Fatalf("applyPermutation failed: %v", err)
	}

	for g := 0; g < total; g++ {
		base := g - g%length
		want := uint32(base + ShuffleIndex(g-base, bits))
		if keys[g] != want {
			t.Errorf("key at %d: got %d, want %d", g, keys[g], want)
		}
		if values[g] != want^0xABCD {
			t.Errorf("value at %d did not travel with its key", g)
		}
	}
}

func TestApplyPermutationPreservesMultiset(t *testing.T) {
	const batches, length, bits = 2, 64, 6
	total := batches * length
	rng := rand.New(rand.NewSource(7))

	keys := make([]uint32, total)
	counts := make(map[uint32]int)
	for i := range keys {
		keys[i] = rng.Uint32() % 97
		counts[keys[i]]++
	}
	keysTmp := make([]uint32, total)

	for _, index := range []func(int, int) int{ShuffleIndex, ButterflyIndex} {
		if err := DefaultContext().applyPermutation(keys, nil, keysTmp, nil, batches, length, bits, index); err != nil {
			t.Fatalf("applyPermutation failed: %v", err)
		}
	}

	after := make(map[uint32]int)
	for _, k := range keys {
		after[k]++
	}
	for k, n := range counts {
		if after[k] != n {
			t.Fatalf("key %d: count %d before, %d after", k, n, after[k])
		}
	}
}
