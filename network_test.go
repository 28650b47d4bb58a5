package banyan

import (
	"fmt"
	"math/rand"
	"testing"
)

func TestBanyanSortAscending(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	for _, length := range []int{1, 2, 4, 8, 16, 64, 256, 1024} {
		hKeys := randomKeys(rng, length, 0)
		gotKeys, gotValues := runNetwork(t, NetworkBanyan, hKeys, 1, length, Ascending)
		checkSorted(t, hKeys, gotKeys, gotValues, 1, length, Ascending)
	}
}

func TestBanyanSortDescending(t *testing.T) {
	rng := rand.New(rand.NewSource(12))
	for _, length := range []int{1, 2, 8, 128, 512} {
		hKeys := randomKeys(rng, length, 0)
		gotKeys, gotValues := runNetwork(t, NetworkBanyan, hKeys, 1, length, Descending)
		checkSorted(t, hKeys, gotKeys, gotValues, 1, length, Descending)
	}
}

func TestBanyanSortScenario(t *testing.T) {
	hKeys := []uint32{3, 1, 4, 1, 5, 9, 2, 6}
	wantKeys := []uint32{1, 1, 2, 3, 4, 5, 6, 9}

	gotKeys, gotValues := runNetwork(t, NetworkBanyan, hKeys, 1, 8, Ascending)
	for i := range wantKeys {
		if gotKeys[i] != wantKeys[i] {
			t.Fatalf("keys = %v, want %v", gotKeys, wantKeys)
		}
	}
	for i, v := range gotValues {
		if hKeys[v] != gotKeys[i] {
			t.Errorf("position %d: value %d should carry key %d, has %d", i, v, hKeys[v], gotKeys[i])
		}
	}
}

// N=1 runs no stages at all; N=2 is a single compare-exchange with no
// permutation launches. Both must terminate and sort.
func TestBanyanSortBoundary(t *testing.T) {
	gotKeys, _ := runNetwork(t, NetworkBanyan, []uint32{42}, 1, 1, Ascending)
	if gotKeys[0] != 42 {
		t.Errorf("N=1: got %v", gotKeys)
	}

	gotKeys, gotValues := runNetwork(t, NetworkBanyan, []uint32{7, 3}, 1, 2, Ascending)
	if gotKeys[0] != 3 || gotKeys[1] != 7 {
		t.Errorf("N=2: got %v", gotKeys)
	}
	if gotValues[0] != 1 || gotValues[1] != 0 {
		t.Errorf("N=2: values %v did not travel with keys", gotValues)
	}
}

func TestBanyanSortIdempotent(t *testing.T) {
	rng := rand.New(rand.NewSource(13))
	hKeys := randomKeys(rng, 128, 0)
	once, _ := runNetwork(t, NetworkBanyan, hKeys, 1, 128, Ascending)
	twice, _ := runNetwork(t, NetworkBanyan, once, 1, 128, Ascending)
	if i := FirstMismatch(once, twice); i >= 0 {
		t.Errorf("resort changed position %d: %d -> %d", i, once[i], twice[i])
	}
}

func TestBanyanSortBatches(t *testing.T) {
	const batches, length = 8, 16
	rng := rand.New(rand.NewSource(14))
	hKeys := randomKeys(rng, batches*length, 50)

	gotKeys, gotValues := runNetwork(t, NetworkBanyan, hKeys, batches, length, Ascending)
	checkSorted(t, hKeys, gotKeys, gotValues, batches, length, Ascending)

	for i, v := range gotValues {
		if int(v)/length != i/length {
			t.Errorf("position %d holds element from batch %d", i, int(v)/length)
		}
	}
}

// 100 random trials at N=16 with keys bounded by 16, each checked
// against the host reference sort. Zero mismatches expected.
func TestBanyanSortRandomTrials(t *testing.T) {
	for trial := 0; trial < 100; trial++ {
		result, err := RunTrial(DefaultContext(), TrialConfig{
			Network:    NetworkBanyan,
			Length:     16,
			Batches:    1,
			Dir:        Ascending,
			KeyBound:   16,
			WithValues: true,
			Seed:       int64(trial),
		})
		if err != nil {
			t.Fatalf("trial %d: %v", trial, err)
		}
		if !result.Passed() {
			t.Fatalf("trial %d: %d mismatches", trial, result.Mismatches)
		}
	}
}

// Full sweep: every power-of-two length up to 1024, single and
// multi-batch, both directions, each output validated against the host
// reference.
func TestBanyanSortSweep(t *testing.T) {
	rng := rand.New(rand.NewSource(17))
	for _, batches := range []int{1, 3} {
		for length := 1; length <= 1024; length <<= 1 {
			for _, dir := range []Direction{Ascending, Descending} {
				hKeys := randomKeys(rng, batches*length, 0)
				gotKeys, gotValues := runNetwork(t, NetworkBanyan, hKeys, batches, length, dir)
				checkSorted(t, hKeys, gotKeys, gotValues, batches, length, dir)
			}
		}
	}
}

// The two network topologies realize the same sorting function: on
// identical input their key output must be identical.
func TestBanyanMatchesBitonic(t *testing.T) {
	rng := rand.New(rand.NewSource(15))
	hKeys := randomKeys(rng, 512, 0)
	banyanKeys, _ := runNetwork(t, NetworkBanyan, hKeys, 1, 512, Ascending)
	bitonicKeys, _ := runNetwork(t, NetworkBitonic, hKeys, 1, 512, Ascending)
	if i := FirstMismatch(banyanKeys, bitonicKeys); i >= 0 {
		t.Errorf("outputs diverge at %d: banyan %d, bitonic %d", i, banyanKeys[i], bitonicKeys[i])
	}
}

func TestBanyanSortRejectsBadArgs(t *testing.T) {
	ctx := DefaultContext()
	dKeys, err := ctx.Malloc(8 * 4)
	if err != nil {
		t.Fatalf("Malloc failed: %v", err)
	}
	defer ctx.Free(dKeys)

	for _, length := range []int{0, -8, 3, 10, 24} {
		if err := ctx.BanyanSort(dKeys, DevicePtr{}, 1, length, Ascending); err == nil {
			t.Errorf("length %d accepted", length)
		} else if !IsInvalidArgError(err) {
			t.Errorf("length %d: error %v is not an invalid-argument error", length, err)
		}
	}
}

func BenchmarkBanyanSort(b *testing.B) {
	rng := rand.New(rand.NewSource(16))
	for _, length := range []int{1024, 16384, 262144} {
		b.Run(fmt.Sprintf("Size_%d", length), func(b *testing.B) {
			ctx := DefaultContext()
			dKeys, _ := ctx.Malloc(length * 4)
			defer ctx.Free(dKeys)
			keys := dKeys.Uint32()
			for i := range keys[:length] {
				keys[i] = rng.Uint32()
			}

			b.ResetTimer()
			b.SetBytes(int64(length * 4))
			for i := 0; i < b.N; i++ {
				if err := ctx.BanyanSort(dKeys, DevicePtr{}, 1, length, Ascending); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}
