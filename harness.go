package banyan

import (
	"fmt"
	"math/rand"
	"time"
)

// Network names accepted by TrialConfig.
const (
	NetworkBitonic = "bitonic"
	NetworkBanyan  = "banyan"
)

// TrialConfig describes one validation/benchmark trial: which network
// to run, the batch geometry, the sort direction, and how the random
// input is drawn.
type TrialConfig struct {
	Network    string // NetworkBitonic or NetworkBanyan
	Length     int    // per-batch element count, power of two
	Batches    int
	Dir        Direction
	KeyBound   uint32 // keys drawn from [0, KeyBound); 0 means full 32-bit range
	WithValues bool   // carry a payload tracking each key's origin
	Seed       int64
	Verbose    bool
}

// TrialResult records the outcome of one trial. Mismatches is the
// validation status: 0 means the device output matched the host
// reference, anything else counts the differing positions.
type TrialResult struct {
	Name           string
	Network        string
	Elements       int
	Elapsed        time.Duration
	ElementsPerSec float64
	Mismatches     int
}

// Passed reports whether the trial's output matched the reference.
func (r TrialResult) Passed() bool {
	return r.Mismatches == 0
}

func (r TrialResult) String() string {
	status := "PASS"
	if !r.Passed() {
		status = fmt.Sprintf("FAIL (%d mismatches)", r.Mismatches)
	}
	return fmt.Sprintf("%-28s %10v %14.3e elem/s  %s",
		r.Name, r.Elapsed.Round(time.Microsecond), r.ElementsPerSec, status)
}

// RunTrial generates random keyed input, runs the configured network on
// the device, reads the result back, and validates it against the host
// reference. Device and precondition failures are returned as errors;
// a reference mismatch is reported through TrialResult.Mismatches.
//
// The harness owns all buffers for the duration of the trial: they are
// allocated before the launch and freed after readback.
func RunTrial(ctx *Context, cfg TrialConfig) (TrialResult, error) {
	total := cfg.Batches * cfg.Length
	name := fmt.Sprintf("%s/N=%d/B=%d/%s", cfg.Network, cfg.Length, cfg.Batches, cfg.Dir)

	rng := rand.New(rand.NewSource(cfg.Seed))
	hKeys := make([]uint32, total)
	for i := range hKeys {
		if cfg.KeyBound > 0 {
			hKeys[i] = uint32(rng.Int63n(int64(cfg.KeyBound)))
		} else {
			hKeys[i] = rng.Uint32()
		}
	}
	var hValues []uint32
	if cfg.WithValues {
		hValues = make([]uint32, total)
		for i := range hValues {
			hValues[i] = uint32(i)
		}
	}

	dKeys, err := ctx.Malloc(total * 4)
	if err != nil {
		return TrialResult{}, NewMemoryError("RunTrial", "key buffer allocation failed", err)
	}
	defer ctx.Free(dKeys)
	if err := ctx.Memcpy(dKeys, hKeys, total*4, MemcpyHostToDevice); err != nil {
		return TrialResult{}, err
	}

	var dValues DevicePtr
	if cfg.WithValues {
		dValues, err = ctx.Malloc(total * 4)
		if err != nil {
			return TrialResult{}, NewMemoryError("RunTrial", "value buffer allocation failed", err)
		}
		defer ctx.Free(dValues)
		if err := ctx.Memcpy(dValues, hValues, total*4, MemcpyHostToDevice); err != nil {
			return TrialResult{}, err
		}
	}

	start := time.Now()
	switch cfg.Network {
	case NetworkBanyan:
		err = ctx.BanyanSort(dKeys, dValues, cfg.Batches, cfg.Length, cfg.Dir)
	case NetworkBitonic, "":
		err = ctx.BitonicSort(dKeys, dValues, cfg.Batches, cfg.Length, cfg.Dir)
	default:
		err = NewInvalidArgError("RunTrial", fmt.Sprintf("unknown network %q", cfg.Network))
	}
	elapsed := time.Since(start)
	if err != nil {
		return TrialResult{}, err
	}

	gotKeys := make([]uint32, total)
	if err := ctx.Memcpy(gotKeys, dKeys, total*4, MemcpyDeviceToHost); err != nil {
		return TrialResult{}, err
	}
	var gotValues []uint32
	if cfg.WithValues {
		gotValues = make([]uint32, total)
		if err := ctx.Memcpy(gotValues, dValues, total*4, MemcpyDeviceToHost); err != nil {
			return TrialResult{}, err
		}
	}

	mismatches := ValidateSort(gotKeys, gotValues, hKeys, hValues, cfg.Batches, cfg.Length, cfg.Dir)

	result := TrialResult{
		Name:           name,
		Network:        cfg.Network,
		Elements:       total,
		Elapsed:        elapsed,
		ElementsPerSec: float64(total) / elapsed.Seconds(),
		Mismatches:     mismatches,
	}

	if cfg.Verbose && mismatches > 0 {
		refKeys := make([]uint32, total)
		copy(refKeys, hKeys)
		for b := 0; b < cfg.Batches; b++ {
			Reference{}.SortPairs(refKeys[b*cfg.Length:(b+1)*cfg.Length], nil, cfg.Dir)
		}
		if i := FirstMismatch(gotKeys, refKeys); i >= 0 {
			fmt.Printf("%s: first key mismatch at %d: got %d want %d\n", name, i, gotKeys[i], refKeys[i])
			fmt.Printf("  got:  %v\n  want: %v\n", window(gotKeys, i), window(refKeys, i))
		}
	}

	return result, nil
}

// window returns a short slice around index i for mismatch dumps.
func window(s []uint32, i int) []uint32 {
	lo, hi := i-4, i+4
	if lo < 0 {
		lo = 0
	}
	if hi > len(s) {
		hi = len(s)
	}
	return s[lo:hi]
}
