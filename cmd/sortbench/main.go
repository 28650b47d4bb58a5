// Command sortbench validates the sorting networks against a host
// reference sort and reports per-size throughput.
package main

import (
	"flag"
	"fmt"
	"os"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/mahyarsamani/banyan"
)

func main() {
	var (
		sizes    = flag.String("sizes", "1024,4096,16384,65536", "Comma-separated per-batch lengths (powers of two)")
		batches  = flag.Int("batches", 1, "Number of independent batches per invocation")
		trials   = flag.Int("trials", 3, "Trials per configuration")
		network  = flag.String("network", "both", "Network to run: bitonic, banyan, or both")
		desc     = flag.Bool("desc", false, "Sort descending instead of ascending")
		bound    = flag.Uint("bound", 0, "Draw keys from [0, bound); 0 means full 32-bit range")
		noValues = flag.Bool("no-values", false, "Sort bare keys without a payload")
		seed     = flag.Int64("seed", 1, "Base random seed")
		session  = flag.String("log", "", "Benchmark log session name (empty disables JSON logging)")
		verbose  = flag.Bool("v", false, "Verbose mismatch dumps")
	)
	flag.Parse()

	device := banyan.GetDevice()
	fmt.Println("=== Sorting Network Benchmark ===")
	fmt.Printf("Date: %s\n", time.Now().Format(time.RFC3339))
	fmt.Printf("Go Version: %s\n", runtime.Version())
	fmt.Printf("GOARCH: %s\n", runtime.GOARCH)
	fmt.Printf("Device: %s (%d cores)\n", device.Name, device.NumCores)
	fmt.Println()

	if *session != "" {
		if err := banyan.InitBenchmarkLogger(*session); err != nil {
			fmt.Fprintf(os.Stderr, "logger init failed: %v\n", err)
			os.Exit(1)
		}
	}

	var networks []string
	switch *network {
	case "both":
		networks = []string{banyan.NetworkBitonic, banyan.NetworkBanyan}
	case banyan.NetworkBitonic, banyan.NetworkBanyan:
		networks = []string{*network}
	default:
		fmt.Fprintf(os.Stderr, "unknown network %q\n", *network)
		os.Exit(2)
	}

	dir := banyan.Ascending
	if *desc {
		dir = banyan.Descending
	}

	lengths, err := parseSizes(*sizes)
	if err != nil {
		fmt.Fprintf(os.Stderr, "bad -sizes: %v\n", err)
		os.Exit(2)
	}

	failures := 0
	for _, net := range networks {
		for _, length := range lengths {
			for trial := 0; trial < *trials; trial++ {
				cfg := banyan.TrialConfig{
					Network:    net,
					Length:     length,
					Batches:    *batches,
					Dir:        dir,
					KeyBound:   uint32(*bound),
					WithValues: !*noValues,
					Seed:       *seed + int64(trial),
					Verbose:    *verbose,
				}
				result, err := banyan.RunTrial(banyan.DefaultContext(), cfg)
				if *session != "" {
					banyan.LogTrial(result, err)
				}
				if err != nil {
					fmt.Fprintf(os.Stderr, "%s/N=%d trial %d: %v\n", net, length, trial, err)
					failures++
					continue
				}
				fmt.Println(result)
				if !result.Passed() {
					failures++
				}
			}
		}
	}

	if *session != "" {
		if err := banyan.PrintBenchmarkSummary(); err != nil {
			fmt.Fprintf(os.Stderr, "summary failed: %v\n", err)
		}
	}

	if failures > 0 {
		fmt.Fprintf(os.Stderr, "\n%d trial(s) failed\n", failures)
		os.Exit(1)
	}
}

func parseSizes(s string) ([]int, error) {
	var sizes []int
	for _, field := range strings.Split(s, ",") {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}
		n, err := strconv.Atoi(field)
		if err != nil {
			return nil, err
		}
		sizes = append(sizes, n)
	}
	if len(sizes) == 0 {
		return nil, fmt.Errorf("no sizes given")
	}
	return sizes, nil
}
