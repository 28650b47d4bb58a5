package banyan

import (
	"strings"
	"sync"

	"golang.org/x/sys/cpu"
)

// CPUFeatures tracks available CPU instruction set extensions
type CPUFeatures struct {
	HasSSE4    bool
	HasAVX     bool
	HasAVX2    bool
	HasAVX512F bool
	HasFMA     bool
}

// Global CPU feature detection. Detection is lazy so the device
// descriptor can be built during package initialization regardless of
// file init order.
var (
	cpuFeatures CPUFeatures
	detectOnce  sync.Once
)

// detectCPUFeatures populates the global cpuFeatures struct
func detectCPUFeatures() {
	cpuFeatures = CPUFeatures{
		HasSSE4:    cpu.X86.HasSSE41 || cpu.X86.HasSSE42,
		HasAVX:     cpu.X86.HasAVX,
		HasAVX2:    cpu.X86.HasAVX2,
		HasAVX512F: cpu.X86.HasAVX512F,
		HasFMA:     cpu.X86.HasFMA,
	}
}

// GetCPUInfo returns a string describing available CPU features.
// Used in the device name and the benchmark banner.
func GetCPUInfo() string {
	detectOnce.Do(detectCPUFeatures)

	features := []string{}

	if cpuFeatures.HasSSE4 {
		features = append(features, "SSE4")
	}
	if cpuFeatures.HasAVX {
		features = append(features, "AVX")
	}
	if cpuFeatures.HasAVX2 {
		features = append(features, "AVX2")
	}
	if cpuFeatures.HasAVX512F {
		features = append(features, "AVX512F")
	}
	if cpuFeatures.HasFMA {
		features = append(features, "FMA")
	}

	if len(features) == 0 {
		return "scalar"
	}
	return strings.Join(features, "+")
}
