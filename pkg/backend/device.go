package backend

import (
	"runtime"

	"golang.org/x/sys/cpu"
)

// Device describes the hardware behind a backend
type Device struct {
	Name        string
	Workers     int
	MemoryLimit int64 // bytes, 0 when unlimited
	Features    []string
}

// Device describes the CPU backend
func (c *CPU) Device() Device {
	return Device{
		Name:        runtime.GOARCH + " CPU",
		Workers:     c.workers,
		MemoryLimit: c.limit,
		Features:    cpuFeatures(),
	}
}

func cpuFeatures() []string {
	var features []string
	add := func(ok bool, name string) {
		if ok {
			features = append(features, name)
		}
	}
	switch runtime.GOARCH {
	case "amd64", "386":
		add(cpu.X86.HasSSE41, "sse4.1")
		add(cpu.X86.HasAVX, "avx")
		add(cpu.X86.HasAVX2, "avx2")
		add(cpu.X86.HasFMA, "fma")
		add(cpu.X86.HasAVX512F, "avx512f")
	case "arm64":
		add(cpu.ARM64.HasASIMD, "asimd")
		add(cpu.ARM64.HasFP, "fp")
		add(cpu.ARM64.HasSVE, "sve")
	}
	return features
}
