//go:build !linux

package harness

import (
	syclbench "github.com/unisa-hpc/sycl-bench-sub000"
)

func openPerfCounters() (perfCounters, error) {
	return nil, syclbench.NewDeviceError("PerfHook", "hardware counters are only supported on Linux")
}
