package syclbench

import (
	"fmt"
	"runtime"
	"strings"

	"golang.org/x/sys/cpu"
)

// Device represents a compute device. Here, this is the host CPU with its
// cores acting as compute units.
type Device struct {
	ID           int    // Unique device identifier
	Name         string // Human-readable device name
	Kind         string // Device kind, always "cpu"
	ComputeUnits int    // Number of groups that may execute concurrently
	MaxLocalSize int    // Largest supported work-group size
	Features     []string
}

// CPUFeatures tracks available CPU instruction set extensions
type CPUFeatures struct {
	HasAVX      bool
	HasAVX2     bool
	HasAVX512F  bool
	HasFMA      bool
	HasSSE4     bool
	HasASIMD    bool
	HasASIMDHP  bool // Half precision arithmetic
	HasSVE      bool
}

// DetectCPUFeatures reports the instruction set extensions of the host CPU
func DetectCPUFeatures() CPUFeatures {
	return CPUFeatures{
		HasSSE4:    cpu.X86.HasSSE41 || cpu.X86.HasSSE42,
		HasAVX:     cpu.X86.HasAVX,
		HasAVX2:    cpu.X86.HasAVX2,
		HasAVX512F: cpu.X86.HasAVX512F,
		HasFMA:     cpu.X86.HasFMA,
		HasASIMD:   cpu.ARM64.HasASIMD,
		HasASIMDHP: cpu.ARM64.HasASIMDHP,
		HasSVE:     cpu.ARM64.HasSVE,
	}
}

// List returns the names of the detected features
func (f CPUFeatures) List() []string {
	var features []string
	add := func(ok bool, name string) {
		if ok {
			features = append(features, name)
		}
	}
	add(f.HasSSE4, "SSE4")
	add(f.HasAVX, "AVX")
	add(f.HasAVX2, "AVX2")
	add(f.HasFMA, "FMA")
	add(f.HasAVX512F, "AVX512F")
	add(f.HasASIMD, "ASIMD")
	add(f.HasASIMDHP, "ASIMDHP")
	add(f.HasSVE, "SVE")
	return features
}

// HostDevice describes the CPU the process is running on.
func HostDevice() *Device {
	features := DetectCPUFeatures().List()
	name := fmt.Sprintf("%s/%s CPU (%d cores)", runtime.GOOS, runtime.GOARCH, runtime.NumCPU())
	if len(features) > 0 {
		name += " [" + strings.Join(features, ",") + "]"
	}
	return &Device{
		ID:           0,
		Name:         name,
		Kind:         "cpu",
		ComputeUnits: runtime.GOMAXPROCS(0) * GroupsPerComputeUnit,
		MaxLocalSize: MaxLocalSize,
		Features:     features,
	}
}

// SelectDevice returns the device for a device type name as accepted by the
// command line: "default" or "cpu". Every other type is reported as unavailable.
func SelectDevice(kind string) (*Device, error) {
	switch strings.ToLower(kind) {
	case "", "default", "cpu", "host":
		return HostDevice(), nil
	case "gpu", "accelerator":
		return nil, ErrNoDevice
	default:
		return nil, NewInvalidArgError("SelectDevice", fmt.Sprintf("unknown device type %q", kind))
	}
}
