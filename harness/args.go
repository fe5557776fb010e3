package harness

import (
	"fmt"

	"github.com/samber/lo"

	syclbench "github.com/unisa-hpc/sycl-bench-sub000"
)

// VerificationSetting controls result verification. Begin and Range select the
// part of a multi-dimensional result to check; a Range with a zero extent
// disables verification like Enabled == false does.
type VerificationSetting struct {
	Enabled bool
	Begin   [3]int
	Range   [3]int
}

// DefaultVerification verifies a single element at the origin.
func DefaultVerification() VerificationSetting {
	return VerificationSetting{Enabled: true, Range: [3]int{1, 1, 1}}
}

// Active reports whether results should be verified.
func (v VerificationSetting) Active() bool {
	return v.Enabled && v.Range[0]*v.Range[1]*v.Range[2] > 0
}

// Args is the configuration shared by all benchmarks of a run.
type Args struct {
	ProblemSize    int
	LocalSize      int
	NumRuns        int
	Queue          *syclbench.Queue
	Verification   VerificationSetting
	NDRangeKernels bool
	Types          []string // Element types to run, all when empty
	Consumer       ResultConsumer
}

// DefaultArgs returns the default configuration on q, printing to stdout.
func DefaultArgs(q *syclbench.Queue) *Args {
	return &Args{
		ProblemSize:    syclbench.DefaultProblemSize,
		LocalSize:      syclbench.DefaultLocalSize,
		NumRuns:        syclbench.DefaultNumRuns,
		Queue:          q,
		Verification:   DefaultVerification(),
		NDRangeKernels: true,
		Consumer:       NewStdioConsumer(nil),
	}
}

// Validate checks that the configuration can run.
func (a *Args) Validate() error {
	switch {
	case a.ProblemSize < 1:
		return syclbench.NewInvalidArgError("Args", fmt.Sprintf("problem size must be positive, got %d", a.ProblemSize))
	case a.LocalSize < 1:
		return syclbench.NewInvalidArgError("Args", fmt.Sprintf("local size must be positive, got %d", a.LocalSize))
	case a.NumRuns < 1:
		return syclbench.NewInvalidArgError("Args", fmt.Sprintf("number of runs must be positive, got %d", a.NumRuns))
	case a.Queue == nil:
		return syclbench.NewInvalidArgError("Args", "no queue")
	case a.Consumer == nil:
		return syclbench.NewInvalidArgError("Args", "no result consumer")
	}
	return nil
}

// WantsType reports whether benchmarks of the named element type should run.
func (a *Args) WantsType(name string) bool {
	return len(a.Types) == 0 || lo.Contains(a.Types, name)
}
