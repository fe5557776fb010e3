// Package syclbench configuration constants
package syclbench

// Problem and launch dimensions
const (
	// DefaultProblemSize is the number of input elements when none is given
	DefaultProblemSize = 3072

	// DefaultLocalSize is the default work-group size
	DefaultLocalSize = 256

	// MaxLocalSize bounds the work-group size of a single launch
	MaxLocalSize = 1 << 16

	// DefaultNumRuns is how many timed runs a benchmark performs
	DefaultNumRuns = 5
)

// Queue parameters
const (
	// QueueDepth is the number of command groups that may be pending on a queue
	QueueDepth = 1024

	// GroupsPerComputeUnit scales how many groups run concurrently per core
	GroupsPerComputeUnit = 1
)

// Verification parameters
const (
	// ReductionRelTol is the relative error accepted for floating point reductions
	ReductionRelTol = 0.05

	// ReductionAbsTol is the magnitude below which two floating point results are
	// considered equal regardless of their relative error
	ReductionAbsTol = 0.01
)
