package reduction

import (
	"math/bits"

	syclbench "github.com/unisa-hpc/sycl-bench-sub000"
)

// Grid partitions the logical index space of one pass into groups.
type Grid struct {
	LogicalSize int
	GroupSize   int
	NumGroups   int
}

// NewGrid returns the grid covering logicalSize items with groups of
// groupSize. groupSize must be positive.
func NewGrid(logicalSize, groupSize int) Grid {
	return Grid{
		LogicalSize: logicalSize,
		GroupSize:   groupSize,
		NumGroups:   NumGroups(logicalSize, groupSize),
	}
}

// NumGroups returns ceil(n / groupSize).
func NumGroups(n, groupSize int) int {
	if groupSize < 1 {
		panic("reduction.NumGroups: group size must be positive")
	}
	return (n + groupSize - 1) / groupSize
}

// NDRange is the launch range of the grid.
func (g Grid) NDRange() syclbench.NDRange {
	return syclbench.NDRange{Global: g.NumGroups * g.GroupSize, Local: g.GroupSize}
}

// ScratchWidth is the number of scratch elements per group: the group size
// rounded up to a power of two. Slots past the group size hold the identity.
func (g Grid) ScratchWidth() int {
	return nextPow2(g.GroupSize)
}

func nextPow2(n int) int {
	if n <= 1 {
		return 1
	}
	return 1 << bits.Len(uint(n-1))
}
