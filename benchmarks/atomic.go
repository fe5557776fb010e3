package benchmarks

import (
	"github.com/unisa-hpc/sycl-bench-sub000/harness"
	"github.com/unisa-hpc/sycl-bench-sub000/reduction"
)

type atomicType interface {
	int32 | int64 | float32 | float64
}

func atomicReduction[T atomicType]() Entry {
	return entry("ReductionAtomic_", false, Ones[T],
		func(*harness.Args) (engine[T], error) {
			return reduction.NewAtomicReduction[T](reduction.Plus[T]{}), nil
		})
}

func localMemReduction[T atomicType]() Entry {
	return entry("ReductionLocalMem_", false, Ones[T],
		func(args *harness.Args) (engine[T], error) {
			return reduction.NewLocalMemReduction[T](reduction.Plus[T]{}, reduction.NDRange{}, args.LocalSize)
		})
}

func groupPartials[T atomicType]() Entry {
	return entry("ReductionLocalMemNoAtomic_", false, Ones[T],
		func(args *harness.Args) (engine[T], error) {
			return reduction.NewGroupPartials[T](reduction.Plus[T]{}, reduction.NDRange{}, args.LocalSize)
		})
}

func groupReduction[T atomicType]() Entry {
	return entry("ReduceGroupAlgorithmNoAtomic_", false, Ones[T],
		func(args *harness.Args) (engine[T], error) {
			return reduction.NewGroupReduction[T](reduction.Plus[T]{}, args.LocalSize)
		})
}

// Atomics returns the reductions that combine into global memory atomically,
// and the single pass reductions leaving one partial per group.
func Atomics() []Entry {
	return []Entry{
		atomicReduction[int32](),
		atomicReduction[int64](),
		atomicReduction[float32](),
		atomicReduction[float64](),
		localMemReduction[int32](),
		localMemReduction[int64](),
		localMemReduction[float32](),
		localMemReduction[float64](),
		groupPartials[int32](),
		groupPartials[int64](),
		groupPartials[float32](),
		groupPartials[float64](),
		groupReduction[int32](),
		groupReduction[int64](),
		groupReduction[float32](),
		groupReduction[float64](),
	}
}
