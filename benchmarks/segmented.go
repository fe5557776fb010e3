package benchmarks

import (
	"github.com/unisa-hpc/sycl-bench-sub000/harness"
	"github.com/unisa-hpc/sycl-bench-sub000/reduction"
)

type segmentedType interface {
	int16 | int32 | int64 | float32 | float64
}

// segmented reduces every local-size segment of an index input with plus.
// int16 segments wrap around; the oracle wraps the same way.
func segmented[T segmentedType](s reduction.Strategy) Entry {
	return entry("Pattern_SegmentedReduction_"+strategyPrefix(s), isNDRange(s), Index[T],
		func(args *harness.Args) (engine[T], error) {
			return reduction.NewSegmentedReduction[T](reduction.Plus[T]{}, s, args.LocalSize)
		})
}

func segmentedAtomic[T segmentedType]() Entry {
	return entry("SegmentedReductionAtomic_", false, Index[T],
		func(args *harness.Args) (engine[T], error) {
			return reduction.NewSegmentedAtomicReduction[T](reduction.Plus[T]{}, args.LocalSize)
		})
}

// Segmented returns the segmented reduction benchmarks for both launch kinds,
// then the atomic variant.
func Segmented() []Entry {
	var entries []Entry
	for _, s := range reduction.Strategies() {
		entries = append(entries,
			segmented[int16](s),
			segmented[int32](s),
			segmented[int64](s),
			segmented[float32](s),
			segmented[float64](s),
		)
	}
	return append(entries,
		segmentedAtomic[int16](),
		segmentedAtomic[int32](),
		segmentedAtomic[int64](),
		segmentedAtomic[float32](),
		segmentedAtomic[float64](),
	)
}
