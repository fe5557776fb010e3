package benchmarks

import (
	"github.com/x448/float16"

	"github.com/unisa-hpc/sycl-bench-sub000/harness"
	"github.com/unisa-hpc/sycl-bench-sub000/reduction"
)

// fullReduction is the multi-pass reduction of an index input with plus.
func fullReduction[T interface{ int32 | int64 | float32 | float64 }](s reduction.Strategy) Entry {
	return entry("Pattern_Reduction_"+strategyPrefix(s), isNDRange(s), Index[T],
		func(args *harness.Args) (engine[T], error) {
			return reduction.NewReduction[T](reduction.Plus[T]{}, s, args.LocalSize)
		})
}

// halfReduction sums ones in half precision; an index input would overflow fp16.
func halfReduction(s reduction.Strategy) Entry {
	return entry("Pattern_Reduction_"+strategyPrefix(s), isNDRange(s), halfOnes,
		func(args *harness.Args) (engine[float16.Float16], error) {
			return reduction.NewReduction[float16.Float16](reduction.HalfPlus{}, s, args.LocalSize)
		})
}

func halfOnes(n int) []float16.Float16 {
	s := make([]float16.Float16, n)
	one := float16.Fromfloat32(1)
	for i := range s {
		s[i] = one
	}
	return s
}

// kernelReduction is a reduction of ones through the runtime's own multi-pass
// reduction, one benchmark per operator.
func kernelReduction[T interface{ int32 | int64 | float32 | float64 }, O reduction.Operator[T]](op O) Entry {
	e := entry("KernelReduction_", false, Ones[T],
		func(args *harness.Args) (engine[T], error) {
			return reduction.NewReduction[T](op, reduction.NDRange{}, args.LocalSize)
		})
	suffix := "_" + op.Name()
	e.Name += suffix
	ctor := e.New
	e.New = func(args *harness.Args) harness.Benchmark {
		b := ctor(args).(*bench[T])
		b.name += suffix
		return b
	}
	return e
}

// Reductions returns the full reduction benchmarks: both launch kinds for
// every type, then the kernel reductions with plus and multiplies.
func Reductions() []Entry {
	var entries []Entry
	for _, s := range reduction.Strategies() {
		entries = append(entries,
			fullReduction[int32](s),
			fullReduction[int64](s),
			fullReduction[float32](s),
			fullReduction[float64](s),
			halfReduction(s),
		)
	}
	entries = append(entries,
		kernelReduction[int32](reduction.Plus[int32]{}),
		kernelReduction[int32](reduction.Multiplies[int32]{}),
		kernelReduction[int64](reduction.Plus[int64]{}),
		kernelReduction[int64](reduction.Multiplies[int64]{}),
		kernelReduction[float32](reduction.Plus[float32]{}),
		kernelReduction[float32](reduction.Multiplies[float32]{}),
		kernelReduction[float64](reduction.Plus[float64]{}),
		kernelReduction[float64](reduction.Multiplies[float64]{}),
	)
	return entries
}
