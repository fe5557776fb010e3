// Package benchmarks binds the reduction engines to the harness: one named
// benchmark per engine, element type and, where it applies, operator.
package benchmarks

import (
	"github.com/pkg/errors"

	syclbench "github.com/unisa-hpc/sycl-bench-sub000"
	"github.com/unisa-hpc/sycl-bench-sub000/harness"
	"github.com/unisa-hpc/sycl-bench-sub000/reduction"
)

// engine is what every reduction variant offers to a benchmark.
type engine[T any] interface {
	Setup(q *syclbench.Queue, input []T) error
	Submit(q *syclbench.Queue) []*syclbench.Event
	Verify(tol syclbench.ToleranceConfig) bool
}

// Entry is a benchmark that can be selected by family, type and launch kind.
type Entry struct {
	Name    string
	Type    string
	NDRange bool // Skipped with --no-ndrange-kernels
	New     harness.Constructor
}

// Selected reports whether args enable the entry.
func (e Entry) Selected(args *harness.Args) bool {
	return args.WantsType(e.Type) && (args.NDRangeKernels || !e.NDRange)
}

// bench runs one engine over a generated input of the problem size.
type bench[T any] struct {
	name   string
	size   int
	input  func(n int) []T
	create func(args *harness.Args) (engine[T], error)
	args   *harness.Args

	engine engine[T]
	data   []T
}

func (b *bench[T]) Name() string { return b.name }

func (b *bench[T]) Setup(q *syclbench.Queue) error {
	e, err := b.create(b.args)
	if err != nil {
		return errors.WithMessage(err, b.name)
	}
	b.data = b.input(b.size)
	if err := e.Setup(q, b.data); err != nil {
		return errors.WithMessage(err, b.name)
	}
	b.engine = e
	return nil
}

func (b *bench[T]) Run(q *syclbench.Queue, events *[]*syclbench.Event) error {
	if b.engine == nil {
		return syclbench.NewInvalidArgError("Run", b.name+" was not set up")
	}
	*events = append(*events, b.engine.Submit(q)...)
	return nil
}

// Verify checks the whole result; the verification range only switches it on.
func (b *bench[T]) Verify(harness.VerificationSetting) bool {
	return b.engine != nil && b.engine.Verify(syclbench.ReductionTolerance())
}

// ThroughputMetric is the number of input bytes read.
func (b *bench[T]) ThroughputMetric() harness.ThroughputMetric {
	return harness.ThroughputMetric{Metric: float64(b.size * syclbench.SizeOf[T]()), Unit: "Bytes"}
}

func (b *bench[T]) Release() {
	if r, ok := b.engine.(harness.Releaser); ok {
		r.Release()
	}
	b.engine = nil
}

// entry builds the Entry of a benchmark of element type T.
func entry[T any](prefix string, ndrange bool, input func(int) []T, create func(args *harness.Args) (engine[T], error)) Entry {
	name := prefix + syclbench.TypeName[T]()
	return Entry{
		Name:    name,
		Type:    syclbench.TypeName[T](),
		NDRange: ndrange,
		New: func(args *harness.Args) harness.Benchmark {
			return &bench[T]{name: name, size: args.ProblemSize, input: input, create: create, args: args}
		},
	}
}

// Index fills element i with i.
func Index[T syclbench.Number](n int) []T {
	s := make([]T, n)
	for i := range s {
		s[i] = T(i)
	}
	return s
}

// Ones fills every element with one.
func Ones[T syclbench.Number](n int) []T {
	s := make([]T, n)
	for i := range s {
		s[i] = 1
	}
	return s
}

// strategyPrefix names the launch kind the way the benchmark names spell it.
func strategyPrefix(s reduction.Strategy) string {
	return s.Name() + "_"
}

func isNDRange(s reduction.Strategy) bool {
	_, ok := s.(reduction.NDRange)
	return ok
}
