package reduction

import (
	"fmt"

	"github.com/pkg/errors"

	syclbench "github.com/unisa-hpc/sycl-bench-sub000"
)

// SegmentedReduction reduces every segment of segmentSize consecutive items
// with a single pass of the group-local reducer. The result of segment g is
// written to Output()[g*segmentSize]; the other slots of the output hold a copy
// of the input.
type SegmentedReduction[T any, O Operator[T]] struct {
	op          O
	strategy    Strategy
	segmentSize int

	input []T
	out   *syclbench.Buffer[T]
}

// NewSegmentedReduction creates a segmented reduction with op, one group per
// segment.
func NewSegmentedReduction[T any, O Operator[T]](op O, strategy Strategy, segmentSize int) (*SegmentedReduction[T, O], error) {
	if err := checkSegmentSize("NewSegmentedReduction", segmentSize); err != nil {
		return nil, err
	}
	if strategy == nil {
		return nil, syclbench.NewInvalidArgError("NewSegmentedReduction", "strategy must not be nil")
	}
	return &SegmentedReduction[T, O]{op: op, strategy: strategy, segmentSize: segmentSize}, nil
}

// Setup binds the input and allocates the output, initialized to a copy of it.
func (r *SegmentedReduction[T, O]) Setup(q *syclbench.Queue, input []T) error {
	r.Release()
	out, err := syclbench.MallocFrom(q, input)
	if err != nil {
		return errors.Wrap(err, "allocating segmented output")
	}
	r.input = input
	r.out = out
	return nil
}

// Submit enqueues the reduction pass and returns its event.
func (r *SegmentedReduction[T, O]) Submit(q *syclbench.Queue) []*syclbench.Event {
	grid := NewGrid(len(r.input), r.segmentSize)
	out := r.out.Data()
	seg := r.segmentSize
	ev := q.Submit(func(h *syclbench.Handler) {
		k := newPassKernel(h, r.op, grid, r.input, func(groupID int, partial T) {
			out[groupID*seg] = partial
		})
		r.strategy.launch(h, grid, k)
	})
	return []*syclbench.Event{ev}
}

// Run submits the pass, waits for it and returns the output.
func (r *SegmentedReduction[T, O]) Run(q *syclbench.Queue) ([]T, error) {
	r.Submit(q)
	if err := q.Wait(); err != nil {
		return nil, errors.Wrapf(err, "%s segmented reduction of %d items", r.strategy.Name(), len(r.input))
	}
	return r.Output(), nil
}

// Output returns the output buffer contents.
func (r *SegmentedReduction[T, O]) Output() []T {
	if r.out == nil {
		return nil
	}
	return r.out.Data()
}

// Verify checks every segment head and that the other slots are untouched.
func (r *SegmentedReduction[T, O]) Verify(tol syclbench.ToleranceConfig) bool {
	return VerifySegmented(r.input, r.Output(), r.segmentSize, r.op, tol, true)
}

// Release returns the output buffer to the pool.
func (r *SegmentedReduction[T, O]) Release() {
	releaseBuffer(&r.out)
}

// SegmentedAtomicReduction computes the same segment results as
// SegmentedReduction without local memory: every item is combined atomically
// into the accumulator of its segment. Non-head slots of the output hold the
// identity.
type SegmentedAtomicReduction[T any, O Operator[T]] struct {
	op          O
	segmentSize int

	input        []T
	accumulators []syclbench.AtomicRef[T]
	out          *syclbench.Buffer[T]
}

// NewSegmentedAtomicReduction creates an atomic segmented reduction with op.
func NewSegmentedAtomicReduction[T any, O Operator[T]](op O, segmentSize int) (*SegmentedAtomicReduction[T, O], error) {
	if err := checkSegmentSize("NewSegmentedAtomicReduction", segmentSize); err != nil {
		return nil, err
	}
	return &SegmentedAtomicReduction[T, O]{op: op, segmentSize: segmentSize}, nil
}

// Setup binds the input and allocates the output and one accumulator per segment.
func (r *SegmentedAtomicReduction[T, O]) Setup(q *syclbench.Queue, input []T) error {
	r.Release()
	out, err := syclbench.Malloc[T](q, len(input))
	if err != nil {
		return errors.Wrap(err, "allocating segmented output")
	}
	r.input = input
	r.out = out
	r.accumulators = make([]syclbench.AtomicRef[T], NumGroups(len(input), r.segmentSize))
	return nil
}

// Submit enqueues the accumulator reset, the atomic accumulation and the write
// back of the segment results.
func (r *SegmentedAtomicReduction[T, O]) Submit(q *syclbench.Queue) []*syclbench.Event {
	op, seg, in, acc, out := r.op, r.segmentSize, r.input, r.accumulators, r.out.Data()
	reset := q.Submit(func(h *syclbench.Handler) {
		h.ParallelForRange(len(acc), func(s int) {
			acc[s].Store(op.Identity())
		})
	})
	accumulate := q.Submit(func(h *syclbench.Handler) {
		h.ParallelForRange(len(in), func(i int) {
			acc[i/seg].FetchCombine(in[i], op.Combine)
		})
	})
	writeBack := q.Submit(func(h *syclbench.Handler) {
		h.ParallelForRange(len(out), func(i int) {
			if i%seg == 0 {
				out[i] = acc[i/seg].Load()
			} else {
				out[i] = op.Identity()
			}
		})
	})
	return []*syclbench.Event{reset, accumulate, writeBack}
}

// Run submits the reduction, waits for it and returns the output.
func (r *SegmentedAtomicReduction[T, O]) Run(q *syclbench.Queue) ([]T, error) {
	r.Submit(q)
	if err := q.Wait(); err != nil {
		return nil, errors.Wrapf(err, "atomic segmented reduction of %d items", len(r.input))
	}
	return r.Output(), nil
}

// Output returns the output buffer contents.
func (r *SegmentedAtomicReduction[T, O]) Output() []T {
	if r.out == nil {
		return nil
	}
	return r.out.Data()
}

// Verify checks every segment head.
func (r *SegmentedAtomicReduction[T, O]) Verify(tol syclbench.ToleranceConfig) bool {
	return VerifySegmented(r.input, r.Output(), r.segmentSize, r.op, tol, false)
}

// Release returns the output buffer to the pool.
func (r *SegmentedAtomicReduction[T, O]) Release() {
	releaseBuffer(&r.out)
	r.accumulators = nil
}

func checkSegmentSize(op string, segmentSize int) error {
	if segmentSize < 1 {
		return syclbench.NewInvalidArgError(op, fmt.Sprintf("segment size must be positive, got %d", segmentSize))
	}
	return nil
}
