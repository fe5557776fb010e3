package reduction

import (
	"fmt"

	"github.com/pkg/errors"
	"k8s.io/klog/v2"

	syclbench "github.com/unisa-hpc/sycl-bench-sub000"
)

// AtomicReduction reduces the input by combining every item atomically into a
// single accumulator. There is no local memory and no second pass.
type AtomicReduction[T any, O Operator[T]] struct {
	op    O
	input []T
	acc   syclbench.AtomicRef[T]
}

// NewAtomicReduction creates an atomic full reduction with op.
func NewAtomicReduction[T any, O Operator[T]](op O) *AtomicReduction[T, O] {
	return &AtomicReduction[T, O]{op: op}
}

// Setup binds the input.
func (r *AtomicReduction[T, O]) Setup(_ *syclbench.Queue, input []T) error {
	r.input = input
	r.acc.Store(r.op.Identity())
	return nil
}

// Submit enqueues the accumulator reset and the accumulation.
func (r *AtomicReduction[T, O]) Submit(q *syclbench.Queue) []*syclbench.Event {
	op, in, acc := r.op, r.input, &r.acc
	reset := q.Submit(func(h *syclbench.Handler) {
		h.SingleTask(func() { acc.Store(op.Identity()) })
	})
	accumulate := q.Submit(func(h *syclbench.Handler) {
		h.ParallelForRange(len(in), func(i int) {
			acc.FetchCombine(in[i], op.Combine)
		})
	})
	return []*syclbench.Event{reset, accumulate}
}

// Run submits the reduction, waits for it and returns the result.
func (r *AtomicReduction[T, O]) Run(q *syclbench.Queue) (T, error) {
	r.Submit(q)
	if err := q.Wait(); err != nil {
		var zero T
		return zero, errors.Wrapf(err, "atomic reduction of %d items", len(r.input))
	}
	return r.Result(), nil
}

// Result returns the accumulator.
func (r *AtomicReduction[T, O]) Result() T { return r.acc.Load() }

// Verify reports whether the result matches a serial reduction of the input.
func (r *AtomicReduction[T, O]) Verify(tol syclbench.ToleranceConfig) bool {
	return VerifyScalar(r.input, r.Result(), r.op, tol)
}

// LocalMemReduction runs a single pass of the group-local reducer. Lane 0 of
// every group combines the group's partial atomically into one accumulator.
type LocalMemReduction[T any, O Operator[T]] struct {
	op        O
	strategy  Strategy
	groupSize int
	input     []T
	acc       syclbench.AtomicRef[T]
}

// NewLocalMemReduction creates a local memory reduction with op.
func NewLocalMemReduction[T any, O Operator[T]](op O, strategy Strategy, groupSize int) (*LocalMemReduction[T, O], error) {
	if groupSize < 1 {
		return nil, syclbench.NewInvalidArgError("NewLocalMemReduction", fmt.Sprintf("group size must be positive, got %d", groupSize))
	}
	if strategy == nil {
		return nil, syclbench.NewInvalidArgError("NewLocalMemReduction", "strategy must not be nil")
	}
	return &LocalMemReduction[T, O]{op: op, strategy: strategy, groupSize: groupSize}, nil
}

// Setup binds the input.
func (r *LocalMemReduction[T, O]) Setup(_ *syclbench.Queue, input []T) error {
	r.input = input
	r.acc.Store(r.op.Identity())
	return nil
}

// Submit enqueues the accumulator reset and the reduction pass.
func (r *LocalMemReduction[T, O]) Submit(q *syclbench.Queue) []*syclbench.Event {
	op, acc := r.op, &r.acc
	grid := NewGrid(len(r.input), r.groupSize)
	reset := q.Submit(func(h *syclbench.Handler) {
		h.SingleTask(func() { acc.Store(op.Identity()) })
	})
	pass := q.Submit(func(h *syclbench.Handler) {
		k := newPassKernel(h, op, grid, r.input, func(_ int, partial T) {
			acc.FetchCombine(partial, op.Combine)
		})
		r.strategy.launch(h, grid, k)
	})
	return []*syclbench.Event{reset, pass}
}

// Run submits the reduction, waits for it and returns the result.
func (r *LocalMemReduction[T, O]) Run(q *syclbench.Queue) (T, error) {
	r.Submit(q)
	if err := q.Wait(); err != nil {
		var zero T
		return zero, errors.Wrapf(err, "local memory reduction of %d items", len(r.input))
	}
	return r.Result(), nil
}

// Result returns the accumulator.
func (r *LocalMemReduction[T, O]) Result() T { return r.acc.Load() }

// Verify reports whether the result matches a serial reduction of the input.
func (r *LocalMemReduction[T, O]) Verify(tol syclbench.ToleranceConfig) bool {
	return VerifyScalar(r.input, r.Result(), r.op, tol)
}

// GroupPartials runs a single pass of the group-local reducer and keeps one
// partial per group, without collapsing them.
type GroupPartials[T any, O Operator[T]] struct {
	op        O
	strategy  Strategy
	groupSize int
	input     []T
	partials  *syclbench.Buffer[T]
}

// NewGroupPartials creates a single pass reduction with op.
func NewGroupPartials[T any, O Operator[T]](op O, strategy Strategy, groupSize int) (*GroupPartials[T, O], error) {
	if groupSize < 1 {
		return nil, syclbench.NewInvalidArgError("NewGroupPartials", fmt.Sprintf("group size must be positive, got %d", groupSize))
	}
	if strategy == nil {
		return nil, syclbench.NewInvalidArgError("NewGroupPartials", "strategy must not be nil")
	}
	return &GroupPartials[T, O]{op: op, strategy: strategy, groupSize: groupSize}, nil
}

// Setup binds the input and allocates one partial per group.
func (r *GroupPartials[T, O]) Setup(q *syclbench.Queue, input []T) error {
	r.Release()
	partials, err := syclbench.Malloc[T](q, NumGroups(len(input), r.groupSize))
	if err != nil {
		return errors.Wrap(err, "allocating group partials")
	}
	r.input = input
	r.partials = partials
	return nil
}

// Submit enqueues the reduction pass.
func (r *GroupPartials[T, O]) Submit(q *syclbench.Queue) []*syclbench.Event {
	grid := NewGrid(len(r.input), r.groupSize)
	partials := r.partials.Data()
	ev := q.Submit(func(h *syclbench.Handler) {
		k := newPassKernel(h, r.op, grid, r.input, func(groupID int, partial T) {
			partials[groupID] = partial
		})
		r.strategy.launch(h, grid, k)
	})
	return []*syclbench.Event{ev}
}

// Run submits the pass, waits for it and returns the partials.
func (r *GroupPartials[T, O]) Run(q *syclbench.Queue) ([]T, error) {
	r.Submit(q)
	if err := q.Wait(); err != nil {
		return nil, errors.Wrapf(err, "group partials of %d items", len(r.input))
	}
	return r.Partials(), nil
}

// Partials returns one partial per group.
func (r *GroupPartials[T, O]) Partials() []T {
	if r.partials == nil {
		return nil
	}
	return r.partials.Data()
}

// Verify checks every partial against the reduction of its group.
func (r *GroupPartials[T, O]) Verify(tol syclbench.ToleranceConfig) bool {
	return VerifyPartials(r.input, r.Partials(), r.groupSize, r.op, tol)
}

// Release returns the partials buffer to the pool.
func (r *GroupPartials[T, O]) Release() {
	releaseBuffer(&r.partials)
}

// GroupReduction produces one partial per group like GroupPartials, but every
// group combines its items with the runtime's ReduceOverGroup collective
// instead of a tree in local memory.
type GroupReduction[T any, O Operator[T]] struct {
	op        O
	groupSize int
	input     []T
	partials  *syclbench.Buffer[T]
}

// NewGroupReduction creates a single pass group collective reduction with op.
func NewGroupReduction[T any, O Operator[T]](op O, groupSize int) (*GroupReduction[T, O], error) {
	if groupSize < 1 {
		return nil, syclbench.NewInvalidArgError("NewGroupReduction", fmt.Sprintf("group size must be positive, got %d", groupSize))
	}
	return &GroupReduction[T, O]{op: op, groupSize: groupSize}, nil
}

// Setup binds the input and allocates one partial per group.
func (r *GroupReduction[T, O]) Setup(q *syclbench.Queue, input []T) error {
	r.Release()
	partials, err := syclbench.Malloc[T](q, NumGroups(len(input), r.groupSize))
	if err != nil {
		return errors.Wrap(err, "allocating group partials")
	}
	r.input = input
	r.partials = partials
	return nil
}

// Submit enqueues the reduction pass. Items past the input contribute the
// identity.
func (r *GroupReduction[T, O]) Submit(q *syclbench.Queue) []*syclbench.Event {
	op, in, partials := r.op, r.input, r.partials.Data()
	grid := NewGrid(len(in), r.groupSize)
	ev := q.Submit(func(h *syclbench.Handler) {
		h.ParallelFor(grid.NDRange(), func(it syclbench.NDItem) {
			v := op.Identity()
			if gid := it.GlobalID(); gid < len(in) {
				v = in[gid]
			}
			partial := syclbench.ReduceOverGroup(it, v, op.Combine)
			if it.LocalID() == 0 {
				partials[it.GroupID()] = partial
			}
		})
	})
	return []*syclbench.Event{ev}
}

// Run submits the pass, waits for it and returns the partials.
func (r *GroupReduction[T, O]) Run(q *syclbench.Queue) ([]T, error) {
	r.Submit(q)
	if err := q.Wait(); err != nil {
		return nil, errors.Wrapf(err, "group collective reduction of %d items", len(r.input))
	}
	return r.Partials(), nil
}

// Partials returns one partial per group.
func (r *GroupReduction[T, O]) Partials() []T { return r.partials.Data() }

// Verify checks every partial against the reduction of its group.
func (r *GroupReduction[T, O]) Verify(tol syclbench.ToleranceConfig) bool {
	return VerifyPartials(r.input, r.Partials(), r.groupSize, r.op, tol)
}

// Release returns the partials buffer to the pool.
func (r *GroupReduction[T, O]) Release() {
	releaseBuffer(&r.partials)
}

func releaseBuffer[T any](buf **syclbench.Buffer[T]) {
	if *buf == nil {
		return
	}
	if err := (*buf).Release(); err != nil {
		klog.Warningf("reduction: releasing buffer: %v", err)
	}
	*buf = nil
}
