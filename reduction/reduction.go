package reduction

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"

	syclbench "github.com/unisa-hpc/sycl-bench-sub000"
)

// PassInfo describes one pass of a full reduction.
type PassInfo struct {
	Index     int
	Size      int // Number of items reduced by the pass
	NumGroups int // Number of partials the pass produces
}

// Reduction reduces a whole input sequence to a single value.
//
// Each pass reduces every group of the current working set to one partial. The
// partials of a pass are the input of the next one, until a pass produces a
// single group. Passes read the input directly the first time and then
// alternate between two pass buffers.
//
// Example:
//
//	r, err := reduction.NewReduction[int32](reduction.Plus[int32]{}, reduction.NDRange{}, 256)
//	if err != nil {
//	    return err
//	}
//	if err := r.Setup(q, input); err != nil {
//	    return err
//	}
//	defer r.Release()
//	sum, err := r.Run(q)
type Reduction[T any, O Operator[T]] struct {
	op        O
	strategy  Strategy
	groupSize int

	input   []T
	buffers [2]*syclbench.Buffer[T]
	current int // Buffer holding the result of the last pass, -1 if none ran
	passes  []PassInfo
}

// NewReduction creates a full reduction with op, launched with strategy on
// groups of groupSize items. Every pass must shrink the working set, so
// groupSize must be at least 2.
func NewReduction[T any, O Operator[T]](op O, strategy Strategy, groupSize int) (*Reduction[T, O], error) {
	if groupSize < 2 {
		return nil, syclbench.NewInvalidArgError("NewReduction", fmt.Sprintf("group size must be at least 2, got %d", groupSize))
	}
	if strategy == nil {
		return nil, syclbench.NewInvalidArgError("NewReduction", "strategy must not be nil")
	}
	return &Reduction[T, O]{op: op, strategy: strategy, groupSize: groupSize, current: -1}, nil
}

// GroupSize returns the number of items reduced by one group.
func (r *Reduction[T, O]) GroupSize() int { return r.groupSize }

// Setup binds the input and allocates the pass buffers on q. The input must
// not be modified until the reduction is released.
func (r *Reduction[T, O]) Setup(q *syclbench.Queue, input []T) error {
	r.Release()
	r.input = input
	r.current = -1
	for i := range r.buffers {
		buf, err := syclbench.Malloc[T](q, len(input))
		if err != nil {
			r.Release()
			return errors.Wrapf(err, "allocating pass buffer %d", i)
		}
		r.buffers[i] = buf
	}
	klog.V(2).Infof("reduction: %d items of %s, group size %d, pass buffers %s each",
		len(input), syclbench.TypeName[T](), r.groupSize, humanize.IBytes(uint64(r.buffers[0].Bytes())))
	return nil
}

// Submit enqueues every pass of the reduction on q and returns their events
// without waiting. The in-order queue guarantees a pass sees the complete
// output of the previous one. Result is valid once the events completed.
func (r *Reduction[T, O]) Submit(q *syclbench.Queue) []*syclbench.Event {
	r.passes = r.passes[:0]
	r.current = -1
	size := len(r.input)
	if size <= 1 {
		return nil
	}

	var events []*syclbench.Event
	src := r.input
	next := 0
	for {
		grid := NewGrid(size, r.groupSize)
		dst := r.buffers[next].Data()
		ev := q.Submit(func(h *syclbench.Handler) {
			k := newPassKernel(h, r.op, grid, src, func(groupID int, partial T) {
				dst[groupID] = partial
			})
			r.strategy.launch(h, grid, k)
		})
		events = append(events, ev)
		r.passes = append(r.passes, PassInfo{Index: len(r.passes), Size: size, NumGroups: grid.NumGroups})
		klog.V(2).Infof("reduction: pass %d reduces %d items in %d groups", len(r.passes)-1, size, grid.NumGroups)

		r.current = next
		if grid.NumGroups == 1 {
			break
		}
		size = grid.NumGroups
		src = dst
		next = 1 - next
	}
	return events
}

// Run submits every pass, waits for them and returns the result.
func (r *Reduction[T, O]) Run(q *syclbench.Queue) (T, error) {
	r.Submit(q)
	if err := q.Wait(); err != nil {
		var zero T
		return zero, errors.Wrapf(err, "%s reduction of %d items", r.strategy.Name(), len(r.input))
	}
	return r.Result(), nil
}

// Result returns the value of the last completed run. The empty sequence
// reduces to the identity and a single item to itself, without any launch.
func (r *Reduction[T, O]) Result() T {
	switch {
	case len(r.input) == 0:
		return r.op.Identity()
	case len(r.input) == 1:
		return r.input[0]
	case r.current < 0:
		return r.op.Identity()
	}
	return r.buffers[r.current].Data()[0]
}

// Passes describes the passes of the last run.
func (r *Reduction[T, O]) Passes() []PassInfo {
	return r.passes
}

// Verify reports whether the result matches a serial reduction of the input.
func (r *Reduction[T, O]) Verify(tol syclbench.ToleranceConfig) bool {
	return VerifyScalar(r.input, r.Result(), r.op, tol)
}

// Release returns the pass buffers to the pool.
func (r *Reduction[T, O]) Release() {
	for i, buf := range r.buffers {
		if buf != nil {
			if err := buf.Release(); err != nil {
				klog.Warningf("reduction: releasing pass buffer %d: %v", i, err)
			}
			r.buffers[i] = nil
		}
	}
	r.current = -1
}
