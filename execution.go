package syclbench

import (
	"fmt"
	"sync"

	"github.com/gomlx/exceptions"
	"golang.org/x/sync/errgroup"

	"github.com/unisa-hpc/sycl-bench-sub000/internal/xsync"
)

// NDRange describes a launch of Global work-items split into groups of Local
// work-items. Global must be a multiple of Local.
type NDRange struct {
	Global int
	Local  int
}

// NumGroups returns the number of work-groups in the range
func (r NDRange) NumGroups() int {
	if r.Local <= 0 {
		return 0
	}
	return r.Global / r.Local
}

func (r NDRange) validate(op string, dev *Device) error {
	switch {
	case r.Local < 1:
		return NewInvalidArgError(op, fmt.Sprintf("local range must be positive, got %d", r.Local))
	case r.Local > dev.MaxLocalSize:
		return NewInvalidArgError(op, fmt.Sprintf("local range %d exceeds the device maximum %d", r.Local, dev.MaxLocalSize))
	case r.Global < 0:
		return NewInvalidArgError(op, fmt.Sprintf("global range must not be negative, got %d", r.Global))
	case r.Global%r.Local != 0:
		return NewInvalidArgError(op, fmt.Sprintf("global range %d is not a multiple of the local range %d", r.Global, r.Local))
	}
	return nil
}

// Handler records the command of one command group. It is only valid inside
// the function passed to Queue.Submit.
type Handler struct {
	queue   *Queue
	name    string
	command func() error
	locals  []func() any
	err     error
}

// Device returns the device the command group is submitted to.
func (h *Handler) Device() *Device {
	return h.queue.device
}

func (h *Handler) fail(err error) {
	if h.err == nil {
		h.err = err
	}
}

func (h *Handler) setCommand(name string, command func() error) {
	if h.command != nil {
		h.fail(NewInvalidArgError(name, "a command group may contain a single kernel, "+h.name+" was already submitted"))
		return
	}
	h.name = name
	h.command = command
}

// ParallelFor launches kernel once per work-item of r. Work-items of a group run
// concurrently, one goroutine each, and may synchronize with NDItem.Barrier.
// Every work-item of a group must reach the same sequence of barriers.
func (h *Handler) ParallelFor(r NDRange, kernel func(it NDItem)) {
	const op = "parallel_for"
	if err := r.validate(op, h.queue.device); err != nil {
		h.fail(err)
		return
	}
	locals := h.locals
	device := h.queue.device
	h.setCommand(op, func() error {
		return runGroups(device, r.NumGroups(), func(groupID int) error {
			g := newGroup(groupID, r.Local, locals)
			g.barrier = xsync.NewBarrier(r.Local)

			var failure firstPanic
			var wg sync.WaitGroup
			wg.Add(r.Local)
			for lid := 0; lid < r.Local; lid++ {
				go func() {
					defer wg.Done()
					item := NDItem{group: g, local: lid}
					if exception := exceptions.Try(func() { kernel(item) }); exception != nil {
						g.barrier.Break()
						if exception != xsync.ErrBarrierBroken {
							failure.record(exception)
						}
					}
				}()
			}
			wg.Wait()
			return failure.err(op, groupID)
		})
	})
}

// ParallelForWorkGroup launches kernel once per work-group. Inside, the kernel
// expresses per-item work with Group.ParallelForWorkItem; each such call is a
// synchronization boundary for the whole group.
func (h *Handler) ParallelForWorkGroup(numGroups, localSize int, kernel func(g *Group)) {
	const op = "parallel_for_work_group"
	r := NDRange{Global: numGroups * localSize, Local: localSize}
	if numGroups < 0 {
		h.fail(NewInvalidArgError(op, fmt.Sprintf("number of groups must not be negative, got %d", numGroups)))
		return
	}
	if err := r.validate(op, h.queue.device); err != nil {
		h.fail(err)
		return
	}
	locals := h.locals
	device := h.queue.device
	h.setCommand(op, func() error {
		return runGroups(device, numGroups, func(groupID int) error {
			g := newGroup(groupID, localSize, locals)
			if exception := exceptions.Try(func() { kernel(g) }); exception != nil {
				var failure firstPanic
				failure.record(exception)
				return failure.err(op, groupID)
			}
			return nil
		})
	})
}

// ParallelForRange launches kernel once for every id in [0, n) without any
// grouping. Ids are split in contiguous chunks over the device compute units.
func (h *Handler) ParallelForRange(n int, kernel func(id int)) {
	const op = "parallel_for_range"
	if n < 0 {
		h.fail(NewInvalidArgError(op, fmt.Sprintf("range must not be negative, got %d", n)))
		return
	}
	device := h.queue.device
	h.setCommand(op, func() error {
		if n == 0 {
			return nil
		}
		workers := min(device.ComputeUnits, n)
		chunkSize := (n + workers - 1) / workers
		return runGroups(device, workers, func(worker int) error {
			start := worker * chunkSize
			end := min(start+chunkSize, n)
			if exception := exceptions.Try(func() {
				for id := start; id < end; id++ {
					kernel(id)
				}
			}); exception != nil {
				var failure firstPanic
				failure.record(exception)
				return failure.err(op, worker)
			}
			return nil
		})
	})
}

// SingleTask runs fn once on the device.
func (h *Handler) SingleTask(fn func()) {
	const op = "single_task"
	h.setCommand(op, func() error {
		if exception := exceptions.Try(fn); exception != nil {
			return panicError(op, "kernel panicked", exception)
		}
		return nil
	})
}

// runGroups executes fn for every group id, at most device.ComputeUnits at a
// time. Groups run in no particular order.
func runGroups(device *Device, numGroups int, fn func(groupID int) error) error {
	var eg errgroup.Group
	eg.SetLimit(max(device.ComputeUnits, 1))
	for groupID := 0; groupID < numGroups; groupID++ {
		eg.Go(func() error {
			return fn(groupID)
		})
	}
	return eg.Wait()
}

// firstPanic keeps the first panic raised by the work-items of a group.
type firstPanic struct {
	mu        sync.Mutex
	exception any
}

func (f *firstPanic) record(exception any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.exception == nil {
		f.exception = exception
	}
}

func (f *firstPanic) err(op string, groupID int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.exception == nil {
		return nil
	}
	return panicError(op, fmt.Sprintf("kernel panicked in group %d", groupID), f.exception)
}
