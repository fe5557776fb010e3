package syclbench

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gomlx/exceptions"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"

	"github.com/unisa-hpc/sycl-bench-sub000/internal/xsync"
)

// Queue is an in-order command queue bound to a device. Command groups
// submitted to a queue execute one after the other on a dedicated worker, so
// every command observes the complete effects of the commands submitted before
// it. Commands on different queues may execute concurrently.
type Queue struct {
	device *Device
	pool   *MemoryPool
	tasks  chan func()
	done   chan struct{}

	// pending counts enqueued commands that did not complete yet.
	pendingMu sync.Mutex
	idle      *sync.Cond
	pending   int

	submitMu sync.Mutex
	closed   atomic.Bool

	errMu    sync.Mutex
	asyncErr error
}

// Event tracks the execution of one submitted command group.
type Event struct {
	name      string
	submitted time.Time
	started   time.Time
	ended     time.Time
	err       error
	done      *xsync.Latch
}

// NewQueue creates a queue on the given device. A nil device selects the host CPU.
//
// Example:
//
//	q := syclbench.NewQueue(nil)
//	defer q.Close()
//	q.Submit(func(h *syclbench.Handler) {
//	    h.ParallelForRange(n, func(i int) { out[i] = a[i] + b[i] })
//	})
//	if err := q.Wait(); err != nil {
//	    return err
//	}
func NewQueue(device *Device) *Queue {
	if device == nil {
		device = HostDevice()
	}
	q := &Queue{
		device: device,
		pool:   NewMemoryPool(),
		tasks:  make(chan func(), QueueDepth),
		done:   make(chan struct{}),
	}
	q.idle = sync.NewCond(&q.pendingMu)
	go q.worker()
	return q
}

// Device returns the device the queue submits to.
func (q *Queue) Device() *Device {
	return q.device
}

// Pool returns the memory pool of the queue.
func (q *Queue) Pool() *MemoryPool {
	return q.pool
}

// worker processes tasks for the queue
func (q *Queue) worker() {
	for task := range q.tasks {
		task()
		q.pendingMu.Lock()
		q.pending--
		if q.pending == 0 {
			q.idle.Broadcast()
		}
		q.pendingMu.Unlock()
	}
	close(q.done)
}

// Submit captures the command group described by cgf and enqueues it.
// cgf runs synchronously and may register local memory and at most one kernel
// launch on the handler. The returned event completes when the kernel finished.
func (q *Queue) Submit(cgf func(h *Handler)) *Event {
	ev := &Event{submitted: time.Now(), done: xsync.NewLatch()}
	h := &Handler{queue: q}
	if exception := exceptions.Try(func() { cgf(h) }); exception != nil {
		h.fail(panicError("Submit", "command group function panicked", exception))
	}
	ev.name = h.name

	if h.err != nil {
		q.completeImmediately(ev, h.err)
		return ev
	}
	if h.command == nil {
		q.completeImmediately(ev, nil)
		return ev
	}

	q.submitMu.Lock()
	defer q.submitMu.Unlock()
	if q.closed.Load() {
		ev.started = time.Now()
		ev.ended = ev.started
		ev.err = ErrQueueClosed
		ev.done.Trigger()
		return ev
	}
	command := h.command
	q.pendingMu.Lock()
	q.pending++
	q.pendingMu.Unlock()
	q.tasks <- func() {
		ev.started = time.Now()
		err := command()
		ev.ended = time.Now()
		ev.err = err
		if err != nil {
			q.recordError(err)
		}
		ev.done.Trigger()
	}
	return ev
}

func (q *Queue) completeImmediately(ev *Event, err error) {
	ev.started = time.Now()
	ev.ended = ev.started
	ev.err = err
	if err != nil {
		q.recordError(err)
	}
	ev.done.Trigger()
}

func (q *Queue) recordError(err error) {
	q.errMu.Lock()
	defer q.errMu.Unlock()
	if q.asyncErr == nil {
		q.asyncErr = err
	} else {
		klog.V(1).Infof("queue: dropping additional asynchronous error: %v", err)
	}
}

// Wait blocks until no submitted command is pending. It returns the first
// error raised by those commands and clears it. Submit may be called
// concurrently from other goroutines.
func (q *Queue) Wait() error {
	q.pendingMu.Lock()
	for q.pending > 0 {
		q.idle.Wait()
	}
	q.pendingMu.Unlock()
	q.errMu.Lock()
	defer q.errMu.Unlock()
	err := q.asyncErr
	q.asyncErr = nil
	return err
}

// Close waits for pending commands and stops the queue worker. Calling Close
// multiple times is safe.
func (q *Queue) Close() {
	q.submitMu.Lock()
	if !q.closed.Swap(true) {
		close(q.tasks)
	}
	q.submitMu.Unlock()
	<-q.done
}

// Wait blocks until the command completed and returns its error.
func (e *Event) Wait() error {
	e.done.Wait()
	return e.err
}

// Done reports whether the command completed.
func (e *Event) Done() bool {
	return e.done.Test()
}

// Name returns the kind of command the event tracks ("parallel_for", ...).
func (e *Event) Name() string {
	return e.name
}

// SubmitTime returns when the command group was submitted.
func (e *Event) SubmitTime() time.Time {
	e.done.Wait()
	return e.submitted
}

// StartTime returns when the command started executing.
func (e *Event) StartTime() time.Time {
	e.done.Wait()
	return e.started
}

// EndTime returns when the command finished executing.
func (e *Event) EndTime() time.Time {
	e.done.Wait()
	return e.ended
}

// KernelDuration is the time the command spent executing.
func (e *Event) KernelDuration() time.Duration {
	e.done.Wait()
	return e.ended.Sub(e.started)
}

// SubmitLatency is the time between submission and the start of execution.
func (e *Event) SubmitLatency() time.Duration {
	e.done.Wait()
	return e.started.Sub(e.submitted)
}

// panicError converts a recovered panic value into an execution error.
func panicError(op, message string, exception any) error {
	cause, ok := exception.(error)
	if !ok {
		cause = errors.New(fmt.Sprint(exception))
	}
	return NewExecutionError(op, message, cause)
}
