package syclbench

import (
	"sync"

	"github.com/gomlx/exceptions"

	"github.com/unisa-hpc/sycl-bench-sub000/internal/xsync"
)

// Group is one work-group of a launch.
type Group struct {
	id         int
	localRange int
	locals     []any
	barrier    *xsync.Barrier

	// Scratch of the group collectives, allocated by the first one.
	collectiveOnce sync.Once
	collective     []any
	collectiveOut  any
}

func newGroup(id, localRange int, allocators []func() any) *Group {
	g := &Group{
		id:         id,
		localRange: localRange,
	}
	if len(allocators) > 0 {
		g.locals = make([]any, len(allocators))
		for i, alloc := range allocators {
			g.locals[i] = alloc()
		}
	}
	return g
}

// ID returns the group id within the launch.
func (g *Group) ID() int { return g.id }

// LocalRange returns the number of work-items in the group.
func (g *Group) LocalRange() int { return g.localRange }

// ParallelForWorkItem runs fn for every work-item of the group. It returns
// after every work-item finished, which makes it a group-wide barrier.
func (g *Group) ParallelForWorkItem(fn func(it HItem)) {
	for lid := 0; lid < g.localRange; lid++ {
		fn(HItem{group: g, local: lid})
	}
}

// NDItem identifies a work-item of a ParallelFor launch.
type NDItem struct {
	group *Group
	local int
}

// LocalID returns the id of the work-item within its group.
func (it NDItem) LocalID() int { return it.local }

// GroupID returns the id of the work-item's group.
func (it NDItem) GroupID() int { return it.group.id }

// GlobalID returns the id of the work-item within the launch.
func (it NDItem) GlobalID() int { return it.group.id*it.group.localRange + it.local }

// LocalRange returns the group size.
func (it NDItem) LocalRange() int { return it.group.localRange }

// Group returns the group of the work-item.
func (it NDItem) Group() *Group { return it.group }

// Barrier blocks until every work-item of the group reached it. Writes to local
// memory made before the barrier are visible to the whole group after it.
func (it NDItem) Barrier() {
	it.group.barrier.Wait()
}

// ReduceOverGroup combines the values v of every work-item of the group with
// combine, in local id order, and returns the result to every work-item. Every
// work-item of the group must call it with the same combine.
func ReduceOverGroup[T any](it NDItem, v T, combine func(x, y T) T) T {
	g := it.group
	g.collectiveOnce.Do(func() { g.collective = make([]any, g.localRange) })
	g.collective[it.local] = v
	it.Barrier()
	if it.local == 0 {
		acc := g.collective[0].(T)
		for _, x := range g.collective[1:] {
			acc = combine(acc, x.(T))
		}
		g.collectiveOut = acc
	}
	it.Barrier()
	result := g.collectiveOut.(T)
	// The scratch is reused by the next collective.
	it.Barrier()
	return result
}

// HItem identifies a work-item inside Group.ParallelForWorkItem.
type HItem struct {
	group *Group
	local int
}

// LocalID returns the id of the work-item within its group.
func (it HItem) LocalID() int { return it.local }

// GlobalID returns the id of the work-item within the launch.
func (it HItem) GlobalID() int { return it.group.id*it.group.localRange + it.local }

// LocalAccessor gives access to a block of work-group local memory. Each group
// of the launch gets its own zeroed block of Size elements that lives as long
// as the group does.
type LocalAccessor[T any] struct {
	slot int
	size int
}

// NewLocalAccessor requests size elements of local memory per group. It must be
// called inside a command group before the kernel launch.
func NewLocalAccessor[T any](h *Handler, size int) LocalAccessor[T] {
	if size < 0 {
		h.fail(NewInvalidArgError("local_accessor", "local memory size must not be negative"))
		size = 0
	}
	if h.command != nil {
		h.fail(NewInvalidArgError("local_accessor", "local memory must be requested before the kernel launch"))
	}
	h.locals = append(h.locals, func() any { return make([]T, size) })
	return LocalAccessor[T]{slot: len(h.locals) - 1, size: size}
}

// Size returns the number of elements per group.
func (a LocalAccessor[T]) Size() int { return a.size }

// Of returns the block of local memory of group g.
func (a LocalAccessor[T]) Of(g *Group) []T {
	if a.slot < 0 || a.slot >= len(g.locals) {
		exceptions.Panicf("local accessor slot %d is not part of this launch", a.slot)
	}
	return g.locals[a.slot].([]T)
}
