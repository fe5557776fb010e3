package reduction

import (
	syclbench "github.com/unisa-hpc/sycl-bench-sub000"
)

// Strategy launches the group-local reducer of one pass. NDRange and
// Hierarchical only differ in how work-items are scheduled; they run the same
// lane program in the same combine order.
type Strategy interface {
	// Name is used in benchmark names ("NDRange", "Hierarchical").
	Name() string

	launch(h *syclbench.Handler, grid Grid, k groupKernel)
}

// groupKernel is the lane program of the group-local reducer. All methods take
// the group and the local id of the calling work-item.
type groupKernel interface {
	load(g *syclbench.Group, lid int)
	combine(g *syclbench.Group, lid, stride int)
	store(g *syclbench.Group)
}

// NDRange runs the reducer as an nd-range kernel: all work-items of a group run
// concurrently and synchronize on the group barrier before every halving step.
type NDRange struct{}

func (NDRange) Name() string { return "NDRange" }

func (NDRange) launch(h *syclbench.Handler, grid Grid, k groupKernel) {
	width := grid.ScratchWidth()
	h.ParallelFor(grid.NDRange(), func(it syclbench.NDItem) {
		g, lid := it.Group(), it.LocalID()
		k.load(g, lid)
		for stride := width / 2; stride > 0; stride /= 2 {
			it.Barrier()
			if lid < stride {
				k.combine(g, lid, stride)
			}
		}
		if lid == 0 {
			k.store(g)
		}
	})
}

// Hierarchical runs the reducer as a work-group kernel. Loading, every halving
// step and the final store are separate work-item phases.
type Hierarchical struct{}

func (Hierarchical) Name() string { return "Hierarchical" }

func (Hierarchical) launch(h *syclbench.Handler, grid Grid, k groupKernel) {
	width := grid.ScratchWidth()
	h.ParallelForWorkGroup(grid.NumGroups, grid.GroupSize, func(g *syclbench.Group) {
		g.ParallelForWorkItem(func(it syclbench.HItem) {
			k.load(g, it.LocalID())
		})
		for stride := width / 2; stride > 0; stride /= 2 {
			g.ParallelForWorkItem(func(it syclbench.HItem) {
				if lid := it.LocalID(); lid < stride {
					k.combine(g, lid, stride)
				}
			})
		}
		g.ParallelForWorkItem(func(it syclbench.HItem) {
			if it.LocalID() == 0 {
				k.store(g)
			}
		})
	})
}

// Strategies returns both launch strategies, flat first.
func Strategies() []Strategy {
	return []Strategy{NDRange{}, Hierarchical{}}
}

// passKernel reduces every group of in[:size] and hands each group's partial
// to sink. The scratch accessor must be requested on the handler before the
// kernel is launched.
type passKernel[T any, O Operator[T]] struct {
	op      O
	in      []T
	size    int
	local   int
	width   int
	scratch syclbench.LocalAccessor[T]
	sink    func(groupID int, partial T)
}

func newPassKernel[T any, O Operator[T]](h *syclbench.Handler, op O, grid Grid, in []T, sink func(int, T)) *passKernel[T, O] {
	width := grid.ScratchWidth()
	return &passKernel[T, O]{
		op:      op,
		in:      in,
		size:    grid.LogicalSize,
		local:   grid.GroupSize,
		width:   width,
		scratch: syclbench.NewLocalAccessor[T](h, width),
		sink:    sink,
	}
}

// load writes the lane's element, or the identity past the logical end, and
// fills the padding slots the lane is responsible for.
func (k *passKernel[T, O]) load(g *syclbench.Group, lid int) {
	s := k.scratch.Of(g)
	if gid := g.ID()*k.local + lid; gid < k.size {
		s[lid] = k.in[gid]
	} else {
		s[lid] = k.op.Identity()
	}
	for p := lid + k.local; p < k.width; p += k.local {
		s[p] = k.op.Identity()
	}
}

func (k *passKernel[T, O]) combine(g *syclbench.Group, lid, stride int) {
	s := k.scratch.Of(g)
	s[lid] = k.op.Combine(s[lid], s[lid+stride])
}

func (k *passKernel[T, O]) store(g *syclbench.Group) {
	k.sink(g.ID(), k.scratch.Of(g)[0])
}
