package harness

import (
	"strconv"

	syclbench "github.com/unisa-hpc/sycl-bench-sub000"
)

// Hook observes the runs of a benchmark. The manager calls AtInit once, the
// setup and kernel hooks around every run, and EmitResults after the last run.
type Hook interface {
	AtInit(args *Args)
	PreSetup()
	PostSetup()
	PreKernel()
	PostKernel()
	EmitResults(consumer ResultConsumer)
}

// BaseHook implements every method of Hook as a no-op, for embedding.
type BaseHook struct{}

func (BaseHook) AtInit(*Args)               {}
func (BaseHook) PreSetup()                  {}
func (BaseHook) PostSetup()                 {}
func (BaseHook) PreKernel()                 {}
func (BaseHook) PostKernel()                {}
func (BaseHook) EmitResults(ResultConsumer) {}

// MemoryHook reports the peak device memory of the runs of a benchmark as
// "pool-peak-bytes".
type MemoryHook struct {
	BaseHook
	pool *syclbench.MemoryPool
	peak int64
}

// NewMemoryHook returns a hook reading the pool of the benchmark queue.
func NewMemoryHook() *MemoryHook {
	return &MemoryHook{}
}

func (h *MemoryHook) AtInit(args *Args) {
	h.pool = args.Queue.Pool()
	h.peak = 0
	h.pool.ResetPeak()
}

func (h *MemoryHook) PostKernel() {
	if h.pool == nil {
		return
	}
	if _, peak := h.pool.GetStats(); peak > h.peak {
		h.peak = peak
	}
}

func (h *MemoryHook) EmitResults(consumer ResultConsumer) {
	consumer.ConsumeResult("pool-peak-bytes", strconv.FormatInt(h.peak, 10), "bytes")
}

// Peak returns the highest pool usage seen after a kernel.
func (h *MemoryHook) Peak() int64 {
	return h.peak
}
