package harness

import (
	"strconv"

	"k8s.io/klog/v2"
)

// Hardware events counted by PerfHook, in emit order.
var perfEvents = []string{"cycles", "instructions", "cache-misses"}

// perfCounters is a set of started or stopped hardware counters.
type perfCounters interface {
	start() error
	stop() (map[string]uint64, error)
	close()
}

// PerfHook counts hardware events during the kernels of every run and reports
// the mean per run as "perf-<event>", plus "perf-ipc". Counting is system wide
// on every CPU, so it needs CAP_PERFMON or a permissive perf_event_paranoid;
// without them the results are "N/A".
type PerfHook struct {
	BaseHook
	counters perfCounters
	totals   map[string]uint64
	runs     int
	err      error
}

// NewPerfHook returns a hook counting cycles, instructions and cache misses.
func NewPerfHook() *PerfHook {
	return &PerfHook{}
}

func (h *PerfHook) AtInit(*Args) {
	h.totals = make(map[string]uint64)
	h.runs = 0
	h.counters, h.err = openPerfCounters()
	if h.err != nil {
		klog.V(1).Infof("perf counters unavailable: %v", h.err)
	}
}

func (h *PerfHook) PreKernel() {
	if h.err != nil {
		return
	}
	if h.err = h.counters.start(); h.err != nil {
		klog.V(1).Infof("starting perf counters: %v", h.err)
	}
}

func (h *PerfHook) PostKernel() {
	if h.err != nil {
		return
	}
	values, err := h.counters.stop()
	if err != nil {
		h.err = err
		klog.V(1).Infof("reading perf counters: %v", err)
		return
	}
	for name, v := range values {
		h.totals[name] += v
	}
	h.runs++
}

func (h *PerfHook) EmitResults(consumer ResultConsumer) {
	if h.counters != nil {
		h.counters.close()
		h.counters = nil
	}
	if h.err != nil || h.runs == 0 {
		for _, name := range perfEvents {
			consumer.ConsumeResult("perf-"+name, "N/A", "")
		}
		consumer.ConsumeResult("perf-ipc", "N/A", "")
		return
	}
	for _, name := range perfEvents {
		consumer.ConsumeResult("perf-"+name, strconv.FormatUint(h.totals[name]/uint64(h.runs), 10), "per run")
	}
	if cycles := h.totals["cycles"]; cycles > 0 {
		consumer.ConsumeResult("perf-ipc", formatFloat(float64(h.totals["instructions"])/float64(cycles)), "")
	} else {
		consumer.ConsumeResult("perf-ipc", "N/A", "")
	}
}

// Err returns why the counters could not be read, if they could not.
func (h *PerfHook) Err() error {
	return h.err
}
