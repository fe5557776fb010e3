package harness

import (
	"strconv"
	"time"

	"github.com/pkg/errors"
	"k8s.io/klog/v2"

	syclbench "github.com/unisa-hpc/sycl-bench-sub000"
)

// Manager runs one benchmark the configured number of times and reports its
// results to the consumer of the arguments.
type Manager struct {
	args  *Args
	hooks []Hook
}

// NewManager returns a manager for the given arguments.
func NewManager(args *Args) *Manager {
	return &Manager{args: args}
}

// AddHook registers a hook observing every run.
func (m *Manager) AddHook(h Hook) {
	m.hooks = append(m.hooks, h)
}

// Run executes the benchmark created by ctor. Runs stop early once a
// verification fails. If any run returns an error, the results of the
// benchmark are discarded and the error is returned.
func (m *Manager) Run(ctor Constructor) error {
	args := m.args
	if err := args.Validate(); err != nil {
		return err
	}
	consumer := args.Consumer
	q := args.Queue
	name := ctor(args).Name()

	consumer.ProceedToBenchmark(name)
	consumer.ConsumeResult("problem-size", strconv.Itoa(args.ProblemSize), "")
	consumer.ConsumeResult("local-size", strconv.Itoa(args.LocalSize), "")
	consumer.ConsumeResult("device-name", q.Device().Name, "")
	consumer.ConsumeResult("runtime-implementation", syclbench.RuntimeImplementation(), "")

	metrics := NewTimeMetrics()
	for _, h := range m.hooks {
		h.AtInit(args)
	}

	var (
		tpm          *ThroughputMetric
		verifiable   bool
		allRunsPass  = true
		verification = args.Verification.Active()
	)
	for run := 0; run < args.NumRuns && allRunsPass; run++ {
		b := ctor(args)
		if err := m.runOnce(b, metrics); err != nil {
			consumer.Discard()
			return errors.WithMessagef(err, "benchmark %s, run %d", name, run)
		}

		if r, ok := b.(ThroughputReporter); ok && tpm == nil {
			metric := r.ThroughputMetric()
			tpm = &metric
		}
		if v, ok := b.(Verifier); ok {
			verifiable = true
			if verification && !v.Verify(args.Verification) {
				klog.Warningf("%s: verification failed in run %d", name, run)
				allRunsPass = false
			}
		}
		if r, ok := b.(Releaser); ok {
			r.Release()
		}
	}

	metrics.EmitResults(consumer, tpm)
	for _, h := range m.hooks {
		h.EmitResults(consumer)
	}

	switch {
	case !verification || !verifiable:
		consumer.ConsumeResult("Verification", "N/A", "")
	case !allRunsPass:
		consumer.ConsumeResult("Verification", "FAIL", "")
	default:
		consumer.ConsumeResult("Verification", "PASS", "")
	}
	return consumer.Flush()
}

// runOnce sets up b and times one execution. The run time spans from the
// first submission to the completion of the queue; kernel and submit times
// are summed over the events of the run.
func (m *Manager) runOnce(b Benchmark, metrics *TimeMetrics) (err error) {
	q := m.args.Queue
	defer func() {
		if err != nil {
			if r, ok := b.(Releaser); ok {
				r.Release()
			}
		}
	}()

	for _, h := range m.hooks {
		h.PreSetup()
	}
	if err := b.Setup(q); err != nil {
		return errors.WithMessage(err, "setup")
	}
	if err := q.Wait(); err != nil {
		return errors.WithMessage(err, "setup")
	}
	for _, h := range m.hooks {
		h.PostSetup()
	}

	events := make([]*syclbench.Event, 0, 1024)
	for _, h := range m.hooks {
		h.PreKernel()
	}
	before := time.Now()
	err = b.Run(q, &events)
	if waitErr := q.Wait(); err == nil {
		err = waitErr
	}
	runTime := time.Since(before)
	for _, h := range m.hooks {
		h.PostKernel()
	}
	if err != nil {
		return err
	}

	var kernelTime, submitTime time.Duration
	for _, e := range events {
		kernelTime += e.KernelDuration()
		submitTime += e.SubmitLatency()
	}
	klog.V(2).Infof("%s: run %s, kernels %s over %d commands", b.Name(), runTime, kernelTime, len(events))

	for _, t := range []struct {
		name string
		d    time.Duration
	}{
		{RunTime, runTime},
		{KernelTime, kernelTime},
		{SubmitTime, submitTime},
		{SystemTime, runTime - kernelTime},
	} {
		if err := metrics.AddTimingResult(t.name, t.d); err != nil {
			return err
		}
	}
	return nil
}
