package harness

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/samber/lo"
	"gonum.org/v1/gonum/stat"

	syclbench "github.com/unisa-hpc/sycl-bench-sub000"
)

// Timing names recorded by the manager.
const (
	RunTime    = "run-time"
	KernelTime = "kernel-time"
	SubmitTime = "submit-time"
	SystemTime = "system-time"
)

// TimingStats summarizes the samples of one timing, in seconds.
type TimingStats struct {
	Mean    float64
	StdDev  float64
	Median  float64
	Min     float64
	Samples []float64 // Sorted ascending
}

// TimeMetrics collects the timings of the runs of a benchmark.
type TimeMetrics struct {
	results     map[string][]time.Duration
	unavailable map[string]bool
}

// NewTimeMetrics returns an empty collection.
func NewTimeMetrics() *TimeMetrics {
	return &TimeMetrics{
		results:     make(map[string][]time.Duration),
		unavailable: make(map[string]bool),
	}
}

// AddTimingResult records one sample of the named timing.
func (m *TimeMetrics) AddTimingResult(name string, d time.Duration) error {
	if m.unavailable[name] {
		return syclbench.NewInvalidArgError("AddTimingResult", "cannot add result for unavailable timing "+name)
	}
	m.results[name] = append(m.results[name], d)
	return nil
}

// MarkAsUnavailable records that a timing cannot be measured. Its columns are
// still emitted, holding "N/A", so every benchmark produces the same keys.
func (m *TimeMetrics) MarkAsUnavailable(name string) error {
	if _, ok := m.results[name]; ok {
		return syclbench.NewInvalidArgError("MarkAsUnavailable", "cannot mark timing "+name+" with existing results as unavailable")
	}
	m.unavailable[name] = true
	return nil
}

// Stats summarizes the named timing. The standard deviation is the sample
// standard deviation, 0 for a single sample. The median is the upper one for
// an even number of samples.
func (m *TimeMetrics) Stats(name string) (TimingStats, bool) {
	durations, ok := m.results[name]
	if !ok || len(durations) == 0 {
		return TimingStats{}, false
	}
	seconds := lo.Map(durations, func(d time.Duration, _ int) float64 { return d.Seconds() })
	slices.Sort(seconds)

	s := TimingStats{
		Mean:    stat.Mean(seconds, nil),
		Median:  seconds[len(seconds)/2],
		Min:     seconds[0],
		Samples: seconds,
	}
	if len(seconds) > 1 {
		s.StdDev = stat.StdDev(seconds, nil)
	}
	return s, true
}

// Names returns every timing name, available or not, sorted.
func (m *TimeMetrics) Names() []string {
	names := append(lo.Keys(m.results), lo.Keys(m.unavailable)...)
	names = lo.Uniq(names)
	slices.Sort(names)
	return names
}

// EmitResults writes the throughput metric and then, for every timing in
// name order, its statistics. tpm may be nil.
func (m *TimeMetrics) EmitResults(consumer ResultConsumer, tpm *ThroughputMetric) {
	if tpm != nil {
		consumer.ConsumeResult("throughput-metric", formatFloat(tpm.Metric), tpm.Unit)
	} else {
		consumer.ConsumeResult("throughput-metric", "N/A", "")
	}

	for _, name := range m.Names() {
		s, ok := m.Stats(name)
		if !ok {
			for _, suffix := range []string{"-mean", "-stddev", "-median", "-min", "-samples", "-throughput"} {
				consumer.ConsumeResult(name+suffix, "N/A", "")
			}
			continue
		}
		consumer.ConsumeResult(name+"-mean", formatFloat(s.Mean), "s")
		consumer.ConsumeResult(name+"-stddev", formatFloat(s.StdDev), "s")
		consumer.ConsumeResult(name+"-median", formatFloat(s.Median), "s")
		consumer.ConsumeResult(name+"-min", formatFloat(s.Min), "s")
		samples := lo.Map(s.Samples, func(v float64, _ int) string { return formatFloat(v) })
		consumer.ConsumeResult(name+"-samples", `"`+strings.Join(samples, " ")+`"`, "")

		if tpm != nil && tpm.Metric > 0 && s.Min > 0 {
			consumer.ConsumeResult(name+"-throughput", formatFloat(tpm.Metric/s.Min), tpm.Unit+"/s")
		} else {
			consumer.ConsumeResult(name+"-throughput", "N/A", "")
		}
	}
}

func formatFloat(v float64) string {
	return fmt.Sprintf("%f", v)
}
