package harness

import (
	syclbench "github.com/unisa-hpc/sycl-bench-sub000"
)

// Benchmark is one named benchmark. A fresh value is constructed for every run.
type Benchmark interface {
	Name() string

	// Setup prepares the inputs. It is not timed.
	Setup(q *syclbench.Queue) error

	// Run submits the measured work and appends the events of its commands.
	// The manager waits for the queue after Run returns.
	Run(q *syclbench.Queue, events *[]*syclbench.Event) error
}

// Verifier is implemented by benchmarks that can check their results.
type Verifier interface {
	Verify(setting VerificationSetting) bool
}

// ThroughputReporter is implemented by benchmarks that report a throughput.
type ThroughputReporter interface {
	ThroughputMetric() ThroughputMetric
}

// Releaser is implemented by benchmarks holding device memory after a run.
type Releaser interface {
	Release()
}

// ThroughputMetric is the amount of work a run performs, for example the
// number of bytes read. It is divided by the fastest run time to give the
// throughput, so it is not a rate itself.
type ThroughputMetric struct {
	Metric float64
	Unit   string
}

// Constructor creates a benchmark for a run.
type Constructor func(args *Args) Benchmark
