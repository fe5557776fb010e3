// Package harness runs named benchmarks on a syclbench queue: it repeats each
// benchmark, times its runs and kernels, checks its results and emits every
// measurement to a ResultConsumer.
package harness
