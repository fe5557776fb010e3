// Package syclbench is a small data-parallel runtime that executes SYCL-style
// kernels on the host CPU.
//
// Work is submitted to an in-order Queue as a command group. A command group
// requests work-group local memory with NewLocalAccessor and launches exactly
// one kernel through its Handler:
//
//   - ParallelFor runs an nd-range kernel. The work-items of a group run
//     concurrently and synchronize with NDItem.Barrier.
//   - ParallelForWorkGroup runs a hierarchical kernel. The group body runs once
//     per group and expresses per-item work with Group.ParallelForWorkItem.
//   - ParallelForRange and SingleTask run ungrouped kernels.
//
// Buffers are allocated with Malloc and accounted for in the queue's
// MemoryPool. Kernels update shared values with AtomicRef.
package syclbench
