// Package reduction implements multi-pass tree reductions on a syclbench queue.
//
// A full reduction (Reduction) repeatedly reduces every group of the current
// working set to one partial until a single value remains. A segmented
// reduction (SegmentedReduction, SegmentedAtomicReduction) runs the group-local
// reducer once and leaves one result per segment in an output as long as the
// input.
//
// The group-local reducer is a binary tree over a scratch buffer in local
// memory. Two launch strategies drive it, NDRange and Hierarchical, and both
// combine elements in the same order.
//
// Operators must be associative and commutative. The combine order inside a
// group is the same as across groups, so the result of a non-associative
// operator depends on the group size.
package reduction
