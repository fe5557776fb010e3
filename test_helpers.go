package syclbench

import (
	"testing"
)

// NewQueueOrFail creates a host queue that is closed when the test ends.
func NewQueueOrFail(t testing.TB) *Queue {
	t.Helper()
	q := NewQueue(nil)
	t.Cleanup(q.Close)
	return q
}

// MallocFromOrFail copies src to a new buffer and fails the test if unsuccessful
func MallocFromOrFail[T any](t testing.TB, q *Queue, src []T) *Buffer[T] {
	t.Helper()
	buf, err := MallocFrom(q, src)
	if err != nil {
		t.Fatalf("Failed to allocate %d elements: %v", len(src), err)
	}
	return buf
}

// WaitOrFail waits for the queue and fails the test if a command failed
func WaitOrFail(t testing.TB, q *Queue) {
	t.Helper()
	if err := q.Wait(); err != nil {
		t.Fatalf("Queue wait failed: %v", err)
	}
}
