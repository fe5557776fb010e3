package syclbench

import (
	"fmt"
	"sync"

	"github.com/dustin/go-humanize"
)

// MemoryPool accounts for the device buffers allocated through a queue.
// It tracks live and peak bytes so benchmarks can report their footprint.
type MemoryPool struct {
	mu         sync.Mutex
	totalAlloc int64
	peakAlloc  int64
	numAllocs  int64
	nextID     uint64
	live       map[uint64]int64
}

// NewMemoryPool creates a new memory pool.
func NewMemoryPool() *MemoryPool {
	return &MemoryPool{
		live: make(map[uint64]int64),
	}
}

func (mp *MemoryPool) allocate(bytes int64) uint64 {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	mp.nextID++
	mp.live[mp.nextID] = bytes
	mp.numAllocs++
	mp.totalAlloc += bytes
	if mp.totalAlloc > mp.peakAlloc {
		mp.peakAlloc = mp.totalAlloc
	}
	return mp.nextID
}

func (mp *MemoryPool) free(id uint64) error {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	bytes, ok := mp.live[id]
	if !ok {
		return ErrDoubleFree
	}
	delete(mp.live, id)
	mp.totalAlloc -= bytes
	return nil
}

// GetStats returns memory pool statistics
func (mp *MemoryPool) GetStats() (allocated, peak int64) {
	mp.mu.Lock()
	defer mp.mu.Unlock()
	return mp.totalAlloc, mp.peakAlloc
}

// ResetPeak sets the peak to the current live allocation.
func (mp *MemoryPool) ResetPeak() {
	mp.mu.Lock()
	defer mp.mu.Unlock()
	mp.peakAlloc = mp.totalAlloc
}

// String formats the pool statistics for display
func (mp *MemoryPool) String() string {
	allocated, peak := mp.GetStats()
	return fmt.Sprintf("allocated=%s peak=%s", humanize.IBytes(uint64(allocated)), humanize.IBytes(uint64(peak)))
}

// Buffer is a typed device allocation. On the CPU device the data lives in
// ordinary memory and is accessed directly through Data.
type Buffer[T any] struct {
	data []T
	pool *MemoryPool
	id   uint64
}

// Malloc allocates a zeroed buffer of n elements from the queue's pool.
//
// Example:
//
//	buf, err := syclbench.Malloc[float32](q, 1024)
//	if err != nil {
//	    return err
//	}
//	defer buf.Release()
func Malloc[T any](q *Queue, n int) (*Buffer[T], error) {
	if n < 0 {
		return nil, ErrInvalidSize
	}
	pool := q.Pool()
	return &Buffer[T]{
		data: make([]T, n),
		pool: pool,
		id:   pool.allocate(int64(n) * int64(SizeOf[T]())),
	}, nil
}

// MallocFrom allocates a buffer holding a copy of src.
func MallocFrom[T any](q *Queue, src []T) (*Buffer[T], error) {
	buf, err := Malloc[T](q, len(src))
	if err != nil {
		return nil, err
	}
	copy(buf.data, src)
	return buf, nil
}

// Data returns the buffer contents, nil for a nil buffer. The slice aliases
// device memory.
func (b *Buffer[T]) Data() []T {
	if b == nil {
		return nil
	}
	return b.data
}

// Len returns the number of elements in the buffer
func (b *Buffer[T]) Len() int {
	return len(b.data)
}

// Bytes returns the size in bytes of the allocation
func (b *Buffer[T]) Bytes() int {
	return len(b.data) * SizeOf[T]()
}

// Release returns the buffer to the pool. Releasing twice returns ErrDoubleFree.
func (b *Buffer[T]) Release() error {
	if b == nil {
		return nil
	}
	if err := b.pool.free(b.id); err != nil {
		return err
	}
	b.data = nil
	return nil
}
