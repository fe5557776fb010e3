package syclbench

import (
	"math"
	"sync"
	"sync/atomic"

	"github.com/x448/float16"
)

// AtomicRef is a device-scope atomic cell holding a T. Types of up to 64 bits
// are updated with a compare-and-swap loop on their bit pattern, any other type
// falls back to a lock. The zero value holds the zero T and is ready to use.
type AtomicRef[T any] struct {
	bits atomic.Uint64

	mu    sync.Mutex
	value T
}

// NewAtomicRef returns a cell initialized to v.
func NewAtomicRef[T any](v T) *AtomicRef[T] {
	a := &AtomicRef[T]{}
	a.Store(v)
	return a
}

// Load atomically reads the value.
func (a *AtomicRef[T]) Load() T {
	if packable[T]() {
		v, _ := fromBits[T](a.bits.Load())
		return v
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.value
}

// Store atomically replaces the value.
func (a *AtomicRef[T]) Store(v T) {
	if b, ok := toBits(v); ok {
		a.bits.Store(b)
		return
	}
	a.mu.Lock()
	a.value = v
	a.mu.Unlock()
}

// FetchCombine atomically replaces the value x with combine(x, v) and returns x.
// combine may be called more than once under contention.
func (a *AtomicRef[T]) FetchCombine(v T, combine func(x, y T) T) T {
	if packable[T]() {
		for {
			oldBits := a.bits.Load()
			old, _ := fromBits[T](oldBits)
			newBits, _ := toBits(combine(old, v))
			if a.bits.CompareAndSwap(oldBits, newBits) {
				return old
			}
		}
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	old := a.value
	a.value = combine(old, v)
	return old
}

// FetchAdd atomically adds v and returns the previous value.
func FetchAdd[T Number](a *AtomicRef[T], v T) T {
	return a.FetchCombine(v, func(x, y T) T { return x + y })
}

func packable[T any]() bool {
	var zero T
	_, ok := toBits(zero)
	return ok
}

// toBits returns the bit pattern of v, zero-extended to 64 bits.
func toBits[T any](v T) (uint64, bool) {
	switch x := any(v).(type) {
	case int8:
		return uint64(uint8(x)), true
	case int16:
		return uint64(uint16(x)), true
	case int32:
		return uint64(uint32(x)), true
	case int64:
		return uint64(x), true
	case int:
		return uint64(x), true
	case uint8:
		return uint64(x), true
	case uint16:
		return uint64(x), true
	case uint32:
		return uint64(x), true
	case uint64:
		return x, true
	case uint:
		return uint64(x), true
	case float16.Float16:
		return uint64(x.Bits()), true
	case float32:
		return uint64(math.Float32bits(x)), true
	case float64:
		return math.Float64bits(x), true
	}
	return 0, false
}

func fromBits[T any](b uint64) (T, bool) {
	var out T
	var v any
	switch any(out).(type) {
	case int8:
		v = int8(uint8(b))
	case int16:
		v = int16(uint16(b))
	case int32:
		v = int32(uint32(b))
	case int64:
		v = int64(b)
	case int:
		v = int(b)
	case uint8:
		v = uint8(b)
	case uint16:
		v = uint16(b)
	case uint32:
		v = uint32(b)
	case uint64:
		v = b
	case uint:
		v = uint(b)
	case float16.Float16:
		v = float16.Frombits(uint16(b))
	case float32:
		v = math.Float32frombits(uint32(b))
	case float64:
		v = math.Float64frombits(b)
	default:
		return out, false
	}
	return v.(T), true
}
