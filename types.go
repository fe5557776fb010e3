package syclbench

import (
	"fmt"
	"math"
	"unsafe"

	"github.com/x448/float16"
	"golang.org/x/exp/constraints"
)

// Number is the set of built-in element types kernels operate on.
type Number interface {
	constraints.Integer | constraints.Float
}

// TypeName returns the short, readable name of an element type as it appears in
// benchmark names ("int32", "fp64", ...).
func TypeName[T any]() string {
	var zero T
	switch any(zero).(type) {
	case int8:
		return "int8"
	case uint8:
		return "uint8"
	case int16:
		return "int16"
	case uint16:
		return "uint16"
	case int32:
		return "int32"
	case uint32:
		return "uint32"
	case int64:
		return "int64"
	case uint64:
		return "uint64"
	case int:
		return "int"
	case uint:
		return "uint"
	case float16.Float16:
		return "fp16"
	case float32:
		return "fp32"
	case float64:
		return "fp64"
	default:
		return fmt.Sprintf("%T", zero)
	}
}

// IsIntegral reports whether T is one of the built-in integer types.
// Integral reductions are verified exactly, everything else within a tolerance.
func IsIntegral[T any]() bool {
	var zero T
	switch any(zero).(type) {
	case int8, int16, int32, int64, int, uint8, uint16, uint32, uint64, uint, uintptr:
		return true
	}
	return false
}

// SizeOf returns the storage size in bytes of one element of type T.
func SizeOf[T any]() int {
	var zero T
	return int(unsafe.Sizeof(zero))
}

// ToFloat64 converts an element to float64. The second value is false for types
// it does not know how to convert.
func ToFloat64[T any](v T) (float64, bool) {
	switch x := any(v).(type) {
	case int8:
		return float64(x), true
	case int16:
		return float64(x), true
	case int32:
		return float64(x), true
	case int64:
		return float64(x), true
	case int:
		return float64(x), true
	case uint8:
		return float64(x), true
	case uint16:
		return float64(x), true
	case uint32:
		return float64(x), true
	case uint64:
		return float64(x), true
	case uint:
		return float64(x), true
	case float16.Float16:
		return float64(x.Float32()), true
	case float32:
		return float64(x), true
	case float64:
		return x, true
	}
	return 0, false
}

// isFloat reports whether T is a floating point type.
func isFloat[T Number]() bool {
	return T(1)/T(2) != 0
}

// Highest returns the largest value of T, +Inf for floating point types.
func Highest[T Number]() T {
	var zero T
	switch {
	case isFloat[T]():
		return T(math.Inf(1))
	case zero-1 < zero:
		bits := unsafe.Sizeof(zero) * 8
		return T(uint64(1)<<(bits-1) - 1)
	default:
		all := uint64(math.MaxUint64)
		return T(all)
	}
}

// Lowest returns the smallest value of T, -Inf for floating point types.
func Lowest[T Number]() T {
	var zero T
	switch {
	case isFloat[T]():
		return T(math.Inf(-1))
	case zero-1 < zero:
		return -Highest[T]() - 1
	default:
		return zero
	}
}
