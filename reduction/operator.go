package reduction

import (
	"github.com/x448/float16"

	syclbench "github.com/unisa-hpc/sycl-bench-sub000"
)

// Operator is an associative, commutative binary operator with an identity.
// Implementations are small value types passed as type parameters, so the
// combine call is resolved at compile time.
type Operator[T any] interface {
	Combine(a, b T) T
	Identity() T
	Name() string
}

// WideOperator is implemented by operators whose reduction can be replayed in
// float64. The verification of floating point results uses it.
type WideOperator interface {
	Wide() Operator[float64]
}

// Plus is the sum, with identity 0.
type Plus[T syclbench.Number] struct{}

func (Plus[T]) Combine(a, b T) T        { return a + b }
func (Plus[T]) Identity() T             { return 0 }
func (Plus[T]) Name() string            { return "plus" }
func (Plus[T]) Wide() Operator[float64] { return Plus[float64]{} }

// Multiplies is the product, with identity 1.
type Multiplies[T syclbench.Number] struct{}

func (Multiplies[T]) Combine(a, b T) T        { return a * b }
func (Multiplies[T]) Identity() T             { return 1 }
func (Multiplies[T]) Name() string            { return "multiplies" }
func (Multiplies[T]) Wide() Operator[float64] { return Multiplies[float64]{} }

// Minimum keeps the smaller element. Its identity is the largest value of T.
type Minimum[T syclbench.Number] struct{}

func (Minimum[T]) Combine(a, b T) T        { return min(a, b) }
func (Minimum[T]) Identity() T             { return syclbench.Highest[T]() }
func (Minimum[T]) Name() string            { return "minimum" }
func (Minimum[T]) Wide() Operator[float64] { return Minimum[float64]{} }

// Maximum keeps the larger element. Its identity is the lowest value of T.
type Maximum[T syclbench.Number] struct{}

func (Maximum[T]) Combine(a, b T) T        { return max(a, b) }
func (Maximum[T]) Identity() T             { return syclbench.Lowest[T]() }
func (Maximum[T]) Name() string            { return "maximum" }
func (Maximum[T]) Wide() Operator[float64] { return Maximum[float64]{} }

// HalfPlus is the sum of half precision values. Each partial is rounded to
// float16, the addition itself is done in float32.
type HalfPlus struct{}

func (HalfPlus) Combine(a, b float16.Float16) float16.Float16 {
	return float16.Fromfloat32(a.Float32() + b.Float32())
}
func (HalfPlus) Identity() float16.Float16 { return float16.Float16(0) }
func (HalfPlus) Name() string              { return "plus" }
func (HalfPlus) Wide() Operator[float64]   { return Plus[float64]{} }
