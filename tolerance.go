// Tolerance-based verification for floating-point results
package syclbench

import (
	"fmt"
	"math"
)

// ToleranceConfig defines tolerance parameters for floating-point comparison
type ToleranceConfig struct {
	// AbsTol is the absolute tolerance for values near zero
	AbsTol float64

	// RelTol is the relative tolerance as a fraction of the expected value
	RelTol float64

	// CheckNaN determines if NaN values should be considered equal
	CheckNaN bool

	// CheckInf determines if Inf values should be considered equal
	CheckInf bool
}

// ReductionTolerance is the tolerance used to verify floating-point reductions:
// the combination order of a tree differs from a serial fold.
func ReductionTolerance() ToleranceConfig {
	return ToleranceConfig{
		AbsTol:   ReductionAbsTol,
		RelTol:   ReductionRelTol,
		CheckNaN: true,
		CheckInf: true,
	}
}

// StrictTolerance returns a tolerance for results that should match bit for bit.
func StrictTolerance() ToleranceConfig {
	return ToleranceConfig{CheckNaN: true, CheckInf: true}
}

// NearEqual checks if actual matches expected within tolerance.
func NearEqual(expected, actual float64, tol ToleranceConfig) bool {
	if tol.CheckNaN && math.IsNaN(expected) && math.IsNaN(actual) {
		return true
	}
	if tol.CheckInf && math.IsInf(expected, 0) && math.IsInf(actual, 0) {
		return math.Signbit(expected) == math.Signbit(actual)
	}

	// Check if exactly equal (handles ±0)
	if expected == actual {
		return true
	}
	if math.IsInf(expected, 0) || math.IsInf(actual, 0) || math.IsNaN(expected) || math.IsNaN(actual) {
		return false
	}

	diff := math.Abs(expected - actual)
	if diff <= tol.AbsTol {
		return true
	}
	return diff <= math.Abs(expected)*tol.RelTol
}

// PercentDiff returns the difference of a and b as a percentage of their
// magnitude, 0 when both are 0.
func PercentDiff(a, b float64) float64 {
	if a == 0 && b == 0 {
		return 0
	}
	return math.Abs(a-b) / ((math.Abs(a) + math.Abs(b)) / 2) * 100
}

// VerificationResult summarizes the comparison of two arrays.
type VerificationResult struct {
	MaxAbsError float64
	MaxRelError float64
	NumErrors   int
	TotalItems  int
	FirstError  int // Index of first error, -1 if none
}

// VerifyArray compares actual against expected element by element. Integral
// elements must be equal, other elements are compared through float64 with
// tol. Mismatched lengths fail every item.
func VerifyArray[T any](expected, actual []T, tol ToleranceConfig) VerificationResult {
	result := VerificationResult{
		TotalItems: len(expected),
		FirstError: -1,
	}
	if len(expected) != len(actual) {
		result.NumErrors = len(expected)
		result.FirstError = 0
		return result
	}

	integral := IsIntegral[T]()
	for i := range expected {
		e, _ := ToFloat64(expected[i])
		a, _ := ToFloat64(actual[i])
		if integral && any(expected[i]) == any(actual[i]) || !integral && NearEqual(e, a, tol) {
			continue
		}
		result.NumErrors++
		if result.FirstError == -1 {
			result.FirstError = i
		}
		absDiff := math.Abs(e - a)
		result.MaxAbsError = max(result.MaxAbsError, absDiff)
		if e != 0 {
			result.MaxRelError = max(result.MaxRelError, absDiff/math.Abs(e))
		}
	}
	return result
}

// Passed reports whether every element matched.
func (r VerificationResult) Passed() bool {
	return r.NumErrors == 0
}

// String formats the verification result for display
func (r VerificationResult) String() string {
	if r.NumErrors == 0 {
		return "PASS: All values match within tolerance"
	}

	errorRate := 100.0
	if r.TotalItems > 0 {
		errorRate = float64(r.NumErrors) / float64(r.TotalItems) * 100
	}
	return fmt.Sprintf("FAIL: %d/%d values differ (%.2f%%)\n"+
		"  Max absolute error: %e\n"+
		"  Max relative error: %e\n"+
		"  First error at index: %d",
		r.NumErrors, r.TotalItems, errorRate,
		r.MaxAbsError, r.MaxRelError, r.FirstError)
}
