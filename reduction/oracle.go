package reduction

import (
	"reflect"

	"github.com/samber/lo"
	"k8s.io/klog/v2"

	syclbench "github.com/unisa-hpc/sycl-bench-sub000"
)

// SerialReduce folds in from left to right, starting at the identity.
func SerialReduce[T any, O Operator[T]](in []T, op O) T {
	return lo.Reduce(in, func(acc T, x T, _ int) T {
		return op.Combine(acc, x)
	}, op.Identity())
}

// VerifyScalar reports whether got is the reduction of in. Integral types must
// match the serial fold exactly. Other types are compared within tol against a
// float64 replay of the operator when it provides one.
func VerifyScalar[T any, O Operator[T]](in []T, got T, op O, tol syclbench.ToleranceConfig) bool {
	if syclbench.IsIntegral[T]() {
		return any(SerialReduce(in, op)) == any(got)
	}
	if expected, ok := wideFold(in, op); ok {
		actual, _ := syclbench.ToFloat64(got)
		return nearEqual(expected, actual, tol)
	}
	expected := SerialReduce(in, op)
	e, okE := syclbench.ToFloat64(expected)
	a, okA := syclbench.ToFloat64(got)
	if okE && okA {
		return nearEqual(e, a, tol)
	}
	return reflect.DeepEqual(expected, got)
}

func nearEqual(expected, actual float64, tol syclbench.ToleranceConfig) bool {
	if syclbench.NearEqual(expected, actual, tol) {
		return true
	}
	klog.V(1).Infof("verification: expected %g, got %g (%.3g%% apart)", expected, actual, syclbench.PercentDiff(expected, actual))
	return false
}

// VerifySegmented checks the head slot of every segment of out against the
// reduction of the matching input segment. With passThrough, every other slot
// must hold a copy of the input.
func VerifySegmented[T any, O Operator[T]](in, out []T, segmentSize int, op O, tol syclbench.ToleranceConfig, passThrough bool) bool {
	if len(in) != len(out) || segmentSize < 1 {
		return false
	}
	for base := 0; base < len(in); base += segmentSize {
		end := min(base+segmentSize, len(in))
		if !VerifyScalar(in[base:end], out[base], op, tol) {
			return false
		}
		if !passThrough {
			continue
		}
		if result := syclbench.VerifyArray(in[base+1:end], out[base+1:end], syclbench.StrictTolerance()); !result.Passed() {
			klog.V(1).Infof("verification: segment at %d changed its non-head slots\n%s", base, result)
			return false
		}
	}
	return true
}

// VerifyPartials checks that partials[g] is the reduction of the g-th group of in.
func VerifyPartials[T any, O Operator[T]](in, partials []T, groupSize int, op O, tol syclbench.ToleranceConfig) bool {
	if groupSize < 1 || len(partials) != NumGroups(len(in), groupSize) {
		return false
	}
	for g, partial := range partials {
		end := min((g+1)*groupSize, len(in))
		if !VerifyScalar(in[g*groupSize:end], partial, op, tol) {
			return false
		}
	}
	return true
}

func wideFold[T any, O Operator[T]](in []T, op O) (float64, bool) {
	w, ok := any(op).(WideOperator)
	if !ok {
		return 0, false
	}
	wide := w.Wide()
	converted := true
	result := lo.Reduce(in, func(acc float64, x T, _ int) float64 {
		v, ok := syclbench.ToFloat64(x)
		converted = converted && ok
		return wide.Combine(acc, v)
	}, wide.Identity())
	return result, converted
}
