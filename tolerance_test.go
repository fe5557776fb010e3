package syclbench

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNearEqual(t *testing.T) {
	tests := []struct {
		name     string
		a, b     float64
		tol      ToleranceConfig
		expected bool
	}{
		{"Exact_Equal", 1.0, 1.0, StrictTolerance(), true},
		{"Both_Zero", 0.0, math.Copysign(0, -1), StrictTolerance(), true},
		{"Within_AbsTol", 0.001, 0.009, ReductionTolerance(), true},
		{"Within_RelTol", 1000.0, 1040.0, ReductionTolerance(), true},
		{"Outside_RelTol", 1000.0, 1060.0, ReductionTolerance(), false},
		{"Strict_Mismatch", 1.0, math.Nextafter(1.0, 2.0), StrictTolerance(), false},
		{"Both_NaN", math.NaN(), math.NaN(), ReductionTolerance(), true},
		{"NaN_Not_Checked", math.NaN(), math.NaN(), ToleranceConfig{}, false},
		{"Both_PosInf", math.Inf(1), math.Inf(1), ReductionTolerance(), true},
		{"Opposite_Inf", math.Inf(1), math.Inf(-1), ReductionTolerance(), false},
		{"Inf_vs_Finite", math.Inf(1), 1e300, ReductionTolerance(), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, NearEqual(tt.a, tt.b, tt.tol))
		})
	}
}

func TestPercentDiff(t *testing.T) {
	assert.Equal(t, 0.0, PercentDiff(0, 0))
	assert.InDelta(t, 0.0, PercentDiff(5, 5), 1e-12)
	assert.InDelta(t, 200.0, PercentDiff(1, -1), 1e-12)
	assert.InDelta(t, 2.0/1.01, PercentDiff(1.0, 1.02), 1e-9)
}

func TestVerifyArray(t *testing.T) {
	expected := []float32{1, 2, 3, 4}

	result := VerifyArray(expected, []float32{1, 2, 3, 4}, StrictTolerance())
	assert.True(t, result.Passed())
	assert.Equal(t, -1, result.FirstError)
	assert.True(t, strings.HasPrefix(result.String(), "PASS"))

	result = VerifyArray(expected, []float32{1, 2.5, 3, 8}, ReductionTolerance())
	assert.False(t, result.Passed())
	assert.Equal(t, 2, result.NumErrors)
	assert.Equal(t, 1, result.FirstError)
	assert.InDelta(t, 4.0, result.MaxAbsError, 1e-9)
	assert.InDelta(t, 1.0, result.MaxRelError, 1e-9)
	assert.True(t, strings.HasPrefix(result.String(), "FAIL"))

	result = VerifyArray([]int32{1, 2}, []int32{1}, StrictTolerance())
	assert.Equal(t, 2, result.NumErrors)

	// Integers are compared exactly, even where float64 cannot tell them apart.
	result = VerifyArray([]int64{1 << 53}, []int64{1<<53 + 1}, ReductionTolerance())
	assert.False(t, result.Passed())
	assert.Equal(t, 0, result.FirstError)
}
