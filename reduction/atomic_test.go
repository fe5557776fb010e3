package reduction

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/x448/float16"

	syclbench "github.com/unisa-hpc/sycl-bench-sub000"
)

func TestAtomicReduction(t *testing.T) {
	q := syclbench.NewQueueOrFail(t)
	r := NewAtomicReduction[int64](Plus[int64]{})
	require.NoError(t, r.Setup(q, ones(3072, int64(1))))
	for run := 0; run < 2; run++ {
		got, err := r.Run(q)
		require.NoError(t, err)
		assert.Equal(t, int64(3072), got, "run %d", run)
	}
	assert.True(t, r.Verify(syclbench.StrictTolerance()))

	h := NewAtomicReduction[float16.Float16](HalfPlus{})
	require.NoError(t, h.Setup(q, ones(1000, float16.Fromfloat32(1))))
	got, err := h.Run(q)
	require.NoError(t, err)
	assert.Equal(t, float32(1000), got.Float32())
	assert.True(t, h.Verify(syclbench.ReductionTolerance()))
}

func TestLocalMemReduction(t *testing.T) {
	q := syclbench.NewQueueOrFail(t)
	for _, strategy := range Strategies() {
		r, err := NewLocalMemReduction[float32](Plus[float32]{}, strategy, 256)
		require.NoError(t, err)
		require.NoError(t, r.Setup(q, ones(3072+17, float32(1))))
		for run := 0; run < 2; run++ {
			got, err := r.Run(q)
			require.NoError(t, err)
			assert.Equal(t, float32(3089), got)
		}
		assert.True(t, r.Verify(syclbench.ReductionTolerance()))
	}

	r, err := NewLocalMemReduction[int32](Maximum[int32]{}, NDRange{}, 32)
	require.NoError(t, err)
	require.NoError(t, r.Setup(q, sequence[int32](1000)))
	got, err := r.Run(q)
	require.NoError(t, err)
	assert.Equal(t, int32(999), got)
}

func TestGroupPartials(t *testing.T) {
	q := syclbench.NewQueueOrFail(t)
	for _, strategy := range Strategies() {
		r, err := NewGroupPartials[int32](Plus[int32]{}, strategy, 10)
		require.NoError(t, err)
		require.NoError(t, r.Setup(q, sequence[int32](35)))
		partials, err := r.Run(q)
		require.NoError(t, err)
		assert.Equal(t, []int32{45, 145, 245, 30 + 31 + 32 + 33 + 34}, partials)
		assert.True(t, r.Verify(syclbench.StrictTolerance()))
		r.Release()
	}
	assert.False(t, VerifyPartials([]int32{1, 2, 3}, []int32{3}, 2, Plus[int32]{}, syclbench.StrictTolerance()))
}

func TestGroupReduction(t *testing.T) {
	q := syclbench.NewQueueOrFail(t)
	r, err := NewGroupReduction[int32](Plus[int32]{}, 10)
	require.NoError(t, err)
	require.NoError(t, r.Setup(q, sequence[int32](35)))
	partials, err := r.Run(q)
	require.NoError(t, err)
	assert.Equal(t, []int32{45, 145, 245, 30 + 31 + 32 + 33 + 34}, partials)
	assert.True(t, r.Verify(syclbench.StrictTolerance()))
	r.Release()

	// Items past the input hold the identity, not zero.
	m, err := NewGroupReduction[float64](Minimum[float64]{}, 8)
	require.NoError(t, err)
	require.NoError(t, m.Setup(q, []float64{4, 3, 5, 2, 9, 7, 8, 6, 11, 10}))
	partials64, err := m.Run(q)
	require.NoError(t, err)
	assert.Equal(t, []float64{2, 10}, partials64)
	assert.True(t, m.Verify(syclbench.StrictTolerance()))
	m.Release()

	_, err = NewGroupReduction[int32](Plus[int32]{}, 0)
	assert.True(t, syclbench.IsInvalidArgError(err))
}

func TestSubmitBeforeSetup(t *testing.T) {
	q := syclbench.NewQueueOrFail(t)
	seg, err := NewSegmentedReduction[int32](Plus[int32]{}, NDRange{}, 4)
	require.NoError(t, err)
	segAtomic, err := NewSegmentedAtomicReduction[int32](Plus[int32]{}, 4)
	require.NoError(t, err)
	partials, err := NewGroupPartials[int32](Plus[int32]{}, Hierarchical{}, 4)
	require.NoError(t, err)
	group, err := NewGroupReduction[int32](Plus[int32]{}, 4)
	require.NoError(t, err)

	for _, submit := range []func(*syclbench.Queue) []*syclbench.Event{
		seg.Submit, segAtomic.Submit, partials.Submit, group.Submit,
	} {
		require.NotPanics(t, func() { submit(q) })
	}
	syclbench.WaitOrFail(t, q)
	assert.Empty(t, seg.Output())
	assert.Empty(t, group.Partials())
}

func TestVerifyScalar(t *testing.T) {
	tol := syclbench.ReductionTolerance()
	assert.True(t, VerifyScalar([]int8{100, 100, 100}, int8(44), Plus[int8]{}, tol), "integers wrap")
	assert.False(t, VerifyScalar([]int32{1, 2, 3}, 7, Plus[int32]{}, tol))
	assert.True(t, VerifyScalar([]float32{1, 2, 3}, 6.2, Plus[float32]{}, tol))
	assert.False(t, VerifyScalar([]float32{1, 2, 3}, 6.5, Plus[float32]{}, tol))
	assert.True(t, VerifyScalar([]float64{}, 1, Multiplies[float64]{}, tol))
	assert.True(t, VerifyScalar([]float64{-3, 5, 2}, -3, Minimum[float64]{}, tol))

	// 4096 halves cannot be summed serially in half precision.
	halves := ones(4096, float16.Fromfloat32(1))
	assert.Equal(t, float32(2048), SerialReduce(halves, HalfPlus{}).Float32())
	assert.True(t, VerifyScalar(halves, float16.Fromfloat32(4096), HalfPlus{}, tol))
}
