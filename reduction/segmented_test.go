package reduction

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	syclbench "github.com/unisa-hpc/sycl-bench-sub000"
)

func TestSegmentedSingleSegment(t *testing.T) {
	q := syclbench.NewQueueOrFail(t)
	input := sequence[int32](20)
	for _, strategy := range Strategies() {
		r, err := NewSegmentedReduction[int32](Plus[int32]{}, strategy, 20)
		require.NoError(t, err)
		require.NoError(t, r.Setup(q, input))
		out, err := r.Run(q)
		require.NoError(t, err)
		assert.Equal(t, int32(190), out[0])
		assert.Equal(t, input[1:], out[1:], "non-head slots pass through")
		assert.True(t, r.Verify(syclbench.StrictTolerance()))
		r.Release()
	}

	a, err := NewSegmentedAtomicReduction[int32](Plus[int32]{}, 20)
	require.NoError(t, err)
	require.NoError(t, a.Setup(q, input))
	out, err := a.Run(q)
	require.NoError(t, err)
	assert.Equal(t, int32(190), out[0])
	assert.Equal(t, make([]int32, 19), out[1:], "non-head slots hold the identity")
	assert.True(t, a.Verify(syclbench.StrictTolerance()))
	a.Release()
}

func TestSegmentIsolation(t *testing.T) {
	q := syclbench.NewQueueOrFail(t)
	const seg = 16
	const n = 8 * seg
	clean := sequence[int64](n)
	corrupted := sequence[int64](n)
	for i := 3 * seg; i < 4*seg; i++ {
		corrupted[i] = -1_000_000
	}

	for _, strategy := range Strategies() {
		r, err := NewSegmentedReduction[int64](Plus[int64]{}, strategy, seg)
		require.NoError(t, err)

		require.NoError(t, r.Setup(q, clean))
		want, err := r.Run(q)
		require.NoError(t, err)
		want = append([]int64(nil), want...)

		require.NoError(t, r.Setup(q, corrupted))
		got, err := r.Run(q)
		require.NoError(t, err)
		for s := 0; s < n/seg; s++ {
			if s == 3 {
				assert.NotEqual(t, want[s*seg], got[s*seg])
				continue
			}
			assert.Equal(t, want[s*seg], got[s*seg], "%s segment %d", strategy.Name(), s)
		}
		assert.True(t, r.Verify(syclbench.StrictTolerance()))
		r.Release()
	}
}

func TestSegmentedPartialSegment(t *testing.T) {
	q := syclbench.NewQueueOrFail(t)
	input := sequence[float32](50)
	r, err := NewSegmentedReduction[float32](Maximum[float32]{}, Hierarchical{}, 12)
	require.NoError(t, err)
	require.NoError(t, r.Setup(q, input))
	out, err := r.Run(q)
	require.NoError(t, err)
	assert.Equal(t, []float32{11, 23, 35, 47, 49}, []float32{out[0], out[12], out[24], out[36], out[48]})
	assert.True(t, r.Verify(syclbench.ReductionTolerance()))
	r.Release()
}

func TestSegmentedVariantsAgree(t *testing.T) {
	q := syclbench.NewQueueOrFail(t)
	const seg = 64
	ints := sequence[int16](3072)
	floats := sequence[float64](3072)

	tree, err := NewSegmentedReduction[int16](Plus[int16]{}, NDRange{}, seg)
	require.NoError(t, err)
	atomic, err := NewSegmentedAtomicReduction[int16](Plus[int16]{}, seg)
	require.NoError(t, err)
	require.NoError(t, tree.Setup(q, ints))
	require.NoError(t, atomic.Setup(q, ints))
	treeOut, err := tree.Run(q)
	require.NoError(t, err)
	atomicOut, err := atomic.Run(q)
	require.NoError(t, err)
	for s := 0; s < len(ints); s += seg {
		// Wrapping int16 sums still agree exactly.
		assert.Equal(t, treeOut[s], atomicOut[s], "segment %d", s/seg)
	}
	assert.True(t, tree.Verify(syclbench.StrictTolerance()))
	assert.True(t, atomic.Verify(syclbench.StrictTolerance()))
	tree.Release()
	atomic.Release()

	ftree, err := NewSegmentedReduction[float64](Plus[float64]{}, Hierarchical{}, seg)
	require.NoError(t, err)
	fatomic, err := NewSegmentedAtomicReduction[float64](Plus[float64]{}, seg)
	require.NoError(t, err)
	require.NoError(t, ftree.Setup(q, floats))
	require.NoError(t, fatomic.Setup(q, floats))
	ftreeOut, err := ftree.Run(q)
	require.NoError(t, err)
	fatomicOut, err := fatomic.Run(q)
	require.NoError(t, err)
	for s := 0; s < len(floats); s += seg {
		assert.True(t, syclbench.NearEqual(ftreeOut[s], fatomicOut[s], syclbench.ReductionTolerance()))
	}
	ftree.Release()
	fatomic.Release()
}

func TestSegmentedRepeatedRuns(t *testing.T) {
	q := syclbench.NewQueueOrFail(t)
	r, err := NewSegmentedReduction[int32](Plus[int32]{}, NDRange{}, 8)
	require.NoError(t, err)
	require.NoError(t, r.Setup(q, sequence[int32](64)))
	defer r.Release()
	for run := 0; run < 3; run++ {
		r.Submit(q)
	}
	syclbench.WaitOrFail(t, q)
	assert.True(t, r.Verify(syclbench.StrictTolerance()))
}

func TestVerifySegmentedRejects(t *testing.T) {
	op := Plus[int32]{}
	tol := syclbench.StrictTolerance()
	in := []int32{1, 2, 3, 4}
	assert.True(t, VerifySegmented(in, []int32{3, 2, 7, 4}, 2, op, tol, true))
	assert.False(t, VerifySegmented(in, []int32{3, 2, 8, 4}, 2, op, tol, true))
	assert.False(t, VerifySegmented(in, []int32{3, 0, 7, 4}, 2, op, tol, true))
	assert.True(t, VerifySegmented(in, []int32{3, 0, 7, 0}, 2, op, tol, false))
	assert.False(t, VerifySegmented(in, []int32{3, 2, 7}, 2, op, tol, true))
	assert.False(t, VerifySegmented(in, in, 0, op, tol, true))

	// Pass-through slots are compared exactly.
	big := []int64{1, 1<<53 + 1}
	assert.True(t, VerifySegmented(big, []int64{1<<53 + 2, 1<<53 + 1}, 2, Plus[int64]{}, tol, true))
	assert.False(t, VerifySegmented(big, []int64{1<<53 + 2, 1 << 53}, 2, Plus[int64]{}, tol, true))
}
