package syclbench

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMallocAccounting(t *testing.T) {
	q := NewQueueOrFail(t)
	pool := q.Pool()

	a, err := Malloc[float32](q, 256)
	require.NoError(t, err)
	b := MallocFromOrFail(t, q, []int64{1, 2, 3})
	assert.Equal(t, []int64{1, 2, 3}, b.Data())
	assert.Equal(t, 256, a.Len())
	assert.Equal(t, 1024, a.Bytes())

	allocated, peak := pool.GetStats()
	assert.Equal(t, int64(1024+24), allocated)
	assert.Equal(t, allocated, peak)

	require.NoError(t, a.Release())
	allocated, peak = pool.GetStats()
	assert.Equal(t, int64(24), allocated)
	assert.Equal(t, int64(1048), peak)
	assert.True(t, strings.Contains(pool.String(), "peak=1.0 KiB"), pool.String())

	pool.ResetPeak()
	_, peak = pool.GetStats()
	assert.Equal(t, int64(24), peak)

	assert.ErrorIs(t, a.Release(), ErrDoubleFree)
	require.NoError(t, b.Release())

	var nilBuf *Buffer[int]
	assert.NoError(t, nilBuf.Release())
}

func TestMallocInvalidSize(t *testing.T) {
	q := NewQueueOrFail(t)
	_, err := Malloc[int](q, -1)
	assert.True(t, IsInvalidArgError(err))

	empty, err := Malloc[int](q, 0)
	require.NoError(t, err)
	assert.Zero(t, empty.Len())
}
