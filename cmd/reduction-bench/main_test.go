package main

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	syclbench "github.com/unisa-hpc/sycl-bench-sub000"
	"github.com/unisa-hpc/sycl-bench-sub000/benchmarks"
	"github.com/unisa-hpc/sycl-bench-sub000/harness"
)

func TestNewConsumer(t *testing.T) {
	dir := t.TempDir()

	c, err := newConsumer("stdio", "all")
	require.NoError(t, err)
	assert.IsType(t, &harness.StdioConsumer{}, c)

	c, err = newConsumer(filepath.Join(dir, "out.csv"), "all")
	require.NoError(t, err)
	assert.IsType(t, &harness.CSVConsumer{}, c)

	c, err = newConsumer(filepath.Join(dir, "out.json"), "all")
	require.NoError(t, err)
	assert.IsType(t, &harness.SessionLogConsumer{}, c)

	c, err = newConsumer(dir, "atomic")
	require.NoError(t, err)
	session := c.(*harness.SessionLogConsumer)
	assert.True(t, strings.HasPrefix(filepath.Base(session.Path()), "atomic_"))

	_, err = newConsumer(filepath.Join(dir, "out.xml"), "all")
	assert.True(t, syclbench.IsInvalidArgError(err))
}

func TestCheckTypes(t *testing.T) {
	entries := benchmarks.Atomics()
	assert.NoError(t, checkTypes(nil, entries))
	assert.NoError(t, checkTypes([]string{"int32", "fp64"}, entries))
	assert.True(t, syclbench.IsInvalidArgError(checkTypes([]string{"int16"}, entries)))
}

func TestListCommand(t *testing.T) {
	root := newRootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"list", "segmented", "--types", "int32", "--no-ndrange-kernels"})
	require.NoError(t, root.Execute())
	assert.Equal(t, "Pattern_SegmentedReduction_Hierarchical_int32\nSegmentedReductionAtomic_int32\n", out.String())
}

func TestRunCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.csv")
	root := newRootCommand()
	root.SetArgs([]string{"atomic", "--size", "512", "--local", "32", "--num-runs", "1",
		"--types", "int64", "--output", path, "--summary=false"})
	require.NoError(t, root.Execute())
	assert.FileExists(t, path)

	root = newRootCommand()
	root.SetArgs([]string{"reduction", "--types", "int8"})
	assert.Error(t, root.Execute())

	root = newRootCommand()
	root.SetArgs([]string{"atomic", "--device", "gpu", "--summary=false"})
	err := root.Execute()
	assert.True(t, syclbench.IsDeviceError(err))
	assert.Contains(t, err.Error(), "--device cpu")
}
