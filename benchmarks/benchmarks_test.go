package benchmarks

import (
	"slices"
	"strings"
	"testing"

	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	syclbench "github.com/unisa-hpc/sycl-bench-sub000"
	"github.com/unisa-hpc/sycl-bench-sub000/harness"
)

func smallArgs(t *testing.T, consumer harness.ResultConsumer) *harness.Args {
	args := harness.DefaultArgs(syclbench.NewQueueOrFail(t))
	args.ProblemSize = 1000
	args.LocalSize = 64
	args.NumRuns = 2
	args.Consumer = consumer
	return args
}

func entryNames(entries []Entry) []string {
	return lo.Map(entries, func(e Entry, _ int) string { return e.Name })
}

func TestNames(t *testing.T) {
	all, err := Family(FamilyAll)
	require.NoError(t, err)
	names := entryNames(all)
	assert.Len(t, lo.Uniq(names), len(names), "names are unique")
	for _, want := range []string{
		"Pattern_Reduction_NDRange_int32",
		"Pattern_Reduction_Hierarchical_fp64",
		"Pattern_Reduction_Hierarchical_fp16",
		"KernelReduction_int64_plus",
		"KernelReduction_fp32_multiplies",
		"Pattern_SegmentedReduction_NDRange_int16",
		"Pattern_SegmentedReduction_Hierarchical_fp32",
		"SegmentedReductionAtomic_int32",
		"ReductionAtomic_fp64",
		"ReductionLocalMem_int32",
		"ReductionLocalMemNoAtomic_int64",
		"ReduceGroupAlgorithmNoAtomic_fp32",
	} {
		assert.Contains(t, names, want)
	}

	args := smallArgs(t, harness.NewSummaryConsumer())
	for _, e := range all {
		assert.Equal(t, e.Name, e.New(args).Name(), "constructed name of %s", e.Name)
		assert.Equal(t, strings.Contains(e.Name, "_NDRange_"), e.NDRange, e.Name)
	}
	assert.Equal(t, []string{"int32", "int64", "fp32", "fp64", "fp16"}, Types(Reductions()))
	assert.Equal(t, []string{FamilyAtomic, FamilyReduction, FamilySegmented}, Families())
}

func TestUnknownFamily(t *testing.T) {
	_, err := Family("scan")
	assert.True(t, syclbench.IsInvalidArgError(err))
}

func TestSelect(t *testing.T) {
	args := smallArgs(t, harness.NewSummaryConsumer())
	args.NDRangeKernels = false
	selected := Select(Reductions(), args)
	assert.NotEmpty(t, selected)
	for _, e := range selected {
		assert.False(t, e.NDRange, e.Name)
	}

	args.NDRangeKernels = true
	args.Types = []string{"int16"}
	assert.Empty(t, Select(Reductions(), args))
	assert.Equal(t, []string{
		"Pattern_SegmentedReduction_NDRange_int16",
		"Pattern_SegmentedReduction_Hierarchical_int16",
		"SegmentedReductionAtomic_int16",
	}, entryNames(Select(Segmented(), args)))
}

func TestEveryBenchmarkVerifies(t *testing.T) {
	for _, family := range Families() {
		t.Run(family, func(t *testing.T) {
			summary := harness.NewSummaryConsumer()
			args := smallArgs(t, summary)
			app := harness.NewApp(args, func() []harness.Hook { return []harness.Hook{harness.NewMemoryHook()} })
			entries, err := Family(family)
			require.NoError(t, err)

			var seen []string
			failed := Run(app, entries, func(e Entry) { seen = append(seen, e.Name) })
			assert.Zero(t, failed)
			assert.Equal(t, entryNames(entries), seen)
			require.Len(t, summary.Rows(), len(entries))
			for _, row := range summary.Rows() {
				assert.Equal(t, "PASS", row.Verification, row.Name)
			}
			allocated, _ := args.Queue.Pool().GetStats()
			assert.Zero(t, allocated, "buffers released")
		})
	}
}

func TestSingleItemGroups(t *testing.T) {
	summary := harness.NewSummaryConsumer()
	args := smallArgs(t, summary)
	args.LocalSize = 1
	app := harness.NewApp(args, nil)

	// A multi-pass reduction cannot shrink with groups of one item.
	reductions := Reductions()
	assert.Equal(t, len(reductions), Run(app, reductions, nil))
	for _, row := range summary.Rows() {
		assert.Equal(t, "ERROR", row.Verification, row.Name)
	}

	// Single pass reductions still run.
	summary = harness.NewSummaryConsumer()
	args.Consumer = summary
	app = harness.NewApp(args, nil)
	singlePass := slices.Concat(Segmented(), Atomics())
	assert.Zero(t, Run(app, singlePass, nil))
	require.Len(t, summary.Rows(), len(singlePass))
	for _, row := range summary.Rows() {
		assert.Equal(t, "PASS", row.Verification, row.Name)
	}
}

func TestBenchLifecycle(t *testing.T) {
	q := syclbench.NewQueueOrFail(t)
	args := smallArgs(t, harness.NewSummaryConsumer())
	args.Queue = q
	b := Reductions()[0].New(args)

	var events []*syclbench.Event
	assert.True(t, syclbench.IsInvalidArgError(b.Run(q, &events)))
	require.NoError(t, b.Setup(q))
	require.NoError(t, b.Run(q, &events))
	syclbench.WaitOrFail(t, q)
	assert.NotEmpty(t, events)
	assert.True(t, b.(harness.Verifier).Verify(harness.DefaultVerification()))
	assert.Equal(t, float64(1000*4), b.(harness.ThroughputReporter).ThroughputMetric().Metric)
	b.(harness.Releaser).Release()
	assert.False(t, b.(harness.Verifier).Verify(harness.DefaultVerification()))

	args.LocalSize = 0
	assert.True(t, syclbench.IsInvalidArgError(Reductions()[0].New(args).Setup(q)))
}

func TestInputs(t *testing.T) {
	assert.Equal(t, []int32{0, 1, 2, 3}, Index[int32](4))
	assert.Equal(t, []float64{1, 1, 1}, Ones[float64](3))
	h := halfOnes(2)
	assert.Equal(t, float32(1), h[1].Float32())
}
