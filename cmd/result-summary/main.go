// result-summary prints a table of the results written by reduction-bench,
// either CSV result files or JSON session logs.
package main

import (
	"cmp"
	"fmt"
	"io"
	"math"
	"os"
	"slices"

	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"k8s.io/klog/v2"

	"github.com/unisa-hpc/sycl-bench-sub000/harness"
)

type options struct {
	unit       string
	sortByTime bool
	failedOnly bool
}

func main() {
	if err := newCommand().Execute(); err != nil {
		klog.Flush()
		os.Exit(1)
	}
}

func newCommand() *cobra.Command {
	opts := &options{}
	cmd := &cobra.Command{
		Use:          "result-summary <results.csv|session.json>...",
		Short:        "Summarize reduction benchmark results",
		Args:         cobra.MinimumNArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, files []string) error {
			var records []harness.ResultRecord
			for _, file := range files {
				r, err := harness.ReadResults(file)
				if err != nil {
					return err
				}
				records = append(records, r...)
			}
			printSummary(cmd.OutOrStdout(), records, opts)
			return nil
		},
	}
	cmd.Flags().StringVar(&opts.unit, "unit", "Bytes/s", "Unit of the throughput column of CSV files")
	cmd.Flags().BoolVar(&opts.sortByTime, "sort-by-time", false, "Sort by minimum run time instead of file order")
	cmd.Flags().BoolVar(&opts.failedOnly, "failed-only", false, "Only show benchmarks that did not pass verification")
	return cmd
}

func printSummary(out io.Writer, records []harness.ResultRecord, opts *options) {
	if opts.failedOnly {
		records = lo.Filter(records, func(r harness.ResultRecord, _ int) bool { return r.Verification() != "PASS" })
	}
	if opts.sortByTime {
		slices.SortStableFunc(records, func(a, b harness.ResultRecord) int {
			return cmp.Compare(minRunTime(a), minRunTime(b))
		})
	}
	rows := lo.Map(records, func(r harness.ResultRecord, _ int) harness.SummaryRow { return r.SummaryRow(opts.unit) })
	fmt.Fprintln(out, harness.RenderSummary(rows))

	counts := lo.CountValuesBy(rows, func(r harness.SummaryRow) string { return r.Verification })
	fmt.Fprintf(out, "%d benchmarks: %d PASS, %d FAIL, %d N/A, %d ERROR\n",
		len(rows), counts["PASS"], counts["FAIL"], counts["N/A"], counts["ERROR"])
}

// minRunTime is +Inf for records without a run time, sorting them last.
func minRunTime(r harness.ResultRecord) float64 {
	if v, ok := r.Float(harness.RunTime + "-min"); ok {
		return v
	}
	return math.Inf(1)
}
