// Command compare compares the results of a reduction-bench run against a
// baseline run and reports regressions.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	lgtable "github.com/charmbracelet/lipgloss/table"
	"github.com/pkg/errors"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"k8s.io/klog/v2"

	"github.com/unisa-hpc/sycl-bench-sub000/harness"
)

// Comparison of one benchmark present in the baseline.
type Comparison struct {
	Name     string
	Status   string // "PASS", "FAIL", "SLOWER" or "FASTER"
	Baseline float64
	Current  float64
	Speedup  float64
	Message  string
}

type options struct {
	metric         string
	regression     float64
	improvement    float64
	failOnSlowdown bool
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
		Use:          "compare <baseline> <current>",
		Short:        "Compare benchmark results against a baseline",
		Args:         cobra.ExactArgs(2),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, files []string) error {
			baseline, err := harness.ReadResults(files[0])
			if err != nil {
				return errors.WithMessage(err, "loading baseline")
			}
			current, err := harness.ReadResults(files[1])
			if err != nil {
				return errors.WithMessage(err, "loading current results")
			}
			comparisons := compareResults(baseline, current, opts)
			printSummary(cmd.OutOrStdout(), comparisons, opts.metric)

			counts := lo.CountValuesBy(comparisons, func(c Comparison) string { return c.Status })
			if counts["FAIL"] > 0 {
				return errors.Errorf("%d benchmarks failed", counts["FAIL"])
			}
			if opts.failOnSlowdown && counts["SLOWER"] > 0 {
				return errors.Errorf("%d benchmarks regressed", counts["SLOWER"])
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&opts.metric, "metric", harness.RunTime+"-min", "Timing result compared")
	cmd.Flags().Float64Var(&opts.regression, "perf-regress", 1.1, "Regression threshold (1.1 = 10% slower)")
	cmd.Flags().Float64Var(&opts.improvement, "perf-improve", 1.2, "Improvement threshold (1.2 = 20% faster)")
	cmd.Flags().BoolVar(&opts.failOnSlowdown, "fail-on-regression", false, "Exit with an error when a benchmark regressed")
	return cmd
}

func compareResults(baseline, current []harness.ResultRecord, opts *options) []Comparison {
	currentByName := lo.KeyBy(current, func(r harness.ResultRecord) string { return r.Name })
	comparisons := make([]Comparison, 0, len(baseline))
	for _, base := range baseline {
		comp := Comparison{Name: base.Name}
		curr, ok := currentByName[base.Name]
		switch {
		case !ok:
			comp.Status = "FAIL"
			comp.Message = "missing in current results"
		case curr.Verification() == "FAIL" || curr.Verification() == "ERROR":
			comp.Status = "FAIL"
			comp.Message = "verification " + curr.Verification()
		}
		if comp.Status != "" {
			comparisons = append(comparisons, comp)
			continue
		}

		var okBase, okCurr bool
		comp.Baseline, okBase = base.Float(opts.metric)
		comp.Current, okCurr = curr.Float(opts.metric)
		if !okBase || !okCurr || comp.Current <= 0 {
			comp.Status = "PASS"
			comp.Message = "no " + opts.metric + " to compare"
			comparisons = append(comparisons, comp)
			continue
		}
		comp.Speedup = comp.Baseline / comp.Current
		switch {
		case comp.Speedup < 1/opts.regression:
			comp.Status = "SLOWER"
			comp.Message = fmt.Sprintf("%.2fx slower", 1/comp.Speedup)
		case comp.Speedup > opts.improvement:
			comp.Status = "FASTER"
			comp.Message = fmt.Sprintf("%.2fx faster", comp.Speedup)
		default:
			comp.Status = "PASS"
		}
		comparisons = append(comparisons, comp)
	}
	return comparisons
}

func printSummary(out io.Writer, comparisons []Comparison, metric string) {
	counts := lo.CountValuesBy(comparisons, func(c Comparison) string { return c.Status })
	fmt.Fprintf(out, "Total benchmarks: %d\n", len(comparisons))
	for _, status := range []string{"PASS", "FAIL", "SLOWER", "FASTER"} {
		fmt.Fprintf(out, "  %-7s %d\n", status+":", counts[status])
	}

	style := lipgloss.NewStyle().Padding(0, 1)
	table := lgtable.New().
		Border(lipgloss.RoundedBorder()).
		Headers("Benchmark", "Status", "Baseline "+metric, "Current "+metric, "Speedup", "Note").
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == lgtable.HeaderRow {
				return style.Bold(true)
			}
			return style
		})
	for _, c := range comparisons {
		table.Row(c.Name, c.Status, formatTime(c.Baseline), formatTime(c.Current), formatSpeedup(c.Speedup), c.Message)
	}
	fmt.Fprintln(out, table.String())
}

func formatTime(seconds float64) string {
	if seconds == 0 {
		return "-"
	}
	return harness.FormatSeconds(fmt.Sprint(seconds))
}

func formatSpeedup(s float64) string {
	if s == 0 {
		return "-"
	}
	return fmt.Sprintf("%.2fx", s)
}
