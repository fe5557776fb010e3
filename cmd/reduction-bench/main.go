// reduction-bench runs the reduction benchmarks and reports their timings.
//
//	reduction-bench all --size 1048576 --local 256 --output results.csv
package main

import (
	goflag "flag"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/janpfeifer/must"
	"github.com/muesli/termenv"
	"github.com/pkg/errors"
	"github.com/samber/lo"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"k8s.io/klog/v2"

	syclbench "github.com/unisa-hpc/sycl-bench-sub000"
	"github.com/unisa-hpc/sycl-bench-sub000/benchmarks"
	"github.com/unisa-hpc/sycl-bench-sub000/harness"
)

type options struct {
	size           int
	local          int
	numRuns        int
	device         string
	output         string
	noVerification bool
	noNDRange      bool
	types          []string
	progress       bool
	noColor        bool
	summary        bool
	perfCounters   bool
	flushCache     bool
}

func main() {
	klog.InitFlags(nil)
	pflag.CommandLine.AddGoFlagSet(goflag.CommandLine)
	if err := newRootCommand().Execute(); err != nil {
		klog.Flush()
		os.Exit(1)
	}
	klog.Flush()
}

func newRootCommand() *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:   "reduction-bench",
		Short: "Tree reduction benchmarks on the host data-parallel runtime",
		Long: "Runs multi-pass tree reductions, segmented reductions and atomic reductions for\n" +
			"several element types and reports run, kernel, submit and system times.",
		SilenceUsage: true,
		Version:      versionString(),
	}
	flags := root.PersistentFlags()
	flags.IntVar(&opts.size, "size", syclbench.DefaultProblemSize, "Problem size: number of elements reduced")
	flags.IntVar(&opts.local, "local", syclbench.DefaultLocalSize, "Work-group size, also the segment size of segmented reductions")
	flags.IntVar(&opts.numRuns, "num-runs", syclbench.DefaultNumRuns, "Number of runs of every benchmark")
	flags.StringVar(&opts.device, "device", "default", "Device type: default or cpu")
	flags.StringVar(&opts.output, "output", "stdio", "Where to write results: stdio, a .csv file or a .json session log")
	flags.BoolVar(&opts.noVerification, "no-verification", false, "Do not verify results")
	flags.BoolVar(&opts.noNDRange, "no-ndrange-kernels", false, "Skip the NDRange variants")
	flags.StringSliceVar(&opts.types, "types", nil, "Element types to run, comma separated (default all)")
	flags.BoolVar(&opts.progress, "progress", false, "Show a progress bar on stderr")
	flags.BoolVar(&opts.noColor, "no-color", false, "Disable colors in the summary")
	flags.BoolVar(&opts.summary, "summary", true, "Print a summary table at the end")
	flags.BoolVar(&opts.flushCache, "flush-cache", false, "Evict CPU caches between setup and the timed kernels")
	flags.BoolVar(&opts.perfCounters, "perf-counters", false, "Report hardware counters (Linux, needs perf_event access)")
	must.M(root.MarkPersistentFlagFilename("output", "csv", "json"))
	root.PersistentFlags().AddFlagSet(pflag.CommandLine)

	for _, family := range benchmarks.Families() {
		root.AddCommand(newFamilyCommand(family, opts))
	}
	root.AddCommand(newFamilyCommand(benchmarks.FamilyAll, opts))
	root.AddCommand(newListCommand(opts))
	return root
}

func newFamilyCommand(family string, opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   family,
		Short: fmt.Sprintf("Run the %s benchmarks", family),
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(family, opts)
		},
	}
}

func newListCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "list [family]",
		Short: "List the benchmarks selected by the flags",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, positional []string) error {
			family := benchmarks.FamilyAll
			if len(positional) == 1 {
				family = positional[0]
			}
			entries, err := benchmarks.Family(family)
			if err != nil {
				return err
			}
			if err := checkTypes(opts.types, entries); err != nil {
				return err
			}
			args := &harness.Args{NDRangeKernels: !opts.noNDRange, Types: opts.types}
			for _, e := range benchmarks.Select(entries, args) {
				fmt.Fprintln(cmd.OutOrStdout(), e.Name)
			}
			return nil
		},
	}
}

func run(family string, opts *options) error {
	if opts.noColor {
		lipgloss.SetColorProfile(termenv.Ascii)
	}
	entries, err := benchmarks.Family(family)
	if err != nil {
		return err
	}
	if err := checkTypes(opts.types, entries); err != nil {
		return err
	}

	device, err := syclbench.SelectDevice(opts.device)
	if syclbench.IsDeviceError(err) {
		return errors.WithMessagef(err, "device %q is not available on this host, use --device cpu", opts.device)
	}
	if err != nil {
		return errors.WithMessagef(err, "selecting device %q", opts.device)
	}
	q := syclbench.NewQueue(device)
	defer q.Close()

	summary := harness.NewSummaryConsumer()
	output, err := newConsumer(opts.output, family)
	if err != nil {
		return err
	}
	args := &harness.Args{
		ProblemSize:    opts.size,
		LocalSize:      opts.local,
		NumRuns:        opts.numRuns,
		Queue:          q,
		Verification:   harness.DefaultVerification(),
		NDRangeKernels: !opts.noNDRange,
		Types:          opts.types,
		Consumer:       harness.Tee{output, summary},
	}
	args.Verification.Enabled = !opts.noVerification
	if err := args.Validate(); err != nil {
		return err
	}

	selected := benchmarks.Select(entries, args)
	klog.V(1).Infof("Running %d %s benchmarks on %s, %s elements per reduction",
		len(selected), family, device.Name, humanize.Comma(int64(opts.size)))

	var progress func(benchmarks.Entry)
	if opts.progress {
		bar := progressbar.NewOptions(len(selected),
			progressbar.OptionSetDescription(family),
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionSetTheme(progressbar.ThemeASCII),
			progressbar.OptionShowCount(),
			progressbar.OptionShowIts(),
			progressbar.OptionSetItsString("benchmarks"),
			progressbar.OptionClearOnFinish(),
		)
		progress = func(benchmarks.Entry) { _ = bar.Add(1) }
		defer func() { _ = bar.Finish() }()
	}

	app := harness.NewApp(args, func() []harness.Hook {
		hooks := []harness.Hook{harness.NewMemoryHook()}
		if opts.flushCache {
			hooks = append(hooks, harness.NewCacheFlushHook(harness.DefaultFlushBytes))
		}
		if opts.perfCounters {
			hooks = append(hooks, harness.NewPerfHook())
		}
		return hooks
	})
	failed := benchmarks.Run(app, selected, progress)

	if opts.summary {
		fmt.Println(summary.Render())
	}
	if session, ok := output.(*harness.SessionLogConsumer); ok {
		klog.Infof("Session %s written to %s", session.SessionID(), session.Path())
	}
	if failed > 0 {
		return errors.Errorf("%d of %d benchmarks failed", failed, len(selected))
	}
	return nil
}

// newConsumer returns the consumer for the --output flag value.
func newConsumer(output, family string) (harness.ResultConsumer, error) {
	switch {
	case output == "" || output == "stdio":
		return harness.NewStdioConsumer(nil), nil
	case strings.HasSuffix(output, ".csv"):
		return harness.NewCSVConsumer(output), nil
	case strings.HasSuffix(output, ".json"):
		return harness.NewSessionLogConsumer(output, family)
	default:
		if info, err := os.Stat(output); err == nil && info.IsDir() {
			return harness.NewSessionLogConsumer(output, family)
		}
		return nil, syclbench.NewInvalidArgError("output", fmt.Sprintf("unsupported output %q, want stdio, *.csv, *.json or a directory", output))
	}
}

// checkTypes rejects element type names no entry uses.
func checkTypes(types []string, entries []benchmarks.Entry) error {
	known := benchmarks.Types(entries)
	if unknown := lo.Without(types, known...); len(unknown) > 0 {
		return syclbench.NewInvalidArgError("types", fmt.Sprintf("unknown element types %v, want some of %v", unknown, known))
	}
	return nil
}

func versionString() string {
	version, sum := syclbench.Version()
	if sum == "" {
		return version
	}
	return version + " (" + sum + ")"
}
