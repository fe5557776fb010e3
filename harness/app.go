package harness

import (
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

// ErrDuplicateBenchmark is returned when a benchmark name was already run by
// the same App.
var ErrDuplicateBenchmark = errors.New("duplicate benchmark name")

// App runs a sequence of benchmarks sharing the same arguments. A failing
// benchmark is logged and counted; the following ones still run.
type App struct {
	args     *Args
	hooks    func() []Hook
	names    map[string]bool
	failures int
	ran      int
}

// NewApp returns an App running benchmarks with args. newHooks, if not nil,
// is called for every benchmark to create fresh hooks.
func NewApp(args *Args, newHooks func() []Hook) *App {
	return &App{
		args:  args,
		hooks: newHooks,
		names: make(map[string]bool),
	}
}

// Args returns the arguments shared by the benchmarks.
func (a *App) Args() *Args { return a.args }

// ShouldRunNDRangeKernels reports whether NDRange benchmark variants are
// enabled.
func (a *App) ShouldRunNDRangeKernels() bool { return a.args.NDRangeKernels }

// Run executes the benchmark created by ctor, returning its error after
// logging it.
func (a *App) Run(ctor Constructor) error {
	name := ctor(a.args).Name()
	if a.names[name] {
		klog.Errorf("Benchmark with name %q has already been run", name)
		a.failures++
		return errors.Wrap(ErrDuplicateBenchmark, name)
	}
	a.names[name] = true

	mgr := NewManager(a.args)
	if a.hooks != nil {
		for _, h := range a.hooks() {
			mgr.AddHook(h)
		}
	}
	a.ran++
	if err := mgr.Run(ctor); err != nil {
		klog.Errorf("Error: %+v", err)
		a.failures++
		return err
	}
	return nil
}

// Ran returns the number of benchmarks started.
func (a *App) Ran() int { return a.ran }

// Failures returns the number of benchmarks that could not complete.
func (a *App) Failures() int { return a.failures }
