package benchmarks

import (
	"fmt"
	"slices"

	"github.com/samber/lo"

	syclbench "github.com/unisa-hpc/sycl-bench-sub000"
	"github.com/unisa-hpc/sycl-bench-sub000/harness"
)

// Family names accepted by Family.
const (
	FamilyReduction = "reduction"
	FamilySegmented = "segmented"
	FamilyAtomic    = "atomic"
	FamilyAll       = "all"
)

var families = map[string]func() []Entry{
	FamilyReduction: Reductions,
	FamilySegmented: Segmented,
	FamilyAtomic:    Atomics,
}

// Families returns the family names, without FamilyAll.
func Families() []string {
	names := lo.Keys(families)
	slices.Sort(names)
	return names
}

// Family returns the benchmarks of the named family in run order. FamilyAll
// returns reduction, segmented and atomic benchmarks in that order.
func Family(name string) ([]Entry, error) {
	if name == FamilyAll {
		return slices.Concat(Reductions(), Segmented(), Atomics()), nil
	}
	f, ok := families[name]
	if !ok {
		return nil, syclbench.NewInvalidArgError("Family", fmt.Sprintf("unknown benchmark family %q, want one of %v or %q", name, Families(), FamilyAll))
	}
	return f(), nil
}

// Select keeps the entries enabled by args.
func Select(entries []Entry, args *harness.Args) []Entry {
	return lo.Filter(entries, func(e Entry, _ int) bool { return e.Selected(args) })
}

// Types returns every element type name used by the entries, in first use
// order.
func Types(entries []Entry) []string {
	return lo.Uniq(lo.Map(entries, func(e Entry, _ int) string { return e.Type }))
}

// Run runs the selected entries on app in order. The returned count is the
// number of benchmarks that failed; failures do not stop the sequence.
func Run(app *harness.App, entries []Entry, progress func(Entry)) int {
	failed := 0
	for _, e := range Select(entries, app.Args()) {
		if err := app.Run(e.New); err != nil {
			failed++
		}
		if progress != nil {
			progress(e)
		}
	}
	return failed
}
