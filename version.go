package syclbench

import (
	"fmt"
	"runtime/debug"
)

const root = "github.com/unisa-hpc/sycl-bench-sub000"

// RuntimeName identifies the runtime implementation in benchmark results.
const RuntimeName = "syclbench-go"

// Version returns the version of the module and its checksum. The returned
// values are only valid in binaries built with module support.
//
// The exact version format returned by Version may change in future.
func Version() (version, sum string) {
	b, ok := debug.ReadBuildInfo()
	if !ok {
		return "", ""
	}
	if b.Main.Path == root {
		return b.Main.Version, b.Main.Sum
	}
	for _, m := range b.Deps {
		if m.Path == root {
			if m.Replace != nil {
				switch {
				case m.Replace.Version != "" && m.Replace.Path != "":
					return fmt.Sprintf("%s=>%s %s", m.Version, m.Replace.Path, m.Replace.Version), m.Replace.Sum
				case m.Replace.Version != "":
					return fmt.Sprintf("%s=>%s", m.Version, m.Replace.Version), m.Replace.Sum
				case m.Replace.Path != "":
					return fmt.Sprintf("%s=>%s", m.Version, m.Replace.Path), m.Replace.Sum
				default:
					return m.Version + "*", m.Sum + "*"
				}
			}
			return m.Version, m.Sum
		}
	}
	return "", ""
}

// RuntimeImplementation returns the runtime name with its version when known.
func RuntimeImplementation() string {
	version, _ := Version()
	if version == "" || version == "(devel)" {
		return RuntimeName
	}
	return RuntimeName + " " + version
}
