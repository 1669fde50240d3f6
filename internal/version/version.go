// Package version holds build metadata injected via -ldflags.
package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
)

// Build-time variables, e.g.
//
//	go build -ldflags "-X github.com/hupe1980/schtree/internal/version.Version=v1.2.0"
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Info returns the version string, falling back to the module version
// recorded by `go install` when no ldflags were given.
func Info() string {
	if Version != "dev" {
		return Version
	}
	if bi, ok := debug.ReadBuildInfo(); ok && bi.Main.Version != "" && bi.Main.Version != "(devel)" {
		return bi.Main.Version
	}
	return Version
}

// Full returns the version with the short commit hash when known.
func Full() string {
	info := Info()
	if len(GitCommit) >= 7 && GitCommit != "unknown" {
		info += fmt.Sprintf(" (%s)", GitCommit[:7])
	}
	return info
}

// GoVersion returns the toolchain the binary was built with.
func GoVersion() string {
	return runtime.Version()
}
