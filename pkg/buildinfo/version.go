// Package buildinfo holds the version of the wahl binary.
//
// Variables are set via ldflags during build:
//
//	go build -ldflags "-X github.com/jereyes4/Wahl-Chains/pkg/buildinfo.Version=v1.0.0 \
//	    -X github.com/jereyes4/Wahl-Chains/pkg/buildinfo.Commit=$(git rev-parse HEAD) \
//	    -X github.com/jereyes4/Wahl-Chains/pkg/buildinfo.Date=$(date -u +%Y-%m-%dT%H:%M:%SZ)"
//
// Binaries installed with go install get their version from the module
// build information instead.
package buildinfo

import (
	"fmt"
	"runtime/debug"
)

var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// Resolved returns Version, falling back to the main module version recorded
// by the go tool when no ldflags were given.
func Resolved() string {
	if Version != "dev" {
		return Version
	}
	if bi, ok := debug.ReadBuildInfo(); ok && bi.Main.Version != "" && bi.Main.Version != "(devel)" {
		return bi.Main.Version
	}
	return Version
}

// String returns the formatted build information.
func String() string {
	return fmt.Sprintf("version: %s\ncommit: %s\nbuilt: %s", Resolved(), Commit, Date)
}

// Template returns the version template for cobra.
func Template() string {
	return fmt.Sprintf("{{.Name}} version %s\ncommit: %s\nbuilt: %s\n", Resolved(), Commit, Date)
}
