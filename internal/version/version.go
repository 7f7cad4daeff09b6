// Package version reports the build version, stamped in through ldflags by
// release builds and recovered from module build info otherwise.
package version

import (
	"fmt"
	"runtime/debug"
)

// Overridden at build time, for example
//
//	go build -ldflags "-X ...internal/version.Version=v1.2.0"
var (
	Version   = "dev"
	GitCommit = "unknown"
)

// GetVersion returns the version string for the application.
func GetVersion() string {
	if Version != "dev" {
		return Version
	}
	// go install stamps the main module with its version
	if info, ok := debug.ReadBuildInfo(); ok {
		if info.Main.Version != "(devel)" && info.Main.Version != "" {
			return info.Main.Version
		}
	}
	return "dev"
}

// GetFullVersion appends the commit hash when one was stamped in.
func GetFullVersion() string {
	if GitCommit == "unknown" {
		return GetVersion()
	}
	return fmt.Sprintf("%s (commit: %s)", GetVersion(), GitCommit)
}
