// Package version carries the build-time version stamp.
package version

import "fmt"

// Version is the application version. Set via build-time ldflags:
// go build -ldflags "-X github.com/prusikmapping/GeositeFramework/internal/version.Version=v1.2.0".
var Version = "unknown"

// Build metadata, also stamped via ldflags.
var (
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// String renders the one-line form printed by the version flag.
func String() string {
	return fmt.Sprintf("geosite %s (commit %s, built %s)", Version, GitCommit, BuildTime)
}
