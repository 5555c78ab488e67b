// Package build holds information about the build, set at link time, e.g.,
// -ldflags "-X github.com/armadaproject/fairdiv/internal/fairdivctl/build.ReleaseVersion=v0.1.0".
package build

import "runtime"

var (
	ReleaseVersion = "UNKNOWN_RELEASE_VERSION"
	GitCommit      = "UNKNOWN_GIT_COMMIT"
	BuildTime      = "UNKNOWN_BUILD_TIME"
	GoVersion      = runtime.Version()
)
