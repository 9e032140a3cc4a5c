// Package version carries the library version. Major, Minor and Patch are
// reported through the public API; the string values are set at build time
// with -ldflags.
package version

const (
	Major = 1
	Minor = 0
	Patch = 0
)

var (
	// Version is the current library version
	Version = "1.0.0"
	// GitSHA is the git commit SHA
	GitSHA = "unknown"
	// BuildTime is the build timestamp
	BuildTime = "unknown"
)
