// Package version exposes build-time version information.
package version

// Set at build time through -ldflags.
var (
	// Version is the semantic version of the segmentation toolkit.
	Version = "0.1.0"

	// BuildTime is the UTC time when the binary was built.
	BuildTime = "unknown"

	// GitCommit is the git commit hash.
	GitCommit = "unknown"
)
