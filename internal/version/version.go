// Package version exposes build metadata stamped in through ldflags.
package version

// Overridden at build time via -ldflags "-X .../version.Version=...".
var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)
