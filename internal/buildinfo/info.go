// Package buildinfo holds version metadata stamped at link time:
//
//	go build -ldflags "-X github.com/tallyhq/tally/internal/buildinfo.Version=v0.3.0"
package buildinfo

var (
	// Version will be set via ldflags during build.
	Version = "dev"
	// Commit will be set via ldflags during build.
	Commit = "none"
	// Date will be set via ldflags during build.
	Date = "unknown"
)
