// Package buildinfo holds release metadata stamped in at link time.
package buildinfo

// Set with -ldflags "-X github.com/glint-tools/carbon/internal/buildinfo.Version=..."
// for release binaries. They stay empty for local builds.
var (
	Version = ""
	Commit  = ""
	Date    = ""
)
