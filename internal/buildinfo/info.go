// Package buildinfo holds release metadata stamped into the reconcile binary.
package buildinfo

var (
	// Version is the release tag, set via -ldflags "-X .../buildinfo.Version=...".
	Version = "dev"
	// Commit is the source revision the binary was built from.
	Commit = "none"
	// Date is the build timestamp.
	Date = "unknown"
)
