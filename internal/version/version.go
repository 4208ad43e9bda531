package version

// Version information for the textchecker binaries.
// These variables can be overridden at build time via -ldflags.
var (
	// Version is the semantic version of the lint worker and CLI.
	Version = "0.1.0-dev"

	// GitCommit is an optional git commit hash.
	GitCommit = ""

	// BuildDate is an optional build date in ISO-8601.
	BuildDate = ""
)

// String returns the version followed by the commit, when known.
func String() string {
	if GitCommit == "" {
		return Version
	}
	return Version + " (" + GitCommit + ")"
}
