package version

import "fmt"

// overwritten at build time via -ldflags
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"

	FullVersion = fmt.Sprintf("%s (%s at %s)", Version, Commit, Date)
)
