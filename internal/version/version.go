// Package version holds the cjmtoolkit version numbers.
package version

import "fmt"

// Version is a three part version number.
type Version struct {
	Major uint
	Minor uint
	Build uint
}

// String returns the version as "major.minor.build".
func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Build)
}

var (
	// Current is the version of the cjmtoolkit application.
	Current = Version{Major: 0, Minor: 6, Build: 2}

	// Common is the version of the shared settings and logging packages.
	Common = Version{Major: 1, Minor: 2, Build: 0}
)

// Build information (set at build time).
var (
	BuildDate = "unknown"
	GitCommit = "unknown"
)
