// Package version carries the build version stamped in by the release
// workflow via -ldflags.
package version

var version = "dev"

// Get returns the version string.
func Get() string {
	return version
}
