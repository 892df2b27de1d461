// Package buildinfo carries version stamps injected at link time:
//
//	go build -ldflags "-X github.com/m3rciful/lecturebot/core/buildinfo.Version=v1.4.0 \
//	  -X github.com/m3rciful/lecturebot/core/buildinfo.Commit=$(git rev-parse --short HEAD) \
//	  -X github.com/m3rciful/lecturebot/core/buildinfo.Date=$(date -u +%Y-%m-%dT%H:%M:%SZ)"
package buildinfo

import "strings"

var (
	Version = "dev"
	Commit  = "local"
	// Date is RFC3339; empty for local builds.
	Date = ""
)

// String renders "version (commit, date)", omitting what is unknown.
func String() string {
	var parts []string
	if Commit != "" {
		parts = append(parts, Commit)
	}
	if Date != "" {
		parts = append(parts, Date)
	}
	if len(parts) == 0 {
		return Version
	}
	return Version + " (" + strings.Join(parts, ", ") + ")"
}
