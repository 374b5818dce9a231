// Package version carries the build identity stamped into the tserr binary.
package version

import "strings"

// Stamped by the release build:
//
//	go build -ldflags "-X tserr/internal/version.Version=0.5.0 \
//	  -X tserr/internal/version.Commit=$(git rev-parse HEAD) \
//	  -X tserr/internal/version.BuildDate=$(date -u +%Y-%m-%dT%H:%M:%SZ)"
//
// Development builds leave Commit and BuildDate empty.
var (
	Version   = "0.4.0"
	Commit    = ""
	BuildDate = ""
)

// Short returns the version, suffixed with the abbreviated commit when one
// was stamped, e.g. "0.4.0+ab12cd3".
func Short() string {
	if c := shortCommit(); c != "" {
		return Version + "+" + c
	}
	return Version
}

// Built returns the stamped build timestamp, or a dev-build marker
func Built() string {
	if BuildDate == "" {
		return "(dev build)"
	}
	return BuildDate
}

// Full returns the multi-line output of the version command
func Full() string {
	var b strings.Builder
	b.WriteString("tserr " + Short() + "\n")
	if Commit != "" {
		b.WriteString("commit: " + Commit + "\n")
	}
	b.WriteString("built:  " + Built())
	return b.String()
}

func shortCommit() string {
	if len(Commit) > 7 {
		return Commit[:7]
	}
	return Commit
}
