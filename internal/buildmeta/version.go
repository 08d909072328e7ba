// Package buildmeta holds build-time version information injected via ldflags.
//
// These variables are set at build time using:
//
//	go build -ldflags="-X github.com/3bit-techs/vvpctl/internal/buildmeta.Version=v1.0.0 ..."
//
//nolint:gochecknoglobals
package buildmeta

import "runtime/debug"

const (
	defaultVersion = "dev"
	defaultCommit  = "none"
	defaultDate    = "unknown"
)

var (
	// Version is the semantic version of the build (e.g., "v1.0.0").
	Version = defaultVersion
	// Commit is the Git SHA of the build.
	Commit = defaultCommit
	// Date is the build timestamp.
	Date = defaultDate
)

// Info returns version, commit and date. Values not injected via ldflags,
// as with go install, are taken from the module and VCS build info.
func Info() (string, string, string) {
	version, commit, date := Version, Commit, Date

	info, ok := debug.ReadBuildInfo()
	if !ok {
		return version, commit, date
	}

	if version == defaultVersion && info.Main.Version != "" && info.Main.Version != "(devel)" {
		version = info.Main.Version
	}

	for _, setting := range info.Settings {
		switch setting.Key {
		case "vcs.revision":
			if commit == defaultCommit {
				commit = setting.Value
			}
		case "vcs.time":
			if date == defaultDate {
				date = setting.Value
			}
		}
	}

	return version, commit, date
}
