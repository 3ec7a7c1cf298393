package version

import "runtime"

// Set at build time with -ldflags "-X .../internal/version.Version=...".
var (
	Version = "dev"
	Commit  = "none"
	Date    = ""
	Dirty   = "false"
)

// BuildInfo is the build metadata reported by the API and the CLI.
type BuildInfo struct {
	Service   string `json:"service"`
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	Date      string `json:"date"`
	Dirty     bool   `json:"dirty"`
	GoVersion string `json:"go_version"`
}

func Info(service string) BuildInfo {
	return BuildInfo{
		Service:   service,
		Version:   Version,
		Commit:    Commit,
		Date:      Date,
		Dirty:     Dirty == "true",
		GoVersion: runtime.Version(),
	}
}

func (b BuildInfo) String() string {
	s := b.Service + " " + b.Version + " (" + b.Commit
	if b.Dirty {
		s += ", dirty"
	}
	return s + ")"
}
