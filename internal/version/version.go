package version

import (
	"runtime"
	"runtime/debug"
)

// version is overridden at release time via -ldflags.
var version = "dev"

// Version returns the current version string.
func Version() string {
	return version
}

// Info carries build provenance for the version command.
type Info struct {
	Version   string `json:"version"`
	GoVersion string `json:"goVersion"`
	Commit    string `json:"commit,omitempty"`
	Platform  string `json:"platform"`
}

// GetInfo assembles version information from build metadata.
func GetInfo() Info {
	info := Info{
		Version:   version,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}
	if bi, ok := debug.ReadBuildInfo(); ok {
		for _, setting := range bi.Settings {
			if setting.Key == "vcs.revision" {
				info.Commit = setting.Value
			}
		}
	}
	return info
}
