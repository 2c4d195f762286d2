// Package version reports what build of rangefan is running. The
// coordinator, worker, and CLI binaries all link it so a deployment can
// be identified from any of the three.
package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
)

// Set at build time via
// -ldflags "-X github.com/dreamware/rangefan/pkg/version.Version=...".
var (
	Version   = "dev"
	Commit    = ""
	BuildTime = "unknown"
)

// Info describes one rangefan build.
type Info struct {
	Version   string `json:"version" yaml:"version"`
	Commit    string `json:"commit" yaml:"commit"`
	BuildTime string `json:"buildTime" yaml:"buildTime"`
	GoVersion string `json:"goVersion" yaml:"goVersion"`
	Platform  string `json:"platform" yaml:"platform"`
}

// Get returns the version of the running binary. When the commit was
// not stamped through ldflags it falls back to the VCS metadata Go
// embeds in module builds.
func Get() Info {
	return Info{
		Version:   Version,
		Commit:    commit(),
		BuildTime: BuildTime,
		GoVersion: runtime.Version(),
		Platform:  fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH),
	}
}

func commit() string {
	if Commit != "" {
		return Commit
	}
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return "unknown"
	}
	rev, dirty := "unknown", false
	for _, s := range info.Settings {
		switch s.Key {
		case "vcs.revision":
			rev = s.Value
		case "vcs.modified":
			dirty = s.Value == "true"
		}
	}
	if dirty {
		rev += "-dirty"
	}
	return rev
}

func (i Info) String() string {
	return fmt.Sprintf("rangefan\n  Version:    %s\n  Commit:     %s\n  Build Time: %s\n  Go Version: %s\n  Platform:   %s",
		i.Version, i.Commit, i.BuildTime, i.GoVersion, i.Platform)
}
