package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"strings"
	"time"
)

// Set at build time.
var (
	Version   = "dev"
	Commit    = ""
	BuildTime = ""
)

// Info describes the running build.
type Info struct {
	Version   string    `json:"version"`
	Commit    string    `json:"commit,omitempty"`
	Modified  bool      `json:"modified,omitempty"`
	Built     time.Time `json:"built,omitzero"`
	GoVersion string    `json:"go_version"`
	Platform  string    `json:"platform"`
}

// Get collects build information from the linker variables, then from the
// VCS settings recorded in the binary.
func Get() Info {
	info := Info{
		Version:   Version,
		Commit:    Commit,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}
	if t, err := time.Parse(time.RFC3339, BuildTime); err == nil {
		info.Built = t
	}

	if bi, ok := debug.ReadBuildInfo(); ok {
		for _, s := range bi.Settings {
			switch s.Key {
			case "vcs.revision":
				if info.Commit == "" {
					info.Commit = s.Value
				}
			case "vcs.modified":
				info.Modified = s.Value == "true"
			case "vcs.time":
				if info.Built.IsZero() {
					info.Built, _ = time.Parse(time.RFC3339, s.Value)
				}
			}
		}
	}
	if len(info.Commit) > 7 {
		info.Commit = info.Commit[:7]
	}
	return info
}

// IsRelease reports whether the build carries a release version.
func (i Info) IsRelease() bool {
	return i.Version != "dev" && !i.Modified
}

// Short returns the version, suffixed with the commit for development builds.
func (i Info) Short() string {
	if i.IsRelease() || i.Commit == "" {
		return i.Version
	}
	v := i.Version + "+" + i.Commit
	if i.Modified {
		v += ".dirty"
	}
	return v
}

// String returns a one-line description suitable for --version output.
func (i Info) String() string {
	parts := []string{i.GoVersion, i.Platform}
	if !i.Built.IsZero() {
		parts = append([]string{"built " + i.Built.UTC().Format("2006-01-02")}, parts...)
	}
	return fmt.Sprintf("pypeline %s (%s)", i.Short(), strings.Join(parts, ", "))
}
