// Package version provides build version information and runtime metadata.
package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"strings"
	"sync"
)

var (
	// These are set via ldflags at build time
	Version = ""
	Commit  = ""
	Date    = ""

	once sync.Once
)

func ensureInitialized() {
	once.Do(func() {
		info, ok := debug.ReadBuildInfo()
		if !ok {
			info = &debug.BuildInfo{}
		}
		fillFrom(info)
	})
}

// fillFrom completes the ldflags values from the module build info.
func fillFrom(info *debug.BuildInfo) {
	if Version == "" {
		v := strings.TrimPrefix(info.Main.Version, "v")
		if v == "" || v == "(devel)" {
			v = "dev"
		}
		Version = v
	}

	settings := make(map[string]string, len(info.Settings))
	for _, s := range info.Settings {
		settings[s.Key] = s.Value
	}

	if Commit == "" {
		Commit = "unknown"
		if rev := settings["vcs.revision"]; rev != "" {
			if len(rev) > 12 {
				rev = rev[:12]
			}
			if settings["vcs.modified"] == "true" {
				rev += "-dirty"
			}
			Commit = rev
		}
	}
	if Date == "" {
		Date = "unknown"
		if t := settings["vcs.time"]; len(t) >= 10 {
			Date = t[:10]
		}
	}
}

// Short returns the bare version, e.g. "1.2.0" or "dev".
func Short() string {
	ensureInitialized()
	return Version
}

// Info returns the full version line.
func Info() string {
	ensureInitialized()
	return fmt.Sprintf("gateway-console %s (commit: %s, built: %s, %s/%s)",
		Version, Commit, Date, runtime.GOOS, runtime.GOARCH)
}
