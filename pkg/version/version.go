// Package version reports build metadata injected with -ldflags, falling
// back to the VCS stamp the Go toolchain embeds.
package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
)

// Set at build time, e.g.
//
//	go build -ldflags "-X github.com/kamikazebr/todo-otp/pkg/version.Version=v1.2.0"
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildTime = "unknown"
	GitDirty  = ""
)

// Info is the resolved build metadata.
type Info struct {
	Version   string
	Commit    string
	BuildTime string
	Dirty     bool
	GoVersion string
}

var readBuildInfo = debug.ReadBuildInfo

// Get resolves build metadata. ldflags values win; VCS settings from the
// embedded build info fill the gaps.
func Get() Info {
	info := Info{
		Version:   Version,
		Commit:    GitCommit,
		BuildTime: BuildTime,
		Dirty:     GitDirty == "true",
		GoVersion: runtime.Version(),
	}

	bi, ok := readBuildInfo()
	if !ok {
		return info
	}
	if info.Version == "dev" && bi.Main.Version != "" && bi.Main.Version != "(devel)" {
		info.Version = bi.Main.Version
	}
	for _, s := range bi.Settings {
		switch s.Key {
		case "vcs.revision":
			if info.Commit == "unknown" {
				info.Commit = shortCommit(s.Value)
			}
		case "vcs.time":
			if info.BuildTime == "unknown" {
				info.BuildTime = s.Value
			}
		case "vcs.modified":
			if GitDirty == "" {
				info.Dirty = s.Value == "true"
			}
		}
	}
	return info
}

func shortCommit(rev string) string {
	if len(rev) > 7 {
		return rev[:7]
	}
	return rev
}

// GetVersion returns a one-line version string:
// todo-otp-server v1.2.0 (abc1234 2025-11-14T21:51:00Z)
func GetVersion(name string) string {
	info := Get()
	dirty := ""
	if info.Dirty {
		dirty = "-dirty"
	}
	return fmt.Sprintf("%s %s (%s%s %s)", name, info.Version, info.Commit, dirty, info.BuildTime)
}

// GetVersionInfo returns detailed version information
func GetVersionInfo() string {
	info := Get()
	state := "clean"
	if info.Dirty {
		state = "dirty"
	}

	return fmt.Sprintf(`Version:    %s
Git commit: %s (%s)
Built:      %s
Go version: %s`,
		info.Version,
		info.Commit,
		state,
		info.BuildTime,
		info.GoVersion,
	)
}
