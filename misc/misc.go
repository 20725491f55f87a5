// Package misc keeps program identity set at link time.
package misc

import (
	"runtime/debug"
)

// Set with -ldflags "-X spelunk/misc.version=... -X spelunk/misc.gitHash=...".
var (
	appName = "spelunk"
	version = "dev"
	gitHash = ""
)

func GetAppName() string {
	return appName
}

func GetVersion() string {
	return version
}

// GetGitHash returns commit program was built from. When not set at link
// time VCS information recorded by go build is used.
func GetGitHash() string {
	if gitHash != "" {
		return gitHash
	}
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return "unknown"
	}
	for _, s := range info.Settings {
		if s.Key == "vcs.revision" && s.Value != "" {
			return s.Value
		}
	}
	return "unknown"
}
