// Package misc provides application identity shared by all commands.
package misc

import "runtime/debug"

// Overwritten at build time with -ldflags.
var (
	appName = "smover"
	version = "1.0.0"
	gitHash = ""
)

func GetAppName() string {
	return appName
}

func GetVersion() string {
	return version
}

// GetGitHash returns hash set during the build or, failing that, whatever
// revision information the Go toolchain embedded into the binary.
func GetGitHash() string {
	if len(gitHash) != 0 {
		return gitHash
	}
	if bi, ok := debug.ReadBuildInfo(); ok {
		for _, s := range bi.Settings {
			if s.Key == "vcs.revision" {
				return s.Value
			}
		}
	}
	return "unknown"
}
