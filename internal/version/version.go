// Package version reports the build information of gentask binaries.
package version

import (
	"fmt"
	"io"
	"runtime"
	"runtime/debug"
)

// Info holds version information for a binary.
type Info struct {
	// ToolName is the name of the binary
	ToolName string
	// Version is set via ldflags or from build info
	Version string
	// CommitSHA is set via ldflags or from build info
	CommitSHA string
	// BuildTimestamp is set via ldflags or from build info
	BuildTimestamp string
}

// New creates a new Info from the values set via ldflags. Empty values fall
// back to "dev" and "unknown".
func New(toolName, version, commitSHA, buildTimestamp string) *Info {
	return &Info{
		ToolName:       toolName,
		Version:        orDefault(version, "dev"),
		CommitSHA:      orDefault(commitSHA, "unknown"),
		BuildTimestamp: orDefault(buildTimestamp, "unknown"),
	}
}

// Get returns version information, reading the build info for values that
// were not set via ldflags.
func (i *Info) Get() (version, commit, timestamp string) {
	version = i.Version
	commit = i.CommitSHA
	timestamp = i.BuildTimestamp

	info, ok := debug.ReadBuildInfo()
	if !ok {
		return version, commit, timestamp
	}

	if version == "dev" && info.Main.Version != "" && info.Main.Version != "(devel)" {
		version = info.Main.Version
	}

	for _, setting := range info.Settings {
		switch setting.Key {
		case "vcs.revision":
			if commit == "unknown" && len(setting.Value) >= 7 {
				commit = setting.Value[:7]
			}
		case "vcs.time":
			if timestamp == "unknown" {
				timestamp = setting.Value
			}
		}
	}

	return version, commit, timestamp
}

// Print writes formatted version information to w.
func (i *Info) Print(w io.Writer) {
	version, commit, timestamp := i.Get()
	fmt.Fprintf(w, "%s version %s\n", i.ToolName, version)
	fmt.Fprintf(w, "  commit:    %s\n", commit)
	fmt.Fprintf(w, "  built:     %s\n", timestamp)
	fmt.Fprintf(w, "  go:        %s\n", runtime.Version())
	fmt.Fprintf(w, "  platform:  %s/%s\n", runtime.GOOS, runtime.GOARCH)
}

// String returns a one-line version string.
func (i *Info) String() string {
	version, _, _ := i.Get()
	return fmt.Sprintf("%s version %s", i.ToolName, version)
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
