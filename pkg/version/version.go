package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
)

const (
	Major = 1
	Minor = 2
	Patch = 0
	Name  = "TokenShield"
)

// PreRelease and Commit are set with -ldflags "-X tokenshield/pkg/version.Commit=..."
var (
	PreRelease = ""
	Commit     = ""
)

// BuildInfo describes the running binary.
type BuildInfo struct {
	Name       string `json:"name"`
	Version    string `json:"version"`
	Major      int    `json:"major"`
	Minor      int    `json:"minor"`
	Patch      int    `json:"patch"`
	PreRelease string `json:"pre_release,omitempty"`
	Commit     string `json:"commit,omitempty"`
	GoVersion  string `json:"go_version"`
	Platform   string `json:"platform"`
}

// Version returns the semantic version without a leading v.
func Version() string {
	v := fmt.Sprintf("%d.%d.%d", Major, Minor, Patch)
	if PreRelease != "" {
		v += "-" + PreRelease
	}
	return v
}

// IsPreRelease reports whether this is a pre-release build.
func IsPreRelease() bool { return PreRelease != "" }

// GetBuildInfo collects version and toolchain details.
func GetBuildInfo() BuildInfo {
	return BuildInfo{
		Name:       Name,
		Version:    Version(),
		Major:      Major,
		Minor:      Minor,
		Patch:      Patch,
		PreRelease: PreRelease,
		Commit:     commit(),
		GoVersion:  runtime.Version(),
		Platform:   runtime.GOOS + "/" + runtime.GOARCH,
	}
}

// GetFullVersionString returns e.g. "TokenShield v1.2.0 (abc1234, go1.25.4 linux/amd64)".
func GetFullVersionString() string {
	bi := GetBuildInfo()
	rev := bi.Commit
	if rev == "" {
		rev = "unknown"
	}
	return fmt.Sprintf("%s v%s (%s, %s %s)", bi.Name, bi.Version, rev, bi.GoVersion, bi.Platform)
}

// UserAgent is sent on every request to the risk authority.
func UserAgent() string {
	return "tokenshield/" + Version()
}

func commit() string {
	if Commit != "" {
		return Commit
	}
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return ""
	}
	for _, s := range info.Settings {
		if s.Key == "vcs.revision" && len(s.Value) >= 7 {
			return s.Value[:7]
		}
	}
	return ""
}
