package version

import (
	"strings"
	"testing"
)

func TestVersionFormat(t *testing.T) {
	version := Version()
	expected := "1.2.0"

	if version != expected {
		t.Errorf("Expected version '%s', got: '%s'", expected, version)
	}
}

func TestVersionPreRelease(t *testing.T) {
	old := PreRelease
	defer func() { PreRelease = old }()

	PreRelease = "rc.1"
	if Version() != "1.2.0-rc.1" {
		t.Errorf("Expected pre-release suffix, got: %s", Version())
	}
	if !IsPreRelease() {
		t.Error("Expected IsPreRelease to be true")
	}
}

func TestIsPreRelease(t *testing.T) {
	// Since PreRelease is empty by default
	if IsPreRelease() {
		t.Error("Expected IsPreRelease to be false for stable version")
	}
}

func TestGetBuildInfo(t *testing.T) {
	buildInfo := GetBuildInfo()

	if buildInfo.Version == "" {
		t.Error("BuildInfo.Version should not be empty")
	}
	if buildInfo.GoVersion == "" {
		t.Error("BuildInfo.GoVersion should not be empty")
	}
	if !strings.Contains(buildInfo.Platform, "/") {
		t.Errorf("Expected os/arch platform, got: %s", buildInfo.Platform)
	}
	if buildInfo.Name != "TokenShield" {
		t.Errorf("Expected name 'TokenShield', got: %s", buildInfo.Name)
	}
	if buildInfo.Major != 1 {
		t.Errorf("Expected Major version 1, got: %d", buildInfo.Major)
	}
}

func TestGetFullVersionString(t *testing.T) {
	full := GetFullVersionString()

	if !strings.Contains(full, "TokenShield") {
		t.Errorf("Expected full version string to contain 'TokenShield', got: %s", full)
	}
	if !strings.Contains(full, "v1.2.0") {
		t.Errorf("Expected full version string to contain 'v1.2.0', got: %s", full)
	}
}

func TestUserAgent(t *testing.T) {
	if UserAgent() != "tokenshield/1.2.0" {
		t.Errorf("unexpected user agent: %s", UserAgent())
	}
}
