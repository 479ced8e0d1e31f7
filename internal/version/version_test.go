package version

import (
	"strings"
	"testing"
)

func TestVersionDefaults(t *testing.T) {
	if Version == "" {
		t.Fatal("Version must have a default value")
	}
	if !strings.Contains(Version, "0") || !strings.Contains(Version, ".") {
		t.Errorf("Version %q does not look like a semantic version", Version)
	}
	// Commit, message and date are injected via ldflags and may be empty.
	_ = GitCommit
	_ = GitMessage
	_ = BuildDate
}

func TestVersionOverride(t *testing.T) {
	orig := Version
	defer func() { Version = orig }()

	Version = "1.2.3"
	if Version != "1.2.3" {
		t.Errorf("Version = %q after override, want 1.2.3", Version)
	}
}
