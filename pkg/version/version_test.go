package version

import (
	"testing"
)

func TestVersionVariables(t *testing.T) {
	if Version == "" {
		t.Error("Version should not be empty")
	}

	if GitCommit == "" {
		t.Error("GitCommit should not be empty")
	}
	if GitCommit != "unknown" && len(GitCommit) < 7 {
		t.Errorf("GitCommit '%s' should be 'unknown' or a git hash", GitCommit)
	}

	if BuildTime == "" {
		t.Error("BuildTime should not be empty")
	}
}
