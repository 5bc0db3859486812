package version

import (
	"strings"
	"testing"

	"github.com/fatih/color"
)

func TestColoredKeepsPlainText(t *testing.T) {
	orig, origNoColor := Version, color.NoColor
	defer func() { Version, color.NoColor = orig, origNoColor }()

	color.NoColor = true
	Version = "1.2.3-rc1"
	if got := Colored(); got != "1.2.3-rc1" {
		t.Errorf("expected 1.2.3-rc1, got %q", got)
	}
	Version = "nightly"
	if got := Colored(); got != "nightly" {
		t.Errorf("expected unparsable versions to pass through, got %q", got)
	}

	color.NoColor = false
	Version = "1.2.3"
	if got := Colored(); !strings.Contains(got, "\x1b[") || !strings.Contains(got, "3") {
		t.Errorf("expected escape sequences, got %q", got)
	}
}

func TestFingerprintChangesWithBuild(t *testing.T) {
	orig := GitCommit
	defer func() { GitCommit = orig }()

	GitCommit = "abc123"
	a := Fingerprint()
	GitCommit = "def456"
	if a == Fingerprint() {
		t.Errorf("expected fingerprint to change with the commit, got %q twice", a)
	}
}
