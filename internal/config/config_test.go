package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func writeConfig(t *testing.T, dir, body string) string {
	t.Helper()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(dir, FileName)
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadWalksUp(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	root := t.TempDir()
	path := writeConfig(t, root, `
[output]
format = "json"

[run]
jobs = 4
match-timeout = "150ms"
cache = true

[rules]
disable = ["no-danger"]
`)
	nested := filepath.Join(root, "src", "app")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(nested)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := &Config{
		Path:   path,
		Output: Output{Format: "json", Color: "auto", Paths: "auto"},
		Run:    Run{Jobs: 4, MaxMatches: 50, MatchTimeout: Duration{150 * time.Millisecond}, Cache: true},
		Rules:  Rules{Disable: []string{"no-danger"}},
	}
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}
	if !cfg.Disabled("no-danger") || cfg.Disabled("no-dupe-args") {
		t.Error("unexpected Disabled result")
	}
}

func TestLoadFallsBackToUserConfig(t *testing.T) {
	xdg := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", xdg)
	user := writeConfig(t, filepath.Join(xdg, "checkr"), "[output]\ncolor = \"off\"\n")

	cfg, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Path != user || cfg.Output.Color != "off" {
		t.Errorf("expected user config %s, got %+v", user, cfg)
	}
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	cfg, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if diff := cmp.Diff(Default(), cfg); diff != "" {
		t.Errorf("expected defaults (-want +got):\n%s", diff)
	}
}

func TestLoadFileErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"syntax", "[output\n", "failed to parse TOML"},
		{"unknown key", "[output]\nformat = \"json\"\nshiny = true\n", "unknown keys: output.shiny"},
		{"unknown section", "[extra]\nx = 1\n", "unknown keys: extra"},
		{"format", "[output]\nformat = \"xml\"\n", "invalid [output].format \"xml\""},
		{"color", "[output]\ncolor = \"always\"\n", "invalid [output].color"},
		{"paths", "[output]\npaths = \"short\"\n", "invalid [output].paths"},
		{"jobs", "[run]\njobs = -1\n", "invalid [run].jobs -1"},
		{"duration", "[run]\nmatch-timeout = \"soon\"\n", "failed to parse TOML"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfig(t, t.TempDir(), tt.body)
			_, err := LoadFile(path)
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.HasPrefix(err.Error(), path) || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("expected %q prefixed by the path, got %v", tt.want, err)
			}
		})
	}
}
