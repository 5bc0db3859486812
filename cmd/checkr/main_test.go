package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// resetFlags undoes the previous Execute: cobra keeps flag values and
// Changed marks on the package-level commands.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, sub := range cmd.Commands() {
		resetFlags(sub)
	}
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(append([]string{"--color", "off"}, args...))
	err := rootCmd.Execute()
	return out.String(), err
}

func writeFile(t *testing.T, path, body string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
}

func TestReadUIMode(t *testing.T) {
	cases := map[string]uiMode{"": uiModeAuto, "auto": uiModeAuto, " ON ": uiModeOn, "off": uiModeOff}
	for in, want := range cases {
		got, err := readUIMode(in)
		if err != nil || got != want {
			t.Errorf("readUIMode(%q): expected %q, got %q (%v)", in, want, got, err)
		}
	}
	if _, err := readUIMode("sometimes"); err == nil {
		t.Error("expected error for unknown mode")
	}
}

func TestCompileCommandPrintsMatches(t *testing.T) {
	out, err := execute(t, "compile", "$a + $a", "x + x; y + z")
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"(?<_a>", "#1 line 1 [0:5] \"x + x\"", "variables  \"x\""} {
		if !strings.Contains(out, want) {
			t.Errorf("expected output to contain %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "y + z") {
		t.Errorf("expected no match for different variables:\n%s", out)
	}
}

func TestCompileCommandRejectsBadTemplate(t *testing.T) {
	if _, err := execute(t, "compile", "f(REGEX(unterminated"); err == nil {
		t.Fatal("expected compile error")
	}
}

func TestCheckCommandExitStatus(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	root := t.TempDir()
	t.Chdir(root)
	writeFile(t, filepath.Join(root, "checkr.toml"), "[[rule]]\nuse = \"no-self-compare\"\n")
	writeFile(t, filepath.Join(root, "a.js"), "if (x === x) {}\n")

	out, err := execute(t, "check", "--format", "short", "--ui", "off", "a.js")
	var exit *exitError
	if !errors.As(err, &exit) || exit.code != 1 {
		t.Fatalf("expected exit status 1, got %v", err)
	}
	want := "a.js:1: error RUL1001 no-self-compare: Comparing to itself is potentially pointless.\n"
	if out != want {
		t.Errorf("expected %q, got %q", want, out)
	}

	writeFile(t, filepath.Join(root, "a.js"), "if (x === y) {}\n")
	out, err = execute(t, "check", "--format", "short", "--ui", "off", "a.js")
	if err != nil {
		t.Fatalf("expected clean run, got %v", err)
	}
	if out != "" {
		t.Errorf("expected no output, got %q", out)
	}
}

func TestCheckCommandBadConfigCannotStart(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	root := t.TempDir()
	t.Chdir(root)
	writeFile(t, filepath.Join(root, "checkrc.toml"), "[output]\nformat = \"xml\"\n")
	writeFile(t, filepath.Join(root, "a.js"), "a();\n")

	_, err := execute(t, "check", "--ui", "off", "a.js")
	var exit *exitError
	if !errors.As(err, &exit) || exit.code != 2 {
		t.Fatalf("expected exit status 2, got %v", err)
	}
}

func TestVersionJSON(t *testing.T) {
	out, err := execute(t, "version", "--format", "json")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, `"tool": "checkr"`) || !strings.Contains(out, `"builtins": 12`) {
		t.Errorf("unexpected version payload:\n%s", out)
	}
}
