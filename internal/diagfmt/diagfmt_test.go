package diagfmt

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/google/go-cmp/cmp"

	"checkr/internal/diag"
)

func sample() []diag.Diagnostic {
	return []diag.Diagnostic{
		{
			Path:     "/home/user/project/sub/checkr.toml",
			Origin:   "/home/user/project/sub/checkr.toml",
			Code:     diag.CfgMalformedResource,
			Severity: diag.SevError,
			Message:  "unknown keys: rule.bogus",
		},
		{
			Path:     "/home/user/project/src/a.js",
			Rule:     "no-self-compare",
			Origin:   "builtin",
			Code:     diag.RulFinding,
			Severity: diag.SevError,
			Message:  "Comparing to itself is potentially pointless.",
			Hits:     []diag.Hit{{Line: 2, Start: 21, End: 28, Text: "x === x"}},
		},
		{
			Path:     "/home/user/project/src/a.js",
			Rule:     "deprecate-set-documents",
			Origin:   "/home/user/project/checkr.toml",
			Code:     diag.RulFinding,
			Severity: diag.SevWarning,
			Message:  "[Deprecated] prefer setUserDocuments.",
			Hits: []diag.Hit{
				{Line: 1, Start: 0, End: 12, Text: "setDocuments"},
				{Line: 3, Start: 40, End: 52, Text: "setDocuments"},
			},
		},
	}
}

func TestPretty(t *testing.T) {
	var buf bytes.Buffer
	opts := PrettyOpts{PathMode: PathModeRelative, BaseDir: "/home/user/project", Summary: true}
	if err := Pretty(&buf, sample(), opts); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := `error [config] sub/checkr.toml: unknown keys: rule.bogus
error Comparing to itself is potentially pointless.

src/a.js:2
x === x

warn [Deprecated] prefer setUserDocuments.

src/a.js:1
setDocuments

src/a.js:3
setDocuments

3 problems (2 errors, 1 warning)
`
	if diff := cmp.Diff(want, buf.String()); diff != "" {
		t.Errorf("pretty output mismatch (-want +got):\n%s", diff)
	}
}

func TestPrettyColorsLabels(t *testing.T) {
	saved := color.NoColor
	color.NoColor = false
	t.Cleanup(func() { color.NoColor = saved })

	var buf bytes.Buffer
	if err := Pretty(&buf, sample()[1:2], PrettyOpts{Color: true, PathMode: PathModeBasename}); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if label := color.New(color.FgRed, color.Bold).Sprint("error"); !strings.Contains(out, label) {
		t.Errorf("expected a red error label, got %q", out)
	}
	if !strings.Contains(out, "\na.js:2\n") {
		t.Errorf("expected basename path, got %q", out)
	}
}

func TestPrettyTruncates(t *testing.T) {
	var buf bytes.Buffer
	if err := Pretty(&buf, sample(), PrettyOpts{PathMode: PathModeBasename, Max: 1}); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "... 2 more not shown") {
		t.Errorf("expected truncation note, got:\n%s", buf.String())
	}
}

func TestShort(t *testing.T) {
	var buf bytes.Buffer
	if err := Short(&buf, sample(), "/home/user/project", 0); err != nil {
		t.Fatal(err)
	}
	want := `src/a.js:1: warn RUL1001 deprecate-set-documents: [Deprecated] prefer setUserDocuments.
src/a.js:2: error RUL1001 no-self-compare: Comparing to itself is potentially pointless.
src/a.js:3: warn RUL1001 deprecate-set-documents: [Deprecated] prefer setUserDocuments.
sub/checkr.toml: error CFG2003: unknown keys: rule.bogus
`
	if diff := cmp.Diff(want, buf.String()); diff != "" {
		t.Errorf("short output mismatch (-want +got):\n%s", diff)
	}
}

func TestJSON(t *testing.T) {
	var buf bytes.Buffer
	opts := JSONOpts{PathMode: PathModeRelative, BaseDir: "/home/user/project", Max: 2}
	if err := JSON(&buf, sample(), diag.RunResult{Failed: true}, opts); err != nil {
		t.Fatal(err)
	}
	var got DiagnosticsOutput
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, buf.String())
	}
	want := DiagnosticsOutput{
		Diagnostics: []DiagnosticJSON{
			{
				Path:     "sub/checkr.toml",
				Origin:   "/home/user/project/sub/checkr.toml",
				Severity: "error",
				Code:     "CFG2003",
				Message:  "unknown keys: rule.bogus",
			},
			{
				Path:     "src/a.js",
				Rule:     "no-self-compare",
				Origin:   "builtin",
				Severity: "error",
				Code:     "RUL1001",
				Message:  "Comparing to itself is potentially pointless.",
				Hits:     []HitJSON{{Line: 2, Start: 21, End: 28, Text: "x === x"}},
			},
		},
		Count:  2,
		Failed: true,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("JSON mismatch (-want +got):\n%s", diff)
	}
}

func TestSarif(t *testing.T) {
	var buf bytes.Buffer
	meta := SarifRunMeta{ToolVersion: "0.1.0", InvocationArgs: []string{"check", "."}, PathMode: PathModeRelative, BaseDir: "/home/user/project"}
	if err := Sarif(&buf, sample(), diag.RunResult{Failed: true}, meta); err != nil {
		t.Fatal(err)
	}
	var log sarifLog
	if err := json.Unmarshal(buf.Bytes(), &log); err != nil {
		t.Fatalf("invalid SARIF: %v", err)
	}
	if log.Version != "2.1.0" || len(log.Runs) != 1 {
		t.Fatalf("unexpected log header %+v", log)
	}
	run := log.Runs[0]
	if run.Tool.Driver.Name != "checkr" {
		t.Errorf("expected default tool name, got %q", run.Tool.Driver.Name)
	}
	var ids []string
	for _, r := range run.Tool.Driver.Rules {
		ids = append(ids, r.ID)
	}
	if diff := cmp.Diff([]string{"CFG2003", "deprecate-set-documents", "no-self-compare"}, ids); diff != "" {
		t.Errorf("rules mismatch (-want +got):\n%s", diff)
	}
	if len(run.Results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(run.Results))
	}
	dep := run.Results[2]
	if dep.Level != "warning" || len(dep.Locations) != 2 {
		t.Errorf("unexpected result %+v", dep)
	}
	region := dep.Locations[1].PhysicalLocation.Region
	if region == nil || region.StartLine != 3 || region.ByteOffset != 40 || region.ByteLength != 12 {
		t.Errorf("unexpected region %+v", region)
	}
	if uri := dep.Locations[0].PhysicalLocation.ArtifactLocation.URI; uri != "src/a.js" {
		t.Errorf("expected relative uri, got %q", uri)
	}
	if run.Invocations[0].ExecutionSuccessful {
		t.Error("failed runs are not successful")
	}
}

func TestParsePathMode(t *testing.T) {
	for _, m := range []PathMode{PathModeAuto, PathModeAbsolute, PathModeRelative, PathModeBasename} {
		got, err := ParsePathMode(m.String())
		if err != nil || got != m {
			t.Errorf("round trip of %s gave %v, %v", m, got, err)
		}
	}
	if _, err := ParsePathMode("short"); err == nil {
		t.Error("expected an error for an unknown mode")
	}
}
