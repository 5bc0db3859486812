package rules

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"checkr/internal/check"
	"checkr/internal/diag"
	"checkr/internal/source"
)

func writeResource(t *testing.T, dir, body string) string {
	t.Helper()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(dir, ResourceName)
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func ruleNames(rules []check.Rule) []string {
	out := make([]string, 0, len(rules))
	for _, r := range rules {
		out = append(out, r.Name)
	}
	return out
}

func TestAncestors(t *testing.T) {
	root := t.TempDir()
	start := filepath.Join(root, "a", "b")
	var got []string
	for d := range Ancestors(start) {
		got = append(got, d)
	}
	if len(got) < 3 {
		t.Fatalf("expected at least 3 levels, got %v", got)
	}
	want := []string{start, filepath.Join(root, "a"), root}
	if diff := cmp.Diff(want, got[:3]); diff != "" {
		t.Errorf("ancestors mismatch (-want +got):\n%s", diff)
	}
	if last := got[len(got)-1]; filepath.Dir(last) != last {
		t.Errorf("expected walk to end at the root, ended at %s", last)
	}
}

func TestParseOutcomes(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		kind   Kind
		reason string
		rules  []string
	}{
		{name: "empty", body: "", kind: Empty},
		{name: "whitespace", body: "  \n\t\n", kind: Empty},
		{name: "comments only", body: "# nothing yet\n", kind: Empty},
		{name: "bad toml", body: "[[rule]\n", kind: Malformed, reason: "failed to parse TOML"},
		{name: "unknown key", body: "[[rule]]\ntext = \"x\"\nmessage = \"m\"\nlevel = 1\n", kind: Malformed, reason: "unknown keys: rule.level"},
		{name: "no matcher", body: "[[rule]]\nmessage = \"m\"\n", kind: Malformed, reason: "exactly one of"},
		{name: "two matchers", body: "[[rule]]\ntext = \"a\"\nregex = \"b\"\n", kind: Malformed, reason: "got 2"},
		{name: "unknown builtin", body: "[[rule]]\nuse = \"nope\"\n", kind: Malformed, reason: `unknown builtin "nope"`},
		{name: "bad template", body: "[[rule]]\ncode = \"REGEX((a)\"\nmessage = \"m\"\n", kind: Malformed, reason: "rule 1:"},
		{name: "bad regex", body: "[[rule]]\nregex = \"(\"\nmessage = \"m\"\n", kind: Malformed, reason: "invalid regex"},
		{name: "empty text", body: "[[rule]]\ntext = \"\"\nmessage = \"m\"\n", kind: Malformed, reason: "text must not be empty"},
		{
			name: "found",
			body: `
[[rule]]
name = "deprecate-set-documents"
text = "setDocuments"
message = "[Deprecated] prefer setUserDocuments."
severity = "warn"

[[rule]]
use = "no-self-compare"

[[rule]]
code = "$a == $a"
message = "self compare"
`,
			kind:  Found,
			rules: []string{"deprecate-set-documents", "no-self-compare", "rule-3"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := Parse("/p/checkr.toml", []byte(tt.body), nil)
			if out.Kind != tt.kind {
				t.Fatalf("expected %s, got %s (%s)", tt.kind, out.Kind, out.Reason)
			}
			if !strings.Contains(out.Reason, tt.reason) {
				t.Errorf("expected reason containing %q, got %q", tt.reason, out.Reason)
			}
			if diff := cmp.Diff(tt.rules, ruleNames(out.Rules), cmpopts.EquateEmpty()); diff != "" {
				t.Errorf("rules mismatch (-want +got):\n%s", diff)
			}
			for _, r := range out.Rules {
				if r.Origin != "/p/checkr.toml" {
					t.Errorf("rule %s has origin %q", r.Name, r.Origin)
				}
			}
		})
	}
}

func TestDiscoverNearerFirst(t *testing.T) {
	root := t.TempDir()
	writeResource(t, root, "[[rule]]\nname = \"outer\"\ntext = \"x\"\nmessage = \"m\"\n")
	writeResource(t, filepath.Join(root, "pkg"), "[[rule]]\nname = \"inner\"\ntext = \"x\"\nmessage = \"m\"\n")
	dir := filepath.Join(root, "pkg", "deep")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	rules, outcomes := Discover(dir, FileLoader{})
	got := ruleNames(rules)
	if len(got) < 2 || got[0] != "inner" || got[1] != "outer" {
		t.Errorf("expected inner then outer, got %v", got)
	}
	if len(outcomes) < 2 || outcomes[0].Kind != Found || outcomes[1].Kind != Found {
		t.Errorf("unexpected outcomes %+v", outcomes)
	}
}

func TestMalformedDoesNotBlockAncestors(t *testing.T) {
	root := t.TempDir()
	writeResource(t, root, "[[rule]]\nname = \"outer\"\ntext = \"x\"\nmessage = \"m\"\n")
	bad := writeResource(t, filepath.Join(root, "pkg"), "[[rule]]\nbogus = true\n")
	writeResource(t, filepath.Join(root, "pkg", "empty"), "\n")

	rules, outcomes := Discover(filepath.Join(root, "pkg", "empty"), FileLoader{})
	if got := ruleNames(rules); len(got) == 0 || got[0] != "outer" {
		t.Errorf("expected outer rule to survive, got %v", got)
	}
	kinds := []Kind{outcomes[0].Kind, outcomes[1].Kind, outcomes[2].Kind}
	if diff := cmp.Diff([]Kind{Empty, Malformed, Found}, kinds); diff != "" {
		t.Errorf("kinds mismatch (-want +got):\n%s", diff)
	}
	diags := Diagnostics(outcomes)
	if len(diags) != 1 {
		t.Fatalf("expected one config diagnostic, got %+v", diags)
	}
	if diags[0].Path != bad || diags[0].Code != diag.CfgMalformedResource || !diags[0].IsError() {
		t.Errorf("unexpected diagnostic %+v", diags[0])
	}
	if ce := outcomes[1].ConfigError(); ce == nil || ce.Path != bad {
		t.Errorf("expected config error for %s, got %v", bad, ce)
	}
	if outcomes[2].ConfigError() != nil {
		t.Error("found outcome must not carry a config error")
	}
}

func TestDataRulesRunThroughCheck(t *testing.T) {
	out := Parse("/p/checkr.toml", []byte(`
[[rule]]
name = "deprecate-set-documents"
text = "setDocuments"
message = "[Deprecated] prefer setUserDocuments."
severity = "warning"
extensions = [".js", "JSX"]

[[rule]]
name = "self-compare-quiet"
use = "no-self-compare"
severity = "info"

[[rule]]
name = "bad-message"
text = "foo"
message = 5
`), nil)
	if out.Kind != Found {
		t.Fatalf("expected found, got %s: %s", out.Kind, out.Reason)
	}
	file := source.NewFileContext("/p/app.jsx", "setDocuments(a);\nif (x === x) foo();\n")
	res := check.Run(context.Background(), file, out.Rules, check.Options{})
	if len(res.Diagnostics) != 3 {
		t.Fatalf("expected 3 diagnostics, got %+v", res.Diagnostics)
	}
	dep, self, bad := res.Diagnostics[0], res.Diagnostics[1], res.Diagnostics[2]
	if dep.Severity != diag.SevWarning || dep.Line() != 1 || dep.Origin != "/p/checkr.toml" {
		t.Errorf("unexpected deprecation diagnostic %+v", dep)
	}
	if self.Severity != diag.SevInfo || self.Message != "Comparing to itself is potentially pointless." || self.Line() != 2 {
		t.Errorf("unexpected override diagnostic %+v", self)
	}
	if bad.Code != diag.CfgBadReportMessage {
		t.Errorf("expected %s, got %s", diag.CfgBadReportMessage.ID(), bad.Code.ID())
	}
	if !res.RunResult.Failed {
		t.Error("a config error must fail the run")
	}

	css := source.NewFileContext("/p/app.css", "setDocuments")
	res = check.Run(context.Background(), css, out.Rules[:1], check.Options{})
	if len(res.Diagnostics) != 0 {
		t.Errorf("extension filter let through %+v", res.Diagnostics)
	}
}

func TestIsResource(t *testing.T) {
	if !IsResource(source.NewFileContext("/p/checkr.toml", "")) {
		t.Error("expected checkr.toml to be a resource")
	}
	for _, p := range []string{"/p/checkr.js", "/p/checkrc.toml", "/p/sub/other.toml"} {
		if IsResource(source.NewFileContext(p, "")) {
			t.Errorf("%s is not a resource", p)
		}
	}
}

type countingLoader struct {
	calls atomic.Int32
}

func (c *countingLoader) Load(dir string) Outcome {
	c.calls.Add(1)
	return Outcome{Kind: Empty, Path: filepath.Join(dir, ResourceName)}
}

func TestCachedLoader(t *testing.T) {
	next := &countingLoader{}
	c := NewCachedLoader(next)
	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.Load("/p")
		}()
	}
	wg.Wait()
	if n := next.calls.Load(); n != 1 {
		t.Errorf("expected one load, got %d", n)
	}
	c.Invalidate("/p")
	c.Load("/p")
	c.Load("/q")
	if n := next.calls.Load(); n != 3 {
		t.Errorf("expected 3 loads after invalidate, got %d", n)
	}
	c.Reset()
	c.Load("/q")
	if n := next.calls.Load(); n != 4 {
		t.Errorf("expected 4 loads after reset, got %d", n)
	}
}

func TestFileLoaderNotFound(t *testing.T) {
	out := FileLoader{}.Load(t.TempDir())
	if out.Kind != NotFound {
		t.Errorf("expected not-found, got %s", out.Kind)
	}
}
