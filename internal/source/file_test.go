package source

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestNewFileContextSplitsPath(t *testing.T) {
	tests := []struct {
		path string
		want FileContext
	}{
		{
			path: "/repo/src/example.js",
			want: FileContext{Path: "/repo/src/example.js", Dir: "/repo/src", Name: "example", Ext: "js"},
		},
		{
			path: "/repo/src/app.test.tsx",
			want: FileContext{Path: "/repo/src/app.test.tsx", Dir: "/repo/src", Name: "app.test", Ext: "tsx"},
		},
		{
			path: "/repo/.eslintrc",
			want: FileContext{Path: "/repo/.eslintrc", Dir: "/repo", Name: ".eslintrc", Ext: ""},
		},
		{
			path: "/repo/Makefile",
			want: FileContext{Path: "/repo/Makefile", Dir: "/repo", Name: "Makefile", Ext: ""},
		},
	}
	for _, tt := range tests {
		got := NewFileContext(filepath.FromSlash(tt.path), "")
		want := tt.want
		want.Path = filepath.FromSlash(want.Path)
		want.Dir = filepath.FromSlash(want.Dir)
		if diff := cmp.Diff(want, *got); diff != "" {
			t.Errorf("%s: mismatch (-want +got):\n%s", tt.path, diff)
		}
	}
}

func TestLoadDecodesBOM(t *testing.T) {
	dir := t.TempDir()
	cases := map[string]struct {
		raw  []byte
		want string
	}{
		"plain.js": {[]byte("let a = 1;\r\n"), "let a = 1;\r\n"},
		"bom8.js":  {[]byte("\xEF\xBB\xBFlet b;"), "let b;"},
		"bom16.js": {[]byte{0xFF, 0xFE, 'o', 0, 'k', 0}, "ok"},
	}
	for name, tc := range cases {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, tc.raw, 0o600); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
		fc, err := Load(path)
		if err != nil {
			t.Fatalf("Load(%s): %v", name, err)
		}
		if fc.Contents != tc.want {
			t.Errorf("%s: expected %q, got %q", name, tc.want, fc.Contents)
		}
		if fc.Ext != "js" || !filepath.IsAbs(fc.Path) {
			t.Errorf("%s: unexpected context %+v", name, fc)
		}
	}

	if _, err := Load(filepath.Join(dir, "missing.js")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestRelativePath(t *testing.T) {
	base := t.TempDir()
	inside := filepath.Join(base, "nested", "file.js")
	if got, want := RelativePath(inside, base), "nested/file.js"; got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
	outside := filepath.Join(filepath.Dir(base), "other", "file.js")
	if got, want := RelativePath(outside, base), filepath.ToSlash(outside); got != want {
		t.Errorf("expected absolute fallback %q, got %q", want, got)
	}
	if got := FormatPath(inside, "basename", ""); got != "file.js" {
		t.Errorf("expected basename, got %q", got)
	}
}
