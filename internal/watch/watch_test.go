package watch

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"checkr/internal/diag"
	"checkr/internal/driver"
	"checkr/internal/rules"
)

func writeFile(t *testing.T, path, body string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
}

func TestDedupKeepsLastPerPath(t *testing.T) {
	batch := []Change{
		{Path: "a.js", Op: OpCreate},
		{Path: "b.js", Op: OpWrite},
		{Path: "a.js", Op: OpWrite},
		{Path: "a.js", Op: OpRemove},
	}
	got := Dedup(batch)
	want := []Change{
		{Path: "a.js", Op: OpRemove},
		{Path: "b.js", Op: OpWrite},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Dedup mismatch (-want +got):\n%s", diff)
	}
	if len(Dedup(nil)) != 0 {
		t.Error("expected empty batch")
	}
}

func TestOpString(t *testing.T) {
	for op, want := range map[Op]string{OpCreate: "create", OpWrite: "write", OpRemove: "remove", OpRename: "rename", Op(42): "unknown"} {
		if got := op.String(); got != want {
			t.Errorf("expected %q, got %q", want, got)
		}
	}
}

type recorder struct {
	mu      sync.Mutex
	updates []Update
}

func (r *recorder) emit(u Update) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.updates = append(r.updates, u)
}

func (r *recorder) take() []Update {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := r.updates
	r.updates = nil
	return out
}

func rulesOf(diags []diag.Diagnostic) []string {
	out := make([]string, 0, len(diags))
	for _, d := range diags {
		out = append(out, d.Rule)
	}
	return out
}

func TestSessionReplacesDiagnosticsOnSave(t *testing.T) {
	root := t.TempDir()
	file := filepath.Join(root, "a.js")
	writeFile(t, filepath.Join(root, rules.ResourceName), "[[rule]]\nuse = \"no-self-compare\"\n")
	writeFile(t, file, "if (x === x) {}\n")

	rec := &recorder{}
	s := NewSession(driver.Options{Jobs: 1}, rec.emit)
	ctx := context.Background()

	res, err := s.Check(ctx, []string{file})
	if err != nil {
		t.Fatal(err)
	}
	if !res.Failed || !s.Failed() {
		t.Fatal("expected failure after first check")
	}
	if got := rulesOf(s.Diagnostics(file)); !cmp.Equal(got, []string{"no-self-compare"}) {
		t.Fatalf("expected one self-compare finding, got %v", got)
	}
	rec.take()

	writeFile(t, file, "if (x === y) {}\n")
	res, err = s.Handle(ctx, []Change{{Path: file, Op: OpWrite}})
	if err != nil {
		t.Fatal(err)
	}
	if res.Failed || s.Failed() {
		t.Error("expected clean result after fix")
	}
	ups := rec.take()
	if len(ups) != 1 || ups[0].Cleared != 1 || len(ups[0].Diagnostics) != 0 {
		t.Errorf("expected one update clearing one diagnostic, got %+v", ups)
	}
}

func TestSessionRechecksOnResourceChange(t *testing.T) {
	root := t.TempDir()
	resource := filepath.Join(root, rules.ResourceName)
	file := filepath.Join(root, "sub", "a.js")
	writeFile(t, resource, "[[rule]]\nuse = \"no-self-compare\"\n")
	writeFile(t, file, "legacy();\n")

	rec := &recorder{}
	s := NewSession(driver.Options{Jobs: 1}, rec.emit)
	ctx := context.Background()
	if _, err := s.Check(ctx, []string{file}); err != nil {
		t.Fatal(err)
	}
	if n := len(s.Diagnostics(file)); n != 0 {
		t.Fatalf("expected no diagnostics, got %d", n)
	}
	rec.take()

	// без Invalidate загрузчик вернул бы старый набор правил
	writeFile(t, resource, "[[rule]]\nname = \"no-legacy\"\ntext = \"legacy()\"\nmessage = \"legacy call\"\nseverity = \"warn\"\n")
	if _, err := s.Handle(ctx, []Change{{Path: resource, Op: OpWrite}}); err != nil {
		t.Fatal(err)
	}
	if got := rulesOf(s.Diagnostics(file)); !cmp.Equal(got, []string{"no-legacy"}) {
		t.Errorf("expected no-legacy after resource edit, got %v", got)
	}
	if s.Failed() {
		t.Error("warnings must not fail the session")
	}
	if ups := rec.take(); len(ups) != 1 || ups[0].Path != file {
		t.Errorf("expected one update for %s, got %+v", file, ups)
	}
}

func TestSessionRemovedFile(t *testing.T) {
	root := t.TempDir()
	file := filepath.Join(root, "a.js")
	writeFile(t, filepath.Join(root, rules.ResourceName), "[[rule]]\nuse = \"no-self-compare\"\n")
	writeFile(t, file, "if (x === x) {}\n")

	rec := &recorder{}
	s := NewSession(driver.Options{Jobs: 1}, rec.emit)
	ctx := context.Background()
	if _, err := s.Check(ctx, []string{file}); err != nil {
		t.Fatal(err)
	}
	rec.take()

	if err := os.Remove(file); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Handle(ctx, []Change{{Path: file, Op: OpRemove}}); err != nil {
		t.Fatal(err)
	}
	ups := rec.take()
	if len(ups) != 1 || !ups[0].Removed || ups[0].Cleared != 1 {
		t.Errorf("expected one removal update, got %+v", ups)
	}
	if s.Failed() {
		t.Error("expected no failure once the file is gone")
	}
	// неизвестный удалённый файл молча игнорируется
	if _, err := s.Handle(ctx, []Change{{Path: filepath.Join(root, "ghost.js"), Op: OpRemove}}); err != nil {
		t.Fatal(err)
	}
	if ups := rec.take(); len(ups) != 0 {
		t.Errorf("expected no updates for unknown file, got %+v", ups)
	}
}

func TestWatcherDeliversBatches(t *testing.T) {
	root := t.TempDir()
	batches := make(chan []Change, 16)
	opts := DefaultOptions()
	opts.Debounce = 20 * time.Millisecond
	w, err := New(root, func(b []Change) { batches <- b }, &opts)
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := w.Start(ctx); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	target := filepath.Join(root, "a.js")
	writeFile(t, target, "a();\n")
	writeFile(t, filepath.Join(root, "note.swp"), "x")

	deadline := time.After(5 * time.Second)
	for {
		select {
		case b := <-batches:
			for _, c := range b {
				if filepath.Base(c.Path) == "note.swp" {
					t.Fatalf("ignored file delivered: %+v", c)
				}
				if c.Path == target {
					return
				}
			}
		case <-deadline:
			t.Fatal("timed out waiting for change")
		}
	}
}
