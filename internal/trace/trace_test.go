package trace

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"
)

func TestLevelAdmitsScopes(t *testing.T) {
	tests := []struct {
		level Level
		scope Scope
		want  bool
	}{
		{LevelOff, ScopeRun, false},
		{LevelError, ScopeRun, false},
		{LevelPhase, ScopeRun, true},
		{LevelPhase, ScopeFile, false},
		{LevelDetail, ScopeFile, true},
		{LevelDetail, ScopeRule, false},
		{LevelDebug, ScopeReport, true},
	}
	for _, tt := range tests {
		if got := tt.level.ShouldEmit(tt.scope); got != tt.want {
			t.Errorf("%s.ShouldEmit(%s): expected %v, got %v", tt.level, tt.scope, tt.want, got)
		}
	}
	if _, err := ParseLevel("loud"); err == nil {
		t.Error("expected error for unknown level")
	}
}

func TestStreamTracerText(t *testing.T) {
	var buf bytes.Buffer
	tr := NewStreamTracer(&buf, LevelDetail, FormatText)

	span := Begin(tr, ScopeFile, "file:app.js", 0)
	Point(tr, ScopeRule, "rule:hidden", "")
	Point(tr, ScopeFile, "discover", "2 rules", "origin", "builtin")
	span.WithExtra("hits", "3").End("ok")
	Error(tr, "panic", "boom")

	out := buf.String()
	for _, want := range []string{"→ file:app.js", "• discover (2 rules) {origin=builtin}", "← file:app.js (ok) {hits=3}", "! panic (boom)"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected output to contain %q, got:\n%s", want, out)
		}
	}
	if strings.Contains(out, "rule:hidden") {
		t.Errorf("rule scope leaked at detail level:\n%s", out)
	}
}

func TestRingTracerKeepsLastEvents(t *testing.T) {
	ring := NewRingTracer(2, LevelDebug)
	for _, name := range []string{"a", "b", "c"} {
		Point(ring, ScopeReport, name, "")
	}
	snap := ring.Snapshot()
	if len(snap) != 2 || snap[0].Name != "b" || snap[1].Name != "c" {
		t.Fatalf("unexpected snapshot %+v", snap)
	}
	var buf bytes.Buffer
	if err := ring.Dump(&buf, FormatNDJSON); err != nil {
		t.Fatal(err)
	}
	if n := strings.Count(buf.String(), "\n"); n != 2 {
		t.Errorf("expected 2 NDJSON lines, got %d", n)
	}
}

func TestMultiAndContext(t *testing.T) {
	var buf bytes.Buffer
	ring := NewRingTracer(8, LevelDebug)
	multi := NewMultiTracer(LevelDebug, NewStreamTracer(&buf, LevelDebug, FormatNDJSON), ring)
	ctx := WithTracer(context.Background(), multi)

	Point(FromContext(ctx), ScopeRun, "start", "")
	if len(ring.Snapshot()) != 1 || buf.Len() == 0 {
		t.Error("expected event in both children")
	}
	if multi.Ring() != ring {
		t.Error("expected Ring to find the ring child")
	}
	if FromContext(context.Background()) != Nop {
		t.Error("expected Nop without tracer")
	}
}

func TestRingTail(t *testing.T) {
	ring := NewRingTracer(3, LevelDebug)
	for _, name := range []string{"a", "b", "c", "d", "e"} {
		Point(ring, ScopeRun, name, "")
	}
	tail := ring.Tail(2)
	if len(tail) != 2 || tail[0].Name != "d" || tail[1].Name != "e" {
		t.Fatalf("unexpected tail %+v", tail)
	}
	if got := ring.Dropped(); got != 2 {
		t.Errorf("expected 2 dropped, got %d", got)
	}
	var buf bytes.Buffer
	if err := ring.DumpTail(&buf, FormatText, 1); err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(buf.String(), "... 4 earlier events not shown\n") {
		t.Errorf("unexpected dump:\n%s", buf.String())
	}
}

func TestHeartbeatReportsStatus(t *testing.T) {
	ring := NewRingTracer(16, LevelPhase)
	h := StartHeartbeat(ring, time.Millisecond, func() string { return "3/4 files" })
	deadline := time.Now().Add(2 * time.Second)
	for len(ring.Snapshot()) == 0 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	h.Stop()
	h.Stop()
	snap := ring.Snapshot()
	if len(snap) == 0 {
		t.Fatal("expected a heartbeat")
	}
	if ev := snap[0]; ev.Kind != KindHeartbeat || !strings.HasSuffix(ev.Detail, " 3/4 files") {
		t.Errorf("unexpected heartbeat %+v", ev)
	}
	if StartHeartbeat(Nop, time.Millisecond, nil) != nil {
		t.Error("expected nil heartbeat when tracing is off")
	}
}

func TestNewPicksTracerByMode(t *testing.T) {
	var buf bytes.Buffer
	tests := []struct {
		cfg  Config
		want string
	}{
		{Config{Level: LevelOff, Mode: ModeBoth}, "nop"},
		{Config{Level: LevelPhase, Mode: ModeStream, Output: &buf}, "stream"},
		{Config{Level: LevelPhase, Mode: ModeRing}, "ring"},
		{Config{Level: LevelPhase, Mode: ModeBoth, Output: &buf}, "multi"},
	}
	for _, tt := range tests {
		tr, err := New(tt.cfg)
		if err != nil {
			t.Fatal(err)
		}
		var got string
		switch tr.(type) {
		case nopTracer:
			got = "nop"
		case *StreamTracer:
			got = "stream"
		case *RingTracer:
			got = "ring"
		case *MultiTracer:
			got = "multi"
		}
		if got != tt.want {
			t.Errorf("mode %s: expected %s, got %T", tt.cfg.Mode, tt.want, tr)
		}
	}
	if _, err := New(Config{Level: LevelPhase, Mode: StorageMode(9)}); err == nil {
		t.Error("expected error for unknown mode")
	}
}

func TestSpanContextRoundTrip(t *testing.T) {
	ctx := context.Background()
	if sc := CurrentSpan(ctx); sc != (SpanContext{}) {
		t.Errorf("expected zero span at the top of a run, got %+v", sc)
	}
	file := SpanContext{SpanID: 7, Scope: ScopeFile}
	ctx = WithSpanContext(WithTracer(ctx, nil), file)
	if sc := CurrentSpan(ctx); sc != file {
		t.Errorf("expected %+v, got %+v", file, sc)
	}
	if FromContext(ctx) != Nop {
		t.Error("expected a nil tracer to be stored as Nop")
	}
}
