package source

import "testing"

func TestLineIndexLookup(t *testing.T) {
	tests := []struct {
		contents string
		offset   int
		want     int
	}{
		{"hello\nworld", 0, 1},
		{"hello\nworld", 5, 1},
		{"hello\nworld", 6, 2},
		{"hello\nworld", 11, 2},
		{"hello\n World how\n are you?", 16, 2},
		{"hello\n World how\n are you?", 17, 3},
		{"hello\n World how\n are you?", 18, 3},
		{"a\n", 0, 1},
		{"a\n", 2, 2},
		{"", 0, 1},
		{"\n\n\n", 2, 3},
	}
	for _, tt := range tests {
		idx := NewLineIndex(tt.contents)
		if got := idx.Line(tt.offset); got != tt.want {
			t.Errorf("Line(%q, %d): expected %d, got %d", tt.contents, tt.offset, tt.want, got)
		}
	}
}

func TestLineIndexBounds(t *testing.T) {
	idx := NewLineIndex("hello\n World how\n are you?")
	if idx.Lines() != 3 {
		t.Errorf("expected 3 lines, got %d", idx.Lines())
	}
	if idx.End() != 26 {
		t.Errorf("expected end 26, got %d", idx.End())
	}
	start, end, ok := idx.Span(2)
	if !ok || start != 6 || end != 17 {
		t.Errorf("expected line 2 at [6,17), got [%d,%d) ok=%v", start, end, ok)
	}
	if _, _, ok := idx.Span(4); ok {
		t.Error("expected no span for line 4")
	}

	trailing := NewLineIndex("x\n")
	if trailing.Lines() != 2 || trailing.End() != 3 {
		t.Errorf("expected 2 lines ending at 3, got %d ending at %d", trailing.Lines(), trailing.End())
	}
}

func TestLineIndexPanicsOutOfRange(t *testing.T) {
	idx := NewLineIndex("hello\nworld")
	for _, off := range []int{-1, 12} {
		func() {
			defer func() {
				if recover() == nil {
					t.Errorf("expected panic for offset %d", off)
				}
			}()
			idx.Line(off)
		}()
	}
}
