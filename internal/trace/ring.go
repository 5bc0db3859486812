package trace

import (
	"fmt"
	"io"
	"sync"
)

// RingTracer keeps the last N events in memory. The CLI dumps its tail to
// stderr when a run panics, so the rules and files that were in flight are
// visible without a trace file.
type RingTracer struct {
	mu     sync.Mutex
	buf    []Event
	next   int // slot of the next write
	count  int // events stored, at most len(buf)
	level  Level
	totals uint64 // events ever admitted
}

// NewRingTracer keeps up to capacity events (4096 when capacity <= 0).
func NewRingTracer(capacity int, level Level) *RingTracer {
	if capacity <= 0 {
		capacity = 4096
	}
	return &RingTracer{buf: make([]Event, capacity), level: level}
}

func (t *RingTracer) Emit(ev *Event) {
	if !admitted(t.level, ev) {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.buf[t.next] = *ev
	t.next = (t.next + 1) % len(t.buf)
	t.count = min(t.count+1, len(t.buf))
	t.totals++
}

// Snapshot returns the stored events, oldest first.
func (t *RingTracer) Snapshot() []Event {
	return t.Tail(0)
}

// Tail returns the newest n stored events, oldest first. n <= 0 means all.
func (t *RingTracer) Tail(n int) []Event {
	t.mu.Lock()
	defer t.mu.Unlock()
	if n <= 0 || n > t.count {
		n = t.count
	}
	out := make([]Event, n)
	start := (t.next - n + len(t.buf)) % len(t.buf)
	for i := range n {
		out[i] = t.buf[(start+i)%len(t.buf)]
	}
	return out
}

// Dropped reports how many admitted events were overwritten.
func (t *RingTracer) Dropped() uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.totals - uint64(t.count)
}

// Dump writes every stored event in format.
func (t *RingTracer) Dump(w io.Writer, format Format) error {
	return t.DumpTail(w, format, 0)
}

// DumpTail writes the newest n events, preceded in text format by a note on
// how many older events were lost.
func (t *RingTracer) DumpTail(w io.Writer, format Format, n int) error {
	events := t.Tail(n)
	if format == FormatText {
		if lost := t.Dropped() + uint64(t.stored()-len(events)); lost > 0 {
			if _, err := fmt.Fprintf(w, "... %d earlier events not shown\n", lost); err != nil {
				return err
			}
		}
	}
	for i := range events {
		if _, err := w.Write(FormatEvent(&events[i], format)); err != nil {
			return err
		}
	}
	return nil
}

func (t *RingTracer) stored() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.count
}

func (t *RingTracer) Flush() error  { return nil }
func (t *RingTracer) Close() error  { return nil }
func (t *RingTracer) Level() Level  { return t.level }
func (t *RingTracer) Enabled() bool { return t.level > LevelOff }
