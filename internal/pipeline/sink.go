package pipeline

import (
	"fmt"
	"sync/atomic"
)

// ChannelSink forwards events into a channel.
type ChannelSink struct {
	Ch chan<- Event
}

func (s ChannelSink) OnEvent(evt Event) {
	if s.Ch == nil {
		return
	}
	s.Ch <- evt
}

// FuncSink adapts a function to Sink.
type FuncSink func(Event)

func (f FuncSink) OnEvent(evt Event) {
	if f != nil {
		f(evt)
	}
}

// Emit sends evt to sink when sink is set.
func Emit(sink Sink, evt Event) {
	if sink != nil {
		sink.OnEvent(evt)
	}
}

// EmitQueued announces every file as queued.
func EmitQueued(sink Sink, files []string) {
	if sink == nil {
		return
	}
	for _, f := range files {
		sink.OnEvent(Event{File: f, Stage: StageLoad, Status: StatusQueued})
	}
}

// MultiSink forwards every event to each non-nil sink in order.
type MultiSink []Sink

func (m MultiSink) OnEvent(evt Event) {
	for _, s := range m {
		if s != nil {
			s.OnEvent(evt)
		}
	}
}

// Counter tallies terminal events. Safe for concurrent use.
type Counter struct {
	queued   atomic.Int64
	finished atomic.Int64
	cached   atomic.Int64
}

func (c *Counter) OnEvent(evt Event) {
	switch {
	case evt.Status == StatusQueued:
		c.queued.Add(1)
	case evt.Status.Terminal():
		c.finished.Add(1)
		if evt.Status == StatusCached {
			c.cached.Add(1)
		}
	}
}

// String renders progress as "3/10 files (1 cached)".
func (c *Counter) String() string {
	s := fmt.Sprintf("%d/%d files", c.finished.Load(), c.queued.Load())
	if n := c.cached.Load(); n > 0 {
		s += fmt.Sprintf(" (%d cached)", n)
	}
	return s
}
