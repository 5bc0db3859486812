// Package trace provides structured event tracing for checkr runs.
//
// Tracing follows one run from file selection down to individual report
// calls, which helps when a rule is slow or a pattern backtracks badly.
//
// # Usage
//
//	checkr check --trace=- --trace-level=detail src/
//
// # Tracers
//
//   - Nop: zero-overhead default
//   - StreamTracer: immediate write (text or NDJSON) to a file or stderr
//   - RingTracer: the last N events, dumped when a run crashes
//   - MultiTracer: fan-out
//
// # Levels and scopes
//
// A level admits scopes up to its depth: phase shows run boundaries, detail
// adds one span per checked file, debug adds rules and report calls.
// LevelError only records Error events.
//
// # Context propagation
//
//	ctx = trace.WithTracer(ctx, tracer)
//	span := trace.Begin(trace.FromContext(ctx), trace.ScopeFile, path, parent)
//	defer span.End("")
package trace
