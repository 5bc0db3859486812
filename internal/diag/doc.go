// Package diag defines the diagnostic model shared by the checker, the driver
// and the renderers.
//
// # Data model
//
// Diagnostic is one finding. Rule findings carry the hits the matcher found,
// each mapped to a 1-based line. Configuration, compile, load and internal
// failures are diagnostics too; they have no hits and point at the resource
// or file they concern.
//
//   - Severity: info, warn or error. ParseSeverity normalises untyped values
//     coming from rules; anything unrecognised is an error.
//   - Code: numeric identifier, rendered by ID() with a family prefix
//     (RUL, CFG, CMP, IO, INT).
//
// # Failure flag
//
// RunResult replaces a process-wide "something failed" flag. It is returned
// by value from each file run and merged by the driver. Only error-severity
// diagnostics set it.
//
// # Emitting diagnostics
//
// Producers talk to a Reporter. BagReporter collects into a Bag, which
// supports sorting, deduplication and a display limit; DedupReporter filters
// repeated configuration errors that several files would otherwise report.
//
// Package diag does no terminal IO. Rendering lives in internal/diagfmt.
package diag
