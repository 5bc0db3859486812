// Package check runs rules against one file and turns their report calls
// into diagnostics.
//
// A rule is a Func: it receives the immutable FileContext, a Capabilities
// bundle and a ReportFunc. Rules run sequentially in discovery order. Each
// report call re-runs its pattern over the whole file under a count guard and
// a progress guard and yields at most one Diagnostic.
//
// Failures never escape Run. Bad report arguments become configuration
// diagnostics, returned errors and panics become diagnostics attributed to
// the rule, and the next rule runs regardless.
package check
