package check

import (
	"checkr/internal/source"
)

// OriginBuiltin marks rules compiled into the binary.
const OriginBuiltin = "builtin"

// ReportFunc records a finding. target is a *pattern.Pattern, a string
// (searched verbatim), a *regexp2.Regexp or a *regexp.Regexp; message must be
// a string; severity is "error", "warn", "warning" or "info" and defaults to
// error. Invalid arguments are reported as configuration errors and the call
// does nothing.
type ReportFunc func(target, message any, severity ...any)

// Func is a rule callback. A returned error is reported against the rule.
type Func func(file *source.FileContext, caps Capabilities, report ReportFunc) error

// Rule is one named callback plus where it came from.
type Rule struct {
	Name   string
	Origin string // resource path or OriginBuiltin
	Func   Func
}
