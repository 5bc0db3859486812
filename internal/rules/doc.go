// Package rules discovers the rules that apply to a file.
//
// Every directory from the file's own up to the filesystem root may hold a
// checkr.toml resource. Each level is loaded into a tagged Outcome:
// NotFound, Empty, Malformed (with a reason) or Found (with rules). Rules
// from all Found levels apply, nearer directories first; a Malformed level
// contributes nothing but never hides its ancestors.
//
// A resource entry is data: exactly one of text, code, regex or use, plus a
// message, a severity and an optional extension filter. "use" selects a
// builtin from a Registry; the builtins live in builtins.go.
package rules
