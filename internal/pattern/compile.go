package pattern

import (
	"regexp"
	"strconv"

	"github.com/dlclark/regexp2"
)

const matchOptions = regexp2.Multiline

// Compile flattens parts into one template and compiles it. Strings are taken
// as template text; other values are interpolated with fmt.Sprint.
func Compile(parts ...any) (*Pattern, error) {
	template := flatten(parts)
	s, err := newScaffold(template)
	if err != nil {
		return nil, &CompileError{Template: template, Stage: "flatten", Err: err}
	}
	for _, st := range pipeline {
		if err := st.run(s); err != nil {
			return nil, &CompileError{Template: template, Stage: st.name, Err: err}
		}
		s.outputs = append(s.outputs, StageOutput{Stage: st.name, Text: s.text})
	}
	re, err := regexp2.Compile(s.text, matchOptions)
	if err != nil {
		return nil, &CompileError{Template: template, Stage: "build", Err: err}
	}
	p := newPattern(re, template, matchOptions)
	p.stages = s.outputs
	return p, nil
}

// MustCompile is like Compile but panics on error. It is meant for
// package-level rule patterns.
func MustCompile(parts ...any) *Pattern {
	p, err := Compile(parts...)
	if err != nil {
		panic(err)
	}
	return p
}

// Exact returns a pattern that finds text verbatim.
func Exact(text string) *Pattern {
	re := regexp2.MustCompile(regexp2.Escape(text), regexp2.None)
	return newPattern(re, text, regexp2.None)
}

// FromRegexp wraps an already compiled regexp2 expression.
func FromRegexp(re *regexp2.Regexp) *Pattern {
	return newPattern(re, re.String(), regexp2.None)
}

// FromStd recompiles a standard library expression with RE2-compatible semantics.
func FromStd(re *regexp.Regexp) (*Pattern, error) {
	re2, err := regexp2.Compile(re.String(), regexp2.RE2)
	if err != nil {
		return nil, &CompileError{Template: re.String(), Stage: "build", Err: err}
	}
	return newPattern(re2, re.String(), regexp2.RE2), nil
}

func newPattern(re *regexp2.Regexp, template string, opts regexp2.RegexOptions) *Pattern {
	groups := make(map[string]Kind)
	for _, name := range re.GetGroupNames() {
		if isNumericName(name) {
			continue
		}
		groups[name] = KindOf(name)
	}
	return &Pattern{re: re, template: template, opts: opts, groups: groups}
}

func isNumericName(name string) bool {
	_, err := strconv.Atoi(name)
	return err == nil
}
