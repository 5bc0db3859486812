package rules

import (
	"crypto/sha256"
	"fmt"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/dlclark/regexp2"

	"checkr/internal/check"
	"checkr/internal/pattern"
	"checkr/internal/source"
)

// ResourceName is the per-directory rule resource.
const ResourceName = "checkr.toml"

type resourceFile struct {
	Rule []resourceRule `toml:"rule"`
}

type resourceRule struct {
	Name       string   `toml:"name"`
	Use        *string  `toml:"use"`
	Code       *string  `toml:"code"`
	Text       *string  `toml:"text"`
	Regex      *string  `toml:"regex"`
	Message    any      `toml:"message"`
	Severity   any      `toml:"severity"`
	Extensions []string `toml:"extensions"`
}

// Parse decodes resource bytes read from path. Builtins named by "use" are
// looked up in reg. The returned outcome is never NotFound.
func Parse(path string, data []byte, reg *Registry) Outcome {
	if reg == nil {
		reg = Default
	}
	out := Outcome{Path: path, Digest: sha256.Sum256(data)}
	if strings.TrimSpace(string(data)) == "" {
		out.Kind = Empty
		return out
	}
	var doc resourceFile
	meta, err := toml.Decode(string(data), &doc)
	if err != nil {
		return malformed(out, fmt.Sprintf("failed to parse TOML: %v", err))
	}
	if keys := meta.Undecoded(); len(keys) > 0 {
		names := make([]string, 0, len(keys))
		for _, k := range keys {
			names = append(names, k.String())
		}
		return malformed(out, "unknown keys: "+strings.Join(names, ", "))
	}
	if !meta.IsDefined("rule") || len(doc.Rule) == 0 {
		out.Kind = Empty
		return out
	}
	rules := make([]check.Rule, 0, len(doc.Rule))
	for i, entry := range doc.Rule {
		rule, err := entry.build(i, reg)
		if err != nil {
			return malformed(out, fmt.Sprintf("rule %d: %v", i+1, err))
		}
		rule.Origin = path
		rules = append(rules, rule)
	}
	out.Kind = Found
	out.Rules = rules
	return out
}

func malformed(out Outcome, reason string) Outcome {
	out.Kind = Malformed
	out.Reason = reason
	return out
}

func (e resourceRule) build(index int, reg *Registry) (check.Rule, error) {
	set := 0
	for _, v := range []*string{e.Use, e.Code, e.Text, e.Regex} {
		if v != nil {
			set++
		}
	}
	if set != 1 {
		return check.Rule{}, fmt.Errorf("exactly one of use, code, text or regex is required, got %d", set)
	}
	name := strings.TrimSpace(e.Name)
	var fn check.Func
	switch {
	case e.Use != nil:
		b, ok := reg.Lookup(*e.Use)
		if !ok {
			return check.Rule{}, fmt.Errorf("unknown builtin %q", *e.Use)
		}
		if name == "" {
			name = b.Name
		}
		fn = override(b.Func, e.Message, e.Severity)
	case e.Code != nil:
		p, err := pattern.Compile(*e.Code)
		if err != nil {
			return check.Rule{}, err
		}
		fn = reportAll(p, e.Message, e.Severity)
	case e.Text != nil:
		if *e.Text == "" {
			return check.Rule{}, fmt.Errorf("text must not be empty")
		}
		fn = reportAll(*e.Text, e.Message, e.Severity)
	case e.Regex != nil:
		re, err := regexp2.Compile(*e.Regex, regexp2.None)
		if err != nil {
			return check.Rule{}, fmt.Errorf("invalid regex: %w", err)
		}
		fn = reportAll(re, e.Message, e.Severity)
	}
	if name == "" {
		name = fmt.Sprintf("rule-%d", index+1)
	}
	return check.Rule{Name: name, Func: onlyExtensions(e.Extensions, fn)}, nil
}

// reportAll reports every match of target. message and severity are passed
// through untouched so the runner validates them like any callback argument.
func reportAll(target, message, severity any) check.Func {
	return func(_ *source.FileContext, _ check.Capabilities, report check.ReportFunc) error {
		if severity == nil {
			report(target, message)
		} else {
			report(target, message, severity)
		}
		return nil
	}
}

// override replaces the message and severity a builtin reports with.
func override(fn check.Func, message, severity any) check.Func {
	if message == nil && severity == nil {
		return fn
	}
	return func(file *source.FileContext, caps check.Capabilities, report check.ReportFunc) error {
		return fn(file, caps, func(target, msg any, sev ...any) {
			if message != nil {
				msg = message
			}
			if severity != nil {
				sev = []any{severity}
			}
			report(target, msg, sev...)
		})
	}
}

// onlyExtensions skips files whose extension is not listed. An empty list
// matches every file.
func onlyExtensions(exts []string, fn check.Func) check.Func {
	if len(exts) == 0 {
		return fn
	}
	norm := make([]string, 0, len(exts))
	for _, e := range exts {
		norm = append(norm, strings.TrimPrefix(strings.ToLower(strings.TrimSpace(e)), "."))
	}
	return func(file *source.FileContext, caps check.Capabilities, report check.ReportFunc) error {
		if !slices.Contains(norm, strings.ToLower(file.Ext)) {
			return nil
		}
		return fn(file, caps, report)
	}
}
