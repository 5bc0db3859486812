package check

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"regexp"
	"runtime/debug"
	"strconv"
	"time"

	"github.com/dlclark/regexp2"

	"checkr/internal/diag"
	"checkr/internal/pattern"
	"checkr/internal/source"
	"checkr/internal/trace"
)

// DefaultMaxMatches is the count guard applied when Options leaves it unset.
const DefaultMaxMatches = 50

// Options tune one Run.
type Options struct {
	MaxMatches   int           // count guard per report call; <= 0 means DefaultMaxMatches
	MatchTimeout time.Duration // per match attempt; 0 means no limit
	Caps         Capabilities  // nil means OSCapabilities rooted at the file's directory
	Cache        *pattern.Cache
}

// Result is what checking one file produced.
type Result struct {
	Diagnostics []diag.Diagnostic
	RunResult   diag.RunResult
}

// Run applies rules to file in order. It never fails: every problem is
// turned into a diagnostic and the remaining rules still run. A cancelled
// context stops before the next rule.
func Run(ctx context.Context, file *source.FileContext, rules []Rule, opts Options) Result {
	if opts.MaxMatches <= 0 {
		opts.MaxMatches = DefaultMaxMatches
	}
	caps := opts.Caps
	if caps == nil {
		caps = NewOSCapabilities(ctx, file.Dir, opts.MatchTimeout, opts.Cache)
	}
	r := &runner{
		file:   file,
		opts:   opts,
		caps:   caps,
		tracer: trace.FromContext(ctx),
		parent: trace.CurrentSpan(ctx).SpanID,
	}
	for _, rule := range rules {
		if ctx.Err() != nil {
			trace.Point(r.tracer, trace.ScopeFile, "cancelled", file.Path)
			break
		}
		r.runRule(rule)
	}
	return r.res
}

type runner struct {
	file   *source.FileContext
	lines  *source.LineIndex
	opts   Options
	caps   Capabilities
	tracer trace.Tracer
	parent uint64
	res    Result
}

func (r *runner) add(d diag.Diagnostic) {
	r.res.Diagnostics = append(r.res.Diagnostics, d)
	r.res.RunResult.Record(d)
}

func (r *runner) runRule(rule Rule) {
	span := trace.Begin(r.tracer, trace.ScopeRule, "rule:"+rule.Name, r.parent)
	before := len(r.res.Diagnostics)

	panicked, err := r.call(rule)
	switch {
	case panicked != nil:
		trace.Error(r.tracer, "rule-panic", fmt.Sprint(panicked), "rule", rule.Name, "file", r.file.Path)
		r.add(r.ruleDiag(rule, diag.IntRulePanic, fmt.Sprintf("rule panicked: %v", panicked)))
	case err != nil:
		r.add(r.errorDiag(rule, err))
	}

	span.WithExtra("diagnostics", strconv.Itoa(len(r.res.Diagnostics)-before)).End("")
}

// call invokes the rule, converting a panic into a value.
func (r *runner) call(rule Rule) (panicked any, err error) {
	defer func() {
		if p := recover(); p != nil {
			panicked = p
			if r.tracer.Level() >= trace.LevelDebug {
				trace.Point(r.tracer, trace.ScopeRule, "stack", string(debug.Stack()))
			}
		}
	}()
	if rule.Func == nil {
		return nil, &ConfigError{Path: rule.Origin, Rule: rule.Name, Reason: "rule has no callback"}
	}
	return nil, rule.Func(r.file, r.caps, r.reporter(rule))
}

func (r *runner) errorDiag(rule Rule, err error) diag.Diagnostic {
	var (
		ce  *pattern.CompileError
		cfg *ConfigError
	)
	switch {
	case errors.As(err, &ce):
		trace.Point(r.tracer, trace.ScopeFile, "compile-error", ce.Error(), "rule", rule.Name)
		return r.ruleDiag(rule, diag.CmpBadTemplate, err.Error())
	case errors.As(err, &cfg):
		trace.Point(r.tracer, trace.ScopeFile, "config-error", cfg.Error())
		return r.ruleDiag(rule, diag.CfgMalformedResource, err.Error())
	default:
		return r.ruleDiag(rule, diag.RulFailed, err.Error())
	}
}

func (r *runner) ruleDiag(rule Rule, code diag.Code, msg string) diag.Diagnostic {
	return diag.Diagnostic{
		Path:     r.file.Path,
		Rule:     rule.Name,
		Origin:   rule.Origin,
		Code:     code,
		Severity: diag.SevError,
		Message:  msg,
	}
}

func (r *runner) reporter(rule Rule) ReportFunc {
	return func(target, message any, severity ...any) {
		p, code, reason := r.resolve(target)
		if p == nil {
			trace.Point(r.tracer, trace.ScopeFile, "config-error", reason, "rule", rule.Name)
			r.add(r.ruleDiag(rule, code, reason))
			return
		}
		msg, ok := message.(string)
		if !ok {
			reason := fmt.Sprintf("report message must be a string, got %T", message)
			trace.Point(r.tracer, trace.ScopeFile, "config-error", reason, "rule", rule.Name)
			r.add(r.ruleDiag(rule, diag.CfgBadReportMessage, reason))
			return
		}
		var sev any
		if len(severity) > 0 {
			sev = severity[0]
		}

		hits := r.collect(rule, p)
		if len(hits) == 0 {
			return
		}
		r.add(diag.Diagnostic{
			Path:     r.file.Path,
			Rule:     rule.Name,
			Origin:   rule.Origin,
			Code:     diag.RulFinding,
			Severity: diag.ParseSeverity(sev),
			Message:  msg,
			Hits:     hits,
		})
	}
}

// resolve turns a report target into a pattern. On failure it returns nil
// plus the diagnostic code and reason.
func (r *runner) resolve(target any) (*pattern.Pattern, diag.Code, string) {
	var p *pattern.Pattern
	switch t := target.(type) {
	case *pattern.Pattern:
		p = t
	case string:
		p = pattern.Exact(t)
	case *regexp2.Regexp:
		p = pattern.FromRegexp(t)
	case *regexp.Regexp:
		std, err := pattern.FromStd(t)
		if err != nil {
			return nil, diag.CmpBadRegex, err.Error()
		}
		p = std
	}
	if p == nil {
		return nil, diag.CfgBadReportTarget, fmt.Sprintf("report target must be a pattern or a string, got %T", target)
	}
	return p.WithTimeout(r.opts.MatchTimeout), 0, ""
}

// collect gathers matches under the count and progress guards.
func (r *runner) collect(rule Rule, p *pattern.Pattern) []diag.Hit {
	span := trace.Begin(r.tracer, trace.ScopeReport, "report:"+rule.Name, r.parent)
	defer span.End("")

	hits := guardedHits(p.Matches(r.file.Contents), r.opts.MaxMatches,
		func(offset int) int { return r.lineIndex().Line(offset) },
		func(event, detail string) {
			trace.Point(r.tracer, trace.ScopeReport, event, detail, "rule", rule.Name)
		})
	span.WithExtra("hits", strconv.Itoa(len(hits)))
	return hits
}

// guardedHits drains matches into hits. It stops on the first error, once
// more than limit matches were seen, or when a match repeats an earlier
// (offset, length) pair. note receives the reason for any early stop.
func guardedHits(matches iter.Seq2[pattern.Match, error], limit int, line func(int) int, note func(event, detail string)) []diag.Hit {
	type identity struct{ start, length int }
	seen := make(map[identity]struct{})
	counter := 0
	var hits []diag.Hit
	for m, err := range matches {
		if err != nil {
			note("match-error", err.Error())
			break
		}
		counter++
		if counter > limit {
			note("count-guard", strconv.Itoa(limit))
			break
		}
		id := identity{m.Start, m.Len()}
		if _, dup := seen[id]; dup {
			note("progress-guard", strconv.Itoa(m.Start))
			break
		}
		seen[id] = struct{}{}

		hits = append(hits, diag.Hit{
			Line:  line(m.Start),
			Start: m.Start,
			End:   m.End,
			Text:  m.Text,
		})
	}
	return hits
}

func (r *runner) lineIndex() *source.LineIndex {
	if r.lines == nil {
		r.lines = source.NewLineIndex(r.file.Contents)
	}
	return r.lines
}
