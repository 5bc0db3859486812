package diag

import (
	"fmt"
	"sort"
	"strings"

	"checkr/internal/source"
)

type shortLine struct {
	Path     string
	Line     int
	Severity Severity
	Code     string
	Rule     string
	Message  string
}

// FormatShort renders diagnostics into a stable, one-line-per-hit form used by
// the short output format and by end-to-end tests. Paths are rendered relative
// to baseDir when it is non-empty. Diagnostics without hits produce a single
// line without a line number.
func FormatShort(diags []Diagnostic, baseDir string) string {
	if len(diags) == 0 {
		return ""
	}
	lines := make([]shortLine, 0, len(diags))
	for i := range diags {
		lines = appendShort(lines, &diags[i], baseDir)
	}

	sort.SliceStable(lines, func(i, j int) bool {
		li, lj := lines[i], lines[j]
		if li.Path != lj.Path {
			return li.Path < lj.Path
		}
		if li.Line != lj.Line {
			return li.Line < lj.Line
		}
		if li.Severity != lj.Severity {
			return li.Severity > lj.Severity
		}
		if li.Code != lj.Code {
			return li.Code < lj.Code
		}
		return li.Message < lj.Message
	})

	var b strings.Builder
	for i, l := range lines {
		if l.Line > 0 {
			fmt.Fprintf(&b, "%s:%d: %s %s", l.Path, l.Line, l.Severity, l.Code)
		} else {
			fmt.Fprintf(&b, "%s: %s %s", l.Path, l.Severity, l.Code)
		}
		if l.Rule != "" {
			fmt.Fprintf(&b, " %s", l.Rule)
		}
		fmt.Fprintf(&b, ": %s", l.Message)
		if i < len(lines)-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

func appendShort(out []shortLine, d *Diagnostic, baseDir string) []shortLine {
	path := d.Path
	if baseDir != "" && path != "" {
		path = source.RelativePath(path, baseDir)
	}
	base := shortLine{
		Path:     path,
		Severity: d.Severity,
		Code:     d.Code.ID(),
		Rule:     d.Rule,
		Message:  sanitizeMessage(d.Message),
	}
	if len(d.Hits) == 0 {
		return append(out, base)
	}
	for _, h := range d.Hits {
		l := base
		l.Line = h.Line
		out = append(out, l)
	}
	return out
}

func sanitizeMessage(msg string) string {
	msg = strings.ReplaceAll(msg, "\r\n", "\n")
	msg = strings.ReplaceAll(msg, "\r", "\n")
	msg = strings.ReplaceAll(msg, "\n", " ")
	return strings.TrimSpace(msg)
}
