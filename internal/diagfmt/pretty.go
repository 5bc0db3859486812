package diagfmt

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"checkr/internal/diag"
)

type palette struct {
	err, warn, info, dim *color.Color
}

func newPalette(enabled bool) palette {
	p := palette{
		err:  color.New(color.FgRed, color.Bold),
		warn: color.New(color.FgYellow, color.Bold),
		info: color.New(color.FgCyan, color.Bold),
		dim:  color.New(color.Faint),
	}
	for _, c := range []*color.Color{p.err, p.warn, p.info, p.dim} {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

func (p palette) label(sev diag.Severity) string {
	switch sev {
	case diag.SevError:
		return p.err.Sprint(sev.String())
	case diag.SevWarning:
		return p.warn.Sprint(sev.String())
	default:
		return p.info.Sprint(sev.String())
	}
}

// Pretty writes diagnostics the way a person reads them in a terminal:
//
//	<severity> <message>
//
//	<path>:<line>
//	<matched text>
//
// one location block per hit. Diagnostics without hits (configuration,
// compile, IO and internal problems) print on one line as
// "<severity> [<family>] <path>: <reason>".
func Pretty(w io.Writer, diags []diag.Diagnostic, opts PrettyOpts) error {
	p := newPalette(opts.Color)
	n := limit(len(diags), opts.Max)
	for i := range n {
		d := &diags[i]
		path := displayPath(d.Path, opts.PathMode, opts.BaseDir)
		if len(d.Hits) == 0 {
			reason := d.Message
			if d.Rule != "" {
				reason = d.Rule + ": " + reason
			}
			if _, err := fmt.Fprintf(w, "%s %s %s: %s\n", p.label(d.Severity), p.dim.Sprint("["+family(d.Code)+"]"), path, reason); err != nil {
				return err
			}
			continue
		}
		if _, err := fmt.Fprintf(w, "%s %s\n", p.label(d.Severity), d.Message); err != nil {
			return err
		}
		for _, h := range d.Hits {
			if _, err := fmt.Fprintf(w, "\n%s:%d\n%s\n", path, h.Line, h.Text); err != nil {
				return err
			}
		}
		if i < n-1 {
			if _, err := io.WriteString(w, "\n"); err != nil {
				return err
			}
		}
	}
	if n < len(diags) {
		if _, err := fmt.Fprintf(w, "%s\n", p.dim.Sprintf("... %d more not shown", len(diags)-n)); err != nil {
			return err
		}
	}
	if opts.Summary && len(diags) > 0 {
		if _, err := fmt.Fprintf(w, "\n%s\n", Summary(diags)); err != nil {
			return err
		}
	}
	return nil
}

// family names the kind of problem a hit-less diagnostic describes.
func family(code diag.Code) string {
	switch {
	case code.IsConfig(), strings.HasPrefix(code.ID(), "CMP"):
		return "config"
	case strings.HasPrefix(code.ID(), "IO"):
		return "io"
	case strings.HasPrefix(code.ID(), "INT"):
		return "internal"
	default:
		return "rule"
	}
}

// Summary counts diagnostics by severity, e.g. "3 problems (1 error, 2 warnings)".
func Summary(diags []diag.Diagnostic) string {
	var errs, warns, infos int
	for i := range diags {
		switch diags[i].Severity {
		case diag.SevError:
			errs++
		case diag.SevWarning:
			warns++
		default:
			infos++
		}
	}
	var parts []string
	if errs > 0 {
		parts = append(parts, plural(errs, "error", "errors"))
	}
	if warns > 0 {
		parts = append(parts, plural(warns, "warning", "warnings"))
	}
	if infos > 0 {
		parts = append(parts, plural(infos, "info", "info"))
	}
	return fmt.Sprintf("%s (%s)", plural(len(diags), "problem", "problems"), strings.Join(parts, ", "))
}

func plural(n int, one, many string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, one)
	}
	return fmt.Sprintf("%d %s", n, many)
}
