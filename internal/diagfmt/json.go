package diagfmt

import (
	"encoding/json"
	"io"

	"checkr/internal/diag"
)

// HitJSON is one match location.
type HitJSON struct {
	Line  int    `json:"line"`
	Start int    `json:"start_byte"`
	End   int    `json:"end_byte"`
	Text  string `json:"text"`
}

// DiagnosticJSON представляет диагностику в JSON формате
type DiagnosticJSON struct {
	Path     string    `json:"path"`
	Rule     string    `json:"rule,omitempty"`
	Origin   string    `json:"origin,omitempty"`
	Severity string    `json:"severity"`
	Code     string    `json:"code"`
	Message  string    `json:"message"`
	Hits     []HitJSON `json:"hits,omitempty"`
}

// DiagnosticsOutput представляет корневую структуру JSON вывода
type DiagnosticsOutput struct {
	Diagnostics []DiagnosticJSON `json:"diagnostics"`
	Count       int              `json:"count"`
	Failed      bool             `json:"failed"`
}

// BuildDiagnosticsOutput builds the JSON document without serializing it.
// Failed comes from result, so truncation by Max never hides a failure.
func BuildDiagnosticsOutput(diags []diag.Diagnostic, result diag.RunResult, opts JSONOpts) DiagnosticsOutput {
	n := limit(len(diags), opts.Max)
	out := make([]DiagnosticJSON, 0, n)
	for i := range n {
		d := &diags[i]
		dj := DiagnosticJSON{
			Path:     displayPath(d.Path, opts.PathMode, opts.BaseDir),
			Rule:     d.Rule,
			Origin:   d.Origin,
			Severity: d.Severity.String(),
			Code:     d.Code.ID(),
			Message:  d.Message,
		}
		if len(d.Hits) > 0 {
			dj.Hits = make([]HitJSON, len(d.Hits))
			for j, h := range d.Hits {
				dj.Hits[j] = HitJSON{Line: h.Line, Start: h.Start, End: h.End, Text: h.Text}
			}
		}
		out = append(out, dj)
	}
	return DiagnosticsOutput{
		Diagnostics: out,
		Count:       len(out),
		Failed:      result.Failed,
	}
}

// JSON writes the diagnostics as one indented JSON document.
func JSON(w io.Writer, diags []diag.Diagnostic, result diag.RunResult, opts JSONOpts) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(BuildDiagnosticsOutput(diags, result, opts))
}
