package diagfmt

import (
	"io"

	"checkr/internal/diag"
)

// Short writes one line per hit, see diag.FormatShort.
func Short(w io.Writer, diags []diag.Diagnostic, baseDir string, maxItems int) error {
	text := diag.FormatShort(diags[:limit(len(diags), maxItems)], baseDir)
	if text == "" {
		return nil
	}
	_, err := io.WriteString(w, text+"\n")
	return err
}
