package diag

// Hit is one match of a reported pattern.
type Hit struct {
	Line  int    `msgpack:"line" json:"line"`   // 1-based
	Start int    `msgpack:"start" json:"start"` // byte offset, inclusive
	End   int    `msgpack:"end" json:"end"`     // byte offset, exclusive
	Text  string `msgpack:"text" json:"text"`
}

// Diagnostic is one finding, or one failure that is reported like a finding.
type Diagnostic struct {
	Path     string   `msgpack:"path" json:"path"`
	Rule     string   `msgpack:"rule,omitempty" json:"rule,omitempty"`
	Origin   string   `msgpack:"origin,omitempty" json:"origin,omitempty"` // resource path or "builtin"
	Code     Code     `msgpack:"code" json:"-"`
	Severity Severity `msgpack:"severity" json:"severity"`
	Message  string   `msgpack:"message" json:"message"`
	Hits     []Hit    `msgpack:"hits,omitempty" json:"hits,omitempty"`
}

// Line returns the line of the first hit, or 0.
func (d *Diagnostic) Line() int {
	if len(d.Hits) == 0 {
		return 0
	}
	return d.Hits[0].Line
}

// IsError reports whether d sets the failure flag.
func (d *Diagnostic) IsError() bool { return d.Severity >= SevError }
