package diag

import (
	"fmt"
	"strings"
)

// Severity defines the importance of a diagnostic.
type Severity uint8

const (
	// SevInfo is for informational diagnostics.
	SevInfo Severity = iota
	// SevWarning is for warning diagnostics.
	SevWarning
	SevError
)

func (s Severity) String() string {
	switch s {
	case SevInfo:
		return "info"
	case SevWarning:
		return "warn"
	case SevError:
		return "error"
	}
	return "unknown"
}

// ParseSeverity normalises a rule-supplied severity. Only the strings
// "error", "warn", "warning" and "info" are recognised; anything else,
// including a missing value or a non-string, is an error.
func ParseSeverity(v any) Severity {
	s, ok := v.(string)
	if !ok {
		return SevError
	}
	switch s {
	case "info":
		return SevInfo
	case "warn", "warning":
		return SevWarning
	default:
		return SevError
	}
}

// LookupSeverity is the strict variant used for configuration values.
func LookupSeverity(s string) (Severity, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "info":
		return SevInfo, nil
	case "warn", "warning":
		return SevWarning, nil
	case "error":
		return SevError, nil
	}
	return SevError, fmt.Errorf("unknown severity %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Severity) UnmarshalText(b []byte) error {
	v, err := LookupSeverity(string(b))
	if err != nil {
		return err
	}
	*s = v
	return nil
}
