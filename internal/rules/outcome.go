package rules

import (
	"checkr/internal/check"
)

// Kind tags the result of loading one directory level.
type Kind uint8

const (
	NotFound Kind = iota
	Empty
	Malformed
	Found
)

func (k Kind) String() string {
	switch k {
	case NotFound:
		return "not-found"
	case Empty:
		return "empty"
	case Malformed:
		return "malformed"
	case Found:
		return "found"
	}
	return "unknown"
}

// Outcome is what one directory level contributed.
type Outcome struct {
	Kind   Kind
	Path   string // resource path
	Reason string // set for Malformed
	Rules  []check.Rule
	Digest [32]byte // sha256 of the resource bytes; zero for NotFound
}

// ConfigError returns the configuration error of a Malformed outcome, or nil.
func (o Outcome) ConfigError() *check.ConfigError {
	if o.Kind != Malformed {
		return nil
	}
	return &check.ConfigError{Path: o.Path, Reason: o.Reason}
}
