package pattern

import (
	"errors"
	"fmt"
)

var (
	// ErrUnterminatedEscape is returned for a REGEX( fragment without its closing parenthesis.
	ErrUnterminatedEscape = errors.New("unterminated REGEX( fragment")
	// ErrReservedRune is returned when a template contains a character the compiler uses internally.
	ErrReservedRune = errors.New("template contains a reserved private-use character")
)

// CompileError reports a template that cannot become a valid matcher.
type CompileError struct {
	Template string
	Stage    string
	Err      error
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("compile %q: %s: %v", e.Template, e.Stage, e.Err)
}

func (e *CompileError) Unwrap() error { return e.Err }
