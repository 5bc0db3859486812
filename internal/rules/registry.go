package rules

import (
	"fmt"
	"slices"
	"sync"

	"checkr/internal/check"
)

// Builtin is a rule compiled into the binary.
type Builtin struct {
	Name string
	Doc  string
	Func check.Func
}

// Rule returns the builtin as a check.Rule.
func (b Builtin) Rule() check.Rule {
	return check.Rule{Name: b.Name, Origin: check.OriginBuiltin, Func: b.Func}
}

// Registry holds builtins by name. It is safe for concurrent use.
type Registry struct {
	mu     sync.Mutex
	byName map[string]Builtin
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{byName: make(map[string]Builtin)}
}

// Default is populated with the builtin rules at init.
var Default = NewRegistry()

// Register adds a builtin. Names must be unique.
func (r *Registry) Register(b Builtin) error {
	if b.Name == "" || b.Func == nil {
		return fmt.Errorf("builtin needs a name and a callback")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, dup := r.byName[b.Name]; dup {
		return fmt.Errorf("builtin %q already registered", b.Name)
	}
	r.byName[b.Name] = b
	return nil
}

// MustRegister is like Register but panics on error.
func (r *Registry) MustRegister(b Builtin) {
	if err := r.Register(b); err != nil {
		panic(err)
	}
}

// Lookup returns the builtin with the given name.
func (r *Registry) Lookup(name string) (Builtin, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.byName[name]
	return b, ok
}

// All returns the builtins sorted by name.
func (r *Registry) All() []Builtin {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Builtin, 0, len(r.byName))
	for _, b := range r.byName {
		out = append(out, b)
	}
	slices.SortFunc(out, func(a, b Builtin) int {
		switch {
		case a.Name < b.Name:
			return -1
		case a.Name > b.Name:
			return 1
		}
		return 0
	})
	return out
}

// Len returns the number of builtins.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.byName)
}
