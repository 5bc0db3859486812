package rules

import (
	"checkr/internal/check"
	"checkr/internal/diag"
	"checkr/internal/source"
)

// Discover collects the rules applying to files in dir. Rules come back
// nearer levels first, in resource order within a level. The outcomes list
// every level that had a resource, in the same order, so callers can report
// the Malformed ones.
func Discover(dir string, loader Loader) ([]check.Rule, []Outcome) {
	if loader == nil {
		loader = FileLoader{}
	}
	var (
		rules    []check.Rule
		outcomes []Outcome
	)
	for d := range Ancestors(dir) {
		o := loader.Load(d)
		if o.Kind == NotFound {
			continue
		}
		outcomes = append(outcomes, o)
		if o.Kind == Found {
			rules = append(rules, o.Rules...)
		}
	}
	return rules, outcomes
}

// IsResource reports whether file is itself a rule resource. Resources are
// never checked.
func IsResource(file *source.FileContext) bool {
	return file.Name == "checkr" && file.Ext == "toml"
}

// Diagnostics turns Malformed outcomes into configuration diagnostics.
func Diagnostics(outcomes []Outcome) []diag.Diagnostic {
	var out []diag.Diagnostic
	for _, o := range outcomes {
		if o.Kind != Malformed {
			continue
		}
		out = append(out, diag.Diagnostic{
			Path:     o.Path,
			Origin:   o.Path,
			Code:     diag.CfgMalformedResource,
			Severity: diag.SevError,
			Message:  o.Reason,
		})
	}
	return out
}
