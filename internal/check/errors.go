package check

import "fmt"

// ConfigError describes a rule resource or report call that cannot be used.
type ConfigError struct {
	Path   string // resource or checked file
	Rule   string
	Reason string
}

func (e *ConfigError) Error() string {
	if e.Rule != "" {
		return fmt.Sprintf("%s: rule %s: %s", e.Path, e.Rule, e.Reason)
	}
	return fmt.Sprintf("%s: %s", e.Path, e.Reason)
}
