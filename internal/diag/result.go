package diag

// RunResult is the aggregate outcome of a run. The zero value is a clean run.
type RunResult struct {
	Failed bool `msgpack:"failed" json:"failed"`
}

// Record folds one diagnostic into the result.
func (r *RunResult) Record(d Diagnostic) {
	if d.IsError() {
		r.Failed = true
	}
}

// Merge combines two results.
func (r RunResult) Merge(other RunResult) RunResult {
	return RunResult{Failed: r.Failed || other.Failed}
}

// ExitCode maps the result to a process status.
func (r RunResult) ExitCode() int {
	if r.Failed {
		return 1
	}
	return 0
}
