package diag

import "sync"

// Reporter — минимальный контракт получения диагностик.
// Реализации: BagReporter (кладёт в Bag), SliceReporter, MultiReporter (fan-out).
type Reporter interface {
	Report(d Diagnostic)
}

// ReporterFunc adapts a function to Reporter.
type ReporterFunc func(d Diagnostic)

func (f ReporterFunc) Report(d Diagnostic) { f(d) }

// BagReporter — адаптер, который пишет в *Bag.
type BagReporter struct{ Bag *Bag }

func (r BagReporter) Report(d Diagnostic) {
	if r.Bag == nil {
		return
	}
	r.Bag.Add(d)
}

// SliceReporter collects diagnostics in order and tracks the failure flag.
// It is safe for concurrent use.
type SliceReporter struct {
	mu     sync.Mutex
	items  []Diagnostic
	result RunResult
}

func (r *SliceReporter) Report(d Diagnostic) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = append(r.items, d)
	r.result.Record(d)
}

// Items returns a copy of the collected diagnostics.
func (r *SliceReporter) Items() []Diagnostic {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Diagnostic, len(r.items))
	copy(out, r.items)
	return out
}

// Result returns the failure flag accumulated so far.
func (r *SliceReporter) Result() RunResult {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.result
}

// MultiReporter forwards every diagnostic to each reporter in order.
type MultiReporter []Reporter

func (m MultiReporter) Report(d Diagnostic) {
	for _, r := range m {
		if r != nil {
			r.Report(d)
		}
	}
}
