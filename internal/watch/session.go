package watch

import (
	"context"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"checkr/internal/diag"
	"checkr/internal/driver"
	"checkr/internal/rules"
)

// Update is what one re-check changed for one file.
type Update struct {
	Path        string
	Cleared     int // diagnostics dropped from the previous check
	Diagnostics []diag.Diagnostic
	Removed     bool // file is gone; nothing was checked
	RunResult   diag.RunResult
}

// Session keeps the latest diagnostics per file and re-checks files as they
// change. Editing a checkr.toml re-checks every known file below it.
type Session struct {
	opts   driver.Options
	loader *rules.CachedLoader
	emit   func(Update)

	mu      sync.Mutex
	current map[string][]diag.Diagnostic
}

// NewSession wraps opts with a resource cache the session can invalidate.
// emit receives one Update per checked or removed file.
func NewSession(opts driver.Options, emit func(Update)) *Session {
	loader := rules.NewCachedLoader(opts.Loader)
	opts.Loader = loader
	return &Session{
		opts:    opts,
		loader:  loader,
		emit:    emit,
		current: make(map[string][]diag.Diagnostic),
	}
}

// Check re-checks paths and replaces their previous diagnostics.
func (s *Session) Check(ctx context.Context, paths []string) (diag.RunResult, error) {
	var total diag.RunResult
	if len(paths) == 0 {
		return total, nil
	}
	report, err := driver.CheckFiles(ctx, paths, s.opts)
	if err != nil {
		return total, err
	}
	// проблемы конфигурации не привязаны к файлу: показываем с первым файлом
	var config []diag.Diagnostic
	for _, d := range report.Diagnostics {
		if d.Code.IsConfig() && len(d.Hits) == 0 && d.Rule == "" {
			config = append(config, d)
		}
	}
	for i, fr := range report.Files {
		diags := fr.Diagnostics
		if i == 0 && len(config) > 0 {
			diags = append(slices.Clone(config), diags...)
		}
		total = total.Merge(s.replace(fr.Path, diags, false))
	}
	return total, nil
}

func (s *Session) replace(path string, diags []diag.Diagnostic, removed bool) diag.RunResult {
	s.mu.Lock()
	cleared := len(s.current[path])
	if removed {
		delete(s.current, path)
	} else {
		s.current[path] = diags
	}
	s.mu.Unlock()

	var res diag.RunResult
	for _, d := range diags {
		res.Record(d)
	}
	if s.emit != nil {
		s.emit(Update{Path: path, Cleared: cleared, Diagnostics: diags, Removed: removed, RunResult: res})
	}
	return res
}

// Handle applies one debounced batch of changes.
func (s *Session) Handle(ctx context.Context, changes []Change) (diag.RunResult, error) {
	var (
		recheck []string
		total   diag.RunResult
	)
	queued := make(map[string]bool)
	queue := func(p string) {
		if !queued[p] {
			queued[p] = true
			recheck = append(recheck, p)
		}
	}
	for _, c := range changes {
		path := c.Path
		if abs, err := filepath.Abs(path); err == nil {
			path = abs
		}
		if filepath.Base(path) == rules.ResourceName {
			dir := filepath.Dir(path)
			s.loader.Invalidate(dir)
			for _, known := range s.knownUnder(dir) {
				queue(known)
			}
			continue
		}
		if c.Op == OpRemove || c.Op == OpRename {
			if _, err := os.Stat(path); err != nil {
				if s.known(path) {
					total = total.Merge(s.replace(path, nil, true))
				}
				continue
			}
		}
		if info, err := os.Stat(path); err != nil || !info.Mode().IsRegular() {
			continue
		}
		queue(path)
	}
	res, err := s.Check(ctx, recheck)
	return total.Merge(res), err
}

// Diagnostics returns the latest diagnostics of path.
func (s *Session) Diagnostics(path string) []diag.Diagnostic {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.current[path])
}

// Failed reports whether any known file currently has an error.
func (s *Session) Failed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, diags := range s.current {
		for i := range diags {
			if diags[i].IsError() {
				return true
			}
		}
	}
	return false
}

func (s *Session) known(path string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.current[path]
	return ok
}

func (s *Session) knownUnder(dir string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	prefix := dir + string(filepath.Separator)
	var out []string
	for p := range s.current {
		if strings.HasPrefix(p, prefix) {
			out = append(out, p)
		}
	}
	slices.Sort(out)
	return out
}

// Len returns the number of files with a current result.
func (s *Session) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.current)
}
