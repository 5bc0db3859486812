package rules

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

// Loader loads the rule resource of one directory.
type Loader interface {
	Load(dir string) Outcome
}

// FileLoader reads checkr.toml from disk on every call.
type FileLoader struct {
	Registry *Registry // nil means Default
}

func (l FileLoader) Load(dir string) Outcome {
	path := filepath.Join(dir, ResourceName)
	// #nosec G304 -- resource path is derived from the checked file
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Outcome{Kind: NotFound, Path: path}
		}
		return Outcome{
			Kind:   Malformed,
			Path:   path,
			Reason: fmt.Sprintf("failed to read: %v", err),
			Digest: sha256.Sum256(nil),
		}
	}
	return Parse(path, data, l.Registry)
}

// CachedLoader memoises another loader per directory. Concurrent loads of
// the same directory share one call.
type CachedLoader struct {
	next    Loader
	mu      sync.Mutex
	entries map[string]*cachedOutcome
}

type cachedOutcome struct {
	once sync.Once
	out  Outcome
}

// NewCachedLoader wraps next; a nil next means FileLoader{}.
func NewCachedLoader(next Loader) *CachedLoader {
	if next == nil {
		next = FileLoader{}
	}
	return &CachedLoader{next: next, entries: make(map[string]*cachedOutcome)}
}

func (c *CachedLoader) Load(dir string) Outcome {
	c.mu.Lock()
	e, ok := c.entries[dir]
	if !ok {
		e = &cachedOutcome{}
		c.entries[dir] = e
	}
	c.mu.Unlock()
	e.once.Do(func() { e.out = c.next.Load(dir) })
	return e.out
}

// Invalidate drops the cached outcome of dir, e.g. after its resource changed.
func (c *CachedLoader) Invalidate(dir string) {
	c.mu.Lock()
	delete(c.entries, dir)
	c.mu.Unlock()
}

// Reset drops every cached outcome.
func (c *CachedLoader) Reset() {
	c.mu.Lock()
	clear(c.entries)
	c.mu.Unlock()
}
