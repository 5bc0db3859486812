package check

import (
	"bytes"
	"context"
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"checkr/internal/pattern"
)

// Capabilities is everything a rule may use beyond the file itself.
// Relative paths are resolved against the checked file's directory.
type Capabilities interface {
	ReadFile(path string) ([]byte, error)
	Stat(path string) (fs.FileInfo, error)
	Glob(pattern string) ([]string, error)
	// Exec runs a program in the file's directory and returns its stdout.
	Exec(name string, args ...string) (string, error)
	// Code compiles a template, the same way pattern.Compile does.
	Code(parts ...any) (*pattern.Pattern, error)
}

// OSCapabilities implements Capabilities on the local system.
type OSCapabilities struct {
	ctx     context.Context
	dir     string
	timeout time.Duration
	cache   *pattern.Cache
}

// NewOSCapabilities binds capabilities to a directory. cache may be shared
// between files; nil disables memoisation.
func NewOSCapabilities(ctx context.Context, dir string, matchTimeout time.Duration, cache *pattern.Cache) *OSCapabilities {
	if ctx == nil {
		ctx = context.Background()
	}
	return &OSCapabilities{ctx: ctx, dir: dir, timeout: matchTimeout, cache: cache}
}

func (c *OSCapabilities) resolve(path string) string {
	if filepath.IsAbs(path) || c.dir == "" {
		return path
	}
	return filepath.Join(c.dir, path)
}

func (c *OSCapabilities) ReadFile(path string) ([]byte, error) {
	// #nosec G304 -- rules read files by design
	return os.ReadFile(c.resolve(path))
}

func (c *OSCapabilities) Stat(path string) (fs.FileInfo, error) {
	return os.Stat(c.resolve(path))
}

func (c *OSCapabilities) Glob(pattern string) ([]string, error) {
	return filepath.Glob(c.resolve(pattern))
}

func (c *OSCapabilities) Exec(name string, args ...string) (string, error) {
	// #nosec G204 -- rules choose their commands
	cmd := exec.CommandContext(c.ctx, name, args...)
	cmd.Dir = c.dir
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return string(out), fmt.Errorf("%s: %w: %s", name, err, msg)
		}
		return string(out), fmt.Errorf("%s: %w", name, err)
	}
	return string(out), nil
}

func (c *OSCapabilities) Code(parts ...any) (*pattern.Pattern, error) {
	var (
		p   *pattern.Pattern
		err error
	)
	if c.cache != nil {
		p, err = c.cache.Compile(parts...)
	} else {
		p, err = pattern.Compile(parts...)
	}
	if err != nil {
		return nil, err
	}
	return p.WithTimeout(c.timeout), nil
}
