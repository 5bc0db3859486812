package source

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// FileContext is the per-file input handed to every rule. It is never
// mutated after construction.
type FileContext struct {
	Contents string
	Path     string // absolute, cleaned
	Dir      string // без завершающего разделителя
	Name     string // base name without extension
	Ext      string // extension without the leading dot
}

// Load reads path from disk and builds its FileContext.
// A UTF-8 BOM is stripped and UTF-16 input with a BOM is decoded to UTF-8;
// anything else is kept byte for byte, line endings included.
func Load(path string) (*FileContext, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", path, err)
	}
	// #nosec G304 -- path is provided by the caller
	raw, err := os.ReadFile(abs)
	if err != nil {
		return nil, err
	}
	text, err := Decode(raw)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", abs, err)
	}
	return NewFileContext(abs, text), nil
}

// Decode applies BOM detection to raw file bytes.
func Decode(raw []byte) (string, error) {
	out, _, err := transform.Bytes(unicode.BOMOverride(transform.Nop), raw)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// NewFileContext builds a context for contents that did not come from disk
// (tests, editor buffers). path is cleaned but not resolved.
func NewFileContext(path, contents string) *FileContext {
	path = filepath.Clean(path)
	dir, base := filepath.Split(path)
	name, ext := splitExt(base)
	return &FileContext{
		Contents: contents,
		Path:     path,
		Dir:      filepath.Clean(dir),
		Name:     name,
		Ext:      ext,
	}
}

// splitExt treats dotfiles such as ".eslintrc" as having no extension.
func splitExt(base string) (name, ext string) {
	i := strings.LastIndexByte(base, '.')
	if i <= 0 {
		return base, ""
	}
	return base[:i], base[i+1:]
}

// FileName returns the base name with its extension.
func (f *FileContext) FileName() string {
	return filepath.Base(f.Path)
}

// DisplayPath formats the path for output.
// mode: "absolute", "relative", "basename", "auto"
// baseDir is only used by "relative"; empty means the working directory.
func (f *FileContext) DisplayPath(mode, baseDir string) string {
	return FormatPath(f.Path, mode, baseDir)
}

// FormatPath renders path according to mode.
func FormatPath(path, mode, baseDir string) string {
	switch mode {
	case "absolute":
		if abs, err := filepath.Abs(path); err == nil {
			return filepath.ToSlash(abs)
		}
		return path
	case "relative":
		if baseDir == "" {
			if wd, err := os.Getwd(); err == nil {
				baseDir = wd
			}
		}
		return RelativePath(path, baseDir)
	case "basename":
		return filepath.Base(path)
	case "auto":
		// короткие пути как есть, длинные абсолютные - относительно cwd
		if len(path) < 40 || !filepath.IsAbs(path) {
			return filepath.ToSlash(path)
		}
		if wd, err := os.Getwd(); err == nil {
			return RelativePath(path, wd)
		}
		return path
	default:
		return path
	}
}

// RelativePath returns path relative to baseDir, falling back to the cleaned
// path when it lies outside baseDir.
func RelativePath(path, baseDir string) string {
	rel, err := filepath.Rel(baseDir, path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return filepath.ToSlash(filepath.Clean(path))
	}
	return filepath.ToSlash(rel)
}
