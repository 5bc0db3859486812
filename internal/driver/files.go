package driver

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
)

// skipDirs are never descended into when a directory is checked.
var skipDirs = map[string]bool{
	".git":         true,
	"node_modules": true,
}

// ExpandPaths turns command-line arguments into the list of files to check.
// Directories are walked recursively; files keep their position. Missing
// paths are kept so the check reports them as unreadable. Duplicates are
// dropped, first occurrence wins.
func ExpandPaths(args []string) ([]string, error) {
	seen := make(map[string]bool, len(args))
	var out []string
	add := func(p string) {
		key := filepath.Clean(p)
		if abs, err := filepath.Abs(p); err == nil {
			key = abs
		}
		if seen[key] {
			return
		}
		seen[key] = true
		out = append(out, p)
	}
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				add(arg)
				continue
			}
			return nil, err
		}
		if !info.IsDir() {
			add(arg)
			continue
		}
		files, err := listFiles(arg)
		if err != nil {
			return nil, err
		}
		for _, f := range files {
			add(f)
		}
	}
	return out, nil
}

// listFiles returns the regular files under dir, sorted.
func listFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != dir && skipDirs[d.Name()] {
				return filepath.SkipDir
			}
			return nil
		}
		if d.Type().IsRegular() {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	// Сортируем для детерминированного порядка
	sort.Strings(files)
	return files, nil
}
