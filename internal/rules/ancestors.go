package rules

import (
	"iter"
	"path/filepath"
)

// Ancestors yields dir and each of its parents up to the filesystem root.
// dir is made absolute first; if that fails it is only cleaned.
func Ancestors(dir string) iter.Seq[string] {
	return func(yield func(string) bool) {
		d, err := filepath.Abs(dir)
		if err != nil {
			d = filepath.Clean(dir)
		}
		for {
			if !yield(d) {
				return
			}
			parent := filepath.Dir(d)
			if parent == d {
				return
			}
			d = parent
		}
	}
}
