// Package source turns files into the immutable snapshots rules see.
//
// A FileContext carries the raw text plus the path split the way rule
// callbacks expect it: directory, base name without extension, and the
// extension without its leading dot. A LineIndex maps byte offsets produced
// by matching that same text back to 1-based line numbers.
package source
