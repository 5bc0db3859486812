// Package pipeline carries per-file progress events from the driver to
// whoever renders them (the progress UI, watch mode, tests).
package pipeline
