// Package token defines the token classes the pattern compiler matches against:
// reserved keywords, operators, literal words and the identifier shape.
// Invariants:
//   - Keywords holds every reserved and future-reserved word exactly once.
//   - Reserved is a superset of Keywords; a word in Reserved is never captured
//     as a variable.
//   - Operator alternations are ordered longest-first, so "===" is preferred
//     over "==" and "=".
package token
