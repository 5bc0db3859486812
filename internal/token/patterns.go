package token

import (
	"cmp"
	"slices"
	"strings"
)

// Pattern sources use regexp2 syntax (lookbehind is required).
const (
	identChar  = `[$0-9A-Z_a-z]`
	identStart = `[$A-Z_a-z]`

	// WordBefore asserts the previous character cannot continue an identifier.
	WordBefore = `(?<!` + identChar + `)`
	// WordAfter asserts the next character cannot continue an identifier.
	WordAfter = `(?!` + identChar + `)`

	// IdentifierPattern matches one identifier-shaped token.
	IdentifierPattern = identStart + identChar + `*`

	doubleQuoted   = `"(?:\\[\s\S]|[^"\\])*"`
	singleQuoted   = `'(?:\\[\s\S]|[^'\\])*'`
	backtickQuoted = "`(?:\\\\[\\s\\S]|[^`\\\\])*`"
	// StringPattern matches a quoted string in any of the three quote styles.
	StringPattern = `(?:` + doubleQuoted + `|` + singleQuoted + `|` + backtickQuoted + `)`
	// NumberPattern matches a numeric literal, including hex, exponent and suffix forms.
	NumberPattern = WordBefore + `-?\d[0-9A-Za-z_.]*`
	// RegexLiteralPattern matches a slash-delimited regular expression literal with flags.
	RegexLiteralPattern = `/(?:\\.|[^/\\\n])+/[A-Za-z]*`
)

var (
	// KeywordPattern matches exactly one reserved keyword (no boundaries).
	KeywordPattern = alternation(Keywords)
	// OperatorPattern matches one unary or binary operator, longest first.
	OperatorPattern = alternation(Operators())
	// ReservedPattern matches any word that may not be captured as a variable.
	ReservedPattern = alternation(Reserved())
	// LiteralPattern matches one literal token.
	LiteralPattern = `(?:` + strings.Join([]string{
		StringPattern,
		NumberPattern,
		RegexLiteralPattern,
		WordBefore + alternation(LiteralWords) + WordAfter,
	}, "|") + `)`
)

// alternation builds a non-capturing group of escaped words, longest first.
func alternation(words []string) string {
	sorted := slices.Clone(words)
	slices.SortStableFunc(sorted, func(a, b string) int {
		return cmp.Compare(len(b), len(a))
	})
	quoted := make([]string, len(sorted))
	for i, w := range sorted {
		quoted[i] = EscapeMeta(w)
	}
	return `(?:` + strings.Join(quoted, "|") + `)`
}

const metaChars = `.*+-?^${}()|[]\`

// EscapeMeta escapes characters that are meaningful to the matcher but not in
// source code. Whitespace is left untouched.
func EscapeMeta(s string) string {
	if !strings.ContainsAny(s, metaChars) {
		return s
	}
	var b strings.Builder
	b.Grow(len(s) + 8)
	for _, r := range s {
		if strings.ContainsRune(metaChars, r) {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}
