// Package pattern compiles code-shaped templates into matchers.
//
// A template is ordinary source text with typed placeholders:
//
//	$name       variable: one identifier that is not a reserved word
//	$1, $2      literal: a string, number, regex literal or literal word
//	$@, $@name  operator
//	$#, $#name  keyword
//	$$, $$$     block: the shortest / longest run of any text
//	REGEX(...)  the enclosed expression is inserted verbatim
//
// Repeating a named placeholder of the same kind turns the later occurrences
// into back-references, so `$a == $a` matches "x == x" but not "x == y".
// Whitespace between tokens is lenient: `if($a)` and `if ( $a )` compile to
// the same matcher.
//
// Compilation runs a fixed, ordered list of stages (see Stages). The order is
// load-bearing: placeholders are protected before spacing and escaping, and
// restored only afterwards, so later stages never reinterpret them.
//
// Capture groups are named by kind prefix: "_" variable, "__" literal,
// "___" operator, "____" keyword, "_____" block. Classify routes captures
// into a MatchResult by testing the longest prefix first.
package pattern
