package token

import "slices"

// Keywords lists reserved words, including the future-reserved ones.
var Keywords = []string{
	"break",
	"case",
	"catch",
	"class",
	"const",
	"continue",
	"debugger",
	"default",
	"delete",
	"do",
	"else",
	"export",
	"extends",
	"finally",
	"for",
	"function",
	"if",
	"import",
	"in",
	"instanceof",
	"new",
	"return",
	"super",
	"switch",
	"this",
	"throw",
	"try",
	"typeof",
	"var",
	"void",
	"while",
	"with",
	"yield",
	// future reserved
	"enum",
	"implements",
	"interface",
	"let",
	"package",
	"private",
	"protected",
	"public",
	"static",
	"await",
}

// LiteralWords are identifier-shaped literals.
var LiteralWords = []string{"true", "false", "NaN", "undefined", "null"}

// restrictedNames cannot be bound as variables but are neither keywords nor literals.
var restrictedNames = []string{"eval", "arguments"}

var (
	keywordSet  = makeSet(Keywords)
	reservedSet = makeSet(slices.Concat(Keywords, LiteralWords, restrictedNames))
)

func makeSet(words []string) map[string]struct{} {
	out := make(map[string]struct{}, len(words))
	for _, w := range words {
		out[w] = struct{}{}
	}
	return out
}

// IsKeyword reports whether word is a reserved keyword.
func IsKeyword(word string) bool {
	_, ok := keywordSet[word]
	return ok
}

// IsReserved reports whether word may never be captured as a variable.
func IsReserved(word string) bool {
	_, ok := reservedSet[word]
	return ok
}

// IsLiteralWord reports whether word is one of true, false, NaN, undefined, null.
func IsLiteralWord(word string) bool {
	return slices.Contains(LiteralWords, word)
}

// Reserved returns the reserved-for-variables words, sorted.
func Reserved() []string {
	out := make([]string, 0, len(reservedSet))
	for w := range reservedSet {
		out = append(out, w)
	}
	slices.Sort(out)
	return out
}
