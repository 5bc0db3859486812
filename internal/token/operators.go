package token

import (
	"cmp"
	"slices"
)

// UnaryOperators are the prefix/postfix operators a placeholder may match.
var UnaryOperators = []string{"++", "--", "~"}

// BinaryOperators excludes the ternary and logical operators.
var BinaryOperators = []string{
	"+",
	"-",
	"*",
	"**",
	"/",
	"%",
	"=",
	"==",
	"===",
	"!=",
	"!==",
	">",
	"<",
	">=",
	"<=",
	"&",
	"|",
	"^",
	"<<",
	">>",
	">>>",
}

// Operators returns unary and binary operators ordered longest-first.
// Ties keep declaration order, so the result is deterministic.
func Operators() []string {
	ops := slices.Concat(UnaryOperators, BinaryOperators)
	slices.SortStableFunc(ops, func(a, b string) int {
		return cmp.Compare(len(b), len(a))
	})
	return ops
}

// IsOperator reports whether op is a unary or binary operator.
func IsOperator(op string) bool {
	return slices.Contains(UnaryOperators, op) || slices.Contains(BinaryOperators, op)
}
