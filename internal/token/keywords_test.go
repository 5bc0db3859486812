package token

import (
	"regexp"
	"testing"
)

func TestKeywordsAreUnique(t *testing.T) {
	seen := make(map[string]bool, len(Keywords))
	for _, kw := range Keywords {
		if seen[kw] {
			t.Errorf("duplicate keyword %q", kw)
		}
		seen[kw] = true
	}
	if len(Keywords) != 43 {
		t.Errorf("expected 43 keywords, got %d", len(Keywords))
	}
}

func TestIsReserved(t *testing.T) {
	cases := map[string]bool{
		"if":          true,
		"await":       true,
		"instanceof":  true,
		"NaN":         true,
		"undefined":   true,
		"eval":        true,
		"arguments":   true,
		"foo":         false,
		"If":          false, // регистр важен
		"iff":         false,
		"doSomething": false,
	}
	for word, want := range cases {
		if got := IsReserved(word); got != want {
			t.Errorf("IsReserved(%q) = %v, want %v", word, got, want)
		}
	}
	if IsKeyword("eval") {
		t.Error("eval should not be a keyword")
	}
	if !IsLiteralWord("null") {
		t.Error("null should be a literal word")
	}
}

func TestOperatorsLongestFirst(t *testing.T) {
	ops := Operators()
	if len(ops) != len(UnaryOperators)+len(BinaryOperators) {
		t.Fatalf("expected %d operators, got %d", len(UnaryOperators)+len(BinaryOperators), len(ops))
	}
	for i := 1; i < len(ops); i++ {
		if len(ops[i]) > len(ops[i-1]) {
			t.Fatalf("operator %q (index %d) is longer than %q", ops[i], i, ops[i-1])
		}
	}
	if ops[0] != ">>>" && ops[0] != "===" && ops[0] != "!==" {
		t.Errorf("expected a three-character operator first, got %q", ops[0])
	}
}

func TestEscapeMeta(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"a+b", `a\+b`},
		{"f(x) { }", `f\(x\) \{ \}`},
		{"$a", `\$a`},
		{"plain text", "plain text"},
		{`a\b`, `a\\b`},
		{"[1|2]", `\[1\|2\]`},
	}
	for _, tc := range cases {
		if got := EscapeMeta(tc.in); got != tc.want {
			t.Errorf("EscapeMeta(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

// Sources without lookaround also compile under RE2, which keeps them honest.
func TestPatternsCompileUnderRE2(t *testing.T) {
	for name, src := range map[string]string{
		"identifier": IdentifierPattern,
		"keyword":    KeywordPattern,
		"operator":   OperatorPattern,
		"string":     StringPattern,
		"regex":      RegexLiteralPattern,
	} {
		if _, err := regexp.Compile(`^` + src + `$`); err != nil {
			t.Errorf("%s: %v", name, err)
		}
	}
}

func TestOperatorPatternPrefersLongest(t *testing.T) {
	re := regexp.MustCompile(`^` + OperatorPattern)
	cases := map[string]string{
		"===x": "===",
		"==x":  "==",
		">>>=": ">>>",
		"++a":  "++",
		"~a":   "~",
	}
	for in, want := range cases {
		if got := re.FindString(in); got != want {
			t.Errorf("operator match on %q = %q, want %q", in, got, want)
		}
	}
}

func TestStringPatternHonoursEscapes(t *testing.T) {
	re := regexp.MustCompile(`^` + StringPattern)
	cases := map[string]string{
		`"a\"b" + c`:  `"a\"b"`,
		`'it\'s' x`:   `'it\'s'`,
		"`tpl` + `b`": "`tpl`",
		`"" + ""`:     `""`,
	}
	for in, want := range cases {
		if got := re.FindString(in); got != want {
			t.Errorf("string match on %q = %q, want %q", in, got, want)
		}
	}
}
