package pattern

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/dlclark/regexp2"

	"checkr/internal/token"
)

// Markers stand in for protected fragments between stages. They live in the
// private-use area, so no spacing, escaping or collapsing rule touches them.
const (
	markHatch  = '\uE000'
	markGreedy = '\uE001'
	markLazy   = '\uE002'
	markVar    = '\uE003'
	markLit    = '\uE004'
	markOp     = '\uE005'
	markKw     = '\uE006'
)

const (
	hatchOpen   = "REGEX("
	lenientSkip = `\s*`
)

// notReserved rejects a just-captured identifier that is exactly a reserved word.
var notReserved = `(?<!` + token.WordBefore + token.ReservedPattern + `)`

// startsReserved keeps a variable from starting on a whole reserved word, so
// backtracking cannot shorten `return` into `retur`.
var startsReserved = `(?!` + token.ReservedPattern + token.WordAfter + `)`

// spacingTokens are padded with spaces so adjacency-sensitive code (`a+10`,
// `if()`) collapses to the same whitespace-lenient matcher.
var spacingTokens = regexp2.MustCompile(`(?:`+strings.Join([]string{
	token.StringPattern,
	token.WordBefore + `\d[0-9A-Za-z_.]*`,
	token.IdentifierPattern,
	`[(){}\[\];]`,
}, "|")+`)`, regexp2.None)

// scaffold is the intermediate representation threaded through the stages.
type scaffold struct {
	text     string
	hatches  []string
	names    map[rune][]string // marker -> placeholder names in order of appearance
	declared map[string]bool
	unnamed  int
	outputs  []StageOutput
}

// StageOutput is the scaffold text after one stage.
type StageOutput struct {
	Stage string
	Text  string
}

type stage struct {
	name string
	run  func(*scaffold) error
}

// pipeline is the fixed stage order. Do not reorder or fuse stages.
var pipeline = []stage{
	{"protect-escape-hatch", protectEscapeHatch},
	{"protect-blocks", protectBlocks},
	{"protect-placeholders", protectPlaceholders},
	{"space", spaceTokens},
	{"escape", escapeMeta},
	{"rewrite-variables", rewrite(markVar)},
	{"rewrite-literals", rewrite(markLit)},
	{"rewrite-operators", rewrite(markOp)},
	{"rewrite-keywords", rewrite(markKw)},
	{"rewrite-blocks", rewrite(markGreedy, markLazy)},
	{"collapse-whitespace", collapseWhitespace},
	{"restore-escape-hatch", restoreEscapeHatch},
}

// Stages returns the names of the compilation stages in execution order.
func Stages() []string {
	out := make([]string, 0, len(pipeline)+2)
	out = append(out, "flatten")
	for _, st := range pipeline {
		out = append(out, st.name)
	}
	return append(out, "build")
}

// flatten joins template fragments and interpolated values into one string.
func flatten(parts []any) string {
	var b strings.Builder
	for _, p := range parts {
		fmt.Fprint(&b, p)
	}
	return b.String()
}

func newScaffold(template string) (*scaffold, error) {
	if strings.IndexFunc(template, isMarker) >= 0 {
		return nil, ErrReservedRune
	}
	s := &scaffold{
		text:     template,
		names:    make(map[rune][]string),
		declared: make(map[string]bool),
	}
	s.outputs = append(s.outputs, StageOutput{Stage: "flatten", Text: template})
	return s, nil
}

func isMarker(r rune) bool {
	return r >= markHatch && r <= markKw
}

func padded(mark rune) string {
	return " " + string(mark) + " "
}

func protectEscapeHatch(s *scaffold) error {
	if !strings.Contains(s.text, hatchOpen) {
		return nil
	}
	var b strings.Builder
	rest := s.text
	consumed := 0
	for {
		i := strings.Index(rest, hatchOpen)
		if i < 0 {
			b.WriteString(rest)
			break
		}
		b.WriteString(rest[:i])
		bodyStart := i + len(hatchOpen)
		n, ok := scanBalanced(rest[bodyStart:])
		if !ok {
			return fmt.Errorf("%w at offset %d", ErrUnterminatedEscape, consumed+i)
		}
		s.hatches = append(s.hatches, rest[bodyStart:bodyStart+n])
		b.WriteString(padded(markHatch))
		consumed += bodyStart + n + 1
		rest = rest[bodyStart+n+1:]
	}
	s.text = b.String()
	return nil
}

// scanBalanced returns the length of the expression before the parenthesis
// that closes an already opened group. Escapes and character classes are skipped.
func scanBalanced(expr string) (int, bool) {
	depth := 1
	inClass := false
	for i := 0; i < len(expr); i++ {
		switch c := expr[i]; {
		case c == '\\':
			i++
		case inClass:
			if c == ']' {
				inClass = false
			}
		case c == '[':
			inClass = true
			// ']' сразу после '[' или '[^' - литерал
			if i+1 < len(expr) && expr[i+1] == '^' {
				i++
			}
			if i+1 < len(expr) && expr[i+1] == ']' {
				i++
			}
		case c == '(':
			depth++
		case c == ')':
			depth--
			if depth == 0 {
				return i, true
			}
		}
	}
	return 0, false
}

func protectBlocks(s *scaffold) error {
	s.text = strings.ReplaceAll(s.text, "$$$", string(markGreedy))
	s.text = strings.ReplaceAll(s.text, "$$", string(markLazy))
	return nil
}

func protectPlaceholders(s *scaffold) error {
	if !strings.Contains(s.text, "$") {
		return nil
	}
	text := s.text
	var b strings.Builder
	b.Grow(len(text) + 16)
	for i := 0; i < len(text); {
		if text[i] != '$' || i+1 >= len(text) {
			b.WriteByte(text[i])
			i++
			continue
		}
		next := text[i+1]
		var mark rune
		var name string
		var width int
		switch {
		case next == '@':
			mark, name = markOp, scanName(text[i+2:])
			width = 2 + len(name)
		case next == '#':
			mark, name = markKw, scanName(text[i+2:])
			width = 2 + len(name)
		case isDigit(next):
			mark, name = markLit, scanDigits(text[i+1:])
			width = 1 + len(name)
		case isLetter(next):
			mark, name = markVar, scanName(text[i+1:])
			width = 1 + len(name)
		default:
			b.WriteByte('$')
			i++
			continue
		}
		s.names[mark] = append(s.names[mark], name)
		b.WriteString(padded(mark))
		i += width
	}
	s.text = b.String()
	return nil
}

func scanName(s string) string {
	if s == "" || !isLetter(s[0]) {
		return ""
	}
	n := 1
	for n < len(s) && (isLetter(s[n]) || isDigit(s[n]) || s[n] == '_') {
		n++
	}
	return s[:n]
}

func scanDigits(s string) string {
	n := 0
	for n < len(s) && isDigit(s[n]) {
		n++
	}
	return s[:n]
}

func isLetter(c byte) bool { return 'a' <= c && c <= 'z' || 'A' <= c && c <= 'Z' }
func isDigit(c byte) bool  { return '0' <= c && c <= '9' }

func spaceTokens(s *scaffold) error {
	out, err := spacingTokens.ReplaceFunc(s.text, func(m regexp2.Match) string {
		return " " + m.String() + " "
	}, -1, -1)
	if err != nil {
		return err
	}
	s.text = out
	return nil
}

func escapeMeta(s *scaffold) error {
	s.text = token.EscapeMeta(s.text)
	return nil
}

// rewrite replaces the given markers left to right with matcher fragments.
func rewrite(marks ...rune) func(*scaffold) error {
	return func(s *scaffold) error {
		seen := make(map[rune]int, len(marks))
		var b strings.Builder
		b.Grow(len(s.text))
		for _, r := range s.text {
			if !containsRune(marks, r) {
				b.WriteRune(r)
				continue
			}
			idx := seen[r]
			seen[r]++
			var name string
			if names := s.names[r]; idx < len(names) {
				name = names[idx]
			}
			b.WriteString(s.fragment(r, name))
		}
		s.text = b.String()
		return nil
	}
}

func containsRune(rs []rune, r rune) bool {
	for _, x := range rs {
		if x == r {
			return true
		}
	}
	return false
}

// fragment returns the matcher syntax for one placeholder occurrence. The
// first occurrence of a named identity declares a group; later ones refer back.
func (s *scaffold) fragment(mark rune, name string) string {
	switch mark {
	case markVar:
		group := prefixVariable + name
		if s.declare(group) {
			return token.WordBefore + startsReserved + capture(group, token.IdentifierPattern) + notReserved
		}
		return token.WordBefore + backref(group) + token.WordAfter
	case markLit:
		group := prefixLiteral + name
		if s.declare(group) {
			return capture(group, token.LiteralPattern)
		}
		return backref(group)
	case markOp:
		if name == "" {
			return capture(s.fresh(prefixOperator), token.OperatorPattern)
		}
		group := prefixOperator + name
		if s.declare(group) {
			return capture(group, token.OperatorPattern)
		}
		return backref(group)
	case markKw:
		if name == "" {
			return token.WordBefore + capture(s.fresh(prefixKeyword), token.KeywordPattern) + token.WordAfter
		}
		group := prefixKeyword + name
		if s.declare(group) {
			return token.WordBefore + capture(group, token.KeywordPattern) + token.WordAfter
		}
		return token.WordBefore + backref(group) + token.WordAfter
	case markGreedy:
		return capture(s.fresh(prefixBlock), `[\s\S]*`)
	case markLazy:
		return capture(s.fresh(prefixBlock), `[\s\S]*?`)
	}
	return ""
}

// declare reports whether group is seen for the first time.
func (s *scaffold) declare(group string) bool {
	if s.declared[group] {
		return false
	}
	s.declared[group] = true
	return true
}

// fresh returns a group name that no user placeholder can spell: user names
// start with a letter, generated ones are digits.
func (s *scaffold) fresh(prefix string) string {
	s.unnamed++
	return prefix + strconv.Itoa(s.unnamed)
}

func capture(group, expr string) string { return `(?<` + group + `>` + expr + `)` }
func backref(group string) string       { return `\k<` + group + `>` }

func collapseWhitespace(s *scaffold) error {
	var b strings.Builder
	b.Grow(len(s.text))
	inSpace := false
	for _, r := range s.text {
		if unicode.IsSpace(r) {
			if !inSpace {
				b.WriteString(lenientSkip)
				inSpace = true
			}
			continue
		}
		inSpace = false
		b.WriteRune(r)
	}
	out := strings.TrimPrefix(b.String(), lenientSkip)
	s.text = strings.TrimSuffix(out, lenientSkip)
	return nil
}

func restoreEscapeHatch(s *scaffold) error {
	if len(s.hatches) == 0 {
		return nil
	}
	var b strings.Builder
	idx := 0
	for _, r := range s.text {
		if r != markHatch {
			b.WriteRune(r)
			continue
		}
		b.WriteString(s.hatches[idx])
		idx++
	}
	s.text = b.String()
	return nil
}
