package pattern

import (
	"iter"
	"maps"
	"slices"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/dlclark/regexp2"
)

// Pattern is a compiled matcher plus the kind of each named capture.
// A Pattern is safe for concurrent use.
type Pattern struct {
	re       *regexp2.Regexp
	template string
	opts     regexp2.RegexOptions
	groups   map[string]Kind
	stages   []StageOutput

	variants sync.Map // time.Duration -> *Pattern
}

// Match is one raw match with byte offsets into the searched text.
type Match struct {
	Start  int
	End    int
	Text   string
	Groups []Group
}

// Len returns the match length in bytes.
func (m Match) Len() int { return m.End - m.Start }

// Result classifies the named captures of the match.
func (m Match) Result() MatchResult { return Classify(m.Groups) }

// Template returns the text the pattern was compiled from.
func (p *Pattern) Template() string { return p.template }

// Source returns the compiled matcher expression.
func (p *Pattern) Source() string { return p.re.String() }

func (p *Pattern) String() string { return p.re.String() }

// Groups returns capture name -> kind for every named group.
func (p *Pattern) Groups() map[string]Kind { return maps.Clone(p.groups) }

// Explain returns the scaffold after each compilation stage. It is empty for
// patterns not built by Compile.
func (p *Pattern) Explain() []StageOutput { return slices.Clone(p.stages) }

// WithTimeout returns a pattern whose individual match attempts give up after d.
// Variants are cached per duration.
func (p *Pattern) WithTimeout(d time.Duration) *Pattern {
	if d <= 0 || p.re.MatchTimeout == d {
		return p
	}
	if v, ok := p.variants.Load(d); ok {
		return v.(*Pattern)
	}
	re, err := regexp2.Compile(p.re.String(), p.opts)
	if err != nil {
		return p
	}
	re.MatchTimeout = d
	np := &Pattern{re: re, template: p.template, opts: p.opts, groups: p.groups, stages: p.stages}
	v, _ := p.variants.LoadOrStore(d, np)
	return v.(*Pattern)
}

// Matches yields successive non-overlapping matches left to right. A matcher
// error (a timeout) is yielded once and ends the sequence. The sequence can be
// ranged over again and restarts from the beginning of text.
func (p *Pattern) Matches(text string) iter.Seq2[Match, error] {
	return func(yield func(Match, error) bool) {
		offsets := offsetMapper{text: text}
		m, err := p.re.FindStringMatch(text)
		for {
			if err != nil {
				yield(Match{}, err)
				return
			}
			if m == nil {
				return
			}
			start := offsets.byteOffset(m.Index)
			end := offsets.byteOffset(m.Index + m.Length)
			if !yield(Match{Start: start, End: end, Text: text[start:end], Groups: groupsOf(m)}, nil) {
				return
			}
			m, err = p.re.FindNextMatch(m)
		}
	}
}

// MatchAll yields the classified captures of every match. It stops silently
// on a matcher error.
func (p *Pattern) MatchAll(text string) iter.Seq[MatchResult] {
	return func(yield func(MatchResult) bool) {
		for m, err := range p.Matches(text) {
			if err != nil || !yield(m.Result()) {
				return
			}
		}
	}
}

// MatchFirst returns the captures of the first match, or an empty result.
func (p *Pattern) MatchFirst(text string) MatchResult {
	for r := range p.MatchAll(text) {
		return r
	}
	return MatchResult{}
}

// MatchString reports whether text contains a match.
func (p *Pattern) MatchString(text string) (bool, error) {
	return p.re.MatchString(text)
}

func groupsOf(m *regexp2.Match) []Group {
	all := m.Groups()
	out := make([]Group, 0, len(all))
	for i := 1; i < len(all); i++ {
		g := &all[i]
		if isNumericName(g.Name) {
			continue
		}
		out = append(out, Group{Name: g.Name, Text: g.String(), Matched: len(g.Captures) > 0})
	}
	return out
}

// offsetMapper converts rune indexes reported by the matcher to byte offsets.
// Lookups are expected in ascending order; a smaller index restarts the scan.
type offsetMapper struct {
	text  string
	runes int
	bytes int
}

func (o *offsetMapper) byteOffset(runeIdx int) int {
	if runeIdx < o.runes {
		o.runes, o.bytes = 0, 0
	}
	for o.runes < runeIdx && o.bytes < len(o.text) {
		_, size := utf8.DecodeRuneInString(o.text[o.bytes:])
		o.bytes += size
		o.runes++
	}
	return o.bytes
}
