package pattern

// Group is one named capture of a raw match.
type Group struct {
	Name    string
	Text    string
	Matched bool
}

// MatchResult holds the captures of one match, split by kind.
// Each sequence keeps the left-to-right order of the groups.
type MatchResult struct {
	Variables []string
	Literals  []string
	Keywords  []string
	Operators []string
	Blocks    []string
	Others    []string
}

// Empty reports whether the result carries no captures at all.
func (r MatchResult) Empty() bool {
	return len(r.Variables) == 0 && len(r.Literals) == 0 && len(r.Keywords) == 0 &&
		len(r.Operators) == 0 && len(r.Blocks) == 0 && len(r.Others) == 0
}

// Classify routes named groups into the six sequences of a MatchResult.
// Unmatched groups contribute an empty string so positions stay aligned.
func Classify(groups []Group) MatchResult {
	var r MatchResult
	for _, g := range groups {
		switch KindOf(g.Name) {
		case KindBlock:
			r.Blocks = append(r.Blocks, g.Text)
		case KindKeyword:
			r.Keywords = append(r.Keywords, g.Text)
		case KindOperator:
			r.Operators = append(r.Operators, g.Text)
		case KindLiteral:
			r.Literals = append(r.Literals, g.Text)
		case KindVariable:
			r.Variables = append(r.Variables, g.Text)
		default:
			r.Others = append(r.Others, g.Text)
		}
	}
	return r
}
