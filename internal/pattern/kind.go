package pattern

import "strings"

// Kind classifies a named capture group.
type Kind uint8

const (
	KindOther Kind = iota
	KindVariable
	KindLiteral
	KindOperator
	KindKeyword
	KindBlock
)

func (k Kind) String() string {
	switch k {
	case KindVariable:
		return "variable"
	case KindLiteral:
		return "literal"
	case KindOperator:
		return "operator"
	case KindKeyword:
		return "keyword"
	case KindBlock:
		return "block"
	default:
		return "other"
	}
}

const (
	prefixVariable = "_"
	prefixLiteral  = "__"
	prefixOperator = "___"
	prefixKeyword  = "____"
	prefixBlock    = "_____"
)

// Порядок важен: более длинные префиксы проверяются первыми.
var kindPrefixes = [...]struct {
	prefix string
	kind   Kind
}{
	{prefixBlock, KindBlock},
	{prefixKeyword, KindKeyword},
	{prefixOperator, KindOperator},
	{prefixLiteral, KindLiteral},
	{prefixVariable, KindVariable},
}

// KindOf returns the kind encoded in a capture group name.
func KindOf(groupName string) Kind {
	for _, kp := range kindPrefixes {
		if strings.HasPrefix(groupName, kp.prefix) {
			return kp.kind
		}
	}
	return KindOther
}
