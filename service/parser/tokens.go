package parser

import (
	"github.com/viant/parsly"
	"github.com/viant/parsly/matcher"
)

// Token codes (start at 1 to avoid clash with parsly.EOF).
const (
	blockBeginCode = iota + 1
	blockEndCode
	lineCommentCode
	quotedCode
)

var (
	blockBeginToken  = parsly.NewToken(blockBeginCode, "/*", matcher.NewFragment("/*"))
	blockEndToken    = parsly.NewToken(blockEndCode, "*/", matcher.NewFragment("*/"))
	lineCommentToken = parsly.NewToken(lineCommentCode, "//", matcher.NewFragment("//"))
	quotedToken      = parsly.NewToken(quotedCode, "Quoted", newQuotedMatcher())
)

func newQuotedMatcher() parsly.Matcher {
	return &quotedMatcher{}
}

// quotedMatcher matches single, double or back quoted literal including escapes
type quotedMatcher struct{}

func (m *quotedMatcher) Match(cursor *parsly.Cursor) int {
	input := cursor.Input
	pos := cursor.Pos
	size := cursor.InputSize
	if pos >= size {
		return 0
	}
	quote := input[pos]
	switch quote {
	case '"', '\'', '`':
	default:
		return 0
	}
	for i := pos + 1; i < size; i++ {
		switch input[i] {
		case '\\':
			i++
		case '\n':
			if quote != '`' {
				return i - pos
			}
		case quote:
			return i - pos + 1
		}
	}
	return size - pos
}
