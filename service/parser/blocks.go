package parser

import (
	"sort"
	"strings"

	"github.com/viant/notestore/model"
	"github.com/viant/parsly"
)

// ParseBlocks scans input and returns its comment blocks: every /* */ span and
// every run of consecutive // lines. Quoted literals are skipped so comment
// markers inside strings are ignored. An unterminated /* runs to EOF and is
// returned with Terminated set to false.
func ParseBlocks(name string, input []byte) ([]*model.Block, error) {
	s := &scanner{cursor: parsly.NewCursor(name, input, 0), newLines: newLineOffsets(input)}
	return s.scan(), nil
}

type scanner struct {
	cursor   *parsly.Cursor
	newLines []int
	blocks   []*model.Block
	// pending run of // comment lines
	lines     []string
	lineStart int
	lineEnd   int
}

func (s *scanner) scan() []*model.Block {
	cur := s.cursor
	for cur.Pos < cur.InputSize {
		start := cur.Pos
		match := cur.MatchAny(blockBeginToken, lineCommentToken, quotedToken)
		switch match.Code {
		case blockBeginCode:
			s.flushLines()
			s.scanBlock(start)
		case lineCommentCode:
			s.scanLineComment(start)
		case quotedCode:
			s.flushLines()
		default:
			cur.Pos = start
			ch := cur.Input[cur.Pos]
			cur.Pos++
			if ch == '\n' {
				continue
			}
			if ch != ' ' && ch != '\t' && ch != '\r' {
				// code between // lines breaks the run
				s.flushLines()
			}
		}
	}
	s.flushLines()
	return s.blocks
}

func (s *scanner) scanBlock(start int) {
	cur := s.cursor
	bodyStart := cur.Pos
	terminated := false
	bodyEnd := cur.InputSize
	for cur.Pos < cur.InputSize {
		pos := cur.Pos
		if cur.MatchOne(blockEndToken).Code == blockEndCode {
			bodyEnd = pos
			terminated = true
			break
		}
		cur.Pos = pos + 1
	}
	if !terminated {
		cur.Pos = cur.InputSize
	}
	body := strings.TrimPrefix(string(cur.Input[bodyStart:bodyEnd]), " ")
	text, skipped := normalizeBlockText(body)
	startLine := s.lineOf(start)
	s.blocks = append(s.blocks, &model.Block{
		Index:      len(s.blocks),
		Kind:       model.BlockKindComment,
		Text:       text,
		TextLine:   startLine + skipped,
		StartLine:  startLine,
		EndLine:    s.lineOf(max(cur.Pos-1, start)),
		Terminated: terminated,
	})
}

func (s *scanner) scanLineComment(start int) {
	line := s.lineOf(start)
	if len(s.lines) > 0 && line != s.lineEnd+1 {
		s.flushLines()
	}
	text := s.consumeUntil('\n')
	text = strings.TrimPrefix(text, " ")
	if len(s.lines) == 0 {
		s.lineStart = line
	}
	s.lines = append(s.lines, strings.TrimRight(text, " \t\r"))
	s.lineEnd = line
}

func (s *scanner) flushLines() {
	if len(s.lines) == 0 {
		return
	}
	text, skipped := normalizeBlockText(strings.Join(s.lines, "\n"))
	s.blocks = append(s.blocks, &model.Block{
		Index:      len(s.blocks),
		Kind:       model.BlockKindLine,
		Text:       text,
		TextLine:   s.lineStart + skipped,
		StartLine:  s.lineStart,
		EndLine:    s.lineEnd,
		Terminated: true,
	})
	s.lines = nil
}

// consumeUntil consumes bytes until delim (inclusive) or EOF and returns text
// before delim.
func (s *scanner) consumeUntil(delim byte) string {
	cur := s.cursor
	start := cur.Pos
	for cur.Pos < cur.InputSize {
		if cur.Input[cur.Pos] == delim {
			txt := string(cur.Input[start:cur.Pos])
			cur.Pos++
			return txt
		}
		cur.Pos++
	}
	return string(cur.Input[start:])
}

// lineOf returns 1-based line number of the offset
func (s *scanner) lineOf(offset int) int {
	return sort.SearchInts(s.newLines, offset) + 1
}

func newLineOffsets(input []byte) []int {
	var ret []int
	for i, ch := range input {
		if ch == '\n' {
			ret = append(ret, i)
		}
	}
	return ret
}

// normalizeBlockText unifies line endings, strips JSDoc style "*" decoration
// when every non blank line carries it, and trims surrounding blank lines. It
// returns the text with the number of leading lines removed.
func normalizeBlockText(text string) (string, int) {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	lines := strings.Split(text, "\n")
	decorated := false
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if !strings.HasPrefix(trimmed, "*") {
			decorated = false
			break
		}
		decorated = true
	}
	for i, line := range lines {
		if decorated {
			trimmed := strings.TrimLeft(line, " \t")
			trimmed = strings.TrimPrefix(trimmed, "*")
			line = strings.TrimPrefix(trimmed, " ")
		}
		lines[i] = strings.TrimRight(line, " \t\r")
	}
	skipped := 0
	for len(lines) > 0 && lines[0] == "" {
		lines = lines[1:]
		skipped++
	}
	for len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return strings.Join(lines, "\n"), skipped
}
