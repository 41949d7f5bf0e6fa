package parser

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/viant/notestore/model"
)

const (
	// DefaultChapterPattern matches "CHAPTER 1: TYPES" style headings
	DefaultChapterPattern = `(?i)^CHAPTER\s+(\d+)\s*:\s*(.+)$`
	// DefaultMaxHeadingLength caps section heading length in runes
	DefaultMaxHeadingLength = 80
)

var codeKeywords = []string{"function", "var", "let", "const", "return", "typeof"}

// Parser splits note sources into heading-scoped notes
type Parser struct {
	chapterPattern   string
	maxHeadingLength int
	chapterExpr      *regexp.Regexp
}

// Parse parses the source into a document and its unique notes
func (p *Parser) Parse(URL string, input []byte) (*model.Document, []*model.Note, error) {
	blocks, err := ParseBlocks(URL, input)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse blocks of %s: %w", URL, err)
	}
	document := model.NewDocument(URL, input, blocks)
	splitter := &splitter{parser: p}
	var notes []*model.Note
	seen := map[string]bool{}
	for _, block := range blocks {
		for _, note := range splitter.split(block) {
			note.Seal()
			note.AddSource(URL)
			if seen[note.ID] {
				continue
			}
			seen[note.ID] = true
			document.AddNoteID(note.ID)
			notes = append(notes, note)
		}
	}
	return document, notes, nil
}

// Split splits a single block into notes; chapter context does not carry over
// between calls.
func (p *Parser) Split(block *model.Block) []*model.Note {
	splitter := &splitter{parser: p}
	notes := splitter.split(block)
	for _, note := range notes {
		note.Seal()
	}
	return notes
}

// splitter keeps chapter state across the blocks of one document
type splitter struct {
	parser         *Parser
	chapter        int
	chapterHeading string
}

type draft struct {
	heading string
	level   int
	start   int
	lines   []string
}

func (s *splitter) split(block *model.Block) []*model.Note {
	var notes []*model.Note
	lines := strings.Split(block.Text, "\n")
	current := &draft{level: model.LevelPreamble}
	depth := 0
	flush := func(next *draft) {
		if note := s.note(block, current); note != nil {
			notes = append(notes, note)
		}
		current = next
	}
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if depth > 0 && closesStrayBrace(lines, i) {
			depth = 0
		}
		if depth == 0 {
			if chapter, ok := s.matchChapter(trimmed); ok {
				flush(&draft{heading: trimmed, level: model.LevelChapter, start: i})
				s.chapter = chapter
				s.chapterHeading = trimmed
				continue
			}
			prevBlank := i == 0 || strings.TrimSpace(lines[i-1]) == ""
			nextBlank := i == len(lines)-1 || strings.TrimSpace(lines[i+1]) == ""
			if prevBlank && nextBlank && s.parser.isSectionHeading(line) {
				flush(&draft{heading: trimmed, level: model.LevelSection, start: i})
				continue
			}
		}
		current.lines = append(current.lines, line)
		if depth > 0 || isCodeLike(line) {
			depth = braceDepth(depth, line)
		}
	}
	flush(nil)
	return notes
}

func (s *splitter) note(block *model.Block, d *draft) *model.Note {
	first, last := 0, len(d.lines)-1
	for first <= last && strings.TrimSpace(d.lines[first]) == "" {
		first++
	}
	for last >= first && strings.TrimSpace(d.lines[last]) == "" {
		last--
	}
	var body []string
	if first <= last {
		body = d.lines[first : last+1]
	}
	if d.level == model.LevelPreamble && len(body) == 0 {
		return nil
	}
	note := &model.Note{
		Heading:   d.heading,
		Level:     d.level,
		Body:      strings.Join(body, "\n"),
		Snippets:  extractSnippets(body),
		Block:     block.Index,
		StartLine: block.TextLine + d.start,
		EndLine:   block.TextLine + d.start,
	}
	if len(body) > 0 {
		offset := first
		if d.level != model.LevelPreamble {
			offset++ // heading line precedes lines
		}
		note.EndLine = block.TextLine + d.start + offset + len(body) - 1
		if d.level == model.LevelPreamble {
			note.StartLine = block.TextLine + first
		}
	}
	switch d.level {
	case model.LevelChapter:
		note.Chapter = s.chapter
		note.Path = []string{d.heading}
	case model.LevelSection:
		note.Chapter = s.chapter
		if s.chapterHeading != "" {
			note.Path = append(note.Path, s.chapterHeading)
		}
		note.Path = append(note.Path, d.heading)
	default:
		note.Chapter = s.chapter
		if s.chapterHeading != "" {
			note.Path = []string{s.chapterHeading}
		}
	}
	return note
}

func (s *splitter) matchChapter(trimmed string) (int, bool) {
	matches := s.parser.chapterExpr.FindStringSubmatch(trimmed)
	if matches == nil {
		return 0, false
	}
	if len(matches) > 1 {
		if number, err := strconv.Atoi(matches[1]); err == nil {
			return number, true
		}
	}
	return s.chapter + 1, true
}

func (p *Parser) isSectionHeading(line string) bool {
	if line == "" || line[0] == ' ' || line[0] == '\t' {
		return false
	}
	trimmed := strings.TrimSpace(line)
	if trimmed == "" || utf8.RuneCountInString(trimmed) > p.maxHeadingLength {
		return false
	}
	if isCodeLike(trimmed) || !strings.ContainsFunc(trimmed, unicode.IsLetter) {
		return false
	}
	// headings are capitalised; lower-case lines are prose or code
	if first, _ := utf8.DecodeRuneInString(trimmed); !unicode.IsUpper(first) && !unicode.IsDigit(first) {
		return false
	}
	if strings.HasSuffix(trimmed, "...") || strings.HasSuffix(trimmed, "…") {
		return true
	}
	switch trimmed[len(trimmed)-1] {
	case '.', ',', ';', ':', '?':
		return false
	}
	return true
}

// closesStrayBrace reports whether an open brace should be abandoned at line
// i: a prose line after a blank line ends the brace scope
func closesStrayBrace(lines []string, i int) bool {
	if i == 0 || strings.TrimSpace(lines[i-1]) != "" {
		return false
	}
	return strings.TrimSpace(lines[i]) != "" && !isCodeLike(lines[i])
}

// isCodeLike reports whether line looks like a code excerpt rather than prose.
// Statement punctuation counts at line ends only so prose with a mid-line ;
// stays prose.
func isCodeLike(line string) bool {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return false
	}
	if strings.HasPrefix(trimmed, "//") || strings.HasPrefix(trimmed, "}") {
		return true
	}
	for _, suffix := range []string{";", "{", "}"} {
		if strings.HasSuffix(trimmed, suffix) {
			return true
		}
	}
	for _, marker := range []string{"===", "!==", "=>", "; //"} {
		if strings.Contains(trimmed, marker) {
			return true
		}
	}
	for _, keyword := range codeKeywords {
		if rest, ok := strings.CutPrefix(trimmed, keyword); ok {
			if rest == "" || rest[0] == ' ' || rest[0] == '(' {
				return true
			}
		}
	}
	return false
}

func braceDepth(depth int, line string) int {
	depth += strings.Count(line, "{") - strings.Count(line, "}")
	if depth < 0 {
		return 0
	}
	return depth
}

// extractSnippets groups consecutive code-like lines, lines within an open
// brace included, into dedented snippets.
func extractSnippets(lines []string) []string {
	var snippets []string
	var current []string
	depth := 0
	flush := func() {
		for len(current) > 0 && strings.TrimSpace(current[len(current)-1]) == "" {
			current = current[:len(current)-1]
		}
		if len(current) > 0 {
			snippets = append(snippets, dedent(current))
		}
		current = nil
	}
	for i, line := range lines {
		if depth > 0 && closesStrayBrace(lines, i) {
			depth = 0
		}
		if depth > 0 || isCodeLike(line) {
			current = append(current, line)
			depth = braceDepth(depth, line)
			continue
		}
		flush()
	}
	flush()
	return snippets
}

func dedent(lines []string) string {
	indent := -1
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		n := len(line) - len(strings.TrimLeft(line, " \t"))
		if indent == -1 || n < indent {
			indent = n
		}
	}
	ret := make([]string, len(lines))
	for i, line := range lines {
		if len(line) >= indent && indent > 0 {
			line = line[indent:]
		}
		ret[i] = strings.TrimRight(line, " \t")
	}
	return strings.Join(ret, "\n")
}

// New creates a parser
func New(options ...Option) (*Parser, error) {
	ret := &Parser{
		chapterPattern:   DefaultChapterPattern,
		maxHeadingLength: DefaultMaxHeadingLength,
	}
	for _, option := range options {
		option(ret)
	}
	if ret.maxHeadingLength <= 0 {
		ret.maxHeadingLength = DefaultMaxHeadingLength
	}
	expr, err := regexp.Compile(ret.chapterPattern)
	if err != nil {
		return nil, fmt.Errorf("invalid chapter pattern %q: %w", ret.chapterPattern, err)
	}
	ret.chapterExpr = expr
	return ret, nil
}
