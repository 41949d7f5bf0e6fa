package parser

import (
	"os"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/viant/notestore/model"
)

func TestParseBlocks(t *testing.T) {
	testCases := []struct {
		description string
		input       string
		expected    []*model.Block
	}{
		{
			description: "single block comment",
			input:       "/*\nHeading\n\n  body\n*/\n",
			expected: []*model.Block{
				{Index: 0, Kind: model.BlockKindComment, Text: "Heading\n\n  body", TextLine: 2, StartLine: 1, EndLine: 5, Terminated: true},
			},
		},
		{
			description: "jsdoc decoration stripped",
			input:       "/**\n * Title\n *\n * text\n */",
			expected: []*model.Block{
				{Index: 0, Kind: model.BlockKindComment, Text: "Title\n\ntext", TextLine: 2, StartLine: 1, EndLine: 5, Terminated: true},
			},
		},
		{
			description: "line comment run",
			input:       "var a = 1;\n// first\n// second\nvar b = 2;\n// other\n",
			expected: []*model.Block{
				{Index: 0, Kind: model.BlockKindLine, Text: "first\nsecond", TextLine: 2, StartLine: 2, EndLine: 3, Terminated: true},
				{Index: 1, Kind: model.BlockKindLine, Text: "other", TextLine: 5, StartLine: 5, EndLine: 5, Terminated: true},
			},
		},
		{
			description: "markers inside strings ignored",
			input:       "var s = \"/* not a comment */\";\n/* real */",
			expected: []*model.Block{
				{Index: 0, Kind: model.BlockKindComment, Text: "real", TextLine: 2, StartLine: 2, EndLine: 2, Terminated: true},
			},
		},
		{
			description: "unterminated block",
			input:       "/* open\nrest",
			expected: []*model.Block{
				{Index: 0, Kind: model.BlockKindComment, Text: "open\nrest", TextLine: 1, StartLine: 1, EndLine: 2, Terminated: false},
			},
		},
		{
			description: "no comments",
			input:       "var a = 1;",
			expected:    nil,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.description, func(t *testing.T) {
			actual, err := ParseBlocks("test", []byte(tc.input))
			assert.NoError(t, err)
			if diff := cmp.Diff(tc.expected, actual); diff != "" {
				t.Errorf("ParseBlocks() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParser_Parse(t *testing.T) {
	input, err := os.ReadFile("testdata/types.js")
	if !assert.NoError(t, err) {
		return
	}
	p, err := New()
	if !assert.NoError(t, err) {
		return
	}
	document, notes, err := p.Parse("mem://localhost/types.js", input)
	if !assert.NoError(t, err) {
		return
	}
	assert.Equal(t, 1, document.Blocks)
	assert.Equal(t, "types.js", document.Name)
	if !assert.Len(t, notes, 3) {
		return
	}

	chapter := notes[0]
	assert.Equal(t, "CHAPTER 1: TYPES", chapter.Heading)
	assert.Equal(t, model.LevelChapter, chapter.Level)
	assert.Equal(t, 1, chapter.Chapter)
	assert.Equal(t, 2, chapter.StartLine)
	assert.Equal(t, 4, chapter.EndLine)
	assert.Equal(t, []string{"mem://localhost/types.js"}, chapter.Sources)

	section := notes[1]
	assert.Equal(t, "A Type By Any Other Name...", section.Heading)
	assert.Equal(t, "a type by any other name", section.Key)
	assert.Equal(t, []string{"CHAPTER 1: TYPES", "A Type By Any Other Name..."}, section.Path)
	assert.Empty(t, section.Snippets)

	builtIn := notes[2]
	assert.Equal(t, "Built-in Types", builtIn.Heading)
	assert.Equal(t, model.LevelSection, builtIn.Level)
	assert.Equal(t, 10, builtIn.StartLine)
	assert.Equal(t, 54, builtIn.EndLine)
	assert.Len(t, builtIn.Snippets, 6)
	assert.Contains(t, builtIn.Snippets, "a.length; // 2")
	assert.Contains(t, builtIn.Snippets, "function a(b,c) {\n\n}")
	assert.Contains(t, builtIn.Snippets, `typeof null === "object"; // true`)

	assert.Equal(t, []string{chapter.ID, section.ID, builtIn.ID}, document.NoteIDs)
}

func TestParser_Split(t *testing.T) {
	testCases := []struct {
		description string
		options     []Option
		text        string
		headings    []string
		levels      []int
	}{
		{
			description: "preamble before heading",
			text:        "intro text\n\nSection\n\nbody",
			headings:    []string{"", "Section"},
			levels:      []int{model.LevelPreamble, model.LevelSection},
		},
		{
			description: "sentence is not a heading",
			text:        "Heading\n\nThis is a sentence.\n\nWhat about arrays?\n\nbody",
			headings:    []string{"Heading"},
			levels:      []int{model.LevelSection},
		},
		{
			description: "code is not a heading",
			text:        "Heading\n\nResult === 1\n\nb = c;\n\nbody",
			headings:    []string{"Heading"},
			levels:      []int{model.LevelSection},
		},
		{
			description: "lower case line is not a heading",
			text:        "Heading\n\na.length\n\nbody",
			headings:    []string{"Heading"},
			levels:      []int{model.LevelSection},
		},
		{
			description: "indented line is not a heading",
			text:        "Heading\n\n  null\n\nbody",
			headings:    []string{"Heading"},
			levels:      []int{model.LevelSection},
		},
		{
			description: "lines within braces are code",
			text:        "Heading\n\nfunction a() {\n\nreturn b\n\n}\n\nAfter",
			headings:    []string{"Heading", "After"},
			levels:      []int{model.LevelSection, model.LevelSection},
		},
		{
			description: "lower case line stays in chapter body",
			text:        "CHAPTER 2: VALUES\n\ntext\n\nvalues and references\n\nbody one\n\nValues And References\n\nbody two",
			headings:    []string{"CHAPTER 2: VALUES", "Values And References"},
			levels:      []int{model.LevelChapter, model.LevelSection},
		},
		{
			description: "stray brace in prose",
			text:        "Heading\n\nObjects are written like {\n\nLater Heading\n\nbody",
			headings:    []string{"Heading", "Later Heading"},
			levels:      []int{model.LevelSection, model.LevelSection},
		},
		{
			description: "custom chapter pattern",
			options:     []Option{WithChapterPattern(`^Part\s+(\d+)$`)},
			text:        "Part 2\n\ntext\n\nSection\n\nmore",
			headings:    []string{"Part 2", "Section"},
			levels:      []int{model.LevelChapter, model.LevelSection},
		},
		{
			description: "long line is not a heading",
			options:     []Option{WithMaxHeadingLength(5)},
			text:        "Short\n\nLonger heading\n\nbody",
			headings:    []string{"Short"},
			levels:      []int{model.LevelSection},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.description, func(t *testing.T) {
			p, err := New(tc.options...)
			if !assert.NoError(t, err) {
				return
			}
			notes := p.Split(&model.Block{Text: tc.text, TextLine: 1})
			var headings []string
			var levels []int
			for _, note := range notes {
				headings = append(headings, note.Heading)
				levels = append(levels, note.Level)
				assert.NotEmpty(t, note.ID)
			}
			assert.Equal(t, tc.headings, headings)
			assert.Equal(t, tc.levels, levels)
		})
	}
}

func TestExtractSnippets(t *testing.T) {
	testCases := []struct {
		description string
		lines       []string
		expected    []string
	}{
		{description: "mid-line semicolon in prose", lines: []string{"null is falsy (aka false-like; see Chapter 4)", "more prose"}},
		{description: "statement", lines: []string{"prose", "a.length; // 2", "prose"}, expected: []string{"a.length; // 2"}},
		{description: "function body", lines: []string{"function a(b,c) {", "", "}", "after"}, expected: []string{"function a(b,c) {\n\n}"}},
		{description: "stray brace", lines: []string{"Objects are written like {", "", "Later prose", "more prose"}, expected: []string{"Objects are written like {"}},
	}
	for _, tc := range testCases {
		t.Run(tc.description, func(t *testing.T) {
			assert.Equal(t, tc.expected, extractSnippets(tc.lines))
		})
	}
}

func TestParser_SplitChapterNumber(t *testing.T) {
	p, err := New()
	if !assert.NoError(t, err) {
		return
	}
	notes := p.Split(&model.Block{Text: "CHAPTER 3: NATIVES\n\ntext\n\nBoxing Wrappers\n\nmore", TextLine: 1})
	if assert.Len(t, notes, 2) {
		assert.Equal(t, 3, notes[0].Chapter)
		assert.Equal(t, 3, notes[1].Chapter)
		assert.Equal(t, []string{"CHAPTER 3: NATIVES", "Boxing Wrappers"}, notes[1].Path)
		assert.Equal(t, "more", notes[1].Body)
	}
}

func TestNew_InvalidPattern(t *testing.T) {
	_, err := New(WithChapterPattern("("))
	assert.Error(t, err)
}

func TestParser_DuplicateBlocks(t *testing.T) {
	p, err := New()
	if !assert.NoError(t, err) {
		return
	}
	input := "/*\nHeading\n\nbody\n*/\n/*\nHeading\n\nbody\n*/\n"
	document, notes, err := p.Parse("mem://localhost/dup.js", []byte(input))
	assert.NoError(t, err)
	assert.Equal(t, 2, document.Blocks)
	assert.Len(t, notes, 1)
	assert.Len(t, document.NoteIDs, 1)
}
