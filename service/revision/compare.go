package revision

import (
	"strings"

	"github.com/viant/notestore/model"
)

// Comparison describes how a newer revision of notes relates to an older one
type Comparison struct {
	From              string `json:"from"`
	To                string `json:"to"`
	Identical         bool   `json:"identical"`
	PrefixSuperset    bool   `json:"prefixSuperset"`
	CommonPrefixLines int    `json:"commonPrefixLines"`
	Appended          string `json:"appended,omitempty"`
	Diff              string `json:"diff,omitempty"`
	Stats             Stats  `json:"stats"`
}

// Compare compares the normalised text of prev and next. Next is a prefix
// superset of prev when its text starts with the whole of prev's text.
func Compare(prev, next *model.Document) (*Comparison, error) {
	return CompareText(prev.URL, Normalize(prev.Text), next.URL, Normalize(next.Text))
}

// CompareText compares already normalised texts
func CompareText(fromName, prevText, toName, nextText string) (*Comparison, error) {
	ret := &Comparison{From: fromName, To: toName}
	ret.Identical = prevText == nextText
	ret.PrefixSuperset = isLinePrefix(prevText, nextText)
	if ret.PrefixSuperset && !ret.Identical {
		ret.Appended = strings.TrimLeft(nextText[len(prevText):], "\n")
	}
	ret.CommonPrefixLines = commonPrefixLines(prevText, nextText)
	diff, stats, err := GenerateDiff(withEOL(prevText), withEOL(nextText), fromName, toName, DefaultContextLines)
	if err != nil {
		return nil, err
	}
	ret.Diff = diff
	ret.Stats = stats
	return ret, nil
}

// Normalize unifies line endings, strips trailing whitespace from every line
// and drops trailing blank lines.
func Normalize(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " \t\r")
	}
	for len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return strings.Join(lines, "\n")
}

// isLinePrefix reports whether prev is a prefix of next ending at a line
// boundary
func isLinePrefix(prev, next string) bool {
	if !strings.HasPrefix(next, prev) {
		return false
	}
	if prev == "" || len(next) == len(prev) {
		return true
	}
	return next[len(prev)] == '\n'
}

func commonPrefixLines(prev, next string) int {
	if prev == "" || next == "" {
		return 0
	}
	a := strings.Split(prev, "\n")
	b := strings.Split(next, "\n")
	count := 0
	for count < len(a) && count < len(b) && a[count] == b[count] {
		count++
	}
	return count
}

func withEOL(text string) string {
	if text == "" {
		return text
	}
	return text + "\n"
}
