package revision

import (
	"fmt"

	"github.com/pmezard/go-difflib/difflib"
	sgdiff "github.com/sourcegraph/go-diff/diff"
)

// DefaultContextLines is the number of unchanged lines around each hunk
const DefaultContextLines = 3

// Stats captures line statistics of a unified diff
type Stats struct {
	Added   int `json:"added"`
	Changed int `json:"changed"`
	Deleted int `json:"deleted"`
}

// IsZero returns true when nothing changed
func (s Stats) IsZero() bool {
	return s.Added == 0 && s.Changed == 0 && s.Deleted == 0
}

// GenerateDiff produces a GNU unified diff between old and new text along
// with its statistics. Identical inputs yield an empty diff.
func GenerateDiff(oldText, newText, fromName, toName string, contextLines int) (string, Stats, error) {
	if contextLines <= 0 {
		contextLines = DefaultContextLines
	}
	if oldText == newText {
		return "", Stats{}, nil
	}
	ud := difflib.UnifiedDiff{
		A:        difflib.SplitLines(oldText),
		B:        difflib.SplitLines(newText),
		FromFile: fromName,
		ToFile:   toName,
		Context:  contextLines,
	}
	patch, err := difflib.GetUnifiedDiffString(ud)
	if err != nil {
		return "", Stats{}, err
	}
	stats, err := ParseStats(patch)
	if err != nil {
		return "", Stats{}, err
	}
	return patch, stats, nil
}

// ParseStats parses a single file unified diff and returns its statistics
func ParseStats(patch string) (Stats, error) {
	if patch == "" {
		return Stats{}, nil
	}
	fileDiff, err := sgdiff.ParseFileDiff([]byte(patch))
	if err != nil {
		return Stats{}, fmt.Errorf("parse diff: %w", err)
	}
	stat := fileDiff.Stat()
	return Stats{Added: int(stat.Added), Changed: int(stat.Changed), Deleted: int(stat.Deleted)}, nil
}
