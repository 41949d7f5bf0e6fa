package model

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"time"
)

// Heading levels
const (
	LevelPreamble = 0
	LevelChapter  = 1
	LevelSection  = 2
)

// Note represents a heading-scoped span of note text
type Note struct {
	// ID is derived from the heading slug and the content checksum
	ID string `json:"id" yaml:"id"`

	// Heading is the heading line as written in the source
	Heading string `json:"heading" yaml:"heading"`

	// Key is the normalised heading used for lookups
	Key string `json:"key" yaml:"key"`

	Level   int      `json:"level" yaml:"level"`
	Chapter int      `json:"chapter,omitempty" yaml:"chapter,omitempty"`
	Path    []string `json:"path,omitempty" yaml:"path,omitempty"`

	// Body holds the note text following the heading, snippets included
	Body string `json:"body" yaml:"body"`

	// Snippets are the code excerpts found in the body
	Snippets []string `json:"snippets,omitempty" yaml:"snippets,omitempty"`

	Checksum string `json:"checksum" yaml:"checksum"`

	// Sources lists every document URL the note was found in
	Sources []string `json:"sources,omitempty" yaml:"sources,omitempty"`

	Block      int       `json:"block" yaml:"block"`
	StartLine  int       `json:"startLine" yaml:"startLine"`
	EndLine    int       `json:"endLine" yaml:"endLine"`
	ImportedAt time.Time `json:"importedAt,omitempty" yaml:"importedAt,omitempty"`
}

// Seal computes the note key, checksum and ID from its heading and body.
func (n *Note) Seal() {
	n.Key = NormalizeHeading(n.Heading)
	sum := sha256.Sum256([]byte(n.Key + "\n" + n.Body))
	n.Checksum = hex.EncodeToString(sum[:])
	slug := Slug(n.Heading)
	if slug == "" {
		slug = "preamble"
	}
	n.ID = slug + "-" + n.Checksum[:8]
}

// AddSource registers a source URL, returns false if it was already present
func (n *Note) AddSource(URL string) bool {
	for _, candidate := range n.Sources {
		if candidate == URL {
			return false
		}
	}
	n.Sources = append(n.Sources, URL)
	sort.Strings(n.Sources)
	return true
}

// RemoveSource unregisters a source URL, returns false if it was absent
func (n *Note) RemoveSource(URL string) bool {
	for i, candidate := range n.Sources {
		if candidate == URL {
			n.Sources = append(n.Sources[:i], n.Sources[i+1:]...)
			return true
		}
	}
	return false
}

// HasSource returns true if note was found in the supplied source
func (n *Note) HasSource(URL string) bool {
	for _, candidate := range n.Sources {
		if candidate == URL {
			return true
		}
	}
	return false
}

// Clone returns a deep copy of the note
func (n *Note) Clone() *Note {
	if n == nil {
		return nil
	}
	ret := *n
	ret.Path = append([]string(nil), n.Path...)
	ret.Snippets = append([]string(nil), n.Snippets...)
	ret.Sources = append([]string(nil), n.Sources...)
	return &ret
}

// Notes represents a note collection
type Notes []*Note

// SortByCompleteness orders notes with the longest body first, ties by ID
func (n Notes) SortByCompleteness() {
	sort.SliceStable(n, func(i, j int) bool {
		if len(n[i].Body) != len(n[j].Body) {
			return len(n[i].Body) > len(n[j].Body)
		}
		return n[i].ID < n[j].ID
	})
}

// SortByPosition orders notes by chapter, first source, then source line
func (n Notes) SortByPosition() {
	sort.SliceStable(n, func(i, j int) bool {
		if n[i].Chapter != n[j].Chapter {
			return n[i].Chapter < n[j].Chapter
		}
		si, sj := firstSource(n[i]), firstSource(n[j])
		if si != sj {
			return si < sj
		}
		if n[i].StartLine != n[j].StartLine {
			return n[i].StartLine < n[j].StartLine
		}
		return n[i].ID < n[j].ID
	})
}

func firstSource(n *Note) string {
	if len(n.Sources) == 0 {
		return ""
	}
	return n.Sources[0]
}
