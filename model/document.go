package model

import (
	"crypto/sha256"
	"encoding/hex"
	"path"
	"strings"
	"time"
)

// Block kinds
const (
	BlockKindComment = "block"
	BlockKindLine    = "line"
)

// Block represents a comment delimited span of a source
type Block struct {
	Index      int    `json:"index"`
	Kind       string `json:"kind"`
	Text       string `json:"text"`
	TextLine   int    `json:"textLine"` // source line of the first Text line
	StartLine  int    `json:"startLine"`
	EndLine    int    `json:"endLine"`
	Terminated bool   `json:"terminated"`
}

// Document represents an imported note source
type Document struct {
	URL      string `json:"url" yaml:"url"`
	Name     string `json:"name" yaml:"name"`
	Checksum string `json:"checksum" yaml:"checksum"`
	Size     int    `json:"size" yaml:"size"`
	Blocks   int    `json:"blocks" yaml:"blocks"`
	// Unterminated counts block comments running to the end of input
	Unterminated int       `json:"unterminated,omitempty" yaml:"unterminated,omitempty"`
	NoteIDs      []string  `json:"noteIds,omitempty" yaml:"noteIds,omitempty"`
	Text         string    `json:"text" yaml:"text"`
	ImportedAt   time.Time `json:"importedAt,omitempty" yaml:"importedAt,omitempty"`
}

// NewDocument creates a document for the supplied raw content and blocks
func NewDocument(URL string, content []byte, blocks []*Block) *Document {
	sum := sha256.Sum256(content)
	texts := make([]string, 0, len(blocks))
	unterminated := 0
	for _, block := range blocks {
		texts = append(texts, block.Text)
		if !block.Terminated {
			unterminated++
		}
	}
	return &Document{
		URL:          URL,
		Name:         path.Base(URL),
		Checksum:     hex.EncodeToString(sum[:]),
		Size:         len(content),
		Blocks:       len(blocks),
		Unterminated: unterminated,
		Text:         strings.Join(texts, "\n"),
	}
}

// AddNoteID registers note ID with the document
func (d *Document) AddNoteID(id string) {
	for _, candidate := range d.NoteIDs {
		if candidate == id {
			return
		}
	}
	d.NoteIDs = append(d.NoteIDs, id)
}
