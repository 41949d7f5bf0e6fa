// Package model contains the in-memory representation of imported note
// sources, the comment blocks found in them and the heading-scoped notes the
// blocks are split into.
//
// A source file is parsed into Blocks by the parser service; each block is
// then split into Notes keyed by their normalised heading. Documents keep
// enough of the original text to compare successive revisions of the same
// notes.
package model
