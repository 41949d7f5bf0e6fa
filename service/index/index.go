// Package index maintains in-memory heading and term indexes over notes.
package index

import (
	"sort"
	"strings"
	"sync"
	"unicode"

	"github.com/viant/notestore/model"
)

// headingWeight multiplies term occurrences found in a heading
const headingWeight = 3

// Hit represents a search result
type Hit struct {
	ID    string `json:"id"`
	Score int    `json:"score"`
}

// Index is a concurrency safe heading, prefix and term index
type Index struct {
	mux      sync.RWMutex
	headings map[string]map[string]bool // key -> note IDs
	labels   map[string]string          // key -> heading as first seen
	terms    map[string]map[string]int  // term -> note ID -> score
	notes    map[string]*entry          // note ID -> indexed entry
}

type entry struct {
	key   string
	terms map[string]int
}

// Add indexes the note, replacing any previous entry with the same ID
func (i *Index) Add(note *model.Note) {
	if note == nil || note.ID == "" {
		return
	}
	i.mux.Lock()
	defer i.mux.Unlock()
	i.remove(note.ID)
	key := note.Key
	if key == "" {
		key = model.NormalizeHeading(note.Heading)
	}
	ids, ok := i.headings[key]
	if !ok {
		ids = map[string]bool{}
		i.headings[key] = ids
		i.labels[key] = note.Heading
	}
	ids[note.ID] = true

	scores := map[string]int{}
	for _, term := range Terms(note.Heading) {
		scores[term] += headingWeight
	}
	for _, term := range Terms(note.Body) {
		scores[term]++
	}
	for term, score := range scores {
		postings, ok := i.terms[term]
		if !ok {
			postings = map[string]int{}
			i.terms[term] = postings
		}
		postings[note.ID] = score
	}
	i.notes[note.ID] = &entry{key: key, terms: scores}
}

// Remove drops note from the index
func (i *Index) Remove(id string) {
	i.mux.Lock()
	defer i.mux.Unlock()
	i.remove(id)
}

func (i *Index) remove(id string) {
	existing, ok := i.notes[id]
	if !ok {
		return
	}
	delete(i.notes, id)
	if ids := i.headings[existing.key]; ids != nil {
		delete(ids, id)
		if len(ids) == 0 {
			delete(i.headings, existing.key)
			delete(i.labels, existing.key)
		}
	}
	for term := range existing.terms {
		if postings := i.terms[term]; postings != nil {
			delete(postings, id)
			if len(postings) == 0 {
				delete(i.terms, term)
			}
		}
	}
}

// Reset removes all entries
func (i *Index) Reset() {
	i.mux.Lock()
	defer i.mux.Unlock()
	i.init()
}

// Len returns number of indexed notes
func (i *Index) Len() int {
	i.mux.RLock()
	defer i.mux.RUnlock()
	return len(i.notes)
}

// Lookup returns sorted note IDs with the supplied heading
func (i *Index) Lookup(heading string) []string {
	i.mux.RLock()
	defer i.mux.RUnlock()
	ids := i.headings[model.NormalizeHeading(heading)]
	ret := make([]string, 0, len(ids))
	for id := range ids {
		ret = append(ret, id)
	}
	sort.Strings(ret)
	return ret
}

// Prefix returns sorted headings whose key starts with prefix
func (i *Index) Prefix(prefix string) []string {
	i.mux.RLock()
	defer i.mux.RUnlock()
	prefix = strings.Join(strings.Fields(strings.ToLower(prefix)), " ")
	var keys []string
	for key := range i.headings {
		if key == "" {
			continue
		}
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	ret := make([]string, 0, len(keys))
	for _, key := range keys {
		ret = append(ret, i.labels[key])
	}
	return ret
}

// Search returns notes containing every query term, best score first, ties
// by ID.
func (i *Index) Search(query string) []Hit {
	terms := Terms(query)
	if len(terms) == 0 {
		return nil
	}
	i.mux.RLock()
	defer i.mux.RUnlock()
	var scores map[string]int
	for _, term := range terms {
		postings := i.terms[term]
		if len(postings) == 0 {
			return nil
		}
		if scores == nil {
			scores = make(map[string]int, len(postings))
			for id, score := range postings {
				scores[id] = score
			}
			continue
		}
		for id := range scores {
			score, ok := postings[id]
			if !ok {
				delete(scores, id)
				continue
			}
			scores[id] += score
		}
	}
	ret := make([]Hit, 0, len(scores))
	for id, score := range scores {
		ret = append(ret, Hit{ID: id, Score: score})
	}
	sort.Slice(ret, func(a, b int) bool {
		if ret[a].Score != ret[b].Score {
			return ret[a].Score > ret[b].Score
		}
		return ret[a].ID < ret[b].ID
	})
	return ret
}

// Terms splits text into lower-cased letter/digit words
func Terms(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

func (i *Index) init() {
	i.headings = map[string]map[string]bool{}
	i.labels = map[string]string{}
	i.terms = map[string]map[string]int{}
	i.notes = map[string]*entry{}
}

// New creates an index
func New() *Index {
	ret := &Index{}
	ret.init()
	return ret
}
