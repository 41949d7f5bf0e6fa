package index

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/viant/notestore/model"
)

func newNote(heading, body string) *model.Note {
	ret := &model.Note{Heading: heading, Body: body}
	ret.Seal()
	return ret
}

func TestIndex_Lookup(t *testing.T) {
	idx := New()
	short := newNote("Built-in Types", "JavaScript defines seven built-in types")
	long := newNote("Built-in Types", "JavaScript defines seven built-in types:\nnull\nundefined")
	other := newNote("A Type By Any Other Name...", "coercion is useful")
	for _, n := range []*model.Note{short, long, other} {
		idx.Add(n)
	}
	assert.Equal(t, 3, idx.Len())

	testCases := []struct {
		description string
		heading     string
		expected    int
	}{
		{description: "exact", heading: "Built-in Types", expected: 2},
		{description: "case insensitive", heading: "BUILT-IN   types", expected: 2},
		{description: "trailing punctuation", heading: "a type by any other name", expected: 1},
		{description: "missing", heading: "Values", expected: 0},
	}
	for _, tc := range testCases {
		t.Run(tc.description, func(t *testing.T) {
			assert.Len(t, idx.Lookup(tc.heading), tc.expected)
		})
	}

	idx.Remove(short.ID)
	assert.Equal(t, []string{long.ID}, idx.Lookup("built-in types"))
	idx.Remove(long.ID)
	assert.Empty(t, idx.Lookup("built-in types"))
	assert.Empty(t, idx.Search("seven"))
}

func TestIndex_Prefix(t *testing.T) {
	idx := New()
	idx.Add(newNote("Built-in Types", "a"))
	idx.Add(newNote("Built-in Natives", "b"))
	idx.Add(newNote("Values", "c"))
	idx.Add(newNote("", "preamble"))
	assert.Equal(t, []string{"Built-in Natives", "Built-in Types"}, idx.Prefix("built-in"))
	assert.Equal(t, []string{"Values"}, idx.Prefix("VAL"))
	assert.Len(t, idx.Prefix(""), 3)
}

func TestIndex_Search(t *testing.T) {
	idx := New()
	typeofNote := newNote("Typeof Operator", "typeof null returns object")
	nullNote := newNote("Null", "null is falsy and typeof null is object")
	arrays := newNote("Arrays", "arrays are objects")
	for _, n := range []*model.Note{typeofNote, nullNote, arrays} {
		idx.Add(n)
	}

	hits := idx.Search("typeof null")
	if assert.Len(t, hits, 2) {
		// typeof(3+1) + null(1) = 5 vs null(3+2) + typeof(1) = 6
		assert.Equal(t, nullNote.ID, hits[0].ID)
		assert.Equal(t, 6, hits[0].Score)
		assert.Equal(t, typeofNote.ID, hits[1].ID)
		assert.Equal(t, 5, hits[1].Score)
	}
	assert.Empty(t, idx.Search("typeof arrays"))
	assert.Empty(t, idx.Search("  "))

	idx.Reset()
	assert.Equal(t, 0, idx.Len())
	assert.Empty(t, idx.Search("null"))
}

func TestIndex_Concurrent(t *testing.T) {
	idx := New()
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			n := newNote("Heading", string(rune('a'+i)))
			idx.Add(n)
			_ = idx.Lookup("heading")
			_ = idx.Search("heading")
		}(i)
	}
	wg.Wait()
	assert.Len(t, idx.Lookup("heading"), 20)
}

func TestTerms(t *testing.T) {
	assert.Equal(t, []string{"typeof", "null", "object", "true"}, Terms(`typeof null === "object"; // true`))
}
