package criteria

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/viant/notestore/model"
	"github.com/viant/notestore/service/dao"
)

func TestMatchNote(t *testing.T) {
	note := &model.Note{Heading: "Built-in Types", Level: model.LevelSection, Chapter: 1, Sources: []string{"mem://localhost/a.js"}}
	note.Seal()

	testCases := []struct {
		description string
		parameters  []*dao.Parameter
		expected    bool
	}{
		{description: "no parameters", expected: true},
		{description: "matching source", parameters: []*dao.Parameter{dao.NewParameter(dao.ParamSource, "mem://localhost/a.js")}, expected: true},
		{description: "other source", parameters: []*dao.Parameter{dao.NewParameter(dao.ParamSource, "mem://localhost/b.js")}, expected: false},
		{description: "any of sources", parameters: []*dao.Parameter{dao.NewParameter(dao.ParamSource, "mem://localhost/b.js", "mem://localhost/a.js")}, expected: true},
		{description: "chapter", parameters: []*dao.Parameter{dao.NewIntParameter(dao.ParamChapter, 1)}, expected: true},
		{description: "wrong chapter", parameters: []*dao.Parameter{dao.NewIntParameter(dao.ParamChapter, 2)}, expected: false},
		{description: "level and heading", parameters: []*dao.Parameter{dao.NewIntParameter(dao.ParamLevel, model.LevelSection), dao.NewParameter(dao.ParamHeading, "built-in   TYPES")}, expected: true},
		{description: "wrong heading", parameters: []*dao.Parameter{dao.NewParameter(dao.ParamHeading, "Values")}, expected: false},
		{description: "unknown ignored", parameters: []*dao.Parameter{dao.NewParameter("State", "done")}, expected: true},
	}
	for _, tc := range testCases {
		t.Run(tc.description, func(t *testing.T) {
			assert.Equal(t, tc.expected, MatchNote(note, tc.parameters))
		})
	}
}

func TestMatchDocument(t *testing.T) {
	document := &model.Document{URL: "mem://localhost/a.js"}
	assert.True(t, MatchDocument(document, nil))
	assert.True(t, MatchDocument(document, []*dao.Parameter{dao.NewParameter(dao.ParamSource, "mem://localhost/a.js")}))
	assert.False(t, MatchDocument(document, []*dao.Parameter{dao.NewParameter(dao.ParamSource, "mem://localhost/b.js")}))
}
