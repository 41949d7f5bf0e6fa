package criteria

import (
	"strconv"

	"github.com/viant/notestore/model"
	"github.com/viant/notestore/service/dao"
)

// MatchNote returns true when note satisfies every known parameter; a
// parameter with several values matches any of them. Unknown names are
// ignored.
func MatchNote(note *model.Note, parameters []*dao.Parameter) bool {
	for _, parameter := range parameters {
		if parameter == nil {
			continue
		}
		values := parameter.Values()
		switch parameter.Name {
		case dao.ParamSource:
			if !anyOf(values, note.HasSource) {
				return false
			}
		case dao.ParamChapter:
			if !anyOf(values, equalsInt(note.Chapter)) {
				return false
			}
		case dao.ParamLevel:
			if !anyOf(values, equalsInt(note.Level)) {
				return false
			}
		case dao.ParamHeading:
			if !anyOf(values, func(v string) bool { return model.NormalizeHeading(v) == note.Key }) {
				return false
			}
		}
	}
	return true
}

// MatchDocument returns true when document satisfies Source parameter
func MatchDocument(document *model.Document, parameters []*dao.Parameter) bool {
	for _, parameter := range parameters {
		if parameter == nil || parameter.Name != dao.ParamSource {
			continue
		}
		if !anyOf(parameter.Values(), func(v string) bool { return v == document.URL }) {
			return false
		}
	}
	return true
}

func anyOf(values []string, predicate func(string) bool) bool {
	for _, value := range values {
		if predicate(value) {
			return true
		}
	}
	return false
}

func equalsInt(expected int) func(string) bool {
	return func(value string) bool {
		actual, err := strconv.Atoi(value)
		return err == nil && actual == expected
	}
}
