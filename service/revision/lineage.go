package revision

import (
	"sort"

	"github.com/viant/notestore/model"
)

// Chain orders documents from least to most complete revision
type Chain struct {
	Documents  []string      `json:"documents"`
	Links      []*Comparison `json:"links"`
	Consistent bool          `json:"consistent"`
	Head       string        `json:"head,omitempty"`
}

// Breaks returns links which are not prefix supersets
func (c *Chain) Breaks() []*Comparison {
	var ret []*Comparison
	for _, link := range c.Links {
		if !link.PrefixSuperset {
			ret = append(ret, link)
		}
	}
	return ret
}

// Lineage orders documents by normalised text length (ties by URL) and
// compares each neighbouring pair. The chain is consistent when every
// revision is a prefix superset of its predecessor.
func Lineage(documents []*model.Document) (*Chain, error) {
	type revision struct {
		url  string
		text string
	}
	revisions := make([]revision, 0, len(documents))
	for _, document := range documents {
		if document == nil {
			continue
		}
		revisions = append(revisions, revision{url: document.URL, text: Normalize(document.Text)})
	}
	sort.SliceStable(revisions, func(i, j int) bool {
		if len(revisions[i].text) != len(revisions[j].text) {
			return len(revisions[i].text) < len(revisions[j].text)
		}
		return revisions[i].url < revisions[j].url
	})
	ret := &Chain{Consistent: true}
	for i, rev := range revisions {
		ret.Documents = append(ret.Documents, rev.url)
		if i == 0 {
			continue
		}
		prev := revisions[i-1]
		comparison, err := CompareText(prev.url, prev.text, rev.url, rev.text)
		if err != nil {
			return nil, err
		}
		if !comparison.PrefixSuperset {
			ret.Consistent = false
		}
		ret.Links = append(ret.Links, comparison)
	}
	if n := len(revisions); n > 0 {
		ret.Head = revisions[n-1].url
	}
	return ret, nil
}
