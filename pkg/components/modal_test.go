package components

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/recera/knowledgemap/pkg/knowledge/graph"
	"github.com/recera/knowledgemap/pkg/vango/vdom"
)

func hrefs(n *vdom.VNode) []string {
	var out []string
	if n.Tag == "a" {
		if href, ok := n.Attr("href"); ok {
			out = append(out, href)
		}
	}
	for i := range n.Kids {
		out = append(out, hrefs(&n.Kids[i])...)
	}
	return out
}

func TestTopicDetail_Resources(t *testing.T) {
	detail := TopicDetail(graph.Topic{
		ID:    "a",
		Label: "Alpha",
		Detail: graph.Detail{
			Overview: "first",
			Resources: []graph.Resource{
				{Label: "Docs", Href: "https://example.com/docs"},
				{Label: "Trap", Href: "javascript:alert(1)"},
				{Label: "Tabbed", Href: "java\tscript:alert(1)"},
			},
		},
	})

	assert.Equal(t, []string{"https://example.com/docs", "#", "#"}, hrefs(detail))
}
