package runtime

import (
	"net/url"
	"testing"

	"github.com/aretw0/waypoint/pkg/instruction"
	"github.com/stretchr/testify/assert"
)

func TestRouteTree_Instructions(t *testing.T) {
	tree := &RouteTree{
		Nodes: []*RouteNode{
			{
				Viewport: "main", Component: "product", Title: "Product",
				segments: []string{"products", "42"},
				Children: []*RouteNode{
					{Viewport: "tabs", Component: "reviews", Title: "Reviews", segments: []string{"reviews"}, instrParams: instruction.Params{"sort": "new"}},
				},
			},
			{Viewport: "side", Component: "chat", segments: []string{"chat"}, explicitViewport: true},
		},
		QueryParams: url.Values{"ref": {"home"}},
		Fragment:    "top",
	}

	assert.Equal(t, "/products/42/reviews(sort=new)+chat@side?ref=home#top", tree.Instructions().ToURL())
	assert.Equal(t, "Product > Reviews > Shop", tree.Title("Shop", " > "))
	assert.Equal(t, "reviews", tree.Find("main/tabs").Component)
	assert.Nil(t, tree.Find("main/nothing"))

	var visited []string
	tree.Walk(func(depth int, n *RouteNode) bool {
		visited = append(visited, n.Component)
		return depth == 0 && n.Component != "chat"
	})
	assert.Equal(t, []string{"product", "reviews", "chat"}, visited)
}

func TestRouteTree_EmptySegmentsLiftChildren(t *testing.T) {
	tree := &RouteTree{Nodes: []*RouteNode{
		{Viewport: "main", Component: "home", Children: []*RouteNode{
			{Viewport: "inner", Component: "feed", segments: []string{"feed"}},
		}},
	}}
	assert.Equal(t, "/feed", tree.Instructions().ToURL())
}
