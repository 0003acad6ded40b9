package graph_test

import (
	"strings"
	"testing"

	"github.com/aretw0/waypoint/internal/presentation/graph"
	"github.com/aretw0/waypoint/internal/runtime"
	"github.com/aretw0/waypoint/pkg/domain"
	"github.com/aretw0/waypoint/pkg/dsl"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateMermaid(t *testing.T) {
	tests := []struct {
		name     string
		m        graph.Map
		contains []string
	}{
		{
			name: "Viewport Shapes",
			m: graph.Map{Viewports: []domain.ViewportOptions{
				{Name: "main", Default: "home"},
				{Name: "side", UsedBy: []string{"cart"}},
			}},
			contains: []string{
				"root((\"/\"))",
				"vp_root_main[/\"main\"/]",
				"root --> vp_root_main",
				"vp_root_main -. default .-> c_home",
				"c_cart -. prefers .-> vp_root_side",
			},
		},
		{
			name: "Routes And Redirects",
			m: graph.Map{Routes: []domain.RouteConfig{
				{Path: "", Component: "home"},
				{Path: "products/:id", Component: "product-page"},
				{Path: "old/*rest", RedirectTo: "products/:rest"},
			}},
			contains: []string{
				"root -- \"/\" --> c_home",
				"root -- \"products/:id\" --> c_product_page",
				"redirect_1{{\"products/:rest\"}}",
				"root -. \"old/*rest\" .-> redirect_1",
			},
		},
		{
			name: "Component Contexts",
			m: graph.Map{Components: []*domain.ComponentDefinition{{
				Name:      "inbox",
				Title:     "Mail \"box\"",
				Viewports: []domain.ViewportOptions{{Name: "list"}},
				Routes:    []domain.RouteConfig{{Path: ":id", Component: "message"}},
			}}},
			contains: []string{
				"c_inbox[\"inbox <br/> Mail 'box'\"]",
				"c_inbox --> vp_c_inbox_list",
				"c_inbox -- \":id\" --> c_message",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := graph.GenerateMermaid(tt.m, nil)
			assert.True(t, strings.HasPrefix(got, "graph TD\n"))
			for _, want := range tt.contains {
				assert.Contains(t, got, want)
			}
			assert.NotContains(t, got, "classDef")
		})
	}
}

func TestGenerateMermaid_Overlay(t *testing.T) {
	tree := &runtime.RouteTree{Nodes: []*runtime.RouteNode{
		{Viewport: "main", Component: "inbox", Children: []*runtime.RouteNode{
			{Viewport: "list", Component: "message"},
		}},
		{Viewport: "side", Component: "cart"},
	}}
	overlay := graph.OverlayFromTree(tree)
	assert.Equal(t, []string{"inbox", "message", "cart"}, overlay.Active)
	assert.Equal(t, "message", overlay.Current)

	got := graph.GenerateMermaid(graph.Map{}, overlay)
	assert.Contains(t, got, "class c_inbox active;")
	assert.Contains(t, got, "class c_cart active;")
	assert.Contains(t, got, "class c_message current;")
	assert.NotContains(t, got, "class c_message active;")

	assert.Empty(t, graph.OverlayFromTree(nil).Active)
}

func TestFromRegistry(t *testing.T) {
	b := dsl.New()
	b.Viewport("main").Route("", "home")
	b.Component("home")
	b.Component("about").Title("About")
	reg, err := b.Build()
	require.NoError(t, err)

	m := graph.FromRegistry(reg, b.Viewports(), b.Routes())
	require.Len(t, m.Components, 2)
	assert.Equal(t, "about", m.Components[0].Name)
	assert.Contains(t, graph.GenerateMermaid(m, nil), "c_about[\"about <br/> About\"]")
}
