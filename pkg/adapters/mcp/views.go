package mcp

import (
	"github.com/aretw0/waypoint/internal/runtime"
	"github.com/aretw0/waypoint/pkg/instruction"
	"github.com/aretw0/waypoint/pkg/session"
)

// Tool outputs are flat so their JSON schemas can be reflected without
// definitions. Depth encodes nesting: a node's parent is the closest
// preceding entry with Depth-1.

// NodeView is one viewport of a route tree.
type NodeView struct {
	Viewport  string            `json:"viewport"`
	Component string            `json:"component"`
	Path      string            `json:"path,omitempty"`
	Params    map[string]string `json:"params,omitempty"`
	Title     string            `json:"title,omitempty"`
	State     string            `json:"state,omitempty"`
	Depth     int               `json:"depth" jsonschema_description:"Nesting level, 0 for root viewports"`
}

// SnapshotResult is the output of the navigate and history tools.
type SnapshotResult struct {
	SessionID string     `json:"session_id"`
	URL       string     `json:"url"`
	Title     string     `json:"title,omitempty"`
	Index     int        `json:"index"`
	Length    int        `json:"length"`
	Navigated bool       `json:"navigated"`
	Nodes     []NodeView `json:"nodes"`
}

// RouteTreeResult is the output of the route_tree tool.
type RouteTreeResult struct {
	SessionID string     `json:"session_id"`
	URL       string     `json:"url"`
	Outline   string     `json:"outline" jsonschema_description:"Indented rendering of the viewport tree"`
	Nodes     []NodeView `json:"nodes"`
}

// InstructionView is one normalized instruction of a parsed route.
type InstructionView struct {
	Component string            `json:"component"`
	Kind      string            `json:"kind"`
	Viewport  string            `json:"viewport,omitempty"`
	Params    map[string]string `json:"params,omitempty"`
	Append    bool              `json:"append,omitempty"`
	Depth     int               `json:"depth"`
}

// ParseResult is the output of the parse_route tool.
type ParseResult struct {
	Input        string              `json:"input"`
	URL          string              `json:"url"`
	Absolute     bool                `json:"absolute"`
	Append       bool                `json:"append,omitempty"`
	QueryParams  map[string][]string `json:"query_params,omitempty"`
	Fragment     string              `json:"fragment,omitempty"`
	Instructions []InstructionView   `json:"instructions"`
}

func nodeViews(t *runtime.RouteTree) []NodeView {
	nodes := []NodeView{}
	t.Walk(func(depth int, n *runtime.RouteNode) bool {
		nodes = append(nodes, NodeView{
			Viewport:  n.Viewport,
			Component: n.Component,
			Path:      n.Path,
			Params:    n.Params.Clone(),
			Title:     n.Title,
			State:     n.State,
			Depth:     depth,
		})
		return true
	})
	return nodes
}

func snapshotResult(s *session.Snapshot) SnapshotResult {
	return SnapshotResult{
		SessionID: s.SessionID,
		URL:       s.URL,
		Title:     s.Title,
		Index:     s.Index,
		Length:    s.Length,
		Navigated: s.Navigated,
		Nodes:     nodeViews(s.RouteTree),
	}
}

func parseResult(d *instruction.Description) ParseResult {
	res := ParseResult{
		Input:        d.Input,
		URL:          d.URL,
		Absolute:     d.Absolute,
		Append:       d.Append,
		QueryParams:  d.QueryParams,
		Fragment:     d.Fragment,
		Instructions: []InstructionView{},
	}
	var flatten func(int, []*instruction.Outline)
	flatten = func(depth int, outlines []*instruction.Outline) {
		for _, o := range outlines {
			res.Instructions = append(res.Instructions, InstructionView{
				Component: o.Component,
				Kind:      o.Kind,
				Viewport:  o.Viewport,
				Params:    o.Params.Clone(),
				Append:    o.Append,
				Depth:     depth,
			})
			flatten(depth+1, o.Children)
		}
	}
	flatten(0, d.Instructions)
	return res
}
