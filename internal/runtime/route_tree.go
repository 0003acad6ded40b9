package runtime

import (
	"fmt"
	"net/url"
	"slices"
	"strings"

	"github.com/aretw0/waypoint/pkg/instruction"
)

// RouteNode is a committed viewport in a RouteTree snapshot.
type RouteNode struct {
	Viewport  string             `json:"viewport"`
	Component string             `json:"component"`
	Path      string             `json:"path,omitempty"`
	Params    instruction.Params `json:"params,omitempty"`
	Title     string             `json:"title,omitempty"`
	State     string             `json:"state"`
	Children  []*RouteNode       `json:"children,omitempty"`

	segments         []string
	instrParams      instruction.Params
	explicitViewport bool
}

// RouteTree is an immutable snapshot of what the router shows.
type RouteTree struct {
	Nodes       []*RouteNode `json:"nodes"`
	QueryParams url.Values   `json:"query_params,omitempty"`
	Fragment    string       `json:"fragment,omitempty"`
}

func snapshotTree(root *RouteContext, tree *instruction.Tree) *RouteTree {
	t := &RouteTree{Nodes: snapshotContext(root)}
	if tree != nil {
		t.QueryParams = cloneQuery(tree.QueryParams)
		t.Fragment = tree.Fragment
	}
	return t
}

func snapshotContext(rc *RouteContext) []*RouteNode {
	var nodes []*RouteNode
	for _, vp := range rc.viewports {
		c := vp.content
		if c == nil {
			continue
		}
		n := &RouteNode{
			Viewport:         vp.Name,
			Component:        c.name(),
			Path:             strings.Join(c.Segments, "/"),
			Params:           c.Params.Clone(),
			Title:            c.Title,
			State:            c.state.String(),
			segments:         c.Segments,
			instrParams:      c.instrParams.Clone(),
			explicitViewport: c.explicitViewport,
		}
		if c.children != nil {
			n.Children = snapshotContext(c.children)
		}
		nodes = append(nodes, n)
	}
	return nodes
}

// Walk visits every node depth-first. Returning false skips the children.
func (t *RouteTree) Walk(fn func(depth int, n *RouteNode) bool) {
	if t == nil {
		return
	}
	var walk func(int, []*RouteNode)
	walk = func(depth int, nodes []*RouteNode) {
		for _, n := range nodes {
			if fn(depth, n) {
				walk(depth+1, n.Children)
			}
		}
	}
	walk(0, t.Nodes)
}

// Instructions renders the tree back into navigation instructions, so that
// loading the result reproduces the tree.
func (t *RouteTree) Instructions() *instruction.Tree {
	out := &instruction.Tree{IsAbsolute: true, QueryParams: url.Values{}}
	if t == nil {
		return out
	}
	for _, n := range t.Nodes {
		out.Children = append(out.Children, n.instructions()...)
	}
	out.QueryParams = cloneQuery(t.QueryParams)
	out.Fragment = t.Fragment
	return out
}

func (n *RouteNode) instructions() []*instruction.ViewportInstruction {
	var children []*instruction.ViewportInstruction
	for _, c := range n.Children {
		children = append(children, c.instructions()...)
	}
	if len(n.segments) == 0 {
		return children
	}

	head := &instruction.ViewportInstruction{Component: instruction.MustComponent(n.segments[0])}
	tail := head
	for _, seg := range n.segments[1:] {
		next := &instruction.ViewportInstruction{Component: instruction.MustComponent(seg)}
		tail.Children = []*instruction.ViewportInstruction{next}
		tail = next
	}
	tail.Params = n.instrParams.Clone()
	tail.Children = children
	if n.explicitViewport {
		head.Viewport = n.Viewport
	}
	return []*instruction.ViewportInstruction{head}
}

// Title joins the titles of every node depth-first, then base.
func (t *RouteTree) Title(base, separator string) string {
	var parts []string
	t.Walk(func(_ int, n *RouteNode) bool {
		if n.Title != "" {
			parts = append(parts, n.Title)
		}
		return true
	})
	if base != "" {
		parts = append(parts, base)
	}
	return strings.Join(parts, separator)
}

// Find returns the node at a slash-separated viewport path such as
// "main/tabs", or nil.
func (t *RouteTree) Find(path string) *RouteNode {
	if t == nil {
		return nil
	}
	nodes := t.Nodes
	var found *RouteNode
	for _, name := range strings.Split(path, "/") {
		found = nil
		for _, n := range nodes {
			if n.Viewport == name {
				found = n
				break
			}
		}
		if found == nil {
			return nil
		}
		nodes = found.Children
	}
	return found
}

func (t *RouteTree) String() string {
	var sb strings.Builder
	t.Walk(func(depth int, n *RouteNode) bool {
		fmt.Fprintf(&sb, "%s%s: %s%s\n", strings.Repeat("  ", depth), n.Viewport, n.Component, n.Params)
		return true
	})
	return sb.String()
}

func cloneQuery(v url.Values) url.Values {
	out := make(url.Values, len(v))
	for k, vs := range v {
		out[k] = slices.Clone(vs)
	}
	return out
}
