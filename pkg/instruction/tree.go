package instruction

import (
	"fmt"
	"net/url"
	"slices"
	"strings"

	"github.com/aretw0/waypoint/pkg/domain"
	"github.com/aretw0/waypoint/pkg/expression"
)

// Tree is a complete navigation request: the root instructions plus the
// query params and fragment that apply to the whole URL.
type Tree struct {
	Options     domain.NavigationOptions
	IsAbsolute  bool
	Children    []*ViewportInstruction
	QueryParams url.Values
	Fragment    string
}

// CreateTree builds a Tree from a route string, a *Tree, a []any of
// instructions, or a single instruction or component. Strings are parsed with
// p; fragmentIsRoute selects hash-based parsing.
func CreateTree(p *expression.Parser, input any, fragmentIsRoute bool, opts domain.NavigationOptions) (*Tree, error) {
	t := &Tree{Options: opts}

	switch x := input.(type) {
	case string:
		expr, err := p.Parse(x, fragmentIsRoute)
		if err != nil {
			return nil, err
		}
		children, err := FromExpression(expr)
		if err != nil {
			return nil, err
		}
		t.IsAbsolute = expr.IsAbsolute
		t.Children = children
		t.QueryParams = cloneValues(expr.QueryParams)
		t.Fragment = expr.Fragment

	case *Tree:
		if x == nil {
			return nil, fmt.Errorf("%w: nil tree", ErrInvalidComponent)
		}
		t = x.Clone()
		t.Options = opts

	case []any:
		for i, item := range x {
			vi, err := Create(item)
			if err != nil {
				return nil, fmt.Errorf("instruction %d: %w", i, err)
			}
			t.Children = append(t.Children, vi)
		}
		t.IsAbsolute = opts.Context == nil

	default:
		vi, err := Create(input)
		if err != nil {
			return nil, err
		}
		t.Children = []*ViewportInstruction{vi}
		t.IsAbsolute = opts.Context == nil
	}

	if t.QueryParams == nil {
		t.QueryParams = url.Values{}
	}
	for k, vs := range opts.QueryParams {
		t.QueryParams[k] = slices.Clone(vs)
	}
	if opts.Fragment != "" {
		t.Fragment = opts.Fragment
	}
	return t, nil
}

// Append reports whether the root instructions keep unmentioned viewports.
func (t *Tree) Append() bool {
	return len(t.Children) > 0 && t.Children[0].Append
}

// Equals compares instructions, query params and fragment.
func (t *Tree) Equals(o *Tree) bool {
	if t == nil || o == nil {
		return t == o
	}
	if len(t.Children) != len(o.Children) {
		return false
	}
	for i := range t.Children {
		if !t.Children[i].Equals(o.Children[i]) {
			return false
		}
	}
	return t.QueryParams.Encode() == o.QueryParams.Encode() && t.Fragment == o.Fragment
}

// Contains reports whether every root instruction of o is contained by one of
// t's root instructions. Query params and fragment are ignored.
func (t *Tree) Contains(o *Tree) bool {
	if o == nil {
		return true
	}
	if t == nil {
		return false
	}
	for _, oc := range o.Children {
		found := false
		for _, tc := range t.Children {
			if tc.Contains(oc) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// Clone deep-copies the tree. Options are shared.
func (t *Tree) Clone() *Tree {
	if t == nil {
		return nil
	}
	out := *t
	out.Children = cloneAll(t.Children)
	out.QueryParams = cloneValues(t.QueryParams)
	return &out
}

// ToPath renders the instructions without query, fragment or leading slash.
func (t *Tree) ToPath() string {
	return joinSiblings(t.Children, false)
}

// ToURL renders "/path?query#fragment".
func (t *Tree) ToURL() string {
	var sb strings.Builder
	sb.WriteString("/")
	sb.WriteString(t.ToPath())
	if q := t.QueryParams.Encode(); q != "" {
		sb.WriteString("?")
		sb.WriteString(q)
	}
	if t.Fragment != "" {
		sb.WriteString("#")
		sb.WriteString(t.Fragment)
	}
	return sb.String()
}

// ToHashURL renders the tree for fragment-based routing: "/#/path?query".
func (t *Tree) ToHashURL() string {
	var sb strings.Builder
	sb.WriteString("/#/")
	sb.WriteString(t.ToPath())
	if q := t.QueryParams.Encode(); q != "" {
		sb.WriteString("?")
		sb.WriteString(q)
	}
	return sb.String()
}

func (t *Tree) String() string { return t.ToURL() }

// ApplyStrategies combines t's query params and fragment with those of the
// current tree according to the given strategies.
func (t *Tree) ApplyStrategies(current *Tree, q domain.QueryParamsStrategy, f domain.FragmentStrategy) {
	if current != nil {
		switch q {
		case domain.QueryPreserve:
			t.QueryParams = cloneValues(current.QueryParams)
		case domain.QueryMerge:
			merged := cloneValues(current.QueryParams)
			for k, vs := range t.QueryParams {
				merged[k] = append(merged[k], vs...)
			}
			t.QueryParams = merged
		}
		if f == domain.FragmentPreserve && t.Fragment == "" {
			t.Fragment = current.Fragment
		}
	}
	if t.QueryParams == nil {
		t.QueryParams = url.Values{}
	}
}

func cloneValues(v url.Values) url.Values {
	out := make(url.Values, len(v))
	for k, vs := range v {
		out[k] = slices.Clone(vs)
	}
	return out
}
