package instruction

import (
	"net/url"

	"github.com/aretw0/waypoint/pkg/domain"
	"github.com/aretw0/waypoint/pkg/expression"
)

// Outline is a plain rendering of an instruction for JSON output.
type Outline struct {
	Component string     `json:"component"`
	Kind      string     `json:"kind"`
	Viewport  string     `json:"viewport,omitempty"`
	Params    Params     `json:"params,omitempty"`
	Append    bool       `json:"append,omitempty"`
	Children  []*Outline `json:"children,omitempty"`
}

// Outline renders the root instructions.
func (t *Tree) Outline() []*Outline {
	return outlineAll(t.Children)
}

// Outline renders v and its children.
func (v *ViewportInstruction) Outline() *Outline {
	return &Outline{
		Component: v.Component.Name(),
		Kind:      v.Component.Kind().String(),
		Viewport:  v.Viewport,
		Params:    v.Params,
		Append:    v.Append,
		Children:  outlineAll(v.Children),
	}
}

func outlineAll(in []*ViewportInstruction) []*Outline {
	if len(in) == 0 {
		return nil
	}
	out := make([]*Outline, len(in))
	for i, vi := range in {
		out[i] = vi.Outline()
	}
	return out
}

// Description is the parse report of a route string.
type Description struct {
	Input        string     `json:"input"`
	URL          string     `json:"url"`
	Absolute     bool       `json:"absolute"`
	Append       bool       `json:"append,omitempty"`
	QueryParams  url.Values `json:"query_params,omitempty"`
	Fragment     string     `json:"fragment,omitempty"`
	Instructions []*Outline `json:"instructions"`
}

// Describe parses input and reports how it normalizes.
func Describe(p *expression.Parser, input string, fragmentIsRoute bool) (*Description, error) {
	t, err := CreateTree(p, input, fragmentIsRoute, domain.NavigationOptions{})
	if err != nil {
		return nil, err
	}
	d := &Description{
		Input:        input,
		URL:          t.ToURL(),
		Absolute:     t.IsAbsolute,
		Append:       t.Append(),
		Fragment:     t.Fragment,
		Instructions: t.Outline(),
	}
	if len(t.QueryParams) > 0 {
		d.QueryParams = t.QueryParams
	}
	if fragmentIsRoute {
		d.URL = t.ToHashURL()
	}
	return d, nil
}
