package instruction

import (
	"fmt"
	"strings"
)

// ViewportInstruction says which component to load into which viewport, with
// what params, and what to load underneath it.
type ViewportInstruction struct {
	// Context is the route context a relative instruction resolves against.
	Context any
	// Append keeps unmentioned sibling viewports untouched.
	Append bool
	// Open and Close count the parentheses opened before and closed after this
	// instruction when it was parsed.
	Open  int
	Close int

	Component Component
	Viewport  string
	Params    Params
	Children  []*ViewportInstruction
}

// Partial is a loosely typed instruction literal accepted by Create.
type Partial struct {
	Component any
	Viewport  string
	Params    Params
	Children  []any
	Append    bool
}

// Create normalizes input into an instruction. It accepts an instruction, a
// Partial, or anything NewComponent accepts.
func Create(input any) (*ViewportInstruction, error) {
	switch x := input.(type) {
	case *ViewportInstruction:
		if x == nil {
			return nil, fmt.Errorf("%w: nil instruction", ErrInvalidComponent)
		}
		return x, nil
	case Partial:
		return createPartial(&x)
	case *Partial:
		if x == nil {
			return nil, fmt.Errorf("%w: nil partial", ErrInvalidComponent)
		}
		return createPartial(x)
	}

	c, err := NewComponent(input)
	if err != nil {
		return nil, err
	}
	return &ViewportInstruction{Component: c}, nil
}

func createPartial(p *Partial) (*ViewportInstruction, error) {
	c, err := NewComponent(p.Component)
	if err != nil {
		return nil, err
	}
	vi := &ViewportInstruction{
		Append:    p.Append,
		Component: c,
		Viewport:  p.Viewport,
		Params:    p.Params.Clone(),
	}
	for _, ch := range p.Children {
		child, err := Create(ch)
		if err != nil {
			return nil, fmt.Errorf("child of %s: %w", c.Name(), err)
		}
		vi.Children = append(vi.Children, child)
	}
	return vi, nil
}

// Equals reports structural equality. Context is ignored.
func (v *ViewportInstruction) Equals(o *ViewportInstruction) bool {
	if v == nil || o == nil {
		return v == o
	}
	if !v.Component.Equal(o.Component) || v.Viewport != o.Viewport || !v.Params.Equal(o.Params) {
		return false
	}
	if len(v.Children) != len(o.Children) {
		return false
	}
	for i := range v.Children {
		if !v.Children[i].Equals(o.Children[i]) {
			return false
		}
	}
	return true
}

// Contains is like Equals but v may have more children than o, and a viewport
// name left empty on either side matches any viewport.
func (v *ViewportInstruction) Contains(o *ViewportInstruction) bool {
	if o == nil {
		return true
	}
	if v == nil {
		return false
	}
	if len(v.Children) < len(o.Children) {
		return false
	}
	if !v.Component.Equal(o.Component) || !v.Params.Equal(o.Params) {
		return false
	}
	if v.Viewport != "" && o.Viewport != "" && v.Viewport != o.Viewport {
		return false
	}
	for i := range o.Children {
		if !v.Children[i].Contains(o.Children[i]) {
			return false
		}
	}
	return true
}

// Clone deep-copies params and children. The component reference is shared.
func (v *ViewportInstruction) Clone() *ViewportInstruction {
	if v == nil {
		return nil
	}
	out := *v
	out.Params = v.Params.Clone()
	out.Children = cloneAll(v.Children)
	return &out
}

func cloneAll(in []*ViewportInstruction) []*ViewportInstruction {
	if in == nil {
		return nil
	}
	out := make([]*ViewportInstruction, len(in))
	for i, c := range in {
		out[i] = c.Clone()
	}
	return out
}

// ToURLComponent renders the instruction in route expression syntax.
func (v *ViewportInstruction) ToURLComponent(recursive bool) string {
	var sb strings.Builder
	sb.WriteString(strings.Repeat("(", v.Open))
	sb.WriteString(escape(v.Component.Name()))
	sb.WriteString(v.Params.String())
	if v.Viewport != "" {
		sb.WriteString("@")
		sb.WriteString(escape(v.Viewport))
	}
	sb.WriteString(strings.Repeat(")", v.Close))
	if recursive && len(v.Children) > 0 {
		sb.WriteString("/")
		sb.WriteString(joinSiblings(v.Children, true))
	}
	return sb.String()
}

func (v *ViewportInstruction) String() string { return v.ToURLComponent(true) }

// joinSiblings renders siblings with '+'. Under a parent they need grouping
// unless the parsed parentheses already provide it.
func joinSiblings(children []*ViewportInstruction, nested bool) string {
	parts := make([]string, len(children))
	for i, c := range children {
		parts[i] = c.ToURLComponent(true)
	}
	s := strings.Join(parts, "+")
	if nested && len(children) > 1 && (children[0].Open == 0 || children[len(children)-1].Close == 0) {
		s = "(" + s + ")"
	}
	return s
}
