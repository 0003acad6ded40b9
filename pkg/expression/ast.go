package expression

import (
	"net/url"
	"strings"
)

// Kind identifies the concrete type of an Expression.
type Kind int

const (
	KindRoute Kind = iota
	KindComposite
	KindScoped
	KindGroup
	KindSegment
	KindComponent
	KindAction
	KindViewport
	KindParameterList
	KindParameter
)

var kindNames = [...]string{
	KindRoute:         "Route",
	KindComposite:     "CompositeSegment",
	KindScoped:        "ScopedSegment",
	KindGroup:         "SegmentGroup",
	KindSegment:       "Segment",
	KindComponent:     "Component",
	KindAction:        "Action",
	KindViewport:      "Viewport",
	KindParameterList: "ParameterList",
	KindParameter:     "Parameter",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "Unknown"
}

// Expression is implemented by every AST node. The set is closed.
type Expression interface {
	Kind() Kind
	// String returns the exact input substring the node was parsed from.
	String() string
	expression()
}

// RouteExpression is the root of a parsed route. QueryParams and Fragment
// are decoded; RawQuery and RawFragment keep the text as written.
type RouteExpression struct {
	Raw             string
	IsAbsolute      bool
	Root            Expression
	QueryParams     url.Values
	RawQuery        string
	Fragment        string
	RawFragment     string
	FragmentIsRoute bool
}

// CompositeSegmentExpression holds sibling segments joined with '+'.
// Append is set when the expression started with a leading '+'.
type CompositeSegmentExpression struct {
	Raw      string
	Siblings []Expression
	Append   bool
}

// ScopedSegmentExpression is a parent/child pair joined with '/'.
type ScopedSegmentExpression struct {
	Raw   string
	Left  Expression
	Right Expression
}

// SegmentGroupExpression is a parenthesised composite. Viewport holds an
// optional '@name' written after the closing parenthesis; it names the group
// and is not applied to the segments inside.
type SegmentGroupExpression struct {
	Raw        string
	Expression Expression
	Viewport   *ViewportExpression
}

// SegmentExpression is a single component reference with optional action and viewport.
// Scoped is false when the segment ended with '!'.
type SegmentExpression struct {
	Raw       string
	Component *ComponentExpression
	Action    *ActionExpression
	Viewport  *ViewportExpression
	Scoped    bool
}

// ComponentExpression names a component. A leading ':' marks a parameter
// and a leading '*' a catch-all; ParameterName has the prefix removed.
type ComponentExpression struct {
	Raw           string
	Name          string
	ParameterName string
	ParameterList *ParameterListExpression
	IsParameter   bool
	IsStar        bool
	IsDynamic     bool
}

type ActionExpression struct {
	Raw           string
	Name          string
	ParameterList *ParameterListExpression
}

type ViewportExpression struct {
	Raw  string
	Name string
}

type ParameterListExpression struct {
	Raw         string
	Expressions []*ParameterExpression
}

// ParameterExpression is a key/value pair. Positional values get their index as key.
type ParameterExpression struct {
	Raw   string
	Key   string
	Value string
}

func (*RouteExpression) Kind() Kind            { return KindRoute }
func (*CompositeSegmentExpression) Kind() Kind { return KindComposite }
func (*ScopedSegmentExpression) Kind() Kind    { return KindScoped }
func (*SegmentGroupExpression) Kind() Kind     { return KindGroup }
func (*SegmentExpression) Kind() Kind          { return KindSegment }
func (*ComponentExpression) Kind() Kind        { return KindComponent }
func (*ActionExpression) Kind() Kind           { return KindAction }
func (*ViewportExpression) Kind() Kind         { return KindViewport }
func (*ParameterListExpression) Kind() Kind    { return KindParameterList }
func (*ParameterExpression) Kind() Kind        { return KindParameter }

func (*RouteExpression) expression()            {}
func (*CompositeSegmentExpression) expression() {}
func (*ScopedSegmentExpression) expression()    {}
func (*SegmentGroupExpression) expression()     {}
func (*SegmentExpression) expression()          {}
func (*ComponentExpression) expression()        {}
func (*ActionExpression) expression()           {}
func (*ViewportExpression) expression()         {}
func (*ParameterListExpression) expression()    {}
func (*ParameterExpression) expression()        {}

// String reconstructs the full route, including query and fragment, as it
// was written. Values set without raw text are encoded: the query in key
// order and the fragment path-escaped.
func (e *RouteExpression) String() string {
	var sb strings.Builder
	if e.FragmentIsRoute {
		sb.WriteString("#")
	}
	sb.WriteString(e.Raw)
	switch {
	case e.RawQuery != "":
		sb.WriteString("?")
		sb.WriteString(e.RawQuery)
	case len(e.QueryParams) > 0:
		sb.WriteString("?")
		sb.WriteString(e.QueryParams.Encode())
	}
	switch {
	case e.RawFragment != "":
		sb.WriteString("#")
		sb.WriteString(e.RawFragment)
	case e.Fragment != "":
		sb.WriteString("#")
		sb.WriteString(url.PathEscape(e.Fragment))
	}
	return sb.String()
}

func (e *CompositeSegmentExpression) String() string { return e.Raw }
func (e *ScopedSegmentExpression) String() string    { return e.Raw }
func (e *SegmentGroupExpression) String() string     { return e.Raw }
func (e *SegmentExpression) String() string          { return e.Raw }
func (e *ComponentExpression) String() string        { return e.Raw }
func (e *ActionExpression) String() string           { return e.Raw }
func (e *ViewportExpression) String() string         { return e.Raw }
func (e *ParameterListExpression) String() string    { return e.Raw }
func (e *ParameterExpression) String() string        { return e.Raw }

// IsEmpty reports whether the segment names no component.
func (e *SegmentExpression) IsEmpty() bool {
	return e.Component == nil || e.Component.Name == ""
}

// Params returns the list as a map. Later duplicates win.
func (e *ParameterListExpression) Params() map[string]string {
	if e == nil || len(e.Expressions) == 0 {
		return nil
	}
	m := make(map[string]string, len(e.Expressions))
	for _, p := range e.Expressions {
		m[p.Key] = p.Value
	}
	return m
}

func emptySegment() *SegmentExpression {
	return &SegmentExpression{
		Component: &ComponentExpression{ParameterList: &ParameterListExpression{}},
		Action:    &ActionExpression{ParameterList: &ParameterListExpression{}},
		Viewport:  &ViewportExpression{},
		Scoped:    true,
	}
}
