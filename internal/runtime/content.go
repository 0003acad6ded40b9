package runtime

import (
	"fmt"

	"github.com/aretw0/waypoint/pkg/domain"
	"github.com/aretw0/waypoint/pkg/instruction"
)

// ContentState is the lifecycle position of a viewport's content.
type ContentState int

const (
	StateNone ContentState = iota
	StateCreated
	StateGuarded
	StateLoaded
	StateActivated
)

func (s ContentState) String() string {
	switch s {
	case StateNone:
		return "none"
	case StateCreated:
		return "created"
	case StateGuarded:
		return "guarded"
	case StateLoaded:
		return "loaded"
	case StateActivated:
		return "activated"
	}
	return fmt.Sprintf("ContentState(%d)", int(s))
}

var contentTransitions = map[ContentState][]ContentState{
	StateNone:      {StateCreated},
	StateCreated:   {StateGuarded, StateNone},
	StateGuarded:   {StateLoaded, StateNone},
	StateLoaded:    {StateActivated, StateNone},
	StateActivated: {StateLoaded},
}

// ViewportContent is one component placed (or about to be placed) in a
// viewport, together with the route data it was resolved from.
type ViewportContent struct {
	Definition *domain.ComponentDefinition
	Component  any
	Navigation *domain.NavigationContext

	// Segments are the URL segments this content consumed.
	Segments []string
	// Params holds instruction params merged with bound path params.
	Params instruction.Params
	Title  string

	FromCache   bool
	FromHistory bool

	state            ContentState
	instrParams      instruction.Params
	explicitViewport bool
	// reused marks content sharing its instance with the current content.
	reused   bool
	children *RouteContext
	pending  []*instruction.ViewportInstruction
}

// State returns the lifecycle position of the content.
func (c *ViewportContent) State() ContentState { return c.state }

// Children returns the route context of the content's child viewports, or nil.
func (c *ViewportContent) Children() *RouteContext { return c.children }

func (c *ViewportContent) name() string {
	if c == nil {
		return ""
	}
	return c.Definition.Name
}

func (c *ViewportContent) transition(to ContentState) error {
	for _, allowed := range contentTransitions[c.state] {
		if allowed == to {
			c.state = to
			return nil
		}
	}
	return fmt.Errorf("%w: %s -> %s (%s)", ErrIllegalContentTransition, c.state, to, c.name())
}

// free releases content that will never be shown.
func (c *ViewportContent) free() {
	switch c.state {
	case StateCreated, StateGuarded, StateLoaded:
		c.state = StateNone
	}
}

// matches reports whether c can stand in for a fresh resolution of target.
func (c *ViewportContent) matches(target *resolvedRoute) bool {
	return c.Definition.Name == target.def.Name && c.Params.Equal(target.params)
}
