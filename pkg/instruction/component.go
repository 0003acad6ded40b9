package instruction

import (
	"context"
	"errors"
	"fmt"
	"reflect"

	"github.com/aretw0/waypoint/pkg/domain"
)

// ErrInvalidComponent is returned when a value cannot identify a component.
var ErrInvalidComponent = errors.New("invalid component")

// Kind is the closed set of ways an instruction can reference a component.
type Kind int

const (
	KindName Kind = iota + 1
	KindType
	KindDefinition
	KindInstance
	KindDeferred
	KindInstruction
)

func (k Kind) String() string {
	switch k {
	case KindName:
		return "name"
	case KindType:
		return "type"
	case KindDefinition:
		return "definition"
	case KindInstance:
		return "instance"
	case KindDeferred:
		return "deferred"
	case KindInstruction:
		return "instruction"
	}
	return "invalid"
}

// Component is a tagged union over the supported component references.
// The zero value is invalid; build one with NewComponent.
type Component struct {
	kind     Kind
	name     string
	typ      reflect.Type
	def      *domain.ComponentDefinition
	instance any
	deferred domain.Deferred
	instr    *ViewportInstruction
}

// NewComponent normalizes v into a Component. Accepted inputs are a non-empty
// string, a reflect.Type, a *domain.ComponentDefinition, a domain.Deferred, a
// *ViewportInstruction and a non-nil pointer to a struct (a live instance).
func NewComponent(v any) (Component, error) {
	switch x := v.(type) {
	case Component:
		if x.kind == 0 {
			return Component{}, fmt.Errorf("%w: zero component", ErrInvalidComponent)
		}
		return x, nil
	case string:
		if x == "" {
			return Component{}, fmt.Errorf("%w: empty name", ErrInvalidComponent)
		}
		return Component{kind: KindName, name: x}, nil
	case reflect.Type:
		if x == nil {
			return Component{}, fmt.Errorf("%w: nil type", ErrInvalidComponent)
		}
		return Component{kind: KindType, typ: x}, nil
	case *domain.ComponentDefinition:
		if x == nil {
			return Component{}, fmt.Errorf("%w: nil definition", ErrInvalidComponent)
		}
		return Component{kind: KindDefinition, def: x}, nil
	case domain.Deferred:
		if x == nil {
			return Component{}, fmt.Errorf("%w: nil deferred", ErrInvalidComponent)
		}
		return Component{kind: KindDeferred, deferred: x}, nil
	case func(context.Context) (*domain.ComponentDefinition, error):
		if x == nil {
			return Component{}, fmt.Errorf("%w: nil deferred", ErrInvalidComponent)
		}
		return Component{kind: KindDeferred, deferred: x}, nil
	case *ViewportInstruction:
		if x == nil {
			return Component{}, fmt.Errorf("%w: nil instruction", ErrInvalidComponent)
		}
		return Component{kind: KindInstruction, instr: x}, nil
	}

	rv := reflect.ValueOf(v)
	if rv.IsValid() && rv.Kind() == reflect.Pointer && !rv.IsNil() && rv.Elem().Kind() == reflect.Struct {
		return Component{kind: KindInstance, instance: v}, nil
	}
	return Component{}, fmt.Errorf("%w: unsupported value of type %T", ErrInvalidComponent, v)
}

// MustComponent is NewComponent for values known to be valid.
func MustComponent(v any) Component {
	c, err := NewComponent(v)
	if err != nil {
		panic(err)
	}
	return c
}

func (c Component) Kind() Kind                              { return c.kind }
func (c Component) Type() reflect.Type                      { return c.typ }
func (c Component) Definition() *domain.ComponentDefinition { return c.def }
func (c Component) Instance() any                           { return c.instance }
func (c Component) Deferred() domain.Deferred               { return c.deferred }
func (c Component) Instruction() *ViewportInstruction       { return c.instr }

// Name returns the best available name for the component. Deferred components
// have no name until resolved.
func (c Component) Name() string {
	switch c.kind {
	case KindName:
		return c.name
	case KindType:
		return c.typ.Name()
	case KindDefinition:
		return c.def.Name
	case KindInstance:
		return reflect.TypeOf(c.instance).Elem().Name()
	case KindInstruction:
		return c.instr.Component.Name()
	}
	return ""
}

// Equal reports whether both reference the same component the same way.
func (c Component) Equal(o Component) bool {
	if c.kind != o.kind {
		return false
	}
	switch c.kind {
	case KindName:
		return c.name == o.name
	case KindType:
		return c.typ == o.typ
	case KindDefinition:
		return c.def == o.def
	case KindInstance:
		return c.instance == o.instance
	case KindDeferred:
		return reflect.ValueOf(c.deferred).Pointer() == reflect.ValueOf(o.deferred).Pointer()
	case KindInstruction:
		return c.instr.Equals(o.instr)
	}
	return true
}

func (c Component) String() string { return c.Name() }
