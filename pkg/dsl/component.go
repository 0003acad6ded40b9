package dsl

import (
	"context"
	"sync/atomic"

	"github.com/aretw0/waypoint/pkg/domain"
)

// ViewportOption configures a declared viewport.
type ViewportOption func(*domain.ViewportOptions)

// Stateful keeps swapped-out content of the viewport cached.
func Stateful() ViewportOption {
	return func(v *domain.ViewportOptions) { v.Stateful = true }
}

// Default loads component when nothing targets the viewport.
func Default(component string) ViewportOption {
	return func(v *domain.ViewportOptions) { v.Default = component }
}

// UsedBy marks the viewport as preferred by the named components.
func UsedBy(components ...string) ViewportOption {
	return func(v *domain.ViewportOptions) { v.UsedBy = append(v.UsedBy, components...) }
}

func newViewport(name string, opts []ViewportOption) domain.ViewportOptions {
	v := domain.ViewportOptions{Name: name}
	for _, o := range opts {
		o(&v)
	}
	return v
}

// ComponentBuilder provides a fluent API for configuring a component.
type ComponentBuilder struct {
	def     domain.ComponentDefinition
	hooks   Hooks
	builder *Builder
	count   atomic.Int64
}

func newComponentBuilder(name string, b *Builder) *ComponentBuilder {
	cb := &ComponentBuilder{builder: b}
	cb.def = domain.ComponentDefinition{
		Name:    name,
		Reentry: domain.ReentryDefault,
	}
	return cb
}

// Title sets the title contributed to the document title.
func (c *ComponentBuilder) Title(title string) *ComponentBuilder {
	c.def.Title = title
	return c
}

// Reentry sets what happens when the component is asked to load into the
// viewport it already occupies.
func (c *ComponentBuilder) Reentry(r domain.ReentryBehavior) *ComponentBuilder {
	c.def.Reentry = r
	return c
}

// Viewport declares a child viewport known up front.
func (c *ComponentBuilder) Viewport(name string, opts ...ViewportOption) *ComponentBuilder {
	c.def.Viewports = append(c.def.Viewports, newViewport(name, opts))
	return c
}

// Declares adds a child viewport that only exists once an instance is created.
func (c *ComponentBuilder) Declares(name string, opts ...ViewportOption) *ComponentBuilder {
	c.hooks.Declared = append(c.hooks.Declared, newViewport(name, opts))
	return c
}

// Route adds a configured child route.
func (c *ComponentBuilder) Route(path, component string) *ComponentBuilder {
	c.def.Routes = append(c.def.Routes, domain.RouteConfig{Path: path, Component: component})
	return c
}

// AddRoute adds a fully specified child route.
func (c *ComponentBuilder) AddRoute(rc domain.RouteConfig) *ComponentBuilder {
	c.def.Routes = append(c.def.Routes, rc)
	return c
}

// AddViewport declares a fully specified child viewport.
func (c *ComponentBuilder) AddViewport(vp domain.ViewportOptions) *ComponentBuilder {
	c.def.Viewports = append(c.def.Viewports, vp)
	return c
}

// AddDeclared adds a fully specified instance-declared viewport.
func (c *ComponentBuilder) AddDeclared(vp domain.ViewportOptions) *ComponentBuilder {
	c.hooks.Declared = append(c.hooks.Declared, vp)
	return c
}

// CanLoad sets the load guard.
func (c *ComponentBuilder) CanLoad(fn func(context.Context, *domain.NavigationContext) (domain.GuardResult, error)) *ComponentBuilder {
	c.hooks.CanLoad = fn
	return c
}

// CanUnload sets the unload guard.
func (c *ComponentBuilder) CanUnload(fn func(context.Context, *domain.NavigationContext) (bool, error)) *ComponentBuilder {
	c.hooks.CanUnload = fn
	return c
}

// OnLoad sets the load hook.
func (c *ComponentBuilder) OnLoad(fn func(context.Context, *domain.NavigationContext) error) *ComponentBuilder {
	c.hooks.Load = fn
	return c
}

// OnUnload sets the unload hook.
func (c *ComponentBuilder) OnUnload(fn func(context.Context, *domain.NavigationContext) error) *ComponentBuilder {
	c.hooks.Unload = fn
	return c
}

// OnActivate sets the activation hook.
func (c *ComponentBuilder) OnActivate(fn func(context.Context, *Instance) error) *ComponentBuilder {
	c.hooks.Activate = fn
	return c
}

// OnDeactivate sets the deactivation hook.
func (c *ComponentBuilder) OnDeactivate(fn func(context.Context, *Instance) error) *ComponentBuilder {
	c.hooks.Deactivate = fn
	return c
}

// Instances reports how many instances the factory has created.
func (c *ComponentBuilder) Instances() int64 {
	return c.count.Load()
}

// Definition returns the component definition. Its factory creates *Instance
// values sharing this builder's hooks.
func (c *ComponentBuilder) Definition() *domain.ComponentDefinition {
	def := c.def
	def.Factory = func(context.Context) (any, error) {
		n := c.count.Add(1)
		return &Instance{Name: c.def.Name, Seq: n, hooks: &c.hooks}, nil
	}
	return &def
}
