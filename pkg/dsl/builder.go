package dsl

import (
	"fmt"

	"github.com/aretw0/waypoint/pkg/domain"
	"github.com/aretw0/waypoint/pkg/registry"
)

// Builder manages the component set construction.
type Builder struct {
	components map[string]*ComponentBuilder
	order      []string
	routes     []domain.RouteConfig
	viewports  []domain.ViewportOptions
}

// New creates a new component set builder.
func New() *Builder {
	return &Builder{
		components: make(map[string]*ComponentBuilder),
	}
}

// Component creates a new component definition.
// If the component already exists, it returns the existing builder.
func (b *Builder) Component(name string) *ComponentBuilder {
	if cb, ok := b.components[name]; ok {
		return cb
	}
	cb := newComponentBuilder(name, b)
	b.components[name] = cb
	b.order = append(b.order, name)
	return cb
}

// Route adds a root-level configured route.
func (b *Builder) Route(path, component string) *Builder {
	b.routes = append(b.routes, domain.RouteConfig{Path: path, Component: component})
	return b
}

// Redirect adds a root-level configured redirect.
func (b *Builder) Redirect(path, to string) *Builder {
	b.routes = append(b.routes, domain.RouteConfig{Path: path, RedirectTo: to})
	return b
}

// AddRoute adds a fully specified root-level route.
func (b *Builder) AddRoute(rc domain.RouteConfig) *Builder {
	b.routes = append(b.routes, rc)
	return b
}

// AddViewport declares a fully specified root viewport.
func (b *Builder) AddViewport(vp domain.ViewportOptions) *Builder {
	b.viewports = append(b.viewports, vp)
	return b
}

// Viewport declares a root viewport.
func (b *Builder) Viewport(name string, opts ...ViewportOption) *Builder {
	b.viewports = append(b.viewports, newViewport(name, opts))
	return b
}

// Routes returns the root-level routes added so far.
func (b *Builder) Routes() []domain.RouteConfig { return b.routes }

// Viewports returns the root viewports declared so far. When none were
// declared a single "default" viewport is returned.
func (b *Builder) Viewports() []domain.ViewportOptions {
	if len(b.viewports) == 0 {
		return []domain.ViewportOptions{{Name: "default"}}
	}
	return b.viewports
}

// Build compiles the components into a registry.
func (b *Builder) Build() (*registry.Registry, error) {
	reg := registry.NewRegistry()
	for _, name := range b.order {
		def := b.components[name].Definition()
		if err := reg.Register(def); err != nil {
			return nil, fmt.Errorf("failed to build registry: %w", err)
		}
	}
	return reg, nil
}
