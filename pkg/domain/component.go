package domain

import (
	"context"
	"net/url"
	"reflect"
)

// ReentryBehavior decides what happens when a viewport is asked to load the
// component it already hosts.
type ReentryBehavior string

const (
	// ReentryDefault swaps when params differ and does nothing otherwise.
	ReentryDefault ReentryBehavior = "default"
	// ReentryDisallow never re-enters; the current instance stays untouched.
	ReentryDisallow ReentryBehavior = "disallow"
	// ReentryLoad re-runs the load hooks on the existing instance.
	ReentryLoad ReentryBehavior = "load"
	// ReentryRefresh replaces the instance with a fresh one.
	ReentryRefresh ReentryBehavior = "refresh"
)

// ViewportOptions declares a named slot in a route context.
type ViewportOptions struct {
	Name string `yaml:"name" json:"name" mapstructure:"name"`
	// UsedBy lists component names that prefer this viewport.
	UsedBy []string `yaml:"used_by" json:"used_by,omitempty" mapstructure:"used_by"`
	// Default is loaded when no instruction targets the viewport.
	Default string `yaml:"default" json:"default,omitempty" mapstructure:"default"`
	// Stateful keeps swapped-out content alive for reuse.
	Stateful bool `yaml:"stateful" json:"stateful,omitempty" mapstructure:"stateful"`
}

// RouteConfig maps a path pattern to a component or a redirect target.
// Patterns are '/'-separated segments; ":name" binds one segment and "*name"
// binds the remainder.
type RouteConfig struct {
	Path       string `yaml:"path" json:"path" mapstructure:"path"`
	Component  string `yaml:"component" json:"component,omitempty" mapstructure:"component"`
	RedirectTo string `yaml:"redirect_to" json:"redirect_to,omitempty" mapstructure:"redirect_to"`
	Viewport   string `yaml:"viewport" json:"viewport,omitempty" mapstructure:"viewport"`
	Title      string `yaml:"title" json:"title,omitempty" mapstructure:"title"`
}

// Factory creates a component instance.
type Factory func(ctx context.Context) (any, error)

// ComponentDefinition describes a routable component.
type ComponentDefinition struct {
	Name      string
	Type      reflect.Type
	Title     string
	Reentry   ReentryBehavior
	Viewports []ViewportOptions
	Routes    []RouteConfig
	Factory   Factory
}

// Deferred resolves a component definition lazily, the way a lazily imported
// module would be.
type Deferred func(ctx context.Context) (*ComponentDefinition, error)

// GuardResult is the outcome of a CanLoad check.
type GuardResult struct {
	Allow    bool
	Redirect string
}

// Allow lets the navigation continue.
func Allow() GuardResult { return GuardResult{Allow: true} }

// Deny cancels the navigation.
func Deny() GuardResult { return GuardResult{} }

// RedirectTo cancels the navigation and starts a new one towards route.
func RedirectTo(route string) GuardResult { return GuardResult{Redirect: route} }

// NavigationContext is the per-viewport view of a navigation passed to hooks.
type NavigationContext struct {
	Navigation
	Viewport    string            `json:"viewport"`
	Component   string            `json:"component"`
	Path        string            `json:"path"`
	Params      map[string]string `json:"params,omitempty"`
	QueryParams url.Values        `json:"query_params,omitempty"`
	Fragment    string            `json:"fragment,omitempty"`
	State       map[string]any    `json:"state,omitempty"`
	FromCache   bool              `json:"from_cache,omitempty"`
	FromHistory bool              `json:"from_history,omitempty"`
}

// CanUnloader lets a component veto leaving. next is nil when the viewport is
// being cleared.
type CanUnloader interface {
	CanUnload(ctx context.Context, next *NavigationContext) (bool, error)
}

// CanLoader lets a component veto or redirect entering.
type CanLoader interface {
	CanLoad(ctx context.Context, nav *NavigationContext) (GuardResult, error)
}

// Unloader runs before a component leaves its viewport.
type Unloader interface {
	Unload(ctx context.Context, next *NavigationContext) error
}

// Loader runs before a component is attached to its viewport.
type Loader interface {
	Load(ctx context.Context, nav *NavigationContext) error
}

// Activator runs when the component is attached.
type Activator interface {
	Activate(ctx context.Context) error
}

// Deactivator runs when the component is detached.
type Deactivator interface {
	Deactivate(ctx context.Context) error
}

// ViewportDeclarer exposes child viewports only known once an instance exists.
type ViewportDeclarer interface {
	Viewports() []ViewportOptions
}

// Named lets an instance report the registry name of its component when its Go
// type alone does not identify it.
type Named interface {
	ComponentName() string
}

// GuardFunc is a router-level guard run next to every component's CanLoad.
type GuardFunc func(ctx context.Context, nav *NavigationContext) (GuardResult, error)
