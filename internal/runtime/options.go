package runtime

import (
	"log/slog"

	"github.com/aretw0/waypoint/pkg/domain"
	"github.com/aretw0/waypoint/pkg/expression"
	"github.com/aretw0/waypoint/pkg/ports"
)

// Option configures a Router.
type Option func(*Router)

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Router) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithLifecycleHooks registers observability callbacks. Repeated use merges.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(r *Router) {
		r.hooks = domain.MergeHooks(r.hooks, hooks)
	}
}

// WithLocation connects the router to a URL bar and history stack.
func WithLocation(loc ports.Location) Option {
	return func(r *Router) { r.location = loc }
}

// WithRenderer sets where activated components are attached.
func WithRenderer(rd ports.Renderer) Option {
	return func(r *Router) {
		if rd != nil {
			r.renderer = rd
		}
	}
}

// WithRouterOptions replaces the router options. Empty fields keep defaults.
func WithRouterOptions(o domain.RouterOptions) Option {
	return func(r *Router) { r.options = o.WithDefaults() }
}

// WithViewports declares the root viewports.
func WithViewports(vps ...domain.ViewportOptions) Option {
	return func(r *Router) { r.rootViewports = append(r.rootViewports, vps...) }
}

// WithRoutes configures the root routes.
func WithRoutes(routes ...domain.RouteConfig) Option {
	return func(r *Router) { r.rootRoutes = append(r.rootRoutes, routes...) }
}

// WithGuards adds router-level guards run next to every CanLoad hook.
func WithGuards(guards ...domain.GuardFunc) Option {
	return func(r *Router) { r.guards = append(r.guards, guards...) }
}

// WithParser shares a route expression parser and its cache.
func WithParser(p *expression.Parser) Option {
	return func(r *Router) {
		if p != nil {
			r.parser = p
		}
	}
}
