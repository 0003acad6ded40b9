package waypoint

import (
	"fmt"
	"log/slog"

	"github.com/aretw0/waypoint/internal/logging"
	"github.com/aretw0/waypoint/internal/runtime"
	"github.com/aretw0/waypoint/pkg/config"
	"github.com/aretw0/waypoint/pkg/domain"
	"github.com/aretw0/waypoint/pkg/dsl"
	"github.com/aretw0/waypoint/pkg/expression"
	"github.com/aretw0/waypoint/pkg/ports"
	"github.com/aretw0/waypoint/pkg/registry"
	"github.com/aretw0/waypoint/pkg/session"
)

// Router is the navigation engine of one location.
type Router = runtime.Router

// RouteTree is the immutable snapshot of a committed navigation.
type RouteTree = runtime.RouteTree

// App is the high-level entry point for the waypoint library.
// It holds one routing configuration and builds routers from it.
type App struct {
	registry  *registry.Registry
	viewports []domain.ViewportOptions
	routes    []domain.RouteConfig
	options   domain.RouterOptions
	hooks     domain.LifecycleHooks
	guards    []domain.GuardFunc
	parser    *expression.Parser
	renderer  ports.Renderer
	logger    *slog.Logger
	Name      string
}

// Option defines a functional option for configuring the App.
type Option func(*App)

// WithLifecycleHooks registers observability hooks on every router.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(a *App) {
		a.hooks = hooks
	}
}

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(a *App) {
		a.logger = logger
	}
}

// WithRouterOptions replaces the router options. Empty fields take defaults.
func WithRouterOptions(o domain.RouterOptions) Option {
	return func(a *App) {
		a.options = o.WithDefaults()
	}
}

// WithGuards adds router-level guards.
func WithGuards(guards ...domain.GuardFunc) Option {
	return func(a *App) {
		a.guards = append(a.guards, guards...)
	}
}

// WithRenderer attaches components to a host UI.
func WithRenderer(rd ports.Renderer) Option {
	return func(a *App) {
		a.renderer = rd
	}
}

// WithParser shares a route expression parser (and its cache) between
// routers.
func WithParser(p *expression.Parser) Option {
	return func(a *App) {
		a.parser = p
	}
}

// WithName labels the app in logs.
func WithName(name string) Option {
	return func(a *App) {
		a.Name = name
	}
}

// New creates an App from a registry and its root configuration.
func New(reg *registry.Registry, viewports []domain.ViewportOptions, routes []domain.RouteConfig, opts ...Option) *App {
	a := &App{
		registry:  reg,
		viewports: viewports,
		routes:    routes,
		options:   domain.DefaultRouterOptions(),
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.logger == nil {
		a.logger = logging.NewNop()
	}
	if a.Name != "" {
		a.logger = a.logger.With("app", a.Name)
	}
	if a.parser == nil {
		a.parser = expression.NewParser()
	}
	return a
}

// FromBuilder builds the DSL components and wraps them in an App.
func FromBuilder(b *dsl.Builder, opts ...Option) (*App, error) {
	reg, err := b.Build()
	if err != nil {
		return nil, err
	}
	return New(reg, b.Viewports(), b.Routes(), opts...), nil
}

// FromConfig loads a YAML or JSON application file. Options given here
// override the file's router settings.
func FromConfig(path string, opts ...Option) (*App, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	built, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build %s: %w", path, err)
	}
	opts = append([]Option{WithRouterOptions(built.Options)}, opts...)
	return New(built.Registry, built.Viewports, built.Routes, opts...), nil
}

// Registry returns the component registry.
func (a *App) Registry() *registry.Registry { return a.registry }

// Viewports returns the root viewports.
func (a *App) Viewports() []domain.ViewportOptions { return a.viewports }

// Routes returns the root routes.
func (a *App) Routes() []domain.RouteConfig { return a.routes }

// Options returns the router options.
func (a *App) Options() domain.RouterOptions { return a.options }

// Parser returns the shared expression parser.
func (a *App) Parser() *expression.Parser { return a.parser }

// NewRouter creates a router bound to loc. With a nil loc navigations still
// commit but no history is written.
func (a *App) NewRouter(loc ports.Location) (*Router, error) {
	opts := []runtime.Option{
		runtime.WithLogger(a.logger),
		runtime.WithLifecycleHooks(a.hooks),
		runtime.WithRouterOptions(a.options),
		runtime.WithViewports(a.viewports...),
		runtime.WithRoutes(a.routes...),
		runtime.WithParser(a.parser),
	}
	if loc != nil {
		opts = append(opts, runtime.WithLocation(loc))
	}
	if len(a.guards) > 0 {
		opts = append(opts, runtime.WithGuards(a.guards...))
	}
	if a.renderer != nil {
		opts = append(opts, runtime.WithRenderer(a.renderer))
	}
	return runtime.NewRouter(a.registry, opts...)
}

// Sessions creates a session manager whose routers come from this App.
func (a *App) Sessions(store ports.StateStore, opts ...session.Option) *session.Manager {
	opts = append([]session.Option{session.WithLogger(a.logger)}, opts...)
	return session.NewManager(store, func(loc ports.Location) (*runtime.Router, error) {
		return a.NewRouter(loc)
	}, opts...)
}
