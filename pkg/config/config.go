// Package config loads waypoint applications from YAML or JSON files.
package config

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/aretw0/waypoint/pkg/domain"
	"github.com/aretw0/waypoint/pkg/dsl"
	"github.com/aretw0/waypoint/pkg/registry"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// ErrInvalidConfig wraps every validation failure.
var ErrInvalidConfig = errors.New("invalid config")

// Config is the file layout of an application.
type Config struct {
	Router     domain.RouterOptions     `mapstructure:"router"`
	Viewports  []domain.ViewportOptions `mapstructure:"viewports"`
	Routes     []domain.RouteConfig     `mapstructure:"routes"`
	Components []ComponentConfig        `mapstructure:"components"`
}

// ComponentConfig declares a component without Go code.
type ComponentConfig struct {
	Name    string                 `mapstructure:"name"`
	Title   string                 `mapstructure:"title"`
	Reentry domain.ReentryBehavior `mapstructure:"reentry"`
	// Viewports are known up front; Declares appear once an instance exists.
	Viewports []domain.ViewportOptions `mapstructure:"viewports"`
	Declares  []domain.ViewportOptions `mapstructure:"declares"`
	Routes    []domain.RouteConfig     `mapstructure:"routes"`
	Guard     *GuardConfig             `mapstructure:"guard"`
}

// GuardConfig is a declarative CanLoad/CanUnload policy.
type GuardConfig struct {
	// Deny rejects every navigation to the component.
	Deny bool `mapstructure:"deny"`
	// RequireParams lists params that must be present to enter.
	RequireParams []string `mapstructure:"require_params"`
	// RedirectTo is where a failing (or, without RequireParams, every)
	// navigation is sent instead.
	RedirectTo string `mapstructure:"redirect_to"`
	// BlockLeave makes CanUnload refuse to leave the component.
	BlockLeave bool `mapstructure:"block_leave"`
}

// Application is a built configuration ready to construct routers.
type Application struct {
	Registry  *registry.Registry
	Builder   *dsl.Builder
	Viewports []domain.ViewportOptions
	Routes    []domain.RouteConfig
	Options   domain.RouterOptions
}

// Load reads path as JSON when it ends in .json and as YAML otherwise.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	format := "yaml"
	if strings.EqualFold(filepath.Ext(path), ".json") {
		format = "json"
	}
	cfg, err := Parse(data, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes data in format ("yaml" or "json").
func Parse(data []byte, format string) (*Config, error) {
	var raw map[string]any
	switch format {
	case "json":
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("failed to parse json: %w", err)
		}
	case "yaml", "yml", "":
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("failed to parse yaml: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported config format %q", format)
	}
	return Decode(raw)
}

// Decode maps a loosely typed document onto Config. Unknown keys are errors.
func Decode(raw map[string]any) (*Config, error) {
	var cfg Config
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:      &cfg,
		ErrorUnused: true,
		TagName:     "mapstructure",
	})
	if err != nil {
		return nil, err
	}
	if err := dec.Decode(raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks what the router would only discover at navigation time.
func (c *Config) Validate() error {
	var errs []error
	seen := make(map[string]bool, len(c.Components))
	for i, comp := range c.Components {
		switch {
		case comp.Name == "":
			errs = append(errs, fmt.Errorf("component %d has no name", i))
		case seen[comp.Name]:
			errs = append(errs, fmt.Errorf("component %q declared twice", comp.Name))
		}
		seen[comp.Name] = true

		switch comp.Reentry {
		case "", domain.ReentryDefault, domain.ReentryDisallow, domain.ReentryLoad, domain.ReentryRefresh:
		default:
			errs = append(errs, fmt.Errorf("component %q: unknown reentry %q", comp.Name, comp.Reentry))
		}
	}

	checkRoutes := func(owner string, routes []domain.RouteConfig) {
		for _, rc := range routes {
			if rc.Component != "" && !seen[rc.Component] {
				errs = append(errs, fmt.Errorf("%s route %q: unknown component %q", owner, rc.Path, rc.Component))
			}
		}
	}
	checkRoutes("root", c.Routes)
	for _, comp := range c.Components {
		checkRoutes(comp.Name, comp.Routes)
	}

	checkDefaults := func(owner string, vps []domain.ViewportOptions) {
		for _, vp := range vps {
			if vp.Default != "" && !seen[vp.Default] {
				errs = append(errs, fmt.Errorf("%s viewport %q: unknown default %q", owner, vp.Name, vp.Default))
			}
		}
	}
	checkDefaults("root", c.Viewports)
	for _, comp := range c.Components {
		checkDefaults(comp.Name, slices.Concat(comp.Viewports, comp.Declares))
	}

	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}

// Build turns the configuration into a registry of DSL components.
func (c *Config) Build() (*Application, error) {
	b := dsl.New()
	for _, vp := range c.Viewports {
		b.AddViewport(vp)
	}
	for _, rc := range c.Routes {
		b.AddRoute(rc)
	}
	for _, comp := range c.Components {
		cb := b.Component(comp.Name).Title(comp.Title)
		if comp.Reentry != "" {
			cb.Reentry(comp.Reentry)
		}
		for _, vp := range comp.Viewports {
			cb.AddViewport(vp)
		}
		for _, vp := range comp.Declares {
			cb.AddDeclared(vp)
		}
		for _, rc := range comp.Routes {
			cb.AddRoute(rc)
		}
		if comp.Guard != nil {
			applyGuard(cb, *comp.Guard)
		}
	}

	reg, err := b.Build()
	if err != nil {
		return nil, err
	}
	return &Application{
		Registry:  reg,
		Builder:   b,
		Viewports: b.Viewports(),
		Routes:    b.Routes(),
		Options:   c.Router.WithDefaults(),
	}, nil
}

func applyGuard(cb *dsl.ComponentBuilder, g GuardConfig) {
	cb.CanLoad(func(_ context.Context, nav *domain.NavigationContext) (domain.GuardResult, error) {
		if g.Deny {
			return domain.Deny(), nil
		}
		missing := slices.ContainsFunc(g.RequireParams, func(p string) bool {
			return nav.Params[p] == ""
		})
		switch {
		case len(g.RequireParams) > 0 && !missing:
			return domain.Allow(), nil
		case g.RedirectTo != "":
			return domain.RedirectTo(g.RedirectTo), nil
		case missing:
			return domain.Deny(), nil
		}
		return domain.Allow(), nil
	})
	if g.BlockLeave {
		cb.CanUnload(func(context.Context, *domain.NavigationContext) (bool, error) {
			return false, nil
		})
	}
}
