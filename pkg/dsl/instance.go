package dsl

import (
	"context"

	"github.com/aretw0/waypoint/pkg/domain"
)

// Hooks holds the callbacks a DSL component delegates to. Nil hooks allow.
type Hooks struct {
	CanLoad    func(context.Context, *domain.NavigationContext) (domain.GuardResult, error)
	CanUnload  func(context.Context, *domain.NavigationContext) (bool, error)
	Load       func(context.Context, *domain.NavigationContext) error
	Unload     func(context.Context, *domain.NavigationContext) error
	Activate   func(context.Context, *Instance) error
	Deactivate func(context.Context, *Instance) error
	Declared   []domain.ViewportOptions
}

// Instance is a component created by a DSL definition.
type Instance struct {
	Name string
	// Seq numbers instances of the same component from 1.
	Seq   int64
	hooks *Hooks

	// Nav is the context of the last successful load.
	Nav *domain.NavigationContext
}

func (i *Instance) CanLoad(ctx context.Context, nav *domain.NavigationContext) (domain.GuardResult, error) {
	if i.hooks.CanLoad == nil {
		return domain.Allow(), nil
	}
	return i.hooks.CanLoad(ctx, nav)
}

func (i *Instance) CanUnload(ctx context.Context, next *domain.NavigationContext) (bool, error) {
	if i.hooks.CanUnload == nil {
		return true, nil
	}
	return i.hooks.CanUnload(ctx, next)
}

func (i *Instance) Load(ctx context.Context, nav *domain.NavigationContext) error {
	if i.hooks.Load != nil {
		if err := i.hooks.Load(ctx, nav); err != nil {
			return err
		}
	}
	i.Nav = nav
	return nil
}

func (i *Instance) Unload(ctx context.Context, next *domain.NavigationContext) error {
	if i.hooks.Unload == nil {
		return nil
	}
	return i.hooks.Unload(ctx, next)
}

func (i *Instance) Activate(ctx context.Context) error {
	if i.hooks.Activate == nil {
		return nil
	}
	return i.hooks.Activate(ctx, i)
}

func (i *Instance) Deactivate(ctx context.Context) error {
	if i.hooks.Deactivate == nil {
		return nil
	}
	return i.hooks.Deactivate(ctx, i)
}

// Viewports implements domain.ViewportDeclarer.
func (i *Instance) Viewports() []domain.ViewportOptions {
	return i.hooks.Declared
}

// ComponentName implements domain.Named.
func (i *Instance) ComponentName() string {
	return i.Name
}
