package runtime

import (
	"context"
	"fmt"
	"reflect"
	"strings"

	"github.com/aretw0/waypoint/pkg/batch"
	"github.com/aretw0/waypoint/pkg/domain"
	"github.com/aretw0/waypoint/pkg/instruction"
)

// maxRedirects bounds configured redirect chains.
const maxRedirects = 16

// planTransition stages the next content of every viewport the transition
// touches and records an agent for each one that changes.
func (r *Router) planTransition(ctx context.Context, tr *Transition) error {
	rc := r.root
	if !tr.Instructions.IsAbsolute && tr.Options.Context != nil {
		switch c := tr.Options.Context.(type) {
		case *RouteContext:
			rc = c
		default:
			if rc = r.root.find(c); rc == nil {
				return fmt.Errorf("%w: navigation context %T is not hosted", domain.ErrUnknownViewport, c)
			}
		}
	}
	return r.planContext(ctx, tr, rc, tr.Instructions.Children, tr.Instructions.Append(), tr.plan)
}

func (r *Router) planContext(ctx context.Context, tr *Transition, rc *RouteContext, instrs []*instruction.ViewportInstruction, appendMode bool, p *plan) error {
	claimed := map[*Viewport]bool{}

	var targets []*resolvedRoute
	if len(instrs) == 0 && !appendMode && rc.recognizer.empty != nil {
		t, err := r.resolveEmpty(ctx, rc)
		if err != nil {
			return err
		}
		targets = append(targets, t...)
	}
	for _, vi := range instrs {
		t, err := r.resolve(ctx, rc, vi, 0)
		if err != nil {
			return err
		}
		targets = append(targets, t)
	}

	for _, t := range targets {
		vp, err := rc.claim(t, claimed, appendMode)
		if err != nil {
			return err
		}
		claimed[vp] = true
		if err := r.planViewport(ctx, tr, vp, t, p); err != nil {
			return err
		}
	}

	if appendMode {
		return nil
	}
	for _, vp := range rc.viewports {
		if claimed[vp] {
			continue
		}
		var target *resolvedRoute
		if def := vp.Options.Default; def != "" {
			t, err := r.resolve(ctx, rc, &instruction.ViewportInstruction{Component: instruction.MustComponent(def)}, 0)
			if err != nil {
				return fmt.Errorf("default of viewport %q: %w", vp.Name, err)
			}
			target = t
		}
		if err := r.planViewport(ctx, tr, vp, target, p); err != nil {
			return err
		}
	}
	return nil
}

func (r *Router) planViewport(ctx context.Context, tr *Transition, vp *Viewport, target *resolvedRoute, p *plan) error {
	old := vp.content
	action := vp.setNextContent(tr, target)
	if action == ActionSkip {
		p.onCancel(vp.restamp(target))
	} else {
		p.add(newAgent(r, tr, vp, action))
		if action == ActionSwap && old != nil && old.children != nil {
			r.planClear(tr, old.children, p)
		}
	}
	if target == nil {
		return nil
	}

	var host *ViewportContent
	switch action {
	case ActionSkip:
		host = old
	default:
		host = vp.nextContent
	}

	if host.children == nil {
		if err := r.ensureChildren(vp.owner, host, host.Component != nil); err != nil {
			return err
		}
	}
	if host.children == nil {
		if len(target.children) > 0 {
			host.pending = target.children
		}
		return nil
	}
	return r.planContext(ctx, tr, host.children, target.children, false, p)
}

// ensureChildren builds the child route context of c from its definition, or
// from its instance when live is set and the instance declares viewports.
func (r *Router) ensureChildren(parent *RouteContext, c *ViewportContent, live bool) error {
	vps := c.Definition.Viewports
	if len(vps) == 0 && live {
		if d, ok := c.Component.(domain.ViewportDeclarer); ok {
			vps = d.Viewports()
		}
	}
	if len(vps) == 0 {
		return nil
	}
	rc, err := newRouteContext(parent, c, vps, c.Definition.Routes)
	if err != nil {
		return fmt.Errorf("component %q: %w", c.name(), err)
	}
	c.children = rc
	return nil
}

// planClear empties every occupied viewport under rc.
func (r *Router) planClear(tr *Transition, rc *RouteContext, p *plan) {
	for _, vp := range rc.viewports {
		old := vp.content
		if old == nil {
			continue
		}
		p.add(newAgent(r, tr, vp, vp.setNextContent(tr, nil)))
		if old.children != nil {
			r.planClear(tr, old.children, p)
		}
	}
}

// bindChildren plans child instructions that could not be placed before the
// agent's content existed, and lets the resulting agents catch up on b.
func (r *Router) bindChildren(a *ViewportAgent, b *batch.Batch) error {
	next := a.next
	if next.children != nil {
		// Planned together with the parent.
		return nil
	}
	if err := r.ensureChildren(a.vp.owner, next, true); err != nil {
		return err
	}
	if next.children == nil {
		if len(next.pending) > 0 {
			return fmt.Errorf("%w: %q declares no viewports for %s", domain.ErrNoAvailableViewport, next.name(), next.pending[0])
		}
		return nil
	}

	late := &plan{}
	err := r.planContext(a.ctx(), a.tr, next.children, next.pending, false, late)
	next.pending = nil
	agents := late.snapshot()
	a.tr.plan.add(agents...)
	if err != nil {
		return err
	}
	for _, c := range agents {
		a.tr.coordinator.AddEntity(c)
	}
	for _, c := range agents {
		b.Go(func() { c.catchUp(b) })
	}
	return nil
}

func (r *Router) resolveEmpty(ctx context.Context, rc *RouteContext) ([]*resolvedRoute, error) {
	cfg := rc.recognizer.empty
	if cfg.RedirectTo != "" {
		t, err := r.newTree(cfg.RedirectTo, domain.NavigationOptions{})
		if err != nil {
			return nil, fmt.Errorf("redirect of empty route: %w", err)
		}
		var out []*resolvedRoute
		for _, vi := range t.Children {
			res, err := r.resolve(ctx, rc, vi, 1)
			if err != nil {
				return nil, err
			}
			out = append(out, res)
		}
		return out, nil
	}
	def, ok := r.registry.Lookup(cfg.Component)
	if !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownComponent, cfg.Component)
	}
	return []*resolvedRoute{{
		def:              def,
		viewport:         cfg.Viewport,
		explicitViewport: false,
		title:            firstNonEmpty(cfg.Title, def.Title),
	}}, nil
}

// resolve turns vi into a component definition, following configured routes
// and redirects in rc.
func (r *Router) resolve(ctx context.Context, rc *RouteContext, vi *instruction.ViewportInstruction, depth int) (*resolvedRoute, error) {
	if depth > maxRedirects {
		return nil, fmt.Errorf("%w: at %s", domain.ErrRedirectLoop, vi)
	}
	res := &resolvedRoute{
		viewport:         vi.Viewport,
		explicitViewport: vi.Viewport != "",
		params:           vi.Params.Clone(),
		instrParams:      vi.Params.Clone(),
		children:         vi.Children,
	}
	c := vi.Component

	switch c.Kind() {
	case instruction.KindName:
		return r.resolveName(ctx, rc, vi, depth)

	case instruction.KindType:
		def, ok := r.registry.LookupType(c.Type())
		if !ok {
			return nil, fmt.Errorf("%w: type %s", domain.ErrUnknownComponent, c.Type())
		}
		res.def = def

	case instruction.KindDefinition:
		res.def = c.Definition()

	case instruction.KindInstance:
		res.instance = c.Instance()
		res.def = r.definitionOf(c.Instance())

	case instruction.KindDeferred:
		def, err := c.Deferred()(ctx)
		if err != nil {
			return nil, fmt.Errorf("resolve deferred component: %w", err)
		}
		if def == nil {
			return nil, fmt.Errorf("%w: deferred component resolved to nil", domain.ErrUnknownComponent)
		}
		res.def = def

	case instruction.KindInstruction:
		inner := c.Instruction().Clone()
		if vi.Viewport != "" {
			inner.Viewport = vi.Viewport
		}
		inner.Params = inner.Params.Merge(vi.Params)
		inner.Children = append(inner.Children, vi.Children...)
		return r.resolve(ctx, rc, inner, depth)

	default:
		return nil, fmt.Errorf("%w: %s", instruction.ErrInvalidComponent, c.Kind())
	}

	res.segments = []string{res.def.Name}
	res.title = res.def.Title
	return res, nil
}

func (r *Router) resolveName(ctx context.Context, rc *RouteContext, vi *instruction.ViewportInstruction, depth int) (*resolvedRoute, error) {
	segments, chain := segmentChain(vi)
	if m, ok := rc.recognizer.recognize(segments); ok {
		last := chain[m.consumed-1]
		var instrParams instruction.Params
		for _, n := range chain[:m.consumed] {
			instrParams = instrParams.Merge(n.Params)
		}

		if target := m.route.RedirectTo; target != "" {
			for k, v := range m.params {
				target = strings.ReplaceAll(target, ":"+k, v)
				target = strings.ReplaceAll(target, "*"+k, v)
			}
			t, err := r.newTree(target, domain.NavigationOptions{})
			if err != nil {
				return nil, fmt.Errorf("redirect %q: %w", m.route.Path, err)
			}
			if len(t.Children) != 1 {
				return nil, fmt.Errorf("redirect %q: target %q must name exactly one instruction", m.route.Path, m.route.RedirectTo)
			}
			redirected := t.Children[0]
			if vi.Viewport != "" {
				redirected.Viewport = vi.Viewport
			}
			tail := redirected
			for len(tail.Children) == 1 {
				tail = tail.Children[0]
			}
			tail.Params = tail.Params.Merge(instrParams)
			tail.Children = append(tail.Children, last.Children...)
			r.logger.Debug("route redirected", "from", m.route.Path, "to", target)
			return r.resolve(ctx, rc, redirected, depth+1)
		}

		def, ok := r.registry.Lookup(m.route.Component)
		if !ok {
			return nil, fmt.Errorf("%w: %q (route %q)", domain.ErrUnknownComponent, m.route.Component, m.route.Path)
		}
		viewport := vi.Viewport
		if viewport == "" {
			viewport = m.route.Viewport
		}
		return &resolvedRoute{
			def:              def,
			segments:         segments[:m.consumed],
			params:           instrParams.Merge(m.params),
			instrParams:      instrParams,
			viewport:         viewport,
			explicitViewport: vi.Viewport != "",
			title:            firstNonEmpty(m.route.Title, def.Title),
			children:         last.Children,
		}, nil
	}

	name := vi.Component.Name()
	if r.options.RoutingMode == domain.RoutingConfiguredOnly {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownRoute, strings.Join(segments, "/"))
	}
	def, ok := r.registry.Lookup(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownComponent, name)
	}
	return &resolvedRoute{
		def:              def,
		segments:         []string{name},
		params:           vi.Params.Clone(),
		instrParams:      vi.Params.Clone(),
		viewport:         vi.Viewport,
		explicitViewport: vi.Viewport != "",
		title:            def.Title,
		children:         vi.Children,
	}, nil
}

// definitionOf finds the registered definition of a live instance, falling
// back to an ad-hoc definition named after its type.
func (r *Router) definitionOf(inst any) *domain.ComponentDefinition {
	if n, ok := inst.(domain.Named); ok {
		if def, ok := r.registry.Lookup(n.ComponentName()); ok {
			return def
		}
	}
	if def, ok := r.registry.LookupInstance(inst); ok {
		return def
	}
	t := reflect.TypeOf(inst)
	return &domain.ComponentDefinition{Name: t.Elem().Name(), Type: t, Reentry: domain.ReentryDefault}
}

// segmentChain collects the names of vi and its single, viewport-less
// descendants so that multi-segment routes can match them.
func segmentChain(vi *instruction.ViewportInstruction) ([]string, []*instruction.ViewportInstruction) {
	var (
		segments []string
		chain    []*instruction.ViewportInstruction
	)
	for cur := vi; cur != nil && cur.Component.Kind() == instruction.KindName; {
		segments = append(segments, cur.Component.Name())
		chain = append(chain, cur)
		if len(cur.Children) != 1 || cur.Children[0].Viewport != "" {
			break
		}
		cur = cur.Children[0]
	}
	return segments, chain
}

func firstNonEmpty(s ...string) string {
	for _, v := range s {
		if v != "" {
			return v
		}
	}
	return ""
}
