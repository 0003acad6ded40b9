package runtime

import (
	"context"
	"errors"
	"fmt"

	"github.com/aretw0/waypoint/pkg/batch"
	"github.com/aretw0/waypoint/pkg/domain"
)

// Milestones reported by agents to the transition coordinator.
const (
	MilestoneGuardedUnload = "guardedUnload"
	MilestoneGuardedLoad   = "guardedLoad"
	MilestoneGuarded       = "guarded"
	MilestoneUnloaded      = "unloaded"
	MilestoneLoaded        = "loaded"
	MilestoneRouted        = "routed"
	MilestoneSwapped       = "swapped"
	MilestoneCompleted     = "completed"
)

// ViewportAgent drives one viewport through a transition.
type ViewportAgent struct {
	router *Router
	tr     *Transition
	vp     *Viewport
	action ChangeAction
	cur    *ViewportContent
	next   *ViewportContent
}

func newAgent(r *Router, tr *Transition, vp *Viewport, action ChangeAction) *ViewportAgent {
	return &ViewportAgent{
		router: r,
		tr:     tr,
		vp:     vp,
		action: action,
		cur:    vp.content,
		next:   vp.nextContent,
	}
}

func (a *ViewportAgent) String() string {
	return fmt.Sprintf("%s(%s %s -> %s)", a.vp.Path(), a.action, a.cur.name(), a.next.name())
}

func (a *ViewportAgent) ctx() context.Context { return a.router.ctx }

func (a *ViewportAgent) report(milestones ...string) {
	for _, m := range milestones {
		a.tr.coordinator.AddEntityState(a, m)
	}
}

func (a *ViewportAgent) sync(m string) {
	if err := a.tr.coordinator.SyncState(a.ctx(), m, a); err != nil && !errors.Is(err, ErrNavigationCanceled) {
		a.router.logger.Debug("agent sync interrupted", "viewport", a.vp.Path(), "milestone", m, "err", err)
	}
}

func (a *ViewportAgent) hookError(hook string, c *ViewportContent, err error) error {
	return &HookError{Viewport: a.vp.Path(), Component: c.name(), Hook: hook, Err: err}
}

// leaving reports whether the current content gets unloaded.
func (a *ViewportAgent) leaving() bool {
	return a.cur != nil && a.action != ActionSkip
}

func (a *ViewportAgent) nextNav() *domain.NavigationContext {
	if a.next == nil {
		return nil
	}
	return a.next.Navigation
}

// CanUnload schedules the canUnload step on b.
func (a *ViewportAgent) CanUnload(b *batch.Batch) { b.Go(a.canUnload) }

// CanLoad schedules the canLoad step on b.
func (a *ViewportAgent) CanLoad(b *batch.Batch) { b.Go(a.canLoad) }

// Unload schedules the unload step on b.
func (a *ViewportAgent) Unload(b *batch.Batch) { b.Go(a.unload) }

// Load schedules the load step on b. Children bound during load join b.
func (a *ViewportAgent) Load(b *batch.Batch) { b.Go(func() { a.load(b) }) }

// Swap schedules the swap step on b.
func (a *ViewportAgent) Swap(b *batch.Batch) { b.Go(a.swap) }

func (a *ViewportAgent) canUnload() {
	if a.leaving() && a.tr.proceed() {
		if h, ok := a.cur.Component.(domain.CanUnloader); ok {
			allowed, err := h.CanUnload(a.ctx(), a.nextNav())
			switch {
			case err != nil:
				a.tr.fail(a.hookError("canUnload", a.cur, err))
			case !allowed:
				a.router.logger.Debug("unload denied", "viewport", a.vp.Path(), "component", a.cur.name())
				a.tr.deny()
			}
		}
	}
	a.report(MilestoneGuardedUnload)
	a.sync(MilestoneGuardedUnload)
}

func (a *ViewportAgent) canLoad() {
	if a.next != nil && a.tr.proceed() {
		if err := a.create(); err != nil {
			a.tr.fail(err)
		} else {
			a.guard()
		}
	}
	a.report(MilestoneGuardedLoad, MilestoneGuarded)
	a.sync(MilestoneGuarded)
}

// create instantiates the next content unless it already has an instance.
func (a *ViewportAgent) create() error {
	next := a.next
	if next.FromCache || next.state != StateNone {
		return nil
	}
	if next.Component == nil {
		def := next.Definition
		if def.Factory == nil {
			return a.hookError("create", next, fmt.Errorf("component %q has no factory", def.Name))
		}
		inst, err := def.Factory(a.ctx())
		if err != nil {
			return a.hookError("create", next, err)
		}
		next.Component = inst
	}
	return next.transition(StateCreated)
}

// guard runs the component's CanLoad next to the router guards.
func (a *ViewportAgent) guard() {
	next := a.next
	var guards []domain.GuardFunc
	if h, ok := next.Component.(domain.CanLoader); ok {
		guards = append(guards, h.CanLoad)
	}
	guards = append(guards, a.router.guards...)

	results := make([]domain.GuardResult, len(guards))
	errs := make([]error, len(guards))
	fns := make([]func(), len(guards))
	for i, g := range guards {
		fns[i] = func() { results[i], errs[i] = g(a.ctx(), next.Navigation) }
	}
	fanOut(fns)

	for i := range guards {
		switch res := results[i]; {
		case errs[i] != nil:
			a.tr.fail(a.hookError("canLoad", next, errs[i]))
		case res.Redirect != "":
			a.router.logger.Debug("load redirected", "viewport", a.vp.Path(), "component", next.name(), "to", res.Redirect)
			a.tr.redirectTo(res.Redirect)
		case !res.Allow:
			a.router.logger.Debug("load denied", "viewport", a.vp.Path(), "component", next.name())
			a.tr.deny()
		}
	}
	if a.tr.proceed() && !next.FromCache {
		if err := next.transition(StateGuarded); err != nil {
			a.tr.fail(err)
		}
	}
}

func (a *ViewportAgent) unload() {
	if a.leaving() && a.tr.proceed() {
		if h, ok := a.cur.Component.(domain.Unloader); ok {
			if err := h.Unload(a.ctx(), a.nextNav()); err != nil {
				a.tr.fail(a.hookError("unload", a.cur, err))
			}
		}
	}
	a.report(MilestoneUnloaded)
	a.sync(MilestoneUnloaded)
}

func (a *ViewportAgent) load(b *batch.Batch) {
	if next := a.next; next != nil && a.tr.proceed() {
		if !next.FromCache {
			var err error
			if h, ok := next.Component.(domain.Loader); ok {
				if err = h.Load(a.ctx(), next.Navigation); err != nil {
					a.tr.fail(a.hookError("load", next, err))
				}
			}
			if err == nil {
				if err := next.transition(StateLoaded); err != nil {
					a.tr.fail(err)
				}
			}
		}
		if a.tr.proceed() {
			if err := a.router.bindChildren(a, b); err != nil {
				a.tr.fail(err)
			}
		}
	}
	a.report(MilestoneLoaded)
	a.sync(MilestoneLoaded)
	a.report(MilestoneRouted)
	a.sync(MilestoneRouted)
}

// catchUp runs every step up to load for an agent that joined late.
func (a *ViewportAgent) catchUp(b *batch.Batch) {
	a.canUnload()
	a.canLoad()
	a.unload()
	a.load(b)
}

func (a *ViewportAgent) swap() {
	if a.action != ActionSkip && a.tr.proceed() {
		ctx := a.ctx()
		remove := func() {
			if a.action == ActionSwap {
				if err := a.deactivate(ctx, a.cur); err != nil {
					a.tr.fail(err)
				}
			}
		}
		add := func() {
			if err := a.activate(ctx, a.next); err != nil {
				a.tr.fail(err)
			}
		}
		switch a.router.options.SwapStrategy {
		case domain.SwapSequentialAddFirst:
			add()
			remove()
		case domain.SwapParallelRemoveFirst:
			fanOut([]func(){remove, add})
		default:
			remove()
			add()
		}
		a.vp.swapped = true
		a.router.emitViewportSwap(a.tr, a.vp, a.cur, a.next)
	}
	a.report(MilestoneSwapped)
	a.sync(MilestoneSwapped)
}

func (a *ViewportAgent) activate(ctx context.Context, c *ViewportContent) error {
	if c == nil || c.state == StateActivated {
		return nil
	}
	if c.reused {
		return c.transition(StateActivated)
	}
	if err := a.router.renderer.Attach(ctx, a.vp.Path(), c.Component); err != nil {
		return a.hookError("attach", c, err)
	}
	if h, ok := c.Component.(domain.Activator); ok {
		if err := h.Activate(ctx); err != nil {
			if derr := a.router.renderer.Detach(ctx, a.vp.Path(), c.Component); derr != nil {
				a.router.logger.Warn("detach after failed activation", "viewport", a.vp.Path(), "err", derr)
			}
			return a.hookError("activate", c, err)
		}
	}
	return c.transition(StateActivated)
}

func (a *ViewportAgent) deactivate(ctx context.Context, c *ViewportContent) error {
	if c == nil || c.state != StateActivated {
		return nil
	}
	var errs []error
	if h, ok := c.Component.(domain.Deactivator); ok {
		if err := h.Deactivate(ctx); err != nil {
			errs = append(errs, a.hookError("deactivate", c, err))
		}
	}
	if err := a.router.renderer.Detach(ctx, a.vp.Path(), c.Component); err != nil {
		errs = append(errs, a.hookError("detach", c, err))
	}
	errs = append(errs, c.transition(StateLoaded))
	return errors.Join(errs...)
}

// EndTransition commits the staged content.
func (a *ViewportAgent) EndTransition() {
	v := a.vp
	if a.action != ActionSkip {
		old := v.content
		v.content = v.nextContent
		if old != nil && a.action == ActionSwap {
			if v.Options.Stateful && old.state == StateLoaded {
				old.FromCache, old.FromHistory = false, false
				v.cache = append(v.cache, old)
			} else {
				old.free()
			}
		}
	}
	v.nextContent, v.nextAction, v.swapped = nil, ActionSkip, false
	a.report(MilestoneCompleted)
}

// CancelUpdate rolls the viewport back to its content before the transition.
func (a *ViewportAgent) CancelUpdate() {
	v := a.vp
	ctx := context.WithoutCancel(a.ctx())
	if v.swapped && a.action != ActionSkip {
		if a.action == ActionSwap {
			if err := a.deactivate(ctx, a.next); err != nil {
				a.router.logger.Warn("rollback: deactivate failed", "viewport", v.Path(), "err", err)
			}
			if err := a.activate(ctx, a.cur); err != nil {
				a.router.logger.Warn("rollback: reactivate failed", "viewport", v.Path(), "err", err)
			}
		} else if a.next != nil && a.next.state == StateActivated {
			a.next.state = StateLoaded
		}
	}
	if next := a.next; next != nil && next != v.content {
		switch {
		case next.FromCache:
			next.FromCache, next.FromHistory = false, false
			v.cache = append(v.cache, next)
		case !next.reused:
			next.free()
		}
	}
	v.nextContent, v.nextAction, v.swapped = nil, ActionSkip, false
}

// fanOut runs fns concurrently and waits for all of them.
func fanOut(fns []func()) {
	switch len(fns) {
	case 0:
		return
	case 1:
		fns[0]()
		return
	}
	done := make(chan struct{})
	batch.Start(func(b *batch.Batch) {
		for _, fn := range fns {
			b.Go(fn)
		}
	}).ContinueWith(func(*batch.Batch) { close(done) }).Start()
	<-done
}
