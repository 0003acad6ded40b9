package runtime

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/waypoint/internal/logging"
	"github.com/aretw0/waypoint/pkg/batch"
	"github.com/aretw0/waypoint/pkg/coordinator"
	"github.com/aretw0/waypoint/pkg/domain"
	"github.com/aretw0/waypoint/pkg/expression"
	"github.com/aretw0/waypoint/pkg/instruction"
	"github.com/aretw0/waypoint/pkg/ports"
	"github.com/aretw0/waypoint/pkg/registry"
	"github.com/google/uuid"
)

// Router owns the viewport tree and runs navigations against it, one
// transition at a time.
type Router struct {
	logger   *slog.Logger
	hooks    domain.LifecycleHooks
	registry *registry.Registry
	parser   *expression.Parser
	location ports.Location
	renderer ports.Renderer
	options  domain.RouterOptions
	guards   []domain.GuardFunc

	rootViewports []domain.ViewportOptions
	rootRoutes    []domain.RouteConfig
	root          *RouteContext

	ctx    context.Context
	cancel context.CancelFunc

	mu           sync.Mutex
	instructions *instruction.Tree
	routeTree    *RouteTree
	navigated    bool
	currentTr    *Transition
	nextTr       *Transition
	isNavigating bool
	idle         chan struct{}
	trCounter    uint64
	stopped      bool
	unsubscribe  func()
}

// NewRouter creates a router over the components in reg. Without viewports
// the root gets a single viewport named "default".
func NewRouter(reg *registry.Registry, opts ...Option) (*Router, error) {
	if reg == nil {
		reg = registry.NewRegistry()
	}
	r := &Router{
		logger:   logging.NewNop(),
		registry: reg,
		parser:   expression.NewParser(),
		renderer: ports.NopRenderer{},
		options:  domain.DefaultRouterOptions(),
	}
	for _, opt := range opts {
		opt(r)
	}
	if len(r.rootViewports) == 0 {
		r.rootViewports = []domain.ViewportOptions{{Name: "default"}}
	}
	root, err := newRouteContext(nil, nil, r.rootViewports, r.rootRoutes)
	if err != nil {
		return nil, fmt.Errorf("root context: %w", err)
	}
	r.root = root
	r.ctx, r.cancel = context.WithCancel(context.Background())
	r.instructions = &instruction.Tree{IsAbsolute: true}
	r.routeTree = &RouteTree{}
	return r, nil
}

// Start subscribes to location changes and loads the current location.
func (r *Router) Start(ctx context.Context) (bool, error) {
	if r.location == nil {
		return true, nil
	}
	r.mu.Lock()
	if r.unsubscribe == nil {
		r.unsubscribe = r.location.Subscribe(r.handleLocationChange)
	}
	r.mu.Unlock()
	return r.Load(ctx, r.location.Path(), domain.Replace())
}

// Stop detaches from the location and rejects further navigations. Running
// hooks see their context canceled.
func (r *Router) Stop() {
	r.mu.Lock()
	r.stopped = true
	unsub := r.unsubscribe
	r.unsubscribe = nil
	r.mu.Unlock()
	if unsub != nil {
		unsub()
	}
	r.cancel()
}

// Load navigates to target and waits for the outcome. target is a route
// string, an *instruction.Tree, a []any of instructions, or any single
// instruction or component reference.
func (r *Router) Load(ctx context.Context, target any, opts ...domain.NavigationOption) (bool, error) {
	res, err := r.LoadAsync(target, opts...)
	if err != nil {
		return false, err
	}
	return res.Wait(ctx)
}

// LoadAsync queues a navigation and returns its pending result.
func (r *Router) LoadAsync(target any, opts ...domain.NavigationOption) (*Result, error) {
	o := domain.NewNavigationOptions(opts...)
	tree, err := r.newTree(target, o)
	if err != nil {
		return nil, err
	}
	return r.enqueue(tree, domain.TriggerAPI, o.State, nil)
}

// IsActive reports whether target is contained in the current instructions.
func (r *Router) IsActive(target any, opts ...domain.NavigationOption) bool {
	tree, err := r.newTree(target, domain.NewNavigationOptions(opts...))
	if err != nil {
		return false
	}
	return r.Instructions().Contains(tree)
}

// WaitIdle blocks until no transition is running or queued.
func (r *Router) WaitIdle(ctx context.Context) error {
	r.mu.Lock()
	if !r.isNavigating {
		r.mu.Unlock()
		return nil
	}
	idle := r.idle
	r.mu.Unlock()
	select {
	case <-idle:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Instructions returns the instructions of the last committed transition.
func (r *Router) Instructions() *instruction.Tree {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.instructions.Clone()
}

// RouteTree returns the snapshot of the last committed transition.
func (r *Router) RouteTree() *RouteTree {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.routeTree
}

// URL renders the current instructions the way they are written to the
// location.
func (r *Router) URL() string {
	t := r.Instructions()
	if r.options.UseURLFragmentHash {
		return t.ToHashURL()
	}
	return t.ToURL()
}

// Root returns the root route context. It must not be inspected while a
// transition runs.
func (r *Router) Root() *RouteContext { return r.root }

// Options returns the effective router options.
func (r *Router) Options() domain.RouterOptions { return r.options }

// Parser returns the route expression parser.
func (r *Router) Parser() *expression.Parser { return r.parser }

func (r *Router) newTree(target any, o domain.NavigationOptions) (*instruction.Tree, error) {
	return instruction.CreateTree(r.parser, target, r.options.UseURLFragmentHash, o)
}

func (r *Router) handleLocationChange(ev domain.LocationChangeEvent) {
	tree, err := r.newTree(ev.URL, domain.NavigationOptions{State: ev.State})
	if err != nil {
		r.logger.Warn("ignoring unparsable location", "url", ev.URL, "err", err)
		return
	}
	if _, err := r.enqueue(tree, ev.Trigger, ev.State, nil); err != nil {
		r.logger.Debug("location change dropped", "url", ev.URL, "err", err)
	}
}

// enqueue replaces any queued transition with a new one and starts
// processing when idle. failed carries the result of a redirected
// transition over to its replacement.
func (r *Router) enqueue(tree *instruction.Tree, trigger domain.Trigger, state map[string]any, failed *Transition) (*Result, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.stopped {
		return nil, domain.ErrRouterStopped
	}

	// Browsers echo API navigations as popstate/hashchange events.
	if trigger != domain.TriggerAPI {
		if cur := r.currentTr; cur != nil && cur.Trigger == domain.TriggerAPI && cur.URL() == tree.ToURL() {
			res := newResult()
			res.resolve(true)
			return res, nil
		}
	}

	r.trCounter++
	tr := &Transition{
		ID:            r.trCounter,
		CorrelationID: uuid.NewString(),
		Trigger:       trigger,
		Options:       tree.Options,
		ManagedState:  state,
		Instructions:  tree,
		result:        newResult(),
	}
	if failed != nil {
		tr.result = failed.result
		tr.CorrelationID = failed.CorrelationID
		tr.redirects = failed.redirects + 1
	}

	if prev := r.nextTr; prev != nil {
		r.logger.Debug("navigation superseded", "transition", prev.ID, "by", tr.ID)
		prev.result.resolve(false)
	}
	r.nextTr = tr

	if !r.isNavigating {
		r.isNavigating = true
		r.idle = make(chan struct{})
		go r.process()
	}
	return tr.result, nil
}

// process runs queued transitions until the queue is empty.
func (r *Router) process() {
	for {
		r.mu.Lock()
		tr := r.nextTr
		if tr == nil {
			r.isNavigating = false
			r.currentTr = nil
			close(r.idle)
			r.mu.Unlock()
			return
		}
		r.nextTr = nil
		r.currentTr = tr
		r.mu.Unlock()

		r.run(tr)
	}
}

func (r *Router) run(tr *Transition) {
	qs := tr.Options.QueryParamsStrategy
	if qs == "" {
		qs = r.options.QueryParamsStrategy
	}
	fs := tr.Options.FragmentStrategy
	if fs == "" {
		fs = r.options.FragmentStrategy
	}

	r.mu.Lock()
	tr.PrevInstructions = r.instructions
	tr.PreviousRouteTree = r.routeTree
	navigated := r.navigated
	// enqueue reads the running transition's URL under the same lock.
	tr.Instructions.ApplyStrategies(tr.PrevInstructions, qs, fs)
	r.mu.Unlock()

	log := r.logger.With("transition", tr.ID, "correlation_id", tr.CorrelationID)

	if navigated && tr.Instructions.ToURL() == tr.PrevInstructions.ToURL() {
		if r.options.SameURLFor(tr.navigation(), tr.Options.SameURLStrategy) != domain.SameURLReload {
			log.Debug("navigation to current URL ignored", "url", tr.URL())
			tr.result.resolve(false)
			return
		}
		tr.forceReload = true
	}

	tr.StartedAt = time.Now()
	log.Debug("navigation started", "url", tr.URL(), "trigger", tr.Trigger)
	r.emitStart(tr)

	r.mu.Lock()
	superseded := r.nextTr != nil
	r.mu.Unlock()
	if superseded {
		log.Debug("navigation abandoned", "url", tr.URL())
		r.emitCancel(tr, "superseded")
		tr.result.resolve(false)
		return
	}

	tr.plan = &plan{}
	tr.coordinator = coordinator.New[*ViewportAgent]()
	if err := r.planTransition(r.ctx, tr); err != nil {
		tr.fail(err)
		r.cancelNavigation(tr)
		return
	}
	for _, a := range tr.plan.snapshot() {
		tr.coordinator.AddEntity(a)
	}
	tr.coordinator.FinalEntity()

	done := make(chan struct{})
	var once sync.Once
	finish := func() { once.Do(func() { close(done) }) }

	check := func(b *batch.Batch) {
		if !tr.proceed() {
			// Hold every later stage.
			b.Push()
			r.cancelNavigation(tr)
			finish()
		}
	}
	each := func(step func(*ViewportAgent, *batch.Batch)) func(*batch.Batch) {
		return func(b *batch.Batch) {
			for _, a := range tr.plan.snapshot() {
				step(a, b)
			}
		}
	}

	batch.Sequence(
		each((*ViewportAgent).CanUnload),
		check,
		each((*ViewportAgent).CanLoad),
		check,
		each((*ViewportAgent).Unload),
		check,
		each((*ViewportAgent).Load),
		check,
		each((*ViewportAgent).Swap),
		check,
		func(*batch.Batch) {
			r.finalize(tr, log)
			finish()
		},
	).Start()
	<-done
}

// cancelNavigation rolls back every planned change and settles the result
// according to why the transition stopped.
func (r *Router) cancelNavigation(tr *Transition) {
	for _, a := range tr.plan.snapshot() {
		a.CancelUpdate()
	}
	tr.plan.rollback()
	tr.coordinator.Cancel(ErrNavigationCanceled)

	r.mu.Lock()
	r.instructions = tr.PrevInstructions
	r.routeTree = tr.PreviousRouteTree
	r.mu.Unlock()

	log := r.logger.With("transition", tr.ID, "correlation_id", tr.CorrelationID)
	redirect, err := tr.outcome()
	switch {
	case err != nil:
		log.Error("navigation failed", "url", tr.URL(), "err", err)
		r.emitError(tr, err)
		tr.result.reject(err)

	case redirect != "" && tr.redirects >= maxRedirects:
		err := fmt.Errorf("%w: guard redirect to %q", domain.ErrRedirectLoop, redirect)
		log.Error("navigation failed", "url", tr.URL(), "err", err)
		r.emitError(tr, err)
		tr.result.reject(err)

	case redirect != "":
		log.Debug("navigation redirected", "url", tr.URL(), "to", redirect)
		r.emitCancel(tr, "redirect")
		tree, perr := r.newTree(redirect, domain.NavigationOptions{State: tr.ManagedState})
		if perr != nil {
			tr.result.reject(fmt.Errorf("redirect %q: %w", redirect, perr))
			return
		}
		if _, err := r.enqueue(tree, domain.TriggerAPI, tr.ManagedState, tr); err != nil {
			tr.result.reject(err)
		}

	default:
		log.Debug("navigation denied", "url", tr.URL())
		r.emitCancel(tr, "guard")
		tr.result.resolve(false)
	}
}

func (r *Router) finalize(tr *Transition, log *slog.Logger) {
	for _, a := range tr.plan.snapshot() {
		a.EndTransition()
	}

	tr.RouteTree = snapshotTree(r.root, tr.Instructions)
	tr.FinalInstructions = tr.RouteTree.Instructions()

	r.mu.Lock()
	r.instructions = tr.FinalInstructions
	r.routeTree = tr.RouteTree
	r.navigated = true
	r.mu.Unlock()

	if err := r.writeHistory(tr); err != nil {
		log.Warn("history update failed", "err", err)
	}
	log.Info("navigation completed", "url", tr.FinalInstructions.ToURL(), "duration", time.Since(tr.StartedAt))
	r.emitEnd(tr)
	tr.result.resolve(true)
}

func (r *Router) writeHistory(tr *Transition) error {
	if r.location == nil || tr.Trigger != domain.TriggerAPI {
		return nil
	}
	strategy := r.options.HistoryFor(tr.navigation(), tr.Options.HistoryStrategy)
	if strategy == domain.HistoryNone {
		return nil
	}

	url := tr.FinalInstructions.ToURL()
	if r.options.UseURLFragmentHash {
		url = tr.FinalInstructions.ToHashURL()
	}
	title := tr.Options.Title
	if title == "" {
		title = tr.RouteTree.Title(r.options.Title, r.options.TitleSeparator)
	}

	if strategy == domain.HistoryPush && r.location.Path() != url {
		return r.location.PushState(tr.ManagedState, title, url)
	}
	return r.location.ReplaceState(tr.ManagedState, title, url)
}
