package runtime

import (
	"maps"
	"strings"
	"sync"
	"time"

	"github.com/aretw0/waypoint/pkg/coordinator"
	"github.com/aretw0/waypoint/pkg/domain"
	"github.com/aretw0/waypoint/pkg/instruction"
)

// Transition is one attempt to move the router from its current instructions
// to new ones.
type Transition struct {
	ID            uint64
	CorrelationID string
	Trigger       domain.Trigger
	Options       domain.NavigationOptions
	ManagedState  map[string]any
	StartedAt     time.Time

	PrevInstructions  *instruction.Tree
	Instructions      *instruction.Tree
	FinalInstructions *instruction.Tree
	PreviousRouteTree *RouteTree
	RouteTree         *RouteTree

	result      *Result
	redirects   int
	forceReload bool
	coordinator *coordinator.Coordinator[*ViewportAgent]
	plan        *plan

	mu       sync.Mutex
	guarded  bool
	redirect string
	err      error
}

// URL is the URL the transition navigates to.
func (tr *Transition) URL() string {
	return tr.Instructions.ToURL()
}

// Result returns the promise settled when the transition finishes.
func (tr *Transition) Result() *Result { return tr.result }

// deny records a guard refusal. The first guard outcome wins.
func (tr *Transition) deny() {
	tr.mu.Lock()
	defer tr.mu.Unlock()
	tr.guarded = true
}

// redirectTo records a guard redirect. The first guard outcome wins.
func (tr *Transition) redirectTo(route string) {
	tr.mu.Lock()
	defer tr.mu.Unlock()
	if !tr.guarded {
		tr.guarded = true
		tr.redirect = route
	}
}

// fail records a hook error. The first error wins.
func (tr *Transition) fail(err error) {
	tr.mu.Lock()
	defer tr.mu.Unlock()
	if tr.err == nil {
		tr.err = err
	}
}

// proceed reports whether no guard has objected and no hook has failed.
func (tr *Transition) proceed() bool {
	tr.mu.Lock()
	defer tr.mu.Unlock()
	return !tr.guarded && tr.err == nil
}

func (tr *Transition) outcome() (redirect string, err error) {
	tr.mu.Lock()
	defer tr.mu.Unlock()
	return tr.redirect, tr.err
}

func (tr *Transition) navigation() domain.Navigation {
	nav := domain.Navigation{ID: tr.ID, Trigger: tr.Trigger, URL: tr.URL()}
	if tr.PrevInstructions != nil {
		nav.PreviousURL = tr.PrevInstructions.ToURL()
	}
	return nav
}

func (tr *Transition) navigationContext(v *Viewport, c *ViewportContent) *domain.NavigationContext {
	return &domain.NavigationContext{
		Navigation:  tr.navigation(),
		Viewport:    v.Name,
		Component:   c.Definition.Name,
		Path:        strings.Join(c.Segments, "/"),
		Params:      maps.Clone(c.Params),
		QueryParams: tr.Instructions.QueryParams,
		Fragment:    tr.Instructions.Fragment,
		State:       tr.ManagedState,
		FromCache:   c.FromCache,
		FromHistory: c.FromHistory,
	}
}

// plan collects the agents of a transition, including those added while
// children are bound late.
type plan struct {
	mu     sync.Mutex
	agents []*ViewportAgent
	undo   []func()
}

// onCancel registers fn to run when the transition is rolled back.
func (p *plan) onCancel(fn func()) {
	if fn == nil {
		return
	}
	p.mu.Lock()
	p.undo = append(p.undo, fn)
	p.mu.Unlock()
}

// rollback runs the registered undo funcs, latest first.
func (p *plan) rollback() {
	p.mu.Lock()
	undo := p.undo
	p.undo = nil
	p.mu.Unlock()
	for i := len(undo) - 1; i >= 0; i-- {
		undo[i]()
	}
}

func (p *plan) add(a ...*ViewportAgent) {
	p.mu.Lock()
	p.agents = append(p.agents, a...)
	p.mu.Unlock()
}

func (p *plan) snapshot() []*ViewportAgent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]*ViewportAgent(nil), p.agents...)
}
