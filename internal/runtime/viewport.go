package runtime

import (
	"slices"
	"strings"

	"github.com/aretw0/waypoint/pkg/domain"
	"github.com/aretw0/waypoint/pkg/instruction"
)

// ChangeAction is what a transition does to a viewport.
type ChangeAction int

const (
	// ActionSkip leaves the current content in place.
	ActionSkip ChangeAction = iota
	// ActionReload re-runs the lifecycle on the current instance.
	ActionReload
	// ActionSwap replaces the current content, possibly with nothing.
	ActionSwap
)

func (a ChangeAction) String() string {
	switch a {
	case ActionReload:
		return "reload"
	case ActionSwap:
		return "swap"
	}
	return "skip"
}

// Viewport is a named slot hosting at most one component at a time.
type Viewport struct {
	Name    string
	Options domain.ViewportOptions

	owner       *RouteContext
	content     *ViewportContent
	nextContent *ViewportContent
	nextAction  ChangeAction
	// swapped is set once the pending change has been attached.
	swapped bool
	cache   []*ViewportContent
}

// Content returns the committed content, or nil when empty.
func (v *Viewport) Content() *ViewportContent { return v.content }

// Path is the slash-joined chain of viewport names from the root.
func (v *Viewport) Path() string {
	var parts []string
	for rc, name := v.owner, v.Name; ; {
		parts = append(parts, name)
		if rc.owner == nil || rc.parent == nil {
			break
		}
		host := rc.parent.host(rc.owner)
		if host == nil {
			break
		}
		rc, name = rc.parent, host.Name
	}
	slices.Reverse(parts)
	return strings.Join(parts, "/")
}

func (v *Viewport) accepts(component string) bool {
	return len(v.Options.UsedBy) == 0 || slices.Contains(v.Options.UsedBy, component)
}

// setNextContent decides how the viewport reacts to target (nil clears it)
// and stages the next content accordingly.
func (v *Viewport) setNextContent(tr *Transition, target *resolvedRoute) ChangeAction {
	cur := v.content
	v.nextContent, v.swapped = nil, false
	action := v.decide(tr, target)
	v.nextAction = action

	switch action {
	case ActionSkip:
	case ActionReload:
		v.nextContent = &ViewportContent{
			Definition:       target.def,
			Component:        cur.Component,
			Segments:         target.segments,
			Params:           target.params,
			Title:            target.title,
			instrParams:      target.instrParams,
			explicitViewport: target.explicitViewport,
			reused:           true,
			children:         cur.children,
		}
		v.nextContent.Navigation = tr.navigationContext(v, v.nextContent)
	case ActionSwap:
		if target == nil {
			break
		}
		fresh := tr.forceReload || (cur != nil && cur.name() == target.def.Name && target.def.Reentry == domain.ReentryRefresh)
		if !fresh && target.instance == nil {
			if cached := v.takeCached(target); cached != nil {
				cached.FromCache = true
				cached.FromHistory = tr.Trigger != domain.TriggerAPI
				cached.instrParams = target.instrParams
				cached.explicitViewport = target.explicitViewport
				cached.Navigation = tr.navigationContext(v, cached)
				v.nextContent = cached
				break
			}
		}
		v.nextContent = &ViewportContent{
			Definition:       target.def,
			Component:        target.instance,
			Segments:         target.segments,
			Params:           target.params,
			Title:            target.title,
			instrParams:      target.instrParams,
			explicitViewport: target.explicitViewport,
		}
		v.nextContent.Navigation = tr.navigationContext(v, v.nextContent)
	}
	return action
}

// decide applies the reentry rules in order: clearing, first load, forced
// reload, component change, then the component's reentry behavior.
func (v *Viewport) decide(tr *Transition, target *resolvedRoute) ChangeAction {
	cur := v.content
	switch {
	case target == nil:
		if cur == nil {
			return ActionSkip
		}
		return ActionSwap
	case cur == nil, tr.forceReload:
		return ActionSwap
	case cur.name() != target.def.Name:
		return ActionSwap
	case target.instance != nil && target.instance != cur.Component:
		return ActionSwap
	}

	switch target.def.Reentry {
	case domain.ReentryDisallow:
		return ActionSkip
	case domain.ReentryLoad:
		return ActionReload
	case domain.ReentryRefresh:
		return ActionSwap
	}
	if cur.Params.Equal(target.params) {
		return ActionSkip
	}
	return ActionSwap
}

// restamp copies how target was written onto the kept content, so the next
// URL reflects the latest instruction. The returned func undoes it.
func (v *Viewport) restamp(target *resolvedRoute) func() {
	c := v.content
	if c == nil || target == nil {
		return nil
	}
	params, explicit := c.instrParams, c.explicitViewport
	c.instrParams, c.explicitViewport = target.instrParams, target.explicitViewport
	return func() { c.instrParams, c.explicitViewport = params, explicit }
}

func (v *Viewport) takeCached(target *resolvedRoute) *ViewportContent {
	for i, c := range v.cache {
		if c.matches(target) {
			v.cache = slices.Delete(v.cache, i, i+1)
			return c
		}
	}
	return nil
}

// host returns the viewport in rc showing content.
func (rc *RouteContext) host(content *ViewportContent) *Viewport {
	for _, vp := range rc.viewports {
		if vp.content == content || vp.nextContent == content {
			return vp
		}
	}
	return nil
}

// resolvedRoute is an instruction resolved to a component definition.
type resolvedRoute struct {
	def              *domain.ComponentDefinition
	instance         any
	segments         []string
	params           instruction.Params
	instrParams      instruction.Params
	viewport         string
	explicitViewport bool
	title            string
	children         []*instruction.ViewportInstruction
}
