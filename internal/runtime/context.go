package runtime

import (
	"fmt"
	"slices"

	"github.com/aretw0/waypoint/pkg/domain"
)

// RouteContext is a level of the viewport tree: the viewports declared at
// that level and the routes configured for them.
type RouteContext struct {
	parent     *RouteContext
	owner      *ViewportContent
	viewports  []*Viewport
	recognizer *recognizer
}

func newRouteContext(parent *RouteContext, owner *ViewportContent, vps []domain.ViewportOptions, routes []domain.RouteConfig) (*RouteContext, error) {
	rec, err := newRecognizer(routes)
	if err != nil {
		return nil, err
	}
	rc := &RouteContext{parent: parent, owner: owner, recognizer: rec}
	for _, o := range vps {
		if o.Name == "" {
			return nil, fmt.Errorf("viewport without a name")
		}
		if rc.Viewport(o.Name) != nil {
			return nil, fmt.Errorf("duplicate viewport %q", o.Name)
		}
		rc.viewports = append(rc.viewports, &Viewport{Name: o.Name, Options: o, owner: rc})
	}
	return rc, nil
}

// Parent returns the enclosing context, or nil at the root.
func (rc *RouteContext) Parent() *RouteContext { return rc.parent }

// Owner returns the content whose child viewports live in rc, or nil at the
// root.
func (rc *RouteContext) Owner() *ViewportContent { return rc.owner }

// Viewports lists the viewports in declaration order.
func (rc *RouteContext) Viewports() []*Viewport { return slices.Clone(rc.viewports) }

// Viewport returns the viewport with the given name, or nil.
func (rc *RouteContext) Viewport(name string) *Viewport {
	for _, vp := range rc.viewports {
		if vp.Name == name {
			return vp
		}
	}
	return nil
}

// find returns the context whose owner hosts component, searching depth-first.
func (rc *RouteContext) find(component any) *RouteContext {
	for _, vp := range rc.viewports {
		c := vp.content
		if c == nil {
			continue
		}
		if c.Component == component {
			if c.children != nil {
				return c.children
			}
			return rc
		}
		if c.children != nil {
			if found := c.children.find(component); found != nil {
				return found
			}
		}
	}
	return nil
}

// claim picks the viewport for target. An explicit viewport name wins; then
// a viewport reserved for the component; then one already showing it; then
// the first unreserved one, empty ones first when preferEmpty is set.
func (rc *RouteContext) claim(target *resolvedRoute, claimed map[*Viewport]bool, preferEmpty bool) (*Viewport, error) {
	name := target.def.Name
	if target.viewport != "" {
		vp := rc.Viewport(target.viewport)
		if vp == nil {
			return nil, fmt.Errorf("%w: %q for %q", domain.ErrUnknownViewport, target.viewport, name)
		}
		if claimed[vp] {
			return nil, fmt.Errorf("%w: %q is already targeted", domain.ErrNoAvailableViewport, target.viewport)
		}
		return vp, nil
	}

	for _, vp := range rc.viewports {
		if !claimed[vp] && slices.Contains(vp.Options.UsedBy, name) {
			return vp, nil
		}
	}
	for _, vp := range rc.viewports {
		if !claimed[vp] && vp.content != nil && vp.content.name() == name && vp.accepts(name) {
			return vp, nil
		}
	}
	for _, vp := range rc.viewports {
		if preferEmpty && !claimed[vp] && len(vp.Options.UsedBy) == 0 && vp.content == nil {
			return vp, nil
		}
	}
	for _, vp := range rc.viewports {
		if !claimed[vp] && len(vp.Options.UsedBy) == 0 {
			return vp, nil
		}
	}
	return nil, fmt.Errorf("%w: for %q", domain.ErrNoAvailableViewport, name)
}
