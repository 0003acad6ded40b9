package runtime

import (
	"fmt"
	"strings"

	"github.com/aretw0/waypoint/pkg/domain"
)

// routeNode is a node in the segment tree of configured routes.
type routeNode struct {
	segment string

	// route is set when a configured path ends at this node.
	route *domain.RouteConfig

	children      []*routeNode
	paramChild    *routeNode
	paramName     string
	catchAllChild *routeNode
}

func (n *routeNode) findChild(segment string) *routeNode {
	for _, child := range n.children {
		if child.segment == segment {
			return child
		}
	}
	return nil
}

func (n *routeNode) addChild(segment string) *routeNode {
	if child := n.findChild(segment); child != nil {
		return child
	}
	child := &routeNode{segment: segment}
	n.children = append(n.children, child)
	return child
}

// recognizer matches instruction segments against configured routes.
type recognizer struct {
	root  *routeNode
	empty *domain.RouteConfig
}

// routeMatch is the longest configured route found for a segment chain.
type routeMatch struct {
	route    *domain.RouteConfig
	params   map[string]string
	consumed int
}

func newRecognizer(routes []domain.RouteConfig) (*recognizer, error) {
	r := &recognizer{root: &routeNode{}}
	for i := range routes {
		if err := r.add(&routes[i]); err != nil {
			return nil, err
		}
	}
	return r, nil
}

func (r *recognizer) add(cfg *domain.RouteConfig) error {
	if cfg.Component == "" && cfg.RedirectTo == "" {
		return fmt.Errorf("route %q: needs a component or a redirect", cfg.Path)
	}
	segments := splitPath(cfg.Path)
	if len(segments) == 0 {
		if r.empty != nil {
			return fmt.Errorf("route %q: duplicate empty route", cfg.Path)
		}
		r.empty = cfg
		return nil
	}

	current := r.root
	for i, seg := range segments {
		switch {
		case strings.HasPrefix(seg, "*"):
			if i != len(segments)-1 {
				return fmt.Errorf("route %q: catch-all must be the last segment", cfg.Path)
			}
			if current.catchAllChild == nil {
				current.catchAllChild = &routeNode{paramName: seg[1:]}
			}
			current = current.catchAllChild
		case strings.HasPrefix(seg, ":"):
			name := seg[1:]
			if current.paramChild == nil {
				current.paramChild = &routeNode{}
				current.paramName = name
			} else if current.paramName != name {
				return fmt.Errorf("route %q: parameter :%s conflicts with :%s", cfg.Path, name, current.paramName)
			}
			current = current.paramChild
		default:
			current = current.addChild(seg)
		}
	}
	if current.route != nil {
		return fmt.Errorf("route %q: duplicate of %q", cfg.Path, current.route.Path)
	}
	current.route = cfg
	return nil
}

// recognize returns the route consuming the most leading segments. Static
// segments win over parameters, which win over catch-alls.
func (r *recognizer) recognize(segments []string) (*routeMatch, bool) {
	if len(segments) == 0 {
		return nil, false
	}
	var best *routeMatch
	r.root.match(segments, 0, map[string]string{}, &best)
	return best, best != nil
}

func (n *routeNode) match(segments []string, i int, params map[string]string, best **routeMatch) {
	if n.route != nil && i > 0 && (*best == nil || i > (*best).consumed) {
		*best = &routeMatch{route: n.route, params: copyParams(params), consumed: i}
	}
	if i == len(segments) {
		return
	}
	seg := segments[i]

	if child := n.findChild(seg); child != nil {
		child.match(segments, i+1, params, best)
	}

	if n.paramChild != nil {
		params[n.paramName] = seg
		n.paramChild.match(segments, i+1, params, best)
		delete(params, n.paramName)
	}

	if c := n.catchAllChild; c != nil && c.route != nil && (*best == nil || len(segments) > (*best).consumed) {
		p := copyParams(params)
		p[c.paramName] = strings.Join(segments[i:], "/")
		*best = &routeMatch{route: c.route, params: p, consumed: len(segments)}
	}
}

func copyParams(p map[string]string) map[string]string {
	out := make(map[string]string, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

func splitPath(path string) []string {
	path = strings.Trim(path, "/")
	if path == "" {
		return nil
	}
	return strings.Split(path, "/")
}
