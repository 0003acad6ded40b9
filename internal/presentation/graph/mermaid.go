package graph

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/aretw0/waypoint/internal/runtime"
	"github.com/aretw0/waypoint/pkg/domain"
	"github.com/aretw0/waypoint/pkg/registry"
)

// Map is the static routing configuration to draw.
type Map struct {
	Viewports  []domain.ViewportOptions
	Routes     []domain.RouteConfig
	Components []*domain.ComponentDefinition
}

// FromRegistry collects every registered component next to the root
// configuration.
func FromRegistry(reg *registry.Registry, viewports []domain.ViewportOptions, routes []domain.RouteConfig) Map {
	m := Map{Viewports: viewports, Routes: routes}
	for _, name := range reg.Names() {
		if def, ok := reg.Lookup(name); ok {
			m.Components = append(m.Components, def)
		}
	}
	return m
}

// GraphOverlay contains live router data to highlight on the graph.
type GraphOverlay struct {
	// Active lists the components currently shown.
	Active []string
	// Current is the deepest component of the first viewport path.
	Current string
}

// OverlayFromTree marks every component of a route tree as active.
func OverlayFromTree(tree *runtime.RouteTree) *GraphOverlay {
	o := &GraphOverlay{}
	tree.Walk(func(_ int, n *runtime.RouteNode) bool {
		o.Active = append(o.Active, n.Component)
		return true
	})
	if tree == nil {
		return o
	}
	for nodes := tree.Nodes; len(nodes) > 0; nodes = nodes[0].Children {
		o.Current = nodes[0].Component
	}
	return o
}

// GenerateMermaid produces a Mermaid flowchart of the routing configuration.
// Shapes:
// - Root context: ((Circle))
// - Viewport: [/Parallelogram/]
// - Component: [Rectangle]
// - Redirect: {{Hexagon}}
// Configured routes are solid labelled edges, redirects and defaults are
// dotted.
func GenerateMermaid(m Map, overlay *GraphOverlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")
	sb.WriteString("    root((\"/\"))\n")

	redirects := 0
	writeContext := func(owner string, viewports []domain.ViewportOptions, routes []domain.RouteConfig) {
		for _, vp := range viewports {
			id := viewportID(owner, vp.Name)
			fmt.Fprintf(&sb, "    %s[/\"%s\"/]\n", id, escape(vp.Name))
			fmt.Fprintf(&sb, "    %s --> %s\n", owner, id)
			if vp.Default != "" {
				fmt.Fprintf(&sb, "    %s -. default .-> %s\n", id, componentID(vp.Default))
			}
			for _, c := range vp.UsedBy {
				fmt.Fprintf(&sb, "    %s -. prefers .-> %s\n", componentID(c), id)
			}
		}
		for _, rc := range routes {
			label := escape(displayPath(rc.Path))
			if rc.RedirectTo != "" {
				redirects++
				id := fmt.Sprintf("redirect_%d", redirects)
				fmt.Fprintf(&sb, "    %s{{\"%s\"}}\n", id, escape(displayPath(rc.RedirectTo)))
				fmt.Fprintf(&sb, "    %s -. \"%s\" .-> %s\n", owner, label, id)
				continue
			}
			if rc.Component != "" {
				fmt.Fprintf(&sb, "    %s -- \"%s\" --> %s\n", owner, label, componentID(rc.Component))
			}
		}
	}

	writeContext("root", m.Viewports, m.Routes)
	for _, def := range m.Components {
		id := componentID(def.Name)
		label := escape(def.Name)
		if def.Title != "" {
			label = fmt.Sprintf("%s <br/> %s", label, escape(def.Title))
		}
		fmt.Fprintf(&sb, "    %s[\"%s\"]\n", id, label)
		writeContext(id, def.Viewports, def.Routes)
	}

	if overlay != nil {
		sb.WriteString("\n    %% Overlay Styles\n")
		// Force black text (color:#000) for contrast on light and dark themes.
		sb.WriteString("    classDef active fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef current fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")

		seen := make(map[string]bool)
		for _, name := range overlay.Active {
			if name == "" || seen[name] || name == overlay.Current {
				continue
			}
			seen[name] = true
			fmt.Fprintf(&sb, "    class %s active;\n", componentID(name))
		}
		if overlay.Current != "" {
			fmt.Fprintf(&sb, "    class %s current;\n", componentID(overlay.Current))
		}
	}

	return sb.String()
}

func componentID(name string) string {
	return "c_" + sanitizeMermaidID(name)
}

func viewportID(owner, name string) string {
	return "vp_" + sanitizeMermaidID(owner) + "_" + sanitizeMermaidID(name)
}

func displayPath(p string) string {
	if p == "" {
		return "/"
	}
	return p
}

func escape(s string) string {
	return strings.ReplaceAll(s, "\"", "'")
}

func sanitizeMermaidID(id string) string {
	return strings.Map(func(r rune) rune {
		if r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r) {
			return r
		}
		return '_'
	}, id)
}
