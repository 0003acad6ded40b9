// Package instruction models navigation requests as trees of viewport
// instructions.
//
// A route string such as "shop/(cart+product(42))@main?ref=home" is parsed by
// package expression and lowered here into ViewportInstructions. Instructions can
// also be built directly from components:
//
//	tree, err := instruction.CreateTree(parser, []any{
//		instruction.Partial{Component: "shop", Children: []any{"cart"}},
//	}, false, domain.NavigationOptions{})
//
// Trees are compared structurally with Equals and Contains and rendered back
// to URLs with ToURL.
package instruction
