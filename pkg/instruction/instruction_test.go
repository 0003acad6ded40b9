package instruction_test

import (
	"context"
	"reflect"
	"testing"

	"github.com/aretw0/waypoint/pkg/domain"
	"github.com/aretw0/waypoint/pkg/expression"
	"github.com/aretw0/waypoint/pkg/instruction"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type widget struct{ n int }

func tree(t *testing.T, s string) *instruction.Tree {
	t.Helper()
	tr, err := instruction.CreateTree(expression.NewParser(), s, false, domain.NavigationOptions{})
	require.NoError(t, err)
	return tr
}

func TestNewComponent_Kinds(t *testing.T) {
	def := &domain.ComponentDefinition{Name: "home"}
	var deferred domain.Deferred = func(context.Context) (*domain.ComponentDefinition, error) { return def, nil }
	w := &widget{}
	vi := &instruction.ViewportInstruction{Component: instruction.MustComponent("inner")}

	tests := []struct {
		input any
		kind  instruction.Kind
		name  string
	}{
		{"home", instruction.KindName, "home"},
		{reflect.TypeOf(widget{}), instruction.KindType, "widget"},
		{def, instruction.KindDefinition, "home"},
		{deferred, instruction.KindDeferred, ""},
		{w, instruction.KindInstance, "widget"},
		{vi, instruction.KindInstruction, "inner"},
	}
	for _, tc := range tests {
		t.Run(tc.kind.String(), func(t *testing.T) {
			c, err := instruction.NewComponent(tc.input)
			require.NoError(t, err)
			assert.Equal(t, tc.kind, c.Kind())
			assert.Equal(t, tc.name, c.Name())
		})
	}
}

func TestNewComponent_RejectsUnsupported(t *testing.T) {
	var nilDef *domain.ComponentDefinition
	for _, input := range []any{nil, "", 42, widget{}, nilDef, []string{"a"}} {
		_, err := instruction.NewComponent(input)
		assert.ErrorIs(t, err, instruction.ErrInvalidComponent, "%#v", input)
	}
}

func TestComponent_EqualByIdentity(t *testing.T) {
	a, b := &widget{}, &widget{}
	assert.True(t, instruction.MustComponent(a).Equal(instruction.MustComponent(a)))
	assert.False(t, instruction.MustComponent(a).Equal(instruction.MustComponent(b)))
	assert.False(t, instruction.MustComponent("widget").Equal(instruction.MustComponent(a)))
}

func TestViewportInstruction_EqualsIsSymmetric(t *testing.T) {
	pairs := [][2]string{
		{"a/b", "a/b"},
		{"a/b", "a/c"},
		{"a(1)", "a(1)"},
		{"a(1)", "a(2)"},
		{"a@x", "a@y"},
		{"a/(b+c)", "a/(b+c)"},
		{"a/(b+c)", "a/b"},
	}
	for _, p := range pairs {
		x, y := tree(t, p[0]), tree(t, p[1])
		assert.Equal(t, x.Equals(y), y.Equals(x), "%s vs %s", p[0], p[1])
		assert.Equal(t, p[0] == p[1], x.Equals(y), "%s vs %s", p[0], p[1])
	}
}

func TestViewportInstruction_Contains(t *testing.T) {
	full := tree(t, "a/(b+c)")

	assert.True(t, full.Contains(tree(t, "a")))
	assert.True(t, full.Contains(tree(t, "a/b")))
	assert.False(t, full.Contains(tree(t, "a/c")), "children are compared positionally")
	assert.False(t, tree(t, "a").Contains(full))

	// Every tree contains itself.
	for _, s := range []string{"a", "a/b", "a+b", "a/(b+c)/d"} {
		x := tree(t, s)
		assert.True(t, x.Contains(x), s)
	}

	// An unnamed viewport matches any viewport.
	assert.True(t, tree(t, "a@main").Contains(tree(t, "a")))
	assert.False(t, tree(t, "a@main").Contains(tree(t, "a@side")))
}

func TestViewportInstruction_Clone(t *testing.T) {
	orig := tree(t, "a(id=1)/b")
	clone := orig.Clone()
	require.True(t, orig.Equals(clone))

	clone.Children[0].Params["id"] = "2"
	clone.Children[0].Children = nil
	assert.Equal(t, "1", orig.Children[0].Params["id"])
	assert.Len(t, orig.Children[0].Children, 1)
	assert.True(t, orig.Children[0].Component.Equal(clone.Children[0].Component))
}

func TestTree_ToURL(t *testing.T) {
	tests := map[string]string{
		"a":                   "/a",
		"/a/b":                "/a/b",
		"a+b@side":            "/a+b@side",
		"a/(b+c)/d":           "/a/(b+c)/d",
		"(a/b)+c":             "/(a/b)+c",
		"a(42,k=v)":           "/a(42,k=v)",
		"a?z=1&b=2#top":       "/a?b=2&z=1#top",
		"a(x=1%2E5)":          "/a(x=1%2E5)",
		"shop/product(id=7)":  "/shop/product(id=7)",
		"a/b/c+d":             "/a/b/c+d",
		"a!/b":                "/a+b",
		"a/(b+c)@vp":          "/a/(b+c)",
		"+a":                  "/a",
		"":                    "/",
	}
	for in, want := range tests {
		t.Run(in, func(t *testing.T) {
			tr := tree(t, in)
			assert.Equal(t, want, tr.ToURL())

			again := tree(t, tr.ToURL())
			assert.True(t, tr.Equals(again), "round trip of %s", tr.ToURL())
		})
	}
}

func TestTree_ProgrammaticSiblingsAreGrouped(t *testing.T) {
	tr, err := instruction.CreateTree(expression.NewParser(), []any{
		instruction.Partial{Component: "a", Children: []any{"b", "c"}},
	}, false, domain.NavigationOptions{})
	require.NoError(t, err)
	assert.Equal(t, "/a/(b+c)", tr.ToURL())
}

func TestFromExpression_UnscopedSegmentEndsScope(t *testing.T) {
	expr, err := expression.Parse("a!/b/c", false)
	require.NoError(t, err)
	instrs, err := instruction.FromExpression(expr)
	require.NoError(t, err)

	require.Len(t, instrs, 2)
	assert.Equal(t, "a", instrs[0].Component.Name())
	assert.Empty(t, instrs[0].Children)
	assert.Equal(t, "b", instrs[1].Component.Name())
	require.Len(t, instrs[1].Children, 1)
	assert.Equal(t, "c", instrs[1].Children[0].Component.Name())
}

func TestFromExpression_ScopedSegmentNests(t *testing.T) {
	expr, err := expression.Parse("a/b", false)
	require.NoError(t, err)
	instrs, err := instruction.FromExpression(expr)
	require.NoError(t, err)

	require.Len(t, instrs, 1)
	require.Len(t, instrs[0].Children, 1)
	assert.Equal(t, "b", instrs[0].Children[0].Component.Name())
}

func TestFromExpression_GroupViewportStaysOnGroup(t *testing.T) {
	expr, err := expression.Parse("a/(b+c@x)@vp", false)
	require.NoError(t, err)
	instrs, err := instruction.FromExpression(expr)
	require.NoError(t, err)

	require.Len(t, instrs, 1)
	children := instrs[0].Children
	require.Len(t, children, 2)
	assert.Empty(t, children[0].Viewport)
	assert.Equal(t, "x", children[1].Viewport)

	expr, err = expression.Parse("a/(b+c)@vp", false)
	require.NoError(t, err)
	instrs, err = instruction.FromExpression(expr)
	require.NoError(t, err)
	require.Len(t, instrs[0].Children, 2)
	assert.Empty(t, instrs[0].Children[1].Viewport, "c does not inherit the group viewport")
}

func TestCreateTree_Append(t *testing.T) {
	assert.True(t, tree(t, "+a+b").Append())
	assert.False(t, tree(t, "a+b").Append())
}

func TestCreateTree_RejectsInvalidInput(t *testing.T) {
	_, err := instruction.CreateTree(expression.NewParser(), 3.14, false, domain.NavigationOptions{})
	assert.ErrorIs(t, err, instruction.ErrInvalidComponent)

	_, err = instruction.CreateTree(expression.NewParser(), "a(", false, domain.NavigationOptions{})
	assert.ErrorIs(t, err, expression.ErrParse)
}

func TestTree_ApplyStrategies(t *testing.T) {
	current := tree(t, "a?x=1#frag")

	next := tree(t, "b?y=2")
	next.ApplyStrategies(current, domain.QueryMerge, domain.FragmentPreserve)
	assert.Equal(t, "1", next.QueryParams.Get("x"))
	assert.Equal(t, "2", next.QueryParams.Get("y"))
	assert.Equal(t, "frag", next.Fragment)

	next = tree(t, "b?y=2")
	next.ApplyStrategies(current, domain.QueryPreserve, domain.FragmentOverwrite)
	assert.Equal(t, "x=1", next.QueryParams.Encode())
	assert.Empty(t, next.Fragment)

	next = tree(t, "b?y=2")
	next.ApplyStrategies(current, domain.QueryOverwrite, domain.FragmentOverwrite)
	assert.Equal(t, "y=2", next.QueryParams.Encode())
}

func TestParams_String(t *testing.T) {
	assert.Equal(t, "", instruction.Params(nil).String())
	assert.Equal(t, "(a,b,k=v,z=1)", instruction.Params{"0": "a", "1": "b", "z": "1", "k": "v"}.String())
	assert.Equal(t, "(2=x)", instruction.Params{"2": "x"}.String())
	assert.Equal(t, "(q=a%2Bb)", instruction.Params{"q": "a+b"}.String())
}

func TestTree_Outline(t *testing.T) {
	out := tree(t, "a@main/(b+c(id=7))").Outline()
	require.Len(t, out, 1)
	assert.Equal(t, "a", out[0].Component)
	assert.Equal(t, "name", out[0].Kind)
	assert.Equal(t, "main", out[0].Viewport)
	require.Len(t, out[0].Children, 2)
	assert.Equal(t, "b", out[0].Children[0].Component)
	assert.Equal(t, instruction.Params{"id": "7"}, out[0].Children[1].Params)

	assert.Nil(t, tree(t, "").Outline())
}

func TestDescribe(t *testing.T) {
	d, err := instruction.Describe(expression.NewParser(), "+a(1)+b?q=x#top", false)
	require.NoError(t, err)
	assert.Equal(t, "/a(1)+b?q=x#top", d.URL)
	assert.True(t, d.Append)
	assert.Equal(t, "x", d.QueryParams.Get("q"))
	assert.Equal(t, "top", d.Fragment)
	assert.Equal(t, instruction.Params{"0": "1"}, d.Instructions[0].Params)

	_, err = instruction.Describe(expression.NewParser(), "a(", false)
	assert.ErrorIs(t, err, expression.ErrParse)
}
