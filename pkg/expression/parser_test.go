package expression_test

import (
	"errors"
	"sync"
	"testing"

	"github.com/aretw0/waypoint/pkg/expression"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_Shapes(t *testing.T) {
	t.Run("single segment", func(t *testing.T) {
		expr, err := expression.Parse("home", false)
		require.NoError(t, err)

		seg, ok := expr.Root.(*expression.SegmentExpression)
		require.True(t, ok)
		assert.Equal(t, "home", seg.Component.Name)
		assert.True(t, seg.Scoped)
		assert.False(t, expr.IsAbsolute)
	})

	t.Run("scoped children", func(t *testing.T) {
		expr, err := expression.Parse("/a/b/c", false)
		require.NoError(t, err)
		assert.True(t, expr.IsAbsolute)

		scoped, ok := expr.Root.(*expression.ScopedSegmentExpression)
		require.True(t, ok)
		assert.Equal(t, "a", scoped.Left.(*expression.SegmentExpression).Component.Name)
		assert.Equal(t, "b/c", scoped.Right.String())
	})

	t.Run("siblings", func(t *testing.T) {
		expr, err := expression.Parse("a+b@side", false)
		require.NoError(t, err)

		comp, ok := expr.Root.(*expression.CompositeSegmentExpression)
		require.True(t, ok)
		require.Len(t, comp.Siblings, 2)
		assert.False(t, comp.Append)
		b := comp.Siblings[1].(*expression.SegmentExpression)
		assert.Equal(t, "side", b.Viewport.Name)
	})

	t.Run("append prefix keeps single sibling composite", func(t *testing.T) {
		expr, err := expression.Parse("+a", false)
		require.NoError(t, err)

		comp, ok := expr.Root.(*expression.CompositeSegmentExpression)
		require.True(t, ok)
		assert.True(t, comp.Append)
		assert.Len(t, comp.Siblings, 1)
	})

	t.Run("groups", func(t *testing.T) {
		expr, err := expression.Parse("a/(b+c)", false)
		require.NoError(t, err)

		scoped := expr.Root.(*expression.ScopedSegmentExpression)
		group, ok := scoped.Right.(*expression.SegmentGroupExpression)
		require.True(t, ok)
		assert.Equal(t, "(b+c)", group.String())
		assert.Equal(t, expression.KindComposite, group.Expression.Kind())
	})

	t.Run("group viewport", func(t *testing.T) {
		expr, err := expression.Parse("a/(b+c)@vp", false)
		require.NoError(t, err)

		scoped := expr.Root.(*expression.ScopedSegmentExpression)
		group, ok := scoped.Right.(*expression.SegmentGroupExpression)
		require.True(t, ok)
		assert.Equal(t, "(b+c)@vp", group.String())
		require.NotNil(t, group.Viewport)
		assert.Equal(t, "vp", group.Viewport.Name)

		c := group.Expression.(*expression.CompositeSegmentExpression).Siblings[1].(*expression.SegmentExpression)
		assert.Empty(t, c.Viewport.Name)
	})

	t.Run("parameters", func(t *testing.T) {
		expr, err := expression.Parse("product(42,color=red).edit(x=1)@main!", false)
		require.NoError(t, err)

		seg := expr.Root.(*expression.SegmentExpression)
		assert.Equal(t, map[string]string{"0": "42", "color": "red"}, seg.Component.ParameterList.Params())
		assert.Equal(t, "edit", seg.Action.Name)
		assert.Equal(t, map[string]string{"x": "1"}, seg.Action.ParameterList.Params())
		assert.Equal(t, "main", seg.Viewport.Name)
		assert.False(t, seg.Scoped)
	})

	t.Run("dynamic components", func(t *testing.T) {
		expr, err := expression.Parse(":id/*rest", false)
		require.NoError(t, err)

		scoped := expr.Root.(*expression.ScopedSegmentExpression)
		id := scoped.Left.(*expression.SegmentExpression).Component
		rest := scoped.Right.(*expression.SegmentExpression).Component
		assert.True(t, id.IsParameter)
		assert.Equal(t, "id", id.ParameterName)
		assert.True(t, rest.IsStar)
		assert.Equal(t, "rest", rest.ParameterName)
	})
}

func TestParse_QueryAndFragment(t *testing.T) {
	expr, err := expression.Parse("a/b?x=1&y=hello%20world#sec%201", false)
	require.NoError(t, err)

	assert.Equal(t, "a/b", expr.Raw)
	assert.Equal(t, "1", expr.QueryParams.Get("x"))
	assert.Equal(t, "hello world", expr.QueryParams.Get("y"))
	assert.Equal(t, "sec 1", expr.Fragment)
}

func TestParse_KeepsRawQueryAndFragment(t *testing.T) {
	expr, err := expression.Parse("a?z=1&b=2#sec%201", false)
	require.NoError(t, err)

	assert.Equal(t, "z=1&b=2", expr.RawQuery)
	assert.Equal(t, "sec%201", expr.RawFragment)
	assert.Equal(t, "sec 1", expr.Fragment)
	assert.Equal(t, "a?z=1&b=2#sec%201", expr.String())

	built := &expression.RouteExpression{Raw: "a", QueryParams: expr.QueryParams, Fragment: "sec 1"}
	assert.Equal(t, "a?b=2&z=1#sec%201", built.String(), "values without raw text are encoded")
}

func TestParse_FragmentAsRoute(t *testing.T) {
	expr, err := expression.Parse("/ignored#/a/b?q=1", true)
	require.NoError(t, err)

	assert.True(t, expr.FragmentIsRoute)
	assert.Equal(t, "/a/b", expr.Raw)
	assert.Equal(t, "1", expr.QueryParams.Get("q"))
}

func TestParse_Empty(t *testing.T) {
	for _, input := range []string{"", "/", "?x=1"} {
		expr, err := expression.Parse(input, false)
		require.NoError(t, err, input)
		seg, ok := expr.Root.(*expression.SegmentExpression)
		require.True(t, ok)
		assert.True(t, seg.IsEmpty())
	}
}

func TestParse_RoundTrip(t *testing.T) {
	inputs := []string{
		"a",
		"/a/b",
		"a+b",
		"+a+b/c",
		"a/(b+c)/d",
		"(a/b)+c@side",
		"a/(b+c)@vp",
		"(a+b)@vp/c",
		"a!/b",
		"a(1,2)",
		"a(id=1).act(k=v)@vp!",
		":id/*rest",
		"a?x=1",
		"a#frag",
		"a?z=1&b=2",
		"a?x=1&x=2&y",
		"a#sec%201",
		"a?q=hello%20world#top",
	}
	for _, in := range inputs {
		t.Run(in, func(t *testing.T) {
			expr, err := expression.Parse(in, false)
			require.NoError(t, err)
			assert.Equal(t, in, expr.String())

			again, err := expression.Parse(expr.String(), false)
			require.NoError(t, err)
			assert.Equal(t, expr.Raw, again.Raw)
		})
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		input    string
		index    int
		expected string
	}{
		{"a(", 2, "parameter key"},
		{"a)", 1, "end of input"},
		{"(a", 2, `")"`},
		{"a//b", 2, "component name"},
		{"a@", 2, "viewport name"},
		{"a.", 2, "method name"},
		{"(a)@", 4, "viewport name"},
		{"a(k=)", 4, "parameter value"},
		{"+", 1, "component name"},
	}
	for _, tc := range tests {
		t.Run(tc.input, func(t *testing.T) {
			_, err := expression.Parse(tc.input, false)
			require.Error(t, err)
			assert.True(t, errors.Is(err, expression.ErrParse))

			var pe *expression.ParseError
			require.ErrorAs(t, err, &pe)
			assert.Equal(t, tc.index, pe.Index)
			assert.Equal(t, tc.expected, pe.Expected)
			assert.Equal(t, tc.input, pe.Input)
		})
	}
}

func TestParser_CacheIdentity(t *testing.T) {
	p := expression.NewParser()

	first, err := p.Parse("a/b", false)
	require.NoError(t, err)
	second, err := p.Parse("a/b", false)
	require.NoError(t, err)
	assert.Same(t, first, second)

	asFragment, err := p.Parse("a/b", true)
	require.NoError(t, err)
	assert.NotSame(t, first, asFragment)
	assert.Equal(t, 2, p.Len())

	p.Reset()
	assert.Equal(t, 0, p.Len())
	third, err := p.Parse("a/b", false)
	require.NoError(t, err)
	assert.NotSame(t, first, third)
}

func TestParser_ErrorsAreNotCached(t *testing.T) {
	p := expression.NewParser()
	_, err := p.Parse("a(", false)
	require.Error(t, err)
	assert.Equal(t, 0, p.Len())
}

func TestParser_ConcurrentParseSharesResult(t *testing.T) {
	p := expression.NewParser()

	const n = 32
	results := make([]*expression.RouteExpression, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			expr, err := p.Parse("x/y+z", false)
			if err == nil {
				results[i] = expr
			}
		}()
	}
	wg.Wait()

	for _, r := range results {
		assert.Same(t, results[0], r)
	}
}
