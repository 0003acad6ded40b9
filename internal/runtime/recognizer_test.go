package runtime

import (
	"testing"

	"github.com/aretw0/waypoint/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecognizer(t *testing.T) {
	rec, err := newRecognizer([]domain.RouteConfig{
		{Path: "", Component: "home"},
		{Path: "users", Component: "users"},
		{Path: "users/me", Component: "profile"},
		{Path: "users/:id", Component: "user"},
		{Path: "users/:id/posts", Component: "posts"},
		{Path: "files/*path", Component: "files"},
	})
	require.NoError(t, err)
	require.NotNil(t, rec.empty)
	assert.Equal(t, "home", rec.empty.Component)

	tests := []struct {
		segments  []string
		component string
		params    map[string]string
		consumed  int
	}{
		{[]string{"users"}, "users", map[string]string{}, 1},
		{[]string{"users", "me"}, "profile", map[string]string{}, 2},
		{[]string{"users", "42"}, "user", map[string]string{"id": "42"}, 2},
		{[]string{"users", "42", "posts"}, "posts", map[string]string{"id": "42"}, 3},
		{[]string{"users", "42", "extra"}, "user", map[string]string{"id": "42"}, 2},
		{[]string{"files", "a", "b.txt"}, "files", map[string]string{"path": "a/b.txt"}, 3},
	}
	for _, tt := range tests {
		m, ok := rec.recognize(tt.segments)
		require.True(t, ok, "%v", tt.segments)
		assert.Equal(t, tt.component, m.route.Component, "%v", tt.segments)
		assert.Equal(t, tt.params, m.params, "%v", tt.segments)
		assert.Equal(t, tt.consumed, m.consumed, "%v", tt.segments)
	}

	_, ok := rec.recognize([]string{"nothing"})
	assert.False(t, ok)
	_, ok = rec.recognize(nil)
	assert.False(t, ok)
}

func TestRecognizer_RejectsBadRoutes(t *testing.T) {
	for name, routes := range map[string][]domain.RouteConfig{
		"duplicate":       {{Path: "a", Component: "x"}, {Path: "/a/", Component: "y"}},
		"param conflict":  {{Path: "a/:id", Component: "x"}, {Path: "a/:key/b", Component: "y"}},
		"catch-all":       {{Path: "a/*rest/b", Component: "x"}},
		"no target":       {{Path: "a"}},
		"duplicate empty": {{Path: "", Component: "x"}, {Path: "/", Component: "y"}},
	} {
		_, err := newRecognizer(routes)
		assert.Error(t, err, name)
	}
}
