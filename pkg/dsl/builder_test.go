package dsl

import (
	"context"
	"errors"
	"testing"

	"github.com/aretw0/waypoint/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuilder_Definitions(t *testing.T) {
	b := New()
	b.Viewport("main").Viewport("side", Stateful(), UsedBy("chat"))
	b.Route("", "home").Redirect("old", "home")

	b.Component("home").Title("Home").Viewport("content", Default("welcome"))
	b.Component("chat").Reentry(domain.ReentryDisallow)

	reg, err := b.Build()
	require.NoError(t, err)
	assert.Equal(t, []string{"chat", "home"}, reg.Names())

	home, ok := reg.Lookup("home")
	require.True(t, ok)
	assert.Equal(t, "Home", home.Title)
	require.Len(t, home.Viewports, 1)
	assert.Equal(t, "welcome", home.Viewports[0].Default)

	chat, _ := reg.Lookup("chat")
	assert.Equal(t, domain.ReentryDisallow, chat.Reentry)

	require.Len(t, b.Viewports(), 2)
	assert.True(t, b.Viewports()[1].Stateful)
	assert.Equal(t, []string{"chat"}, b.Viewports()[1].UsedBy)
	assert.Equal(t, "home", b.Routes()[1].RedirectTo)
}

func TestBuilder_DefaultViewport(t *testing.T) {
	assert.Equal(t, []domain.ViewportOptions{{Name: "default"}}, New().Viewports())
}

func TestBuilder_ComponentIsReused(t *testing.T) {
	b := New()
	assert.Same(t, b.Component("x"), b.Component("x"))
}

func TestInstance_DelegatesHooks(t *testing.T) {
	ctx := context.Background()
	b := New()
	boom := errors.New("boom")
	cb := b.Component("form").
		CanUnload(func(context.Context, *domain.NavigationContext) (bool, error) { return false, nil }).
		OnLoad(func(_ context.Context, nav *domain.NavigationContext) error {
			if nav.Params["fail"] == "1" {
				return boom
			}
			return nil
		}).
		Declares("tabs")

	def := cb.Definition()
	v, err := def.Factory(ctx)
	require.NoError(t, err)
	inst := v.(*Instance)
	assert.Equal(t, int64(1), inst.Seq)
	assert.Equal(t, int64(1), cb.Instances())

	ok, err := inst.CanUnload(ctx, nil)
	require.NoError(t, err)
	assert.False(t, ok)

	res, err := inst.CanLoad(ctx, &domain.NavigationContext{})
	require.NoError(t, err)
	assert.True(t, res.Allow)

	nav := &domain.NavigationContext{Params: map[string]string{"fail": "0"}}
	require.NoError(t, inst.Load(ctx, nav))
	assert.Same(t, nav, inst.Nav)
	assert.ErrorIs(t, inst.Load(ctx, &domain.NavigationContext{Params: map[string]string{"fail": "1"}}), boom)

	assert.Equal(t, "tabs", inst.Viewports()[0].Name)
}
