package waypoint_test

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/aretw0/waypoint"
	"github.com/aretw0/waypoint/pkg/adapters/memory"
	"github.com/aretw0/waypoint/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const appYAML = `
router:
  title: Mail
viewports:
  - name: main
    default: inbox
  - name: side
routes:
  - path: admin
    component: admin
components:
  - name: inbox
    title: Inbox
  - name: message
    title: Message
  - name: admin
    guard:
      redirect_to: inbox
      require_params: [token]
`

func testCtx(t *testing.T) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)
	return ctx
}

func TestFromConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.yaml")
	require.NoError(t, os.WriteFile(path, []byte(appYAML), 0o644))

	var mu sync.Mutex
	var ended []string
	app, err := waypoint.FromConfig(path, waypoint.WithName("mail"), waypoint.WithLifecycleHooks(domain.LifecycleHooks{
		OnNavigationEnd: func(_ context.Context, e *domain.NavigationEvent) {
			mu.Lock()
			ended = append(ended, e.URL)
			mu.Unlock()
		},
	}))
	require.NoError(t, err)
	assert.Equal(t, "Mail", app.Options().Title)
	assert.Equal(t, domain.HistoryPush, app.Options().HistoryStrategy)

	history := memory.NewHistory("")
	router, err := app.NewRouter(history)
	require.NoError(t, err)
	t.Cleanup(router.Stop)
	ctx := testCtx(t)

	_, err = router.Start(ctx)
	require.NoError(t, err)
	require.NotNil(t, router.RouteTree().Find("main"))
	assert.Equal(t, "inbox", router.RouteTree().Find("main").Component)

	ok, err := router.Load(ctx, "inbox@main+message(3)@side")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "/inbox@main+message(3)@side", history.Path())
	assert.Equal(t, "Inbox | Message | Mail", history.Title())

	// The guard sends token-less admin visits back to the inbox.
	_, err = router.Load(ctx, "admin")
	require.NoError(t, err)
	assert.Equal(t, "inbox", router.RouteTree().Find("main").Component)

	mu.Lock()
	defer mu.Unlock()
	assert.NotEmpty(t, ended)
}

func TestFromConfig_Missing(t *testing.T) {
	_, err := waypoint.FromConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestApp_Guards(t *testing.T) {
	app, err := waypoint.FromBuilder(shop(), waypoint.WithGuards(func(_ context.Context, nav *domain.NavigationContext) (domain.GuardResult, error) {
		if nav.Params["id"] == "0" {
			return domain.Deny(), nil
		}
		return domain.Allow(), nil
	}))
	require.NoError(t, err)

	sessions := app.Sessions(memory.NewStore())
	t.Cleanup(sessions.Close)
	ctx := testCtx(t)

	snap, err := sessions.Navigate(ctx, "s", "products/0")
	require.NoError(t, err)
	assert.False(t, snap.Navigated)
	assert.Equal(t, "/", snap.URL)

	snap, err = sessions.Navigate(ctx, "s", "products/1")
	require.NoError(t, err)
	assert.True(t, snap.Navigated)
	assert.Same(t, app.Parser(), app.Parser())
}
