package session_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/aretw0/waypoint/internal/runtime"
	"github.com/aretw0/waypoint/pkg/adapters/memory"
	"github.com/aretw0/waypoint/pkg/adapters/redis"
	"github.com/aretw0/waypoint/pkg/domain"
	"github.com/aretw0/waypoint/pkg/dsl"
	"github.com/aretw0/waypoint/pkg/ports"
	"github.com/aretw0/waypoint/pkg/session"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func shopFactory(t *testing.T) session.RouterFactory {
	t.Helper()
	b := dsl.New()
	b.Route("", "home").Route("products/:id", "product")
	b.Component("home").Title("Home")
	b.Component("product").Title("Product")
	b.Component("locked").CanLoad(func(context.Context, *domain.NavigationContext) (domain.GuardResult, error) {
		return domain.Deny(), nil
	})
	reg, err := b.Build()
	require.NoError(t, err)

	return func(loc ports.Location) (*runtime.Router, error) {
		return runtime.NewRouter(reg,
			runtime.WithViewports(b.Viewports()...),
			runtime.WithRoutes(b.Routes()...),
			runtime.WithLocation(loc),
		)
	}
}

func newManager(t *testing.T, store ports.StateStore, opts ...session.Option) *session.Manager {
	t.Helper()
	m := session.NewManager(store, shopFactory(t), opts...)
	t.Cleanup(m.Close)
	return m
}

func testCtx(t *testing.T) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)
	return ctx
}

func TestManager_NavigateBackForward(t *testing.T) {
	m := newManager(t, memory.NewStore())
	ctx := testCtx(t)

	snap, err := m.Navigate(ctx, "s1", "products/42")
	require.NoError(t, err)
	assert.True(t, snap.Navigated)
	assert.Equal(t, "/products/42", snap.URL)
	assert.Equal(t, 1, snap.Index)
	assert.Equal(t, 2, snap.Length)
	require.Len(t, snap.RouteTree.Nodes, 1)
	assert.Equal(t, "product", snap.RouteTree.Nodes[0].Component)
	assert.Equal(t, "42", snap.RouteTree.Nodes[0].Params["id"])

	snap, err = m.Back(ctx, "s1")
	require.NoError(t, err)
	assert.True(t, snap.Navigated)
	assert.Equal(t, "/", snap.URL)
	assert.Equal(t, 0, snap.Index)
	assert.Equal(t, "home", snap.RouteTree.Nodes[0].Component)

	snap, err = m.Back(ctx, "s1")
	require.NoError(t, err)
	assert.False(t, snap.Navigated)

	snap, err = m.Forward(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "/products/42", snap.URL)
	assert.Equal(t, "product", snap.RouteTree.Nodes[0].Component)
}

func TestManager_RestoresFromStore(t *testing.T) {
	store := memory.NewStore()
	m := newManager(t, store)
	ctx := testCtx(t)

	_, err := m.Navigate(ctx, "s1", "products/7")
	require.NoError(t, err)
	require.NoError(t, m.SetContext(ctx, "s1", "cart", "3 items"))

	st, err := store.Load(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "/products/7", st.URL())
	assert.Equal(t, "3 items", st.Context["cart"])

	// A second manager over the same store plays another replica.
	other := newManager(t, store)
	snap, err := other.State(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "/products/7", snap.URL)
	assert.Equal(t, 2, snap.Length)
	assert.Equal(t, "7", snap.RouteTree.Nodes[0].Params["id"])

	snap, err = other.Back(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "home", snap.RouteTree.Nodes[0].Component)

	st, err = store.Load(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, 0, st.Index)
	assert.Equal(t, "3 items", st.Context["cart"])
}

func TestManager_DeniedNavigationKeepsLocation(t *testing.T) {
	m := newManager(t, memory.NewStore())
	ctx := testCtx(t)

	_, err := m.Navigate(ctx, "s1", "products/1")
	require.NoError(t, err)

	snap, err := m.Navigate(ctx, "s1", "locked")
	require.NoError(t, err)
	assert.False(t, snap.Navigated)
	assert.Equal(t, "/products/1", snap.URL)
}

func TestManager_UnknownSession(t *testing.T) {
	m := newManager(t, memory.NewStore())
	ctx := testCtx(t)

	_, err := m.State(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	_, err = m.Back(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestManager_CreateAndDelete(t *testing.T) {
	store := memory.NewStore()
	m := newManager(t, store)
	ctx := testCtx(t)

	snap, err := m.Create(ctx, "products/9")
	require.NoError(t, err)
	require.NotEmpty(t, snap.SessionID)
	assert.True(t, snap.Navigated)
	assert.Equal(t, "/products/9", snap.URL)

	ids, err := m.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{snap.SessionID}, ids)

	require.NoError(t, m.Delete(ctx, snap.SessionID))
	_, err = m.Load(ctx, snap.SessionID)
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestManager_ConcurrentNavigations(t *testing.T) {
	m := newManager(t, memory.NewStore())
	ctx := testCtx(t)

	var wg sync.WaitGroup
	for _, target := range []string{"products/1", "products/2", "products/3", "products/4"} {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := m.Navigate(ctx, "shared", target)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	// Navigations are serialized: the initial entry plus one push each.
	snap, err := m.State(ctx, "shared")
	require.NoError(t, err)
	assert.Equal(t, 5, snap.Length)
}

func TestManager_DistributedLocker(t *testing.T) {
	mr := miniredis.RunT(t)
	client := backend.NewClient(&backend.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	store := redis.NewFromClient(client)
	m := newManager(t, store, session.WithLocker(redis.NewLocker(client, "")), session.WithLockTTL(time.Second))
	ctx := testCtx(t)

	snap, err := m.Navigate(ctx, "s1", "products/5")
	require.NoError(t, err)
	assert.Equal(t, "/products/5", snap.URL)

	st, err := store.Load(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "/products/5", st.URL())
	assert.False(t, mr.Exists("lock:s1"), "lock must be released after the operation")
}
