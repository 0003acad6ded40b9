package runtime

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/aretw0/waypoint/pkg/adapters/memory"
	"github.com/aretw0/waypoint/pkg/domain"
	"github.com/aretw0/waypoint/pkg/dsl"
	"github.com/stretchr/testify/require"
)

// recorder collects renderer calls and lifecycle events in order.
type recorder struct {
	mu    sync.Mutex
	calls []string
}

func (r *recorder) add(format string, args ...any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, fmt.Sprintf(format, args...))
}

func (r *recorder) all() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.calls...)
}

func (r *recorder) reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = nil
}

func (r *recorder) Attach(_ context.Context, viewport string, component any) error {
	r.add("attach %s %s", viewport, nameOf(component))
	return nil
}

func (r *recorder) Detach(_ context.Context, viewport string, component any) error {
	r.add("detach %s %s", viewport, nameOf(component))
	return nil
}

func nameOf(c any) string {
	if i, ok := c.(*dsl.Instance); ok {
		return fmt.Sprintf("%s#%d", i.Name, i.Seq)
	}
	return fmt.Sprintf("%T", c)
}

type fixture struct {
	t       *testing.T
	builder *dsl.Builder
	history *memory.History
	render  *recorder
	events  *recorder
	router  *Router
}

// newFixture builds a router from a DSL setup wired to an in-memory history.
func newFixture(t *testing.T, setup func(b *dsl.Builder), opts ...Option) *fixture {
	t.Helper()
	b := dsl.New()
	setup(b)
	reg, err := b.Build()
	require.NoError(t, err)

	f := &fixture{
		t:       t,
		builder: b,
		history: memory.NewHistory("/"),
		render:  &recorder{},
		events:  &recorder{},
	}
	hooks := domain.LifecycleHooks{
		OnNavigationStart:  func(_ context.Context, e *domain.NavigationEvent) { f.events.add("start %s", e.URL) },
		OnNavigationEnd:    func(_ context.Context, e *domain.NavigationEvent) { f.events.add("end %s", e.URL) },
		OnNavigationCancel: func(_ context.Context, e *domain.NavigationEvent) { f.events.add("cancel %s %s", e.URL, e.Reason) },
		OnNavigationError:  func(_ context.Context, e *domain.NavigationEvent) { f.events.add("error %s", e.URL) },
		OnViewportSwap: func(_ context.Context, e *domain.ViewportEvent) {
			f.events.add("swap %s %s>%s", e.Viewport, e.From, e.To)
		},
	}
	all := append([]Option{
		WithViewports(b.Viewports()...),
		WithRoutes(b.Routes()...),
		WithLocation(f.history),
		WithRenderer(f.render),
		WithLifecycleHooks(hooks),
	}, opts...)
	r, err := NewRouter(reg, all...)
	require.NoError(t, err)
	t.Cleanup(r.Stop)
	f.router = r
	return f
}

// start subscribes the router to the fixture history and loads its entry.
func (f *fixture) start() {
	f.t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_, err := f.router.Start(ctx)
	require.NoError(f.t, err)
}

func (f *fixture) load(target any, opts ...domain.NavigationOption) (bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return f.router.Load(ctx, target, opts...)
}

func (f *fixture) mustLoad(target any, opts ...domain.NavigationOption) {
	f.t.Helper()
	ok, err := f.load(target, opts...)
	require.NoError(f.t, err)
	require.True(f.t, ok, "navigation to %v did not commit", target)
}

func (f *fixture) waitIdle() {
	f.t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(f.t, f.router.WaitIdle(ctx))
}

// instance returns the component instance shown at a viewport path.
func (f *fixture) instance(path string) *dsl.Instance {
	f.t.Helper()
	rc := f.router.Root()
	var vp *Viewport
	for i, name := range splitPath(path) {
		if i > 0 {
			require.NotNil(f.t, vp.content, "no content above %s", name)
			rc = vp.content.children
			require.NotNil(f.t, rc, "no child context above %s", name)
		}
		vp = rc.Viewport(name)
		require.NotNil(f.t, vp, "no viewport %s", name)
	}
	if vp.content == nil {
		return nil
	}
	inst, _ := vp.content.Component.(*dsl.Instance)
	return inst
}
