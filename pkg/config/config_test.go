package config_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/aretw0/waypoint/pkg/config"
	"github.com/aretw0/waypoint/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const shopYAML = `
router:
  history_strategy: replace
  title: Shop
viewports:
  - name: main
  - name: side
    stateful: true
    used_by: [cart]
routes:
  - path: ""
    component: home
  - path: products/:id
    component: product
  - path: old/:id
    redirect_to: products/:id
components:
  - name: home
    title: Home
  - name: cart
  - name: product
    title: Product
    reentry: load
    viewports:
      - name: tabs
        default: specs
    guard:
      require_params: [id]
      redirect_to: home
  - name: specs
  - name: admin
    guard:
      deny: true
`

func TestParse_YAML(t *testing.T) {
	cfg, err := config.Parse([]byte(shopYAML), "yaml")
	require.NoError(t, err)

	assert.Equal(t, domain.HistoryReplace, cfg.Router.HistoryStrategy)
	require.Len(t, cfg.Viewports, 2)
	assert.True(t, cfg.Viewports[1].Stateful)
	assert.Equal(t, []string{"cart"}, cfg.Viewports[1].UsedBy)
	assert.Equal(t, "products/:id", cfg.Routes[2].RedirectTo)
	assert.Equal(t, domain.ReentryLoad, cfg.Components[2].Reentry)

	app, err := cfg.Build()
	require.NoError(t, err)
	assert.Equal(t, []string{"admin", "cart", "home", "product", "specs"}, app.Registry.Names())
	assert.Equal(t, "Shop", app.Options.Title)
	assert.Equal(t, domain.SameURLIgnore, app.Options.SameURLStrategy, "unset options take defaults")

	product, ok := app.Registry.Lookup("product")
	require.True(t, ok)
	assert.Equal(t, "specs", product.Viewports[0].Default)
}

func TestBuild_Guards(t *testing.T) {
	cfg, err := config.Parse([]byte(shopYAML), "yaml")
	require.NoError(t, err)
	app, err := cfg.Build()
	require.NoError(t, err)
	ctx := context.Background()

	product, _ := app.Registry.Lookup("product")
	inst, err := product.Factory(ctx)
	require.NoError(t, err)
	guard := inst.(domain.CanLoader)

	res, err := guard.CanLoad(ctx, &domain.NavigationContext{Params: map[string]string{"id": "7"}})
	require.NoError(t, err)
	assert.True(t, res.Allow)

	res, err = guard.CanLoad(ctx, &domain.NavigationContext{})
	require.NoError(t, err)
	assert.Equal(t, "home", res.Redirect)

	admin, _ := app.Registry.Lookup("admin")
	inst, err = admin.Factory(ctx)
	require.NoError(t, err)
	res, err = inst.(domain.CanLoader).CanLoad(ctx, &domain.NavigationContext{})
	require.NoError(t, err)
	assert.Equal(t, domain.Deny(), res)
}

func TestLoad_JSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"viewports": [{"name": "main"}],
		"components": [{"name": "home", "guard": {"block_leave": true}}]
	}`), 0o644))

	cfg, err := config.Load(path)
	require.NoError(t, err)
	app, err := cfg.Build()
	require.NoError(t, err)

	home, _ := app.Registry.Lookup("home")
	inst, err := home.Factory(context.Background())
	require.NoError(t, err)
	ok, err := inst.(domain.CanUnloader).CanUnload(context.Background(), nil)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestValidate(t *testing.T) {
	tests := map[string]string{
		"unknown key":       "bogus: 1\n",
		"duplicate":         "components: [{name: a}, {name: a}]\n",
		"unnamed":           "components: [{title: x}]\n",
		"route target":      "routes: [{path: x, component: ghost}]\n",
		"viewport default":  "viewports: [{name: main, default: ghost}]\n",
		"reentry":           "components: [{name: a, reentry: sometimes}]\n",
		"nested route":      "components: [{name: a, routes: [{path: b, component: ghost}]}]\n",
	}
	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := config.Parse([]byte(doc), "yaml")
			assert.ErrorIs(t, err, config.ErrInvalidConfig)
		})
	}

	_, err := config.Parse([]byte("a: ["), "yaml")
	assert.Error(t, err)
	_, err = config.Parse([]byte("{}"), "toml")
	assert.Error(t, err)
}
