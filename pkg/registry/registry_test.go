package registry_test

import (
	"reflect"
	"testing"

	"github.com/aretw0/waypoint/pkg/domain"
	"github.com/aretw0/waypoint/pkg/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type profilePage struct{}

func TestRegistry_LookupByNameAndType(t *testing.T) {
	r := registry.NewRegistry()
	def := &domain.ComponentDefinition{Name: "profile", Type: reflect.TypeOf(&profilePage{})}
	require.NoError(t, r.Register(def))

	got, ok := r.Lookup("profile")
	require.True(t, ok)
	assert.Same(t, def, got)

	got, ok = r.LookupType(reflect.TypeOf(profilePage{}))
	require.True(t, ok)
	assert.Same(t, def, got)

	got, ok = r.LookupInstance(&profilePage{})
	require.True(t, ok)
	assert.Same(t, def, got)

	_, ok = r.Lookup("missing")
	assert.False(t, ok)
}

func TestRegistry_RejectsDuplicatesAndNamelessDefinitions(t *testing.T) {
	r := registry.NewRegistry()
	require.NoError(t, r.Register(&domain.ComponentDefinition{Name: "a"}))

	err := r.Register(&domain.ComponentDefinition{Name: "a"})
	assert.ErrorIs(t, err, registry.ErrDuplicateComponent)
	assert.Error(t, r.Register(&domain.ComponentDefinition{}))
	assert.Error(t, r.Register(nil))
}

func TestRegistry_Names(t *testing.T) {
	r := registry.NewRegistry().MustRegister(
		&domain.ComponentDefinition{Name: "zeta"},
		&domain.ComponentDefinition{Name: "alpha"},
	)
	assert.Equal(t, []string{"alpha", "zeta"}, r.Names())
}
