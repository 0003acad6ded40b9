package registry

import (
	"errors"
	"fmt"
	"reflect"
	"slices"
	"sync"

	"github.com/aretw0/waypoint/pkg/domain"
)

// ErrDuplicateComponent is returned when a name is registered twice.
var ErrDuplicateComponent = errors.New("component already registered")

// Registry manages the available component definitions, indexed by name and by
// Go type.
type Registry struct {
	mu     sync.RWMutex
	byName map[string]*domain.ComponentDefinition
	byType map[reflect.Type]*domain.ComponentDefinition
}

// NewRegistry creates a new empty registry.
func NewRegistry() *Registry {
	return &Registry{
		byName: make(map[string]*domain.ComponentDefinition),
		byType: make(map[reflect.Type]*domain.ComponentDefinition),
	}
}

// Register adds a component definition. Names must be unique.
func (r *Registry) Register(def *domain.ComponentDefinition) error {
	if def == nil || def.Name == "" {
		return fmt.Errorf("register component: definition needs a name")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byName[def.Name]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateComponent, def.Name)
	}
	r.byName[def.Name] = def
	if def.Type != nil {
		r.byType[indirect(def.Type)] = def
	}
	return nil
}

// MustRegister is Register for static setup code.
func (r *Registry) MustRegister(defs ...*domain.ComponentDefinition) *Registry {
	for _, def := range defs {
		if err := r.Register(def); err != nil {
			panic(err)
		}
	}
	return r
}

// Lookup finds a definition by name.
func (r *Registry) Lookup(name string) (*domain.ComponentDefinition, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	def, ok := r.byName[name]
	return def, ok
}

// LookupType finds a definition by Go type; pointer and value types match the
// same definition.
func (r *Registry) LookupType(t reflect.Type) (*domain.ComponentDefinition, bool) {
	if t == nil {
		return nil, false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	def, ok := r.byType[indirect(t)]
	return def, ok
}

// LookupInstance finds the definition for a live component instance.
func (r *Registry) LookupInstance(instance any) (*domain.ComponentDefinition, bool) {
	return r.LookupType(reflect.TypeOf(instance))
}

// Names returns the registered names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.byName))
	for n := range r.byName {
		names = append(names, n)
	}
	slices.Sort(names)
	return names
}

func indirect(t reflect.Type) reflect.Type {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t
}
