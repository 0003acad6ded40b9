package ports

import (
	"context"

	"github.com/aretw0/waypoint/pkg/domain"
)

// Location abstracts the URL bar and its history stack.
type Location interface {
	// Path returns the current URL.
	Path() string

	// PushState adds a new history entry.
	PushState(state map[string]any, title, url string) error

	// ReplaceState overwrites the current history entry.
	ReplaceState(state map[string]any, title, url string) error

	// Subscribe registers fn for URL changes made outside the router.
	// The returned function removes the subscription.
	Subscribe(fn func(domain.LocationChangeEvent)) (unsubscribe func())
}

// Renderer attaches component instances to viewports. It is called when
// content is activated and deactivated.
type Renderer interface {
	Attach(ctx context.Context, viewport string, component any) error
	Detach(ctx context.Context, viewport string, component any) error
}

// NopRenderer renders nothing.
type NopRenderer struct{}

func (NopRenderer) Attach(context.Context, string, any) error { return nil }
func (NopRenderer) Detach(context.Context, string, any) error { return nil }
