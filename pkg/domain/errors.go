package domain

import "errors"

// ErrSessionNotFound is returned when a session ID cannot be found in the store.
var ErrSessionNotFound = errors.New("session not found")

var (
	// ErrUnknownComponent is returned when an instruction names a component that is
	// neither configured as a route nor registered.
	ErrUnknownComponent = errors.New("unknown component")

	// ErrUnknownRoute is returned in configured-only routing mode when no configured
	// route matches an instruction.
	ErrUnknownRoute = errors.New("no configured route matches")

	// ErrUnknownViewport is returned when an instruction targets a viewport name
	// that the route context does not declare.
	ErrUnknownViewport = errors.New("unknown viewport")

	// ErrNoAvailableViewport is returned when every viewport of a route context is
	// already claimed by another instruction in the same navigation.
	ErrNoAvailableViewport = errors.New("no available viewport")

	// ErrRedirectLoop is returned when configured redirects do not settle.
	ErrRedirectLoop = errors.New("too many redirects")

	// ErrRouterStopped is returned when a navigation is requested after Stop.
	ErrRouterStopped = errors.New("router stopped")
)
