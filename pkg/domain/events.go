package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventNavigationStart  EventType = "navigation_start"
	EventNavigationEnd    EventType = "navigation_end"
	EventNavigationCancel EventType = "navigation_cancel"
	EventNavigationError  EventType = "navigation_error"
	EventViewportSwap     EventType = "viewport_swap"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp     time.Time `json:"timestamp"`
	Type          EventType `json:"type"`
	TransitionID  uint64    `json:"transition_id"`
	CorrelationID string    `json:"correlation_id"`
}

// NavigationEvent describes a transition reaching one of its lifecycle points.
type NavigationEvent struct {
	EventBase
	URL      string        `json:"url"`
	Trigger  Trigger       `json:"trigger"`
	Reason   string        `json:"reason,omitempty"`
	Err      error         `json:"-"`
	Duration time.Duration `json:"duration,omitempty"`
}

// ViewportEvent describes a viewport changing its component.
type ViewportEvent struct {
	EventBase
	Viewport string `json:"viewport"`
	From     string `json:"from,omitempty"`
	To       string `json:"to,omitempty"`
}

// LifecycleHooks defines callbacks for router observability.
// Hooks run synchronously on the transition goroutine and must not block.
type LifecycleHooks struct {
	OnNavigationStart  func(context.Context, *NavigationEvent)
	OnNavigationEnd    func(context.Context, *NavigationEvent)
	OnNavigationCancel func(context.Context, *NavigationEvent)
	OnNavigationError  func(context.Context, *NavigationEvent)
	OnViewportSwap     func(context.Context, *ViewportEvent)
}

// MergeHooks combines hook sets; each callback fires in argument order.
func MergeHooks(sets ...LifecycleHooks) LifecycleHooks {
	var out LifecycleHooks
	for _, s := range sets {
		out.OnNavigationStart = chainNav(out.OnNavigationStart, s.OnNavigationStart)
		out.OnNavigationEnd = chainNav(out.OnNavigationEnd, s.OnNavigationEnd)
		out.OnNavigationCancel = chainNav(out.OnNavigationCancel, s.OnNavigationCancel)
		out.OnNavigationError = chainNav(out.OnNavigationError, s.OnNavigationError)
		out.OnViewportSwap = chainViewport(out.OnViewportSwap, s.OnViewportSwap)
	}
	return out
}

func chainNav(a, b func(context.Context, *NavigationEvent)) func(context.Context, *NavigationEvent) {
	switch {
	case a == nil:
		return b
	case b == nil:
		return a
	}
	return func(ctx context.Context, e *NavigationEvent) {
		a(ctx, e)
		b(ctx, e)
	}
}

func chainViewport(a, b func(context.Context, *ViewportEvent)) func(context.Context, *ViewportEvent) {
	switch {
	case a == nil:
		return b
	case b == nil:
		return a
	}
	return func(ctx context.Context, e *ViewportEvent) {
		a(ctx, e)
		b(ctx, e)
	}
}
