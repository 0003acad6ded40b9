package observability

import (
	"context"
	"log/slog"

	"github.com/aretw0/waypoint/pkg/domain"
)

// LogHooks logs every lifecycle event. Completions log at Info, cancels at
// Debug and errors at Error.
func LogHooks(logger *slog.Logger) domain.LifecycleHooks {
	attrs := func(e *domain.NavigationEvent) []any {
		return []any{
			"transition", e.TransitionID,
			"correlation_id", e.CorrelationID,
			"url", e.URL,
			"trigger", e.Trigger,
		}
	}
	return domain.LifecycleHooks{
		OnNavigationStart: func(ctx context.Context, e *domain.NavigationEvent) {
			logger.DebugContext(ctx, "navigation_start", attrs(e)...)
		},
		OnNavigationEnd: func(ctx context.Context, e *domain.NavigationEvent) {
			logger.InfoContext(ctx, "navigation_end", append(attrs(e), "duration", e.Duration)...)
		},
		OnNavigationCancel: func(ctx context.Context, e *domain.NavigationEvent) {
			logger.DebugContext(ctx, "navigation_cancel", append(attrs(e), "reason", e.Reason)...)
		},
		OnNavigationError: func(ctx context.Context, e *domain.NavigationEvent) {
			logger.ErrorContext(ctx, "navigation_error", append(attrs(e), "err", e.Err)...)
		},
		OnViewportSwap: func(ctx context.Context, e *domain.ViewportEvent) {
			logger.DebugContext(ctx, "viewport_swap",
				"transition", e.TransitionID,
				"viewport", e.Viewport,
				"from", e.From,
				"to", e.To,
			)
		},
	}
}
