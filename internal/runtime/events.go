package runtime

import (
	"time"

	"github.com/aretw0/waypoint/pkg/domain"
)

func (r *Router) navEvent(tr *Transition, typ domain.EventType) *domain.NavigationEvent {
	e := &domain.NavigationEvent{
		EventBase: domain.EventBase{
			Timestamp:     time.Now(),
			Type:          typ,
			TransitionID:  tr.ID,
			CorrelationID: tr.CorrelationID,
		},
		URL:     tr.URL(),
		Trigger: tr.Trigger,
	}
	if !tr.StartedAt.IsZero() {
		e.Duration = time.Since(tr.StartedAt)
	}
	return e
}

func (r *Router) emitStart(tr *Transition) {
	if r.hooks.OnNavigationStart != nil {
		r.hooks.OnNavigationStart(r.ctx, r.navEvent(tr, domain.EventNavigationStart))
	}
}

func (r *Router) emitEnd(tr *Transition) {
	if r.hooks.OnNavigationEnd != nil {
		r.hooks.OnNavigationEnd(r.ctx, r.navEvent(tr, domain.EventNavigationEnd))
	}
}

func (r *Router) emitCancel(tr *Transition, reason string) {
	if r.hooks.OnNavigationCancel != nil {
		e := r.navEvent(tr, domain.EventNavigationCancel)
		e.Reason = reason
		r.hooks.OnNavigationCancel(r.ctx, e)
	}
}

func (r *Router) emitError(tr *Transition, err error) {
	if r.hooks.OnNavigationError != nil {
		e := r.navEvent(tr, domain.EventNavigationError)
		e.Err = err
		e.Reason = err.Error()
		r.hooks.OnNavigationError(r.ctx, e)
	}
}

func (r *Router) emitViewportSwap(tr *Transition, vp *Viewport, from, to *ViewportContent) {
	if r.hooks.OnViewportSwap != nil {
		r.hooks.OnViewportSwap(r.ctx, &domain.ViewportEvent{
			EventBase: domain.EventBase{
				Timestamp:     time.Now(),
				Type:          domain.EventViewportSwap,
				TransitionID:  tr.ID,
				CorrelationID: tr.CorrelationID,
			},
			Viewport: vp.Path(),
			From:     from.name(),
			To:       to.name(),
		})
	}
}
