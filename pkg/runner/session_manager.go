package runner

import (
	"context"
	"errors"
	"fmt"

	"github.com/aretw0/waypoint/pkg/domain"
	"github.com/aretw0/waypoint/pkg/session"
)

// openSession resumes the configured session or starts a new one.
// It reports whether an existing session was resumed.
func (r *Runner) openSession(ctx context.Context) (*session.Snapshot, bool, error) {
	if r.SessionID == "" {
		snap, err := r.Sessions.Create(ctx, r.InitialRoute)
		return snap, false, err
	}

	if r.Fresh {
		if err := r.Sessions.Delete(ctx, r.SessionID); err != nil && !errors.Is(err, domain.ErrSessionNotFound) {
			return nil, false, fmt.Errorf("failed to reset session %s: %w", r.SessionID, err)
		}
	}

	snap, err := r.Sessions.State(ctx, r.SessionID)
	if err == nil {
		// Resuming never re-applies the initial route.
		return snap, true, nil
	}
	if !errors.Is(err, domain.ErrSessionNotFound) {
		return nil, false, fmt.Errorf("failed to load session %s: %w", r.SessionID, err)
	}

	snap, err = r.Sessions.Navigate(ctx, r.SessionID, r.InitialRoute)
	if err != nil {
		return snap, false, fmt.Errorf("failed to initialize session %s: %w", r.SessionID, err)
	}
	return snap, false, nil
}
