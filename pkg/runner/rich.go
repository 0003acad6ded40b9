package runner

import (
	"context"
	"fmt"
	"strings"

	"github.com/aretw0/waypoint/pkg/session"
)

// Dispatch runs cmd against one session and returns the resulting snapshot.
// Delete returns a nil snapshot.
func Dispatch(ctx context.Context, sessions Sessions, sessionID string, cmd Command) (*session.Snapshot, error) {
	switch cmd.Kind {
	case CommandNavigate:
		opts, err := DecodeNavigationOptions(cmd.Options)
		if err != nil {
			return nil, fmt.Errorf("invalid options: %w", err)
		}
		return sessions.Navigate(ctx, sessionID, cmd.Route, opts...)
	case CommandBack:
		return sessions.Back(ctx, sessionID)
	case CommandForward:
		return sessions.Forward(ctx, sessionID)
	case CommandState:
		return sessions.State(ctx, sessionID)
	case CommandDelete:
		return nil, sessions.Delete(ctx, sessionID)
	}
	return nil, fmt.Errorf("command %q cannot be dispatched", cmd.Kind)
}

// Report renders a snapshot as markdown.
func Report(snap *session.Snapshot) string {
	if snap == nil {
		return ""
	}
	var sb strings.Builder
	title := snap.Title
	if title == "" {
		title = snap.URL
	}
	if title == "" {
		title = "/"
	}
	fmt.Fprintf(&sb, "## %s\n\n", title)
	fmt.Fprintf(&sb, "`%s` (entry %d of %d)", displayURL(snap.URL), snap.Index+1, snap.Length)
	if !snap.Navigated {
		sb.WriteString(" unchanged")
	}
	sb.WriteString("\n")
	if tree := snap.RouteTree.String(); tree != "" {
		fmt.Fprintf(&sb, "\n```\n%s```\n", tree)
	}
	return sb.String()
}

func displayURL(u string) string {
	if u == "" {
		return "/"
	}
	return u
}
