package runner

import (
	"context"

	"github.com/aretw0/waypoint/pkg/domain"
	"github.com/aretw0/waypoint/pkg/session"
)

// IOHandler defines the strategy for interacting with the user.
// This allows switching between Text (CLI/TUI) and JSON (Structured) modes.
type IOHandler interface {
	// Output presents the session after a command.
	Output(ctx context.Context, snap *session.Snapshot) error

	// Input reads the next command.
	Input(ctx context.Context) (Command, error)

	// Error reports a failed command. The session stays usable.
	Error(ctx context.Context, err error) error

	// SystemOutput presents a meta-message to the user (help, prompts, status).
	// This is distinct from session output.
	SystemOutput(ctx context.Context, msg string) error
}

// ContentRenderer is a function that transforms markdown before it is printed.
// This allows for TUI rendering (markdown to ANSI) without coupling the package.
type ContentRenderer func(string) (string, error)

// Sessions is the part of session.Manager the runner drives.
type Sessions interface {
	Create(ctx context.Context, initial string) (*session.Snapshot, error)
	Navigate(ctx context.Context, sessionID, target string, opts ...domain.NavigationOption) (*session.Snapshot, error)
	Back(ctx context.Context, sessionID string) (*session.Snapshot, error)
	Forward(ctx context.Context, sessionID string) (*session.Snapshot, error)
	State(ctx context.Context, sessionID string) (*session.Snapshot, error)
	Delete(ctx context.Context, sessionID string) error
}

var _ Sessions = (*session.Manager)(nil)
