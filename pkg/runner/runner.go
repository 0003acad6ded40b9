package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/aretw0/waypoint/internal/logging"
	"github.com/aretw0/waypoint/pkg/session"
)

// ErrInterrupted is returned by Run when an OS signal stopped the loop.
var ErrInterrupted = errors.New("interrupted")

// Runner handles the read-dispatch-print loop of one session.
// It uses an IOHandler strategy to abstract the interaction mode (Text vs JSON).
type Runner struct {
	// Handler is the strategy for IO. Defaults to a TextHandler on Stdin/Stdout.
	Handler IOHandler

	// Sessions executes commands.
	Sessions Sessions

	// Interceptor is a middleware for command policy.
	// If nil, destructive commands ask for confirmation unless Headless.
	Interceptor CommandInterceptor

	// Logger is used for internal debug logging.
	// If nil, a no-op logger is used.
	Logger *slog.Logger

	SessionID    string
	InitialRoute string
	Fresh        bool
	Headless     bool
}

// NewRunner creates a new Runner.
func NewRunner(opts ...Option) *Runner {
	r := &Runner{Logger: logging.NewNop()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run executes commands until the input ends, a quit or delete command, or a
// signal. It returns the last snapshot shown.
func (r *Runner) Run(ctx context.Context) (*session.Snapshot, error) {
	if r.Sessions == nil {
		return nil, errors.New("runner: no sessions configured")
	}
	handler := r.resolveHandler()
	interceptor := r.resolveInterceptor(handler)

	signals := NewSignalManager(ctx)
	defer signals.Stop()

	snap, resumed, err := r.openSession(signals.Context())
	if err != nil {
		return nil, err
	}
	r.SessionID = snap.SessionID
	r.Logger.Debug("session opened", "session_id", r.SessionID, "url", snap.URL, "resumed", resumed)

	if err := handler.Output(ctx, snap); err != nil {
		return snap, fmt.Errorf("output error: %w", err)
	}

	for {
		cmdCtx := signals.Context()

		cmd, err := handler.Input(cmdCtx)
		if err != nil {
			signals.CheckRace()
			return snap, r.stopReason(ctx, signals, err)
		}

		switch cmd.Kind {
		case CommandQuit:
			return snap, nil
		case CommandHelp:
			if err := handler.SystemOutput(cmdCtx, HelpText); err != nil {
				return snap, err
			}
			continue
		}

		allowed, reason, err := interceptor(cmdCtx, cmd)
		if err != nil {
			return snap, r.stopReason(ctx, signals, err)
		}
		if !allowed {
			r.Logger.Debug("command refused", "command", cmd.Kind, "reason", reason)
			if err := handler.SystemOutput(cmdCtx, reason); err != nil {
				return snap, err
			}
			continue
		}

		next, err := Dispatch(cmdCtx, r.Sessions, r.SessionID, cmd)
		if err != nil {
			if cmdCtx.Err() != nil {
				return snap, r.stopReason(ctx, signals, err)
			}
			r.Logger.Warn("command failed", "session_id", r.SessionID, "command", cmd.Kind, "err", err)
			if herr := handler.Error(cmdCtx, err); herr != nil {
				return snap, herr
			}
			if next != nil {
				snap = next
			}
			continue
		}

		if cmd.Kind == CommandDelete {
			r.Logger.Debug("session deleted", "session_id", r.SessionID)
			return nil, handler.SystemOutput(ctx, fmt.Sprintf("session %s deleted", r.SessionID))
		}
		if next == nil {
			continue
		}
		snap = next
		if err := handler.Output(cmdCtx, snap); err != nil {
			return snap, fmt.Errorf("output error: %w", err)
		}
	}
}

// stopReason maps the error that ended the loop to Run's result.
func (r *Runner) stopReason(ctx context.Context, signals *SignalManager, err error) error {
	switch {
	case errors.Is(err, io.EOF):
		return nil
	case ctx.Err() != nil:
		return ctx.Err()
	case signals.Interrupted():
		r.Logger.Debug("runner interrupted", "session_id", r.SessionID)
		return ErrInterrupted
	}
	return fmt.Errorf("input error: %w", err)
}

// resolveHandler ensures a valid IOHandler is set.
func (r *Runner) resolveHandler() IOHandler {
	if r.Handler == nil {
		r.Handler = NewTextHandler(os.Stdin, os.Stdout)
	}
	return r.Handler
}

// resolveInterceptor returns the configured or default interceptor.
func (r *Runner) resolveInterceptor(h IOHandler) CommandInterceptor {
	if r.Interceptor != nil {
		return r.Interceptor
	}
	if r.Headless {
		return AutoApproveMiddleware()
	}
	return ConfirmationMiddleware(h)
}
