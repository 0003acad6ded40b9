package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/aretw0/waypoint/internal/logging"
	"github.com/aretw0/waypoint/pkg/runner"
)

// CreateLogger configures the application logger.
// Without debug or an explicit level nothing is logged, keeping the terminal
// for the REPL.
func CreateLogger(opts LogOptions) (*slog.Logger, error) {
	if !opts.Debug && opts.Level == "" {
		return logging.NewNop(), nil
	}
	level := slog.LevelDebug
	if opts.Level != "" {
		var err error
		if level, err = logging.ParseLevel(opts.Level); err != nil {
			return nil, err
		}
	}
	return logging.NewWithWriter(os.Stderr, level, logging.Format(opts.Format)), nil
}

// printSystemMessage prints a standardized system message.
func printSystemMessage(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, ">>> %s\n", fmt.Sprintf(format, args...))
}

func isInterrupted(err error) bool {
	return errors.Is(err, runner.ErrInterrupted) || errors.Is(err, context.Canceled)
}

// handleExecutionError maps interruptions to a clean exit.
func handleExecutionError(err error) error {
	if err == nil || isInterrupted(err) {
		return nil
	}
	return err
}
