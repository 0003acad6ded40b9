package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/aretw0/waypoint"
	"github.com/aretw0/waypoint/internal/presentation/tui"
	"github.com/aretw0/waypoint/pkg/runner"
	"github.com/aretw0/waypoint/pkg/session"
)

// RunSession executes a single REPL session.
func RunSession(ctx context.Context, opts RunOptions, in io.Reader, out io.Writer) error {
	logger, err := CreateLogger(opts.Log)
	if err != nil {
		return err
	}
	quiet := opts.JSON || opts.Headless
	if !quiet {
		tui.PrintBanner(out, waypoint.Version)
	}

	app, err := LoadApp(opts.ConfigPath, logger)
	if err != nil {
		return err
	}
	p, err := SetupPersistence(opts.Store, logger)
	if err != nil {
		return err
	}
	defer p.Close()

	sessions := app.Sessions(p.Store, p.SessionOpts...)
	defer sessions.Close()

	snap, runErr := newRunner(opts, sessions, newIOHandler(opts, in, out), logger).Run(ctx)
	logCompletion(out, snap, runErr, quiet)
	return handleExecutionError(runErr)
}

func newRunner(opts RunOptions, sessions *session.Manager, handler runner.IOHandler, logger *slog.Logger) *runner.Runner {
	ropts := []runner.Option{
		runner.WithSessions(sessions),
		runner.WithLogger(logger),
		runner.WithInputHandler(handler),
		runner.WithHeadless(opts.Headless || opts.JSON),
		runner.WithSessionID(opts.SessionID),
		runner.WithInitialRoute(opts.Route),
		runner.WithFresh(opts.Fresh),
	}
	if opts.ReadOnly {
		ropts = append(ropts, runner.WithInterceptor(runner.ReadOnlyMiddleware()))
	}
	return runner.NewRunner(ropts...)
}

func logCompletion(out io.Writer, snap *session.Snapshot, err error, quiet bool) {
	if quiet {
		return
	}
	where := "deleted session"
	if snap != nil {
		where = fmt.Sprintf("'%s' in session %s", snap.URL, snap.SessionID)
	}
	switch {
	case err == nil:
		printSystemMessage(out, "Finished at %s.", where)
	case isInterrupted(err):
		fmt.Fprintln(out)
		printSystemMessage(out, "Interrupted at %s.", where)
	}
}
