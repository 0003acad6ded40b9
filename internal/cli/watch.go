package cli

import (
	"context"
	"crypto/md5"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"

	"github.com/aretw0/waypoint"
	"github.com/aretw0/waypoint/internal/presentation/tui"
	"github.com/aretw0/waypoint/pkg/config"
	"github.com/aretw0/waypoint/pkg/runner"
	"github.com/aretw0/waypoint/pkg/session"
)

// watchSessionID scopes the default watch session by config path so that two
// projects never share history.
func watchSessionID(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	hash := md5.Sum([]byte(abs))
	return fmt.Sprintf("watch-%x", hash[:4])
}

// RunWatch runs the REPL in development mode. Every change to the application
// file rebuilds the routes and restores the same session against them.
func RunWatch(ctx context.Context, opts RunOptions, in io.Reader, out io.Writer) error {
	logger, err := CreateLogger(opts.Log)
	if err != nil {
		return err
	}
	tui.PrintBanner(out, waypoint.Version)

	if opts.ConfigPath == "" {
		opts.ConfigPath = DefaultConfigPath
	}
	if opts.SessionID == "" {
		opts.SessionID = watchSessionID(opts.ConfigPath)
	}

	changes, err := config.Watch(ctx, opts.ConfigPath, config.DefaultDebounce)
	if err != nil {
		return err
	}

	p, err := SetupPersistence(opts.Store, logger)
	if err != nil {
		return err
	}
	defer p.Close()

	logger.Info("starting watcher", "path", opts.ConfigPath, "session_id", opts.SessionID)
	printSystemMessage(out, "Watching '%s' in session %s.", opts.ConfigPath, opts.SessionID)

	// One handler for every iteration keeps a single stdin pump.
	handler := newIOHandler(opts, in, out)

	for {
		again, err := runWatchIteration(ctx, opts, p, handler, changes, out, logger)
		if err != nil || !again {
			return handleExecutionError(err)
		}
		// Only the first iteration starts from scratch.
		opts.Fresh = false
		logger.Info("watcher restarting")
	}
}

// runWatchIteration runs until the session ends, the parent context is done
// or the file changes. It reports whether the watcher should go on.
func runWatchIteration(ctx context.Context, opts RunOptions, p *Persistence, handler runner.IOHandler, changes <-chan string, out io.Writer, logger *slog.Logger) (bool, error) {
	app, err := LoadApp(opts.ConfigPath, logger)
	if err != nil {
		logger.Error("application reload failed", "err", err)
		printSystemMessage(out, "%v", err)
		printSystemMessage(out, "Waiting for changes...")
		return waitChange(ctx, changes)
	}

	sessions := app.Sessions(p.Store, p.SessionOpts...)
	defer sessions.Close()

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	type result struct {
		snap *session.Snapshot
		err  error
	}
	done := make(chan result, 1)
	go func() {
		snap, err := newRunner(opts, sessions, handler, logger).Run(runCtx)
		done <- result{snap, err}
	}()

	select {
	case res := <-done:
		if ctx.Err() != nil {
			logCompletion(out, res.snap, ctx.Err(), false)
			return false, nil
		}
		logCompletion(out, res.snap, res.err, false)
		return false, res.err
	case path, ok := <-changes:
		cancel()
		<-done
		if !ok {
			return false, ctx.Err()
		}
		fmt.Fprintln(out)
		printSystemMessage(out, "Change detected in '%s'.", path)
		return true, nil
	}
}

func waitChange(ctx context.Context, changes <-chan string) (bool, error) {
	select {
	case <-ctx.Done():
		return false, nil
	case _, ok := <-changes:
		return ok, nil
	}
}
