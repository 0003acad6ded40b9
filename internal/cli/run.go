package cli

import (
	"context"
	"errors"
	"io"
)

// Execute handles the 'run' command logic, dispatching to Session or Watch mode.
func Execute(ctx context.Context, opts RunOptions, in io.Reader, out io.Writer) error {
	if opts.Watch {
		if opts.Headless || opts.JSON {
			return errors.New("--watch cannot be combined with --headless or --json")
		}
		return RunWatch(ctx, opts, in, out)
	}
	return RunSession(ctx, opts, in, out)
}
