/*
Package runner implements an interactive navigation shell on top of the
session manager.

Each line read by an IOHandler becomes a Command: a route expression to
navigate to, or one of the colon-prefixed shell commands (":back",
":forward", ":tree", ":delete", ...). The runner dispatches commands against
one session and hands every resulting snapshot back to the handler.

# Key Components

  - Runner: the read-dispatch-print loop.
  - TextHandler: line-oriented terminal IO with optional markdown rendering.
  - JSONHandler: NDJSON IO for scripted hosts.
  - CommandInterceptor: policy middleware run before each command.

# Usage

	r := runner.NewRunner(
		runner.WithSessions(manager),
		runner.WithSessionID("user-1"),
		runner.WithInitialRoute("inbox"),
		runner.WithInputHandler(runner.NewTextHandler(os.Stdin, os.Stdout)),
	)

	if _, err := r.Run(ctx); err != nil {
		log.Fatal(err)
	}
*/
package runner
