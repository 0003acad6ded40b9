package runner

import (
	"context"
	"fmt"
	"slices"
	"strings"
)

// CommandInterceptor is a middleware that can block a command before it runs.
// It returns true if execution should proceed; otherwise reason explains the
// refusal.
type CommandInterceptor func(ctx context.Context, cmd Command) (allowed bool, reason string, err error)

// MultiInterceptor chains multiple interceptors.
func MultiInterceptor(interceptors ...CommandInterceptor) CommandInterceptor {
	return func(ctx context.Context, cmd Command) (bool, string, error) {
		for _, interceptor := range interceptors {
			allowed, reason, err := interceptor(ctx, cmd)
			if err != nil {
				return false, "", err
			}
			if !allowed {
				return false, reason, nil
			}
		}
		return true, "", nil
	}
}

// ConfirmationMiddleware asks the user through handler before running any of
// the given command kinds. It defaults to CommandDelete.
func ConfirmationMiddleware(handler IOHandler, kinds ...CommandKind) CommandInterceptor {
	if len(kinds) == 0 {
		kinds = []CommandKind{CommandDelete}
	}
	return func(ctx context.Context, cmd Command) (bool, string, error) {
		if !slices.Contains(kinds, cmd.Kind) {
			return true, "", nil
		}
		if err := handler.SystemOutput(ctx, fmt.Sprintf("Run %q? [y/N]", cmd.Kind)); err != nil {
			return false, "", err
		}
		answer, err := handler.Input(ctx)
		if err != nil {
			return false, "", err
		}
		switch strings.ToLower(strings.TrimSpace(answer.Raw)) {
		case "y", "yes":
			return true, "", nil
		}
		return false, fmt.Sprintf("%s cancelled", cmd.Kind), nil
	}
}

// ReadOnlyMiddleware refuses every command that changes the session.
func ReadOnlyMiddleware() CommandInterceptor {
	return func(ctx context.Context, cmd Command) (bool, string, error) {
		switch cmd.Kind {
		case CommandState, CommandHelp, CommandQuit:
			return true, "", nil
		}
		return false, fmt.Sprintf("%s refused: session is read-only", cmd.Kind), nil
	}
}

// AutoApproveMiddleware allows everything.
func AutoApproveMiddleware() CommandInterceptor {
	return func(ctx context.Context, cmd Command) (bool, string, error) {
		return true, "", nil
	}
}
