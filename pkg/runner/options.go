package runner

import (
	"log/slog"
)

// Option defines a functional option for configuring the Runner.
type Option func(*Runner)

// WithSessions configures the session backend. It is required.
func WithSessions(s Sessions) Option {
	return func(r *Runner) {
		r.Sessions = s
	}
}

// WithLogger configures the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		r.Logger = logger
	}
}

// WithInputHandler configures a custom IOHandler.
func WithInputHandler(handler IOHandler) Option {
	return func(r *Runner) {
		r.Handler = handler
	}
}

// WithHeadless disables confirmations.
func WithHeadless(headless bool) Option {
	return func(r *Runner) {
		r.Headless = headless
	}
}

// WithSessionID resumes or creates the named session. Without it a new
// session with a generated ID is created.
func WithSessionID(id string) Option {
	return func(r *Runner) {
		r.SessionID = id
	}
}

// WithInitialRoute sets the route a new session starts at.
func WithInitialRoute(route string) Option {
	return func(r *Runner) {
		r.InitialRoute = route
	}
}

// WithFresh deletes the named session before starting.
func WithFresh(fresh bool) Option {
	return func(r *Runner) {
		r.Fresh = fresh
	}
}

// WithInterceptor configures the command middleware.
func WithInterceptor(interceptor CommandInterceptor) Option {
	return func(r *Runner) {
		r.Interceptor = interceptor
	}
}
