package runner

import (
	"log/slog"
)

// DefaultUserID identifies the local player.
const DefaultUserID = "local"

// Option defines a functional option for configuring the Runner.
type Option func(*Runner)

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

// WithUserID sets the session key used for every call to the engine.
func WithUserID(id string) Option {
	return func(r *Runner) {
		r.UserID = id
	}
}
