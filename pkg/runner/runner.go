package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/aretw0/tgquest/internal/logging"
	"github.com/aretw0/tgquest/pkg/ports"
)

// Runner handles the play loop of one local session.
type Runner struct {
	// Handler is the strategy for IO. Defaults to a TextHandler on Stdin/Stdout.
	Handler IOHandler

	// Logger is used for internal debug logging.
	// If nil, a no-op logger is used.
	Logger *slog.Logger

	// UserID is the session key. Defaults to DefaultUserID.
	UserID string
}

// NewRunner creates a Runner.
func NewRunner(opts ...Option) *Runner {
	r := &Runner{}
	for _, opt := range opts {
		opt(r)
	}
	if r.Handler == nil {
		r.Handler = NewTextHandler(os.Stdin, os.Stdout)
	}
	if r.Logger == nil {
		r.Logger = logging.NewNop()
	}
	if r.UserID == "" {
		r.UserID = DefaultUserID
	}
	return r
}

// Run starts the quest and loops until the input ends or ctx is cancelled.
// Engine errors are reported to the player and the loop continues.
func (r *Runner) Run(ctx context.Context, engine ports.QuestEngine) error {
	reply, err := engine.Start(ctx, r.UserID)
	if err != nil {
		return fmt.Errorf("start: %w", err)
	}
	if err := r.Handler.Output(ctx, reply); err != nil {
		return fmt.Errorf("output error: %w", err)
	}

	for {
		text, err := r.Handler.Input(ctx)
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, context.Canceled) {
				r.Logger.Debug("play loop finished", "user_id", r.UserID, "reason", err)
				return nil
			}
			return fmt.Errorf("input error: %w", err)
		}

		clean, err := SanitizeInput(text)
		if err != nil {
			if sysErr := r.Handler.SystemOutput(ctx, err.Error()); sysErr != nil {
				return sysErr
			}
			continue
		}

		reply, err := engine.Handle(ctx, r.UserID, clean)
		if err != nil {
			r.Logger.Error("Failed to handle input", "user_id", r.UserID, "err", err)
			if sysErr := r.Handler.SystemOutput(ctx, err.Error()); sysErr != nil {
				return sysErr
			}
			continue
		}
		if reply == nil {
			continue
		}
		if err := r.Handler.Output(ctx, reply); err != nil {
			return fmt.Errorf("output error: %w", err)
		}
	}
}
