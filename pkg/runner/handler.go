package runner

import (
	"context"

	"github.com/aretw0/tgquest/pkg/domain"
)

// IOHandler defines the strategy for interacting with the player.
// This allows switching between Text (terminal) and JSON (structured) modes.
type IOHandler interface {
	// Output presents a rendered screen.
	Output(ctx context.Context, reply *domain.Reply) error

	// Input reads the next message. io.EOF ends the session.
	Input(ctx context.Context) (string, error)

	// SystemOutput presents a meta-message (errors, notices) distinct from quest content.
	SystemOutput(ctx context.Context, msg string) error
}
