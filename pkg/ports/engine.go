package ports

import (
	"context"

	"github.com/aretw0/tgquest/pkg/domain"
)

// QuestEngine is what transports drive. The root tgquest.Engine implements it.
type QuestEngine interface {
	// Start moves the user to the initial screen.
	Start(ctx context.Context, userID string) (*domain.Reply, error)

	// Handle processes one inbound message. A nil reply means nothing has to be sent.
	Handle(ctx context.Context, userID, text string) (*domain.Reply, error)
}
