package ports

import (
	"context"

	"github.com/aretw0/tgquest/pkg/domain"
)

// Dispatcher delivers replies to users. Transport errors stay inside the adapter.
type Dispatcher interface {
	Dispatch(ctx context.Context, reply *domain.Reply) error
}
