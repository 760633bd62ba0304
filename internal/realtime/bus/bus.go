package bus

import (
	"context"

	"github.com/dealgrid/dealgrid-backend/internal/realtime"
)

// Bus carries SSE messages across processes so any API instance can fan out
// events committed by another.
type Bus interface {
	Publish(ctx context.Context, msg realtime.SSEMessage) error
	StartForwarder(ctx context.Context, onMsg func(m realtime.SSEMessage)) error
	Close() error
}
