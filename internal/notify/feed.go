// Package notify publishes notification events toward the external feed
// service. The engine only produces events; storage, badge counts, and UI
// belong to the feed consumer.
package notify

import (
	"context"

	"github.com/dealgrid/dealgrid-backend/internal/domain/notification"
)

type FeedPublisher interface {
	Publish(ctx context.Context, ev notification.Event) error
	Close() error
}
