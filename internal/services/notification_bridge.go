package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/dealgrid/dealgrid-backend/internal/domain/chat"
	"github.com/dealgrid/dealgrid-backend/internal/domain/notification"
	"github.com/dealgrid/dealgrid-backend/internal/notify"
	"github.com/dealgrid/dealgrid-backend/internal/pkg/logger"
	"github.com/dealgrid/dealgrid-backend/internal/realtime"
)

// Presence answers whether a user currently holds a live subscription on a
// realtime channel. Satisfied by *realtime.SSEHub.
type Presence interface {
	Present(channel string, userID uuid.UUID) bool
}

// NotificationBridge turns committed thread events into feed records for the
// participants who were not the actor. All methods run post-commit and are
// best effort: failures are logged, never returned to the write path.
type NotificationBridge interface {
	MessageCreated(ctx context.Context, thread *chat.Thread, msg *chat.Message, actor uuid.UUID)
	StatusChanged(ctx context.Context, thread *chat.Thread, actor uuid.UUID)
	SupportRequested(ctx context.Context, thread *chat.Thread, actor uuid.UUID)
}

type notificationBridge struct {
	log      *logger.Logger
	feed     notify.FeedPublisher
	presence Presence
}

func NewNotificationBridge(log *logger.Logger, feed notify.FeedPublisher, presence Presence) NotificationBridge {
	return &notificationBridge{
		log:      log.With("service", "NotificationBridge"),
		feed:     feed,
		presence: presence,
	}
}

const previewRunes = 120

func preview(body string) string {
	runes := []rune(body)
	if len(runes) <= previewRunes {
		return body
	}
	return string(runes[:previewRunes]) + "…"
}

func threadHref(threadID uuid.UUID) string {
	return "/threads/" + threadID.String()
}

func (b *notificationBridge) publish(ctx context.Context, ev notification.Event) {
	if b == nil || b.feed == nil || ev.UserID == uuid.Nil {
		return
	}
	if err := b.feed.Publish(ctx, ev); err != nil {
		b.log.Warn("feed publish failed", "event", ev.Event, "user", ev.UserID, "error", err)
	}
}

// MessageCreated notifies the actor's counterparts about a new message,
// skipping anyone who is already watching the thread over SSE.
func (b *notificationBridge) MessageCreated(ctx context.Context, thread *chat.Thread, msg *chat.Message, actor uuid.UUID) {
	if b == nil || thread == nil || msg == nil {
		return
	}
	channel := realtime.ThreadChannel(thread.ID)
	for _, recipient := range thread.Counterparts(actor) {
		if b.presence != nil && b.presence.Present(channel, recipient) {
			continue
		}
		b.publish(ctx, notification.Event{
			UserID:    recipient,
			Topic:     "chat",
			Event:     notification.EventNewMessage,
			Title:     thread.ContextTitle,
			Body:      preview(msg.Body),
			CTAHref:   threadHref(thread.ID),
			Priority:  notification.PriorityNormal,
			Data:      map[string]any{"thread_id": thread.ID, "message_id": msg.ID},
			DedupeKey: notification.DedupeKey(thread.ID, notification.EventNewMessage, recipient),
		})
	}
}

// StatusChanged notifies every counterpart of a lifecycle transition.
// Presence is not consulted: status changes matter even to connected users'
// feeds.
func (b *notificationBridge) StatusChanged(ctx context.Context, thread *chat.Thread, actor uuid.UUID) {
	if b == nil || thread == nil {
		return
	}
	for _, recipient := range thread.Counterparts(actor) {
		b.publish(ctx, notification.Event{
			UserID:    recipient,
			Topic:     "chat",
			Event:     notification.EventThreadStatus,
			Title:     thread.ContextTitle,
			Body:      fmt.Sprintf("Thread is now %s", thread.Status),
			CTAHref:   threadHref(thread.ID),
			Priority:  notification.PriorityHigh,
			Data:      map[string]any{"thread_id": thread.ID, "status": thread.Status},
			DedupeKey: notification.DedupeKey(thread.ID, notification.EventThreadStatus, recipient),
		})
	}
}

// SupportRequested pages the thread's support user when one is assigned.
func (b *notificationBridge) SupportRequested(ctx context.Context, thread *chat.Thread, actor uuid.UUID) {
	if b == nil || thread == nil || thread.SupportUser == nil || *thread.SupportUser == uuid.Nil {
		return
	}
	recipient := *thread.SupportUser
	if recipient == actor {
		return
	}
	b.publish(ctx, notification.Event{
		UserID:    recipient,
		Topic:     "chat",
		Event:     notification.EventSupportRequested,
		Title:     thread.ContextTitle,
		Body:      "A participant requested support",
		CTAHref:   threadHref(thread.ID),
		Priority:  notification.PriorityHigh,
		Data:      map[string]any{"thread_id": thread.ID, "requested_by": actor},
		DedupeKey: notification.DedupeKey(thread.ID, notification.EventSupportRequested, recipient),
	})
}
