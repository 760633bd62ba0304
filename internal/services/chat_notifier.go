package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/dealgrid/dealgrid-backend/internal/domain/chat"
	"github.com/dealgrid/dealgrid-backend/internal/realtime"
)

// ChatNotifier pushes committed thread events onto the realtime channel.
// Calls are post-commit and best effort; because the row lock is released
// before publish, concurrent senders may publish out of commit order. The
// message payload carries seq so subscribers can restore the total order.
type ChatNotifier interface {
	MessageCreated(threadID uuid.UUID, msg *chat.Message)
	ThreadUpdated(thread *chat.Thread, reason string)
	TypingChanged(threadID uuid.UUID, row *chat.TypingStatus)
}

type chatNotifier struct {
	emit SSEEmitter
}

func NewChatNotifier(emit SSEEmitter) ChatNotifier {
	return &chatNotifier{emit: emit}
}

func (n *chatNotifier) MessageCreated(threadID uuid.UUID, msg *chat.Message) {
	if n == nil || n.emit == nil || threadID == uuid.Nil || msg == nil {
		return
	}
	n.emit.Emit(context.Background(), realtime.SSEMessage{
		Channel: realtime.ThreadChannel(threadID),
		Event:   realtime.SSEEventThreadMessageCreated,
		Data:    map[string]any{"thread_id": threadID, "message": msg},
	})
}

func (n *chatNotifier) ThreadUpdated(thread *chat.Thread, reason string) {
	if n == nil || n.emit == nil || thread == nil || thread.ID == uuid.Nil {
		return
	}
	n.emit.Emit(context.Background(), realtime.SSEMessage{
		Channel: realtime.ThreadChannel(thread.ID),
		Event:   realtime.SSEEventThreadUpdated,
		Data:    map[string]any{"thread": thread, "reason": reason},
	})
}

func (n *chatNotifier) TypingChanged(threadID uuid.UUID, row *chat.TypingStatus) {
	if n == nil || n.emit == nil || threadID == uuid.Nil || row == nil {
		return
	}
	n.emit.Emit(context.Background(), realtime.SSEMessage{
		Channel: realtime.ThreadChannel(threadID),
		Event:   realtime.SSEEventThreadTypingChanged,
		Data:    map[string]any{"thread_id": threadID, "typing": row},
	})
}
