package realtime

import "github.com/google/uuid"

type SSEEvent string

// Per-thread events pushed to subscribers after the originating write commits.
const (
	SSEEventThreadMessageCreated SSEEvent = "thread.message_created"
	SSEEventThreadUpdated        SSEEvent = "thread.updated"
	SSEEventThreadTypingChanged  SSEEvent = "thread.typing_changed"
)

type SSEMessage struct {
	Channel string   `json:"channel"`
	Event   SSEEvent `json:"event"`
	Data    any      `json:"data,omitempty"`
}

// ThreadChannel names the fan-out channel for one thread.
func ThreadChannel(threadID uuid.UUID) string {
	return "thread:" + threadID.String()
}
