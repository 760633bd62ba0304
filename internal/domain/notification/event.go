package notification

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"

	"github.com/google/uuid"
)

// Event kinds the thread engine emits toward the external feed.
const (
	EventNewMessage       = "NEW_MESSAGE"
	EventThreadStatus     = "THREAD_STATUS"
	EventSupportRequested = "SUPPORT_REQUESTED"
)

// Priorities understood by the external feed.
const (
	PriorityNormal = "normal"
	PriorityHigh   = "high"
)

// Event is a record produced across the feed boundary. The feed owns its
// storage and lifecycle; honoring DedupeKey is the feed's contract, not ours.
type Event struct {
	UserID   uuid.UUID      `json:"user_id"`
	Topic    string         `json:"topic"`
	Event    string         `json:"event"`
	Title    string         `json:"title"`
	Body     string         `json:"body"`
	CTAHref  string         `json:"cta_href,omitempty"`
	Priority string         `json:"priority"`
	Data     map[string]any `json:"data,omitempty"`

	DedupeKey string `json:"dedupe_key"`
}

// DedupeKey collapses bursts of the same event kind toward the same
// recipient on the same thread.
func DedupeKey(threadID uuid.UUID, event string, recipient uuid.UUID) string {
	sum := sha1.Sum([]byte(fmt.Sprintf("%s|%s|%s", threadID, event, recipient)))
	return hex.EncodeToString(sum[:])
}
