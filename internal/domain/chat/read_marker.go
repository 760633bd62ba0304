package chat

import (
	"time"

	"github.com/google/uuid"
)

// ReadMarker is the per-participant last-read pointer. It only ever moves
// forward; unread counts are derived from it.
type ReadMarker struct {
	ThreadID uuid.UUID `gorm:"type:uuid;primaryKey" json:"thread_id"`
	UserID   uuid.UUID `gorm:"type:uuid;primaryKey" json:"user_id"`

	LastReadAt time.Time `gorm:"column:last_read_at;not null;default:now()" json:"last_read_at"`
}

func (ReadMarker) TableName() string { return "read_marker" }
