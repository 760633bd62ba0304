package chat

import (
	"time"

	"github.com/google/uuid"
)

// TypingStatus is an ephemeral last-write-wins flag, one row per participant
// per thread. The engine never expires rows itself; readers treat anything
// older than the expected inactivity window (~3s) as not typing, using
// UpdatedAt.
type TypingStatus struct {
	ThreadID uuid.UUID `gorm:"type:uuid;primaryKey" json:"thread_id"`
	UserID   uuid.UUID `gorm:"type:uuid;primaryKey" json:"user_id"`

	IsTyping  bool      `gorm:"column:is_typing;not null;default:false" json:"is_typing"`
	UpdatedAt time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (TypingStatus) TableName() string { return "typing_status" }
