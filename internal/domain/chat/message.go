package chat

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Message kinds.
const (
	KindUser    = "user"
	KindSupport = "support"
	KindSystem  = "system"
)

// MaxBodyRunes bounds the trimmed message body length.
const MaxBodyRunes = 4000

// Message is an immutable entry in a thread's log. Ordering within a thread
// is total by seq, assigned under the thread row lock, so it is stable even
// when two appends land on the same created_at tick. The only mutable field
// is the is_deleted tombstone.
type Message struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ThreadID uuid.UUID `gorm:"type:uuid;not null;index;index:idx_message_thread_seq,unique,priority:1" json:"thread_id"`

	// Nil for engine-generated system entries.
	SenderID *uuid.UUID `gorm:"type:uuid;column:sender_id;index" json:"sender_id,omitempty"`

	Seq  int64  `gorm:"column:seq;not null;index:idx_message_thread_seq,unique,priority:2" json:"seq"`
	Kind string `gorm:"column:kind;not null;index" json:"kind"`

	Body     string         `gorm:"column:body;type:text;not null;default:''" json:"body"`
	Metadata datatypes.JSON `gorm:"type:jsonb;column:metadata;not null;default:'{}'" json:"metadata,omitempty"`

	IsDeleted bool `gorm:"column:is_deleted;not null;default:false" json:"is_deleted"`

	CreatedAt time.Time `gorm:"not null;default:now();index" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (Message) TableName() string { return "message" }
