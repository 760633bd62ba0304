package chat

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Context vocabulary a thread can be bound to.
const (
	ContextOrder   = "order"
	ContextAuction = "auction"
	ContextTicket  = "ticket"
	ContextDispute = "dispute"
)

// Thread lifecycle states. Everything but active is terminal.
const (
	StatusActive    = "active"
	StatusClosed    = "closed"
	StatusCancelled = "cancelled"
	StatusDisputed  = "disputed"
)

func ValidContextType(t string) bool {
	switch t {
	case ContextOrder, ContextAuction, ContextTicket, ContextDispute:
		return true
	}
	return false
}

func TerminalStatus(s string) bool {
	switch s {
	case StatusClosed, StatusCancelled, StatusDisputed:
		return true
	}
	return false
}

// Thread is one negotiation bound to exactly one external business context
// and two (or three, with support) parties. The unique index on the context
// tuple is what makes open-or-create idempotent under concurrency.
type Thread struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`

	ContextType  string         `gorm:"column:context_type;not null;index:idx_thread_context,unique,priority:1" json:"context_type"`
	ContextID    string         `gorm:"column:context_id;not null;index:idx_thread_context,unique,priority:2" json:"context_id"`
	ContextTitle string         `gorm:"column:context_title;not null;default:''" json:"context_title"`
	ContextData  datatypes.JSON `gorm:"type:jsonb;column:context_data;not null;default:'{}'" json:"context_data,omitempty"`

	PartyA      uuid.UUID  `gorm:"type:uuid;column:party_a;not null;index;index:idx_thread_context,unique,priority:3" json:"party_a"`
	PartyB      uuid.UUID  `gorm:"type:uuid;column:party_b;not null;index;index:idx_thread_context,unique,priority:4" json:"party_b"`
	SupportUser *uuid.UUID `gorm:"type:uuid;column:support_user" json:"support_user,omitempty"`

	Status string `gorm:"column:status;not null;default:'active';index" json:"status"`

	// Concurrency-safe per-thread message sequencing.
	NextSeq int64 `gorm:"column:next_seq;not null;default:0" json:"next_seq"`

	LastMessageAt time.Time `gorm:"column:last_message_at;not null;default:now();index" json:"last_message_at"`

	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:now();index" json:"updated_at"`
}

func (Thread) TableName() string { return "thread" }

// Participant reports whether userID is one of the thread's parties.
func (t *Thread) Participant(userID uuid.UUID) bool {
	if t == nil || userID == uuid.Nil {
		return false
	}
	if t.PartyA == userID || t.PartyB == userID {
		return true
	}
	return t.SupportUser != nil && *t.SupportUser == userID
}

// Counterparts returns every participant except actor.
func (t *Thread) Counterparts(actor uuid.UUID) []uuid.UUID {
	if t == nil {
		return nil
	}
	out := make([]uuid.UUID, 0, 2)
	if t.PartyA != uuid.Nil && t.PartyA != actor {
		out = append(out, t.PartyA)
	}
	if t.PartyB != uuid.Nil && t.PartyB != actor {
		out = append(out, t.PartyB)
	}
	if t.SupportUser != nil && *t.SupportUser != uuid.Nil && *t.SupportUser != actor {
		out = append(out, *t.SupportUser)
	}
	return out
}
