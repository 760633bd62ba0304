package services

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	chatrepo "github.com/dealgrid/dealgrid-backend/internal/data/repos/chat"
	"github.com/dealgrid/dealgrid-backend/internal/domain/chat"
	"github.com/dealgrid/dealgrid-backend/internal/pkg/dbctx"
	"github.com/dealgrid/dealgrid-backend/internal/pkg/logger"
)

type MessageService interface {
	// Send appends a message under the thread row lock, which assigns the
	// next sequence number and serializes against lifecycle transitions.
	Send(ctx context.Context, threadID uuid.UUID, kind, body string, metadata datatypes.JSON) (*chat.Message, error)
	List(ctx context.Context, threadID uuid.UUID, limit, offset int) ([]*chat.Message, error)
	// SoftDelete tombstones a message. Only the original sender may delete.
	SoftDelete(ctx context.Context, threadID, messageID uuid.UUID) error
}

type messageService struct {
	log      *logger.Logger
	runner   TxRunner
	threads  chatrepo.ThreadRepo
	messages chatrepo.MessageRepo
	notify   ChatNotifier
	bridge   NotificationBridge
}

func NewMessageService(
	baseLog *logger.Logger,
	runner TxRunner,
	threadRepo chatrepo.ThreadRepo,
	messageRepo chatrepo.MessageRepo,
	notify ChatNotifier,
	bridge NotificationBridge,
) MessageService {
	return &messageService{
		log:      baseLog.With("service", "MessageService"),
		runner:   runner,
		threads:  threadRepo,
		messages: messageRepo,
		notify:   notify,
		bridge:   bridge,
	}
}

func (s *messageService) Send(ctx context.Context, threadID uuid.UUID, kind, body string, metadata datatypes.JSON) (*chat.Message, error) {
	actor, err := actorFrom(ctx)
	if err != nil {
		return nil, err
	}
	if kind == "" {
		kind = chat.KindUser
	}
	if kind != chat.KindUser && kind != chat.KindSupport {
		return nil, fmt.Errorf("kind %q not sendable: %w", kind, chat.ErrInvalidMessage)
	}
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, fmt.Errorf("empty body: %w", chat.ErrInvalidMessage)
	}
	if utf8.RuneCountInString(body) > chat.MaxBodyRunes {
		return nil, fmt.Errorf("body exceeds %d runes: %w", chat.MaxBodyRunes, chat.ErrInvalidMessage)
	}
	if len(metadata) == 0 {
		metadata = datatypes.JSON([]byte(`{}`))
	}

	var (
		thread *chat.Thread
		msg    *chat.Message
	)
	err = s.runner.InTx(ctx, func(dbc dbctx.Context) error {
		t, err := s.threads.LockByID(dbc, threadID)
		if err != nil {
			return err
		}
		if !t.Participant(actor) {
			return fmt.Errorf("caller is not a party: %w", chat.ErrForbidden)
		}
		if kind == chat.KindSupport && (t.SupportUser == nil || *t.SupportUser != actor) {
			return fmt.Errorf("caller is not the support user: %w", chat.ErrForbidden)
		}
		if t.Status != chat.StatusActive {
			return fmt.Errorf("thread is %s: %w", t.Status, chat.ErrThreadNotActive)
		}

		now := time.Now().UTC()
		sender := actor
		msg = &chat.Message{
			ID:        uuid.New(),
			ThreadID:  t.ID,
			SenderID:  &sender,
			Seq:       t.NextSeq,
			Kind:      kind,
			Body:      body,
			Metadata:  metadata,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if _, err := s.messages.Create(dbc, []*chat.Message{msg}); err != nil {
			return err
		}
		if err := s.threads.UpdateFields(dbc, t.ID, map[string]interface{}{
			"next_seq":        t.NextSeq + 1,
			"last_message_at": now,
		}); err != nil {
			return err
		}
		t.NextSeq++
		t.LastMessageAt = now
		thread = t
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.notify != nil {
		s.notify.MessageCreated(thread.ID, msg)
	}
	if s.bridge != nil {
		s.bridge.MessageCreated(ctx, thread, msg, actor)
	}
	return msg, nil
}

func (s *messageService) List(ctx context.Context, threadID uuid.UUID, limit, offset int) ([]*chat.Message, error) {
	actor, err := actorFrom(ctx)
	if err != nil {
		return nil, err
	}
	dbc := dbctx.Context{Ctx: ctx}
	thread, err := s.threads.GetByID(dbc, threadID)
	if err != nil {
		return nil, err
	}
	if !thread.Participant(actor) {
		return nil, fmt.Errorf("caller is not a party: %w", chat.ErrForbidden)
	}
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return s.messages.ListByThread(dbc, threadID, limit, offset)
}

func (s *messageService) SoftDelete(ctx context.Context, threadID, messageID uuid.UUID) error {
	actor, err := actorFrom(ctx)
	if err != nil {
		return err
	}
	dbc := dbctx.Context{Ctx: ctx}
	thread, err := s.threads.GetByID(dbc, threadID)
	if err != nil {
		return err
	}
	if !thread.Participant(actor) {
		return fmt.Errorf("caller is not a party: %w", chat.ErrForbidden)
	}
	msg, err := s.messages.GetByID(dbc, messageID)
	if err != nil {
		return err
	}
	if msg.ThreadID != threadID {
		return fmt.Errorf("message not in thread: %w", chat.ErrNotFound)
	}
	if msg.SenderID == nil || *msg.SenderID != actor {
		return fmt.Errorf("only the sender may delete: %w", chat.ErrForbidden)
	}
	if msg.IsDeleted {
		return nil
	}
	if err := s.messages.SoftDelete(dbc, messageID); err != nil {
		return err
	}
	if s.notify != nil {
		s.notify.ThreadUpdated(thread, "message_deleted")
	}
	return nil
}
