package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	chatrepo "github.com/dealgrid/dealgrid-backend/internal/data/repos/chat"
	"github.com/dealgrid/dealgrid-backend/internal/domain/chat"
	"github.com/dealgrid/dealgrid-backend/internal/pkg/dbctx"
	"github.com/dealgrid/dealgrid-backend/internal/pkg/logger"
)

// PresenceService tracks typing flags. Rows are last-write-wins and carry
// updated_at; readers treat flags older than ~3s as stale, so there is no
// server-side expiry timer to run.
type PresenceService interface {
	SetTyping(ctx context.Context, threadID uuid.UUID, isTyping bool) error
	ListTyping(ctx context.Context, threadID uuid.UUID) ([]*chat.TypingStatus, error)
}

type presenceService struct {
	log     *logger.Logger
	threads chatrepo.ThreadRepo
	typing  chatrepo.TypingRepo
	notify  ChatNotifier
}

func NewPresenceService(
	baseLog *logger.Logger,
	threadRepo chatrepo.ThreadRepo,
	typingRepo chatrepo.TypingRepo,
	notify ChatNotifier,
) PresenceService {
	return &presenceService{
		log:     baseLog.With("service", "PresenceService"),
		threads: threadRepo,
		typing:  typingRepo,
		notify:  notify,
	}
}

func (s *presenceService) SetTyping(ctx context.Context, threadID uuid.UUID, isTyping bool) error {
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

	row := &chat.TypingStatus{
		ThreadID:  threadID,
		UserID:    actor,
		IsTyping:  isTyping,
		UpdatedAt: time.Now().UTC(),
	}
	if err := s.typing.Upsert(dbc, row); err != nil {
		return err
	}
	if s.notify != nil {
		s.notify.TypingChanged(threadID, row)
	}
	return nil
}

func (s *presenceService) ListTyping(ctx context.Context, threadID uuid.UUID) ([]*chat.TypingStatus, error) {
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
	return s.typing.ListByThread(dbc, threadID)
}
