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

type ReadStateService interface {
	// MarkRead advances the caller's read marker. Markers never move
	// backwards; a stale timestamp is a no-op.
	MarkRead(ctx context.Context, threadID uuid.UUID, at time.Time) error
	// UnreadCount derives the number of messages newer than the caller's
	// marker, excluding the caller's own messages and tombstones.
	UnreadCount(ctx context.Context, threadID uuid.UUID) (int64, error)
}

type readStateService struct {
	log      *logger.Logger
	threads  chatrepo.ThreadRepo
	messages chatrepo.MessageRepo
	markers  chatrepo.ReadMarkerRepo
}

func NewReadStateService(
	baseLog *logger.Logger,
	threadRepo chatrepo.ThreadRepo,
	messageRepo chatrepo.MessageRepo,
	markerRepo chatrepo.ReadMarkerRepo,
) ReadStateService {
	return &readStateService{
		log:      baseLog.With("service", "ReadStateService"),
		threads:  threadRepo,
		messages: messageRepo,
		markers:  markerRepo,
	}
}

func (s *readStateService) MarkRead(ctx context.Context, threadID uuid.UUID, at time.Time) error {
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

	now := time.Now().UTC()
	if at.IsZero() || at.After(now) {
		at = now
	}
	return s.markers.Advance(dbc, threadID, actor, at)
}

func (s *readStateService) UnreadCount(ctx context.Context, threadID uuid.UUID) (int64, error) {
	actor, err := actorFrom(ctx)
	if err != nil {
		return 0, err
	}
	dbc := dbctx.Context{Ctx: ctx}
	thread, err := s.threads.GetByID(dbc, threadID)
	if err != nil {
		return 0, err
	}
	if !thread.Participant(actor) {
		return 0, fmt.Errorf("caller is not a party: %w", chat.ErrForbidden)
	}

	marker, err := s.markers.Get(dbc, threadID, actor)
	if err != nil {
		return 0, err
	}
	var after time.Time
	if marker != nil {
		after = marker.LastReadAt
	}
	return s.messages.CountUnreadAfter(dbc, threadID, actor, after)
}
