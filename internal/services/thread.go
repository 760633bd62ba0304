package services

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	chatrepo "github.com/dealgrid/dealgrid-backend/internal/data/repos/chat"
	"github.com/dealgrid/dealgrid-backend/internal/domain/chat"
	"github.com/dealgrid/dealgrid-backend/internal/pkg/dbctx"
	"github.com/dealgrid/dealgrid-backend/internal/pkg/logger"
	"github.com/dealgrid/dealgrid-backend/internal/requestdata"
)

type OpenThreadInput struct {
	ContextType  string
	ContextID    string
	ContextTitle string
	ContextData  datatypes.JSON
	PartyA       uuid.UUID
	PartyB       uuid.UUID
	SupportUser  *uuid.UUID
}

type ThreadService interface {
	// OpenThread resolves the context tuple to exactly one thread, creating
	// it on first call. The bool reports whether this call created it.
	OpenThread(ctx context.Context, in OpenThreadInput) (*chat.Thread, bool, error)
	GetThread(ctx context.Context, threadID uuid.UUID, msgLimit int) (*chat.Thread, []*chat.Message, error)
	ListThreads(ctx context.Context, limit int) ([]*chat.Thread, error)
	// CanAccess reports whether the caller participates in the thread.
	CanAccess(ctx context.Context, threadID uuid.UUID) error
	// Close transitions an active thread to closed and appends the closing
	// system message in the same transaction.
	Close(ctx context.Context, threadID uuid.UUID) (*chat.Thread, error)
}

type threadService struct {
	log      *logger.Logger
	runner   TxRunner
	threads  chatrepo.ThreadRepo
	messages chatrepo.MessageRepo
	notify   ChatNotifier
	bridge   NotificationBridge
}

func NewThreadService(
	baseLog *logger.Logger,
	runner TxRunner,
	threadRepo chatrepo.ThreadRepo,
	messageRepo chatrepo.MessageRepo,
	notify ChatNotifier,
	bridge NotificationBridge,
) ThreadService {
	return &threadService{
		log:      baseLog.With("service", "ThreadService"),
		runner:   runner,
		threads:  threadRepo,
		messages: messageRepo,
		notify:   notify,
		bridge:   bridge,
	}
}

func actorFrom(ctx context.Context) (uuid.UUID, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return uuid.Nil, fmt.Errorf("not authenticated: %w", chat.ErrForbidden)
	}
	return rd.UserID, nil
}

func (s *threadService) OpenThread(ctx context.Context, in OpenThreadInput) (*chat.Thread, bool, error) {
	actor, err := actorFrom(ctx)
	if err != nil {
		return nil, false, err
	}
	if !chat.ValidContextType(in.ContextType) {
		return nil, false, fmt.Errorf("context type %q: %w", in.ContextType, chat.ErrInvalidContext)
	}
	// The context id is an opaque key into the external business object
	// ("ORD-1", an auction id); the engine never dereferences it.
	contextID := strings.TrimSpace(in.ContextID)
	if contextID == "" {
		return nil, false, fmt.Errorf("missing context id: %w", chat.ErrInvalidContext)
	}
	if in.PartyA == uuid.Nil || in.PartyB == uuid.Nil {
		return nil, false, fmt.Errorf("missing party: %w", chat.ErrInvalidContext)
	}
	if in.PartyA == in.PartyB {
		return nil, false, fmt.Errorf("parties must differ: %w", chat.ErrInvalidContext)
	}

	// The party pair is unordered; canonicalize so both call orders hit the
	// same unique-index tuple.
	a, b := in.PartyA, in.PartyB
	if bytes.Compare(a[:], b[:]) > 0 {
		a, b = b, a
	}
	if actor != a && actor != b && (in.SupportUser == nil || *in.SupportUser != actor) {
		return nil, false, fmt.Errorf("caller is not a party: %w", chat.ErrForbidden)
	}

	data := in.ContextData
	if len(data) == 0 {
		data = datatypes.JSON([]byte(`{}`))
	}
	now := time.Now().UTC()
	row := &chat.Thread{
		ID:            uuid.New(),
		ContextType:   in.ContextType,
		ContextID:     contextID,
		ContextTitle:  in.ContextTitle,
		ContextData:   data,
		PartyA:        a,
		PartyB:        b,
		SupportUser:   in.SupportUser,
		Status:        chat.StatusActive,
		NextSeq:       0,
		LastMessageAt: now,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	thread, created, err := s.threads.OpenOrCreate(dbctx.Context{Ctx: ctx}, row)
	if err != nil {
		return nil, false, err
	}
	if !thread.Participant(actor) {
		// Tuple already bound for other parties (support reassignment etc).
		return nil, false, fmt.Errorf("caller is not a party: %w", chat.ErrForbidden)
	}
	if created {
		s.log.Info("thread opened", "threadID", thread.ID, "contextType", thread.ContextType, "contextID", thread.ContextID)
	}
	return thread, created, nil
}

func (s *threadService) GetThread(ctx context.Context, threadID uuid.UUID, msgLimit int) (*chat.Thread, []*chat.Message, error) {
	actor, err := actorFrom(ctx)
	if err != nil {
		return nil, nil, err
	}
	dbc := dbctx.Context{Ctx: ctx}
	thread, err := s.threads.GetByID(dbc, threadID)
	if err != nil {
		return nil, nil, err
	}
	if !thread.Participant(actor) {
		return nil, nil, fmt.Errorf("caller is not a party: %w", chat.ErrForbidden)
	}
	if msgLimit <= 0 || msgLimit > 200 {
		msgLimit = 50
	}
	msgs, err := s.messages.ListByThread(dbc, threadID, msgLimit, 0)
	if err != nil {
		return nil, nil, err
	}
	return thread, msgs, nil
}

func (s *threadService) ListThreads(ctx context.Context, limit int) ([]*chat.Thread, error) {
	actor, err := actorFrom(ctx)
	if err != nil {
		return nil, err
	}
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	return s.threads.ListByUser(dbctx.Context{Ctx: ctx}, actor, limit)
}

func (s *threadService) CanAccess(ctx context.Context, threadID uuid.UUID) error {
	actor, err := actorFrom(ctx)
	if err != nil {
		return err
	}
	thread, err := s.threads.GetByID(dbctx.Context{Ctx: ctx}, threadID)
	if err != nil {
		return err
	}
	if !thread.Participant(actor) {
		return fmt.Errorf("caller is not a party: %w", chat.ErrForbidden)
	}
	return nil
}

func (s *threadService) Close(ctx context.Context, threadID uuid.UUID) (*chat.Thread, error) {
	actor, err := actorFrom(ctx)
	if err != nil {
		return nil, err
	}

	var (
		thread *chat.Thread
		sysMsg *chat.Message
	)
	err = s.runner.InTx(ctx, func(dbc dbctx.Context) error {
		t, err := s.threads.LockByID(dbc, threadID)
		if err != nil {
			return err
		}
		if !t.Participant(actor) {
			return fmt.Errorf("caller is not a party: %w", chat.ErrForbidden)
		}
		if t.Status != chat.StatusActive {
			return fmt.Errorf("close from %s: %w", t.Status, chat.ErrInvalidTransition)
		}

		now := time.Now().UTC()
		seq := t.NextSeq
		sysMsg = &chat.Message{
			ID:        uuid.New(),
			ThreadID:  t.ID,
			Seq:       seq,
			Kind:      chat.KindSystem,
			Body:      "Thread closed",
			Metadata:  datatypes.JSON([]byte(fmt.Sprintf(`{"event":"closed","actor":%q}`, actor))),
			CreatedAt: now,
			UpdatedAt: now,
		}
		if _, err := s.messages.Create(dbc, []*chat.Message{sysMsg}); err != nil {
			return err
		}
		if err := s.threads.UpdateFields(dbc, t.ID, map[string]interface{}{
			"status":          chat.StatusClosed,
			"next_seq":        seq + 1,
			"last_message_at": now,
		}); err != nil {
			return err
		}
		t.Status = chat.StatusClosed
		t.NextSeq = seq + 1
		t.LastMessageAt = now
		t.UpdatedAt = now
		thread = t
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.notify != nil {
		s.notify.MessageCreated(thread.ID, sysMsg)
		s.notify.ThreadUpdated(thread, "status_changed")
	}
	if s.bridge != nil {
		s.bridge.StatusChanged(ctx, thread, actor)
	}
	s.log.Info("thread closed", "threadID", thread.ID, "actor", actor)
	return thread, nil
}
