package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	chatrepo "github.com/dealgrid/dealgrid-backend/internal/data/repos/chat"
	"github.com/dealgrid/dealgrid-backend/internal/domain/chat"
	"github.com/dealgrid/dealgrid-backend/internal/pkg/dbctx"
	"github.com/dealgrid/dealgrid-backend/internal/pkg/logger"
)

// Negotiation actions participants can emit on a thread.
const (
	ActionMarkPaid        = "mark_paid"
	ActionConfirmReceived = "confirm_received"
	ActionRequestSupport  = "request_support"
	ActionOpenDispute     = "open_dispute"
	ActionCancelOrder     = "cancel_order"
)

// actionRule describes one dispatchable action: which context types admit it,
// the lifecycle status it transitions the thread to ("" for none), whether it
// pages the support user, and the system-message text it appends.
type actionRule struct {
	contexts     map[string]bool // nil means any context
	targetStatus string
	pageSupport  bool
	systemBody   string
}

var orderOnly = map[string]bool{chat.ContextOrder: true}

// actionRules is the single source of truth for action dispatch. An action
// never mutates the external business entity the thread is bound to; it only
// records the claim and, for the last two, transitions the thread.
var actionRules = map[string]actionRule{
	ActionMarkPaid:        {systemBody: "Buyer marked the order as paid"},
	ActionConfirmReceived: {systemBody: "Party confirmed receipt"},
	ActionRequestSupport:  {contexts: orderOnly, pageSupport: true, systemBody: "Support was requested"},
	ActionOpenDispute:     {contexts: orderOnly, targetStatus: chat.StatusDisputed, systemBody: "A dispute was opened"},
	ActionCancelOrder:     {contexts: orderOnly, targetStatus: chat.StatusCancelled, systemBody: "The order was cancelled"},
}

type ActionService interface {
	// EmitAction validates the action against the dispatch table, appends
	// its system message, and applies the lifecycle transition if the rule
	// names one. Transition and message commit atomically.
	EmitAction(ctx context.Context, threadID uuid.UUID, action, note string) (*chat.Thread, *chat.Message, error)
}

type actionService struct {
	log      *logger.Logger
	runner   TxRunner
	threads  chatrepo.ThreadRepo
	messages chatrepo.MessageRepo
	notify   ChatNotifier
	bridge   NotificationBridge
}

func NewActionService(
	baseLog *logger.Logger,
	runner TxRunner,
	threadRepo chatrepo.ThreadRepo,
	messageRepo chatrepo.MessageRepo,
	notify ChatNotifier,
	bridge NotificationBridge,
) ActionService {
	return &actionService{
		log:      baseLog.With("service", "ActionService"),
		runner:   runner,
		threads:  threadRepo,
		messages: messageRepo,
		notify:   notify,
		bridge:   bridge,
	}
}

func (s *actionService) EmitAction(ctx context.Context, threadID uuid.UUID, action, note string) (*chat.Thread, *chat.Message, error) {
	actor, err := actorFrom(ctx)
	if err != nil {
		return nil, nil, err
	}
	rule, ok := actionRules[action]
	if !ok {
		return nil, nil, fmt.Errorf("action %q: %w", action, chat.ErrUnknownAction)
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
			return fmt.Errorf("thread is %s: %w", t.Status, chat.ErrThreadNotActive)
		}
		if rule.contexts != nil && !rule.contexts[t.ContextType] {
			return fmt.Errorf("action %q on %s context: %w", action, t.ContextType, chat.ErrActionNotApplicable)
		}

		meta, err := json.Marshal(map[string]any{
			"action": action,
			"actor":  actor,
			"note":   note,
		})
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		seq := t.NextSeq
		sysMsg = &chat.Message{
			ID:        uuid.New(),
			ThreadID:  t.ID,
			Seq:       seq,
			Kind:      chat.KindSystem,
			Body:      rule.systemBody,
			Metadata:  datatypes.JSON(meta),
			CreatedAt: now,
			UpdatedAt: now,
		}
		if _, err := s.messages.Create(dbc, []*chat.Message{sysMsg}); err != nil {
			return err
		}

		updates := map[string]interface{}{
			"next_seq":        seq + 1,
			"last_message_at": now,
		}
		if rule.targetStatus != "" {
			updates["status"] = rule.targetStatus
		}
		if err := s.threads.UpdateFields(dbc, t.ID, updates); err != nil {
			return err
		}
		t.NextSeq = seq + 1
		t.LastMessageAt = now
		t.UpdatedAt = now
		if rule.targetStatus != "" {
			t.Status = rule.targetStatus
		}
		thread = t
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	if s.notify != nil {
		s.notify.MessageCreated(thread.ID, sysMsg)
		if rule.targetStatus != "" {
			s.notify.ThreadUpdated(thread, "status_changed")
		}
	}
	if s.bridge != nil {
		switch {
		case rule.targetStatus != "":
			s.bridge.StatusChanged(ctx, thread, actor)
		case rule.pageSupport:
			s.bridge.SupportRequested(ctx, thread, actor)
		default:
			s.bridge.MessageCreated(ctx, thread, sysMsg, actor)
		}
	}
	s.log.Info("action emitted", "threadID", thread.ID, "action", action, "actor", actor)
	return thread, sysMsg, nil
}
