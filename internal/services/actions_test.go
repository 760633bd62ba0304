package services

import (
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/dealgrid/dealgrid-backend/internal/domain/chat"
)

func newActionService(t *testing.T) (ActionService, *fakeThreadRepo, *fakeMessageRepo, *spyNotifier, *spyBridge) {
	threads := newFakeThreadRepo()
	messages := newFakeMessageRepo()
	notifier := &spyNotifier{}
	bridge := &spyBridge{}
	svc := NewActionService(testLogger(t), &fakeTxRunner{}, threads, messages, notifier, bridge)
	return svc, threads, messages, notifier, bridge
}

func TestEmitActionDispatch(t *testing.T) {
	cases := []struct {
		name        string
		action      string
		contextType string
		wantErr     error
		wantStatus  string
		wantBridge  string
	}{
		{"mark paid stays active", ActionMarkPaid, chat.ContextOrder, nil, chat.StatusActive, "message_created"},
		{"confirm received on ticket", ActionConfirmReceived, chat.ContextTicket, nil, chat.StatusActive, "message_created"},
		{"open dispute transitions", ActionOpenDispute, chat.ContextOrder, nil, chat.StatusDisputed, "status_changed"},
		{"cancel order transitions", ActionCancelOrder, chat.ContextOrder, nil, chat.StatusCancelled, "status_changed"},
		{"request support pages support", ActionRequestSupport, chat.ContextOrder, nil, chat.StatusActive, "support_requested"},
		{"dispute needs order context", ActionOpenDispute, chat.ContextAuction, chat.ErrActionNotApplicable, "", ""},
		{"cancel needs order context", ActionCancelOrder, chat.ContextTicket, chat.ErrActionNotApplicable, "", ""},
		{"support needs order context", ActionRequestSupport, chat.ContextDispute, chat.ErrActionNotApplicable, "", ""},
		{"unknown action", "escalate_to_ceo", chat.ContextOrder, chat.ErrUnknownAction, "", ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc, threads, messages, _, bridge := newActionService(t)
			buyer := uuid.New()
			support := uuid.New()
			thread := activeThread(threads, buyer, uuid.New(), tc.contextType)
			thread.SupportUser = &support

			got, msg, err := svc.EmitAction(authedCtx(buyer), thread.ID, tc.action, "note")
			if tc.wantErr != nil {
				if !errors.Is(err, tc.wantErr) {
					t.Fatalf("got %v, want %v", err, tc.wantErr)
				}
				if len(messages.created) != 0 {
					t.Fatalf("rejected action must not append")
				}
				return
			}
			if err != nil {
				t.Fatalf("emit: %v", err)
			}
			if got.Status != tc.wantStatus {
				t.Fatalf("status = %s, want %s", got.Status, tc.wantStatus)
			}
			if msg == nil || msg.Kind != chat.KindSystem {
				t.Fatalf("expected system message, got %+v", msg)
			}
			if len(bridge.calls) != 1 || bridge.calls[0].kind != tc.wantBridge {
				t.Fatalf("bridge calls = %+v, want one %s", bridge.calls, tc.wantBridge)
			}
		})
	}
}

func TestEmitActionOnTerminalThread(t *testing.T) {
	svc, threads, messages, _, _ := newActionService(t)

	buyer := uuid.New()
	thread := activeThread(threads, buyer, uuid.New(), chat.ContextOrder)
	thread.Status = chat.StatusClosed

	if _, _, err := svc.EmitAction(authedCtx(buyer), thread.ID, ActionMarkPaid, ""); !errors.Is(err, chat.ErrThreadNotActive) {
		t.Fatalf("got %v, want ErrThreadNotActive", err)
	}
	if len(messages.created) != 0 {
		t.Fatalf("terminal action must not append")
	}
}

func TestEmitActionByStranger(t *testing.T) {
	svc, threads, _, _, _ := newActionService(t)

	thread := activeThread(threads, uuid.New(), uuid.New(), chat.ContextOrder)
	if _, _, err := svc.EmitAction(authedCtx(uuid.New()), thread.ID, ActionMarkPaid, ""); !errors.Is(err, chat.ErrForbidden) {
		t.Fatalf("got %v, want ErrForbidden", err)
	}
}

func TestActionRulesCoverEveryAction(t *testing.T) {
	for _, action := range []string{
		ActionMarkPaid, ActionConfirmReceived, ActionRequestSupport, ActionOpenDispute, ActionCancelOrder,
	} {
		rule, ok := actionRules[action]
		if !ok {
			t.Fatalf("action %q missing from dispatch table", action)
		}
		if rule.systemBody == "" {
			t.Fatalf("action %q has no system message body", action)
		}
		if rule.targetStatus != "" && !chat.TerminalStatus(rule.targetStatus) {
			t.Fatalf("action %q transitions to non-terminal %q", action, rule.targetStatus)
		}
	}
}
