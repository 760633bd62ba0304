package services

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/dealgrid/dealgrid-backend/internal/domain/chat"
)

func newMessageService(t *testing.T) (MessageService, *fakeThreadRepo, *fakeMessageRepo, *spyNotifier, *spyBridge) {
	threads := newFakeThreadRepo()
	messages := newFakeMessageRepo()
	notifier := &spyNotifier{}
	bridge := &spyBridge{}
	svc := NewMessageService(testLogger(t), &fakeTxRunner{}, threads, messages, notifier, bridge)
	return svc, threads, messages, notifier, bridge
}

func TestSendAssignsSequentialSeqs(t *testing.T) {
	svc, threads, _, notifier, bridge := newMessageService(t)

	buyer := uuid.New()
	seller := uuid.New()
	thread := activeThread(threads, buyer, seller, chat.ContextOrder)

	first, err := svc.Send(authedCtx(buyer), thread.ID, chat.KindUser, "hello", nil)
	if err != nil {
		t.Fatalf("first send: %v", err)
	}
	second, err := svc.Send(authedCtx(seller), thread.ID, chat.KindUser, "hi there", nil)
	if err != nil {
		t.Fatalf("second send: %v", err)
	}
	if first.Seq != 0 || second.Seq != 1 {
		t.Fatalf("seqs = %d,%d, want 0,1", first.Seq, second.Seq)
	}
	if thread.NextSeq != 2 {
		t.Fatalf("next_seq = %d, want 2", thread.NextSeq)
	}
	if len(notifier.calls) != 2 {
		t.Fatalf("expected 2 fan-out calls, got %d", len(notifier.calls))
	}
	// Fan-out payloads carry seq; subscribers order by it, not by arrival.
	if notifier.calls[0].msg.Seq != 0 || notifier.calls[1].msg.Seq != 1 {
		t.Fatalf("fan-out seqs = %d,%d, want 0,1", notifier.calls[0].msg.Seq, notifier.calls[1].msg.Seq)
	}
	if len(bridge.calls) != 2 {
		t.Fatalf("expected 2 bridge calls, got %d", len(bridge.calls))
	}
}

func TestSendValidation(t *testing.T) {
	svc, threads, _, _, _ := newMessageService(t)

	buyer := uuid.New()
	thread := activeThread(threads, buyer, uuid.New(), chat.ContextOrder)

	cases := []struct {
		name    string
		kind    string
		body    string
		wantErr error
	}{
		{"empty body", chat.KindUser, "   ", chat.ErrInvalidMessage},
		{"too long", chat.KindUser, strings.Repeat("x", chat.MaxBodyRunes+1), chat.ErrInvalidMessage},
		{"system kind not sendable", chat.KindSystem, "hello", chat.ErrInvalidMessage},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := svc.Send(authedCtx(buyer), thread.ID, tc.kind, tc.body, nil); !errors.Is(err, tc.wantErr) {
				t.Fatalf("got %v, want %v", err, tc.wantErr)
			}
		})
	}
}

func TestSendBodyAtLimit(t *testing.T) {
	svc, threads, _, _, _ := newMessageService(t)

	buyer := uuid.New()
	thread := activeThread(threads, buyer, uuid.New(), chat.ContextOrder)

	body := strings.Repeat("é", chat.MaxBodyRunes) // multibyte, counts runes not bytes
	if _, err := svc.Send(authedCtx(buyer), thread.ID, chat.KindUser, body, nil); err != nil {
		t.Fatalf("body at rune limit rejected: %v", err)
	}
}

func TestSendOnTerminalThread(t *testing.T) {
	svc, threads, messages, notifier, _ := newMessageService(t)

	buyer := uuid.New()
	thread := activeThread(threads, buyer, uuid.New(), chat.ContextOrder)
	thread.Status = chat.StatusDisputed

	if _, err := svc.Send(authedCtx(buyer), thread.ID, chat.KindUser, "hello", nil); !errors.Is(err, chat.ErrThreadNotActive) {
		t.Fatalf("got %v, want ErrThreadNotActive", err)
	}
	if len(messages.created) != 0 || len(notifier.calls) != 0 {
		t.Fatalf("terminal send must not write or notify")
	}
}

func TestSendSupportKindRequiresSupportUser(t *testing.T) {
	svc, threads, _, _, _ := newMessageService(t)

	buyer := uuid.New()
	support := uuid.New()
	thread := activeThread(threads, buyer, uuid.New(), chat.ContextOrder)
	thread.SupportUser = &support

	if _, err := svc.Send(authedCtx(buyer), thread.ID, chat.KindSupport, "hello", nil); !errors.Is(err, chat.ErrForbidden) {
		t.Fatalf("buyer sending support kind: got %v, want ErrForbidden", err)
	}
	if _, err := svc.Send(authedCtx(support), thread.ID, chat.KindSupport, "how can I help", nil); err != nil {
		t.Fatalf("support user send: %v", err)
	}
}

func TestSoftDeleteSenderOnly(t *testing.T) {
	svc, threads, messages, _, _ := newMessageService(t)

	buyer := uuid.New()
	seller := uuid.New()
	thread := activeThread(threads, buyer, seller, chat.ContextOrder)

	msg, err := svc.Send(authedCtx(buyer), thread.ID, chat.KindUser, "offer stands", nil)
	if err != nil {
		t.Fatalf("send: %v", err)
	}

	if err := svc.SoftDelete(authedCtx(seller), thread.ID, msg.ID); !errors.Is(err, chat.ErrForbidden) {
		t.Fatalf("counterpart delete: got %v, want ErrForbidden", err)
	}
	if err := svc.SoftDelete(authedCtx(buyer), thread.ID, msg.ID); err != nil {
		t.Fatalf("sender delete: %v", err)
	}
	if !messages.messages[msg.ID].IsDeleted {
		t.Fatalf("message not tombstoned")
	}
	// Repeat delete is a no-op.
	if err := svc.SoftDelete(authedCtx(buyer), thread.ID, msg.ID); err != nil {
		t.Fatalf("repeat delete: %v", err)
	}
}
