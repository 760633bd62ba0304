package services

import (
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/dealgrid/dealgrid-backend/internal/domain/chat"
)

func TestSetTypingUpsertsAndNotifies(t *testing.T) {
	threads := newFakeThreadRepo()
	typing := newFakeTypingRepo()
	notifier := &spyNotifier{}
	svc := NewPresenceService(testLogger(t), threads, typing, notifier)

	buyer := uuid.New()
	thread := activeThread(threads, buyer, uuid.New(), chat.ContextOrder)

	if err := svc.SetTyping(authedCtx(buyer), thread.ID, true); err != nil {
		t.Fatalf("set typing: %v", err)
	}
	if err := svc.SetTyping(authedCtx(buyer), thread.ID, false); err != nil {
		t.Fatalf("clear typing: %v", err)
	}

	rows, err := svc.ListTyping(authedCtx(buyer), thread.ID)
	if err != nil {
		t.Fatalf("list typing: %v", err)
	}
	// Last write wins: a single row with the latest flag.
	if len(rows) != 1 || rows[0].IsTyping {
		t.Fatalf("rows = %+v, want one row with is_typing=false", rows)
	}
	if len(notifier.calls) != 2 || notifier.calls[0].kind != "typing_changed" {
		t.Fatalf("unexpected notifier calls: %+v", notifier.calls)
	}
}

func TestSetTypingByStranger(t *testing.T) {
	threads := newFakeThreadRepo()
	svc := NewPresenceService(testLogger(t), threads, newFakeTypingRepo(), &spyNotifier{})

	thread := activeThread(threads, uuid.New(), uuid.New(), chat.ContextOrder)
	if err := svc.SetTyping(authedCtx(uuid.New()), thread.ID, true); !errors.Is(err, chat.ErrForbidden) {
		t.Fatalf("got %v, want ErrForbidden", err)
	}
}
