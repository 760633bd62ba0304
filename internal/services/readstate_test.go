package services

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/dealgrid/dealgrid-backend/internal/domain/chat"
)

func newReadStateFixture(t *testing.T) (ReadStateService, MessageService, *fakeThreadRepo, *fakeMarkerRepo) {
	threads := newFakeThreadRepo()
	messages := newFakeMessageRepo()
	markers := newFakeMarkerRepo()
	rs := NewReadStateService(testLogger(t), threads, messages, markers)
	ms := NewMessageService(testLogger(t), &fakeTxRunner{}, threads, messages, &spyNotifier{}, &spyBridge{})
	return rs, ms, threads, markers
}

func TestUnreadCountExcludesOwnMessages(t *testing.T) {
	rs, ms, threads, _ := newReadStateFixture(t)

	buyer := uuid.New()
	seller := uuid.New()
	thread := activeThread(threads, buyer, seller, chat.ContextOrder)

	if _, err := ms.Send(authedCtx(buyer), thread.ID, chat.KindUser, "first", nil); err != nil {
		t.Fatalf("send: %v", err)
	}
	if _, err := ms.Send(authedCtx(seller), thread.ID, chat.KindUser, "second", nil); err != nil {
		t.Fatalf("send: %v", err)
	}

	// Buyer has never read: only the seller's message counts.
	n, err := rs.UnreadCount(authedCtx(buyer), thread.ID)
	if err != nil {
		t.Fatalf("unread: %v", err)
	}
	if n != 1 {
		t.Fatalf("unread = %d, want 1", n)
	}
}

func TestMarkReadDropsUnread(t *testing.T) {
	rs, ms, threads, _ := newReadStateFixture(t)

	buyer := uuid.New()
	seller := uuid.New()
	thread := activeThread(threads, buyer, seller, chat.ContextOrder)

	if _, err := ms.Send(authedCtx(seller), thread.ID, chat.KindUser, "ping", nil); err != nil {
		t.Fatalf("send: %v", err)
	}
	if err := rs.MarkRead(authedCtx(buyer), thread.ID, time.Time{}); err != nil {
		t.Fatalf("mark read: %v", err)
	}

	n, err := rs.UnreadCount(authedCtx(buyer), thread.ID)
	if err != nil {
		t.Fatalf("unread: %v", err)
	}
	if n != 0 {
		t.Fatalf("unread after mark = %d, want 0", n)
	}
}

func TestMarkReadIsMonotonic(t *testing.T) {
	rs, _, threads, markers := newReadStateFixture(t)

	buyer := uuid.New()
	thread := activeThread(threads, buyer, uuid.New(), chat.ContextOrder)

	recent := time.Now().UTC().Add(-time.Second)
	if err := rs.MarkRead(authedCtx(buyer), thread.ID, recent); err != nil {
		t.Fatalf("mark read: %v", err)
	}
	// A stale timestamp must not move the marker backwards.
	if err := rs.MarkRead(authedCtx(buyer), thread.ID, recent.Add(-time.Hour)); err != nil {
		t.Fatalf("stale mark read: %v", err)
	}

	marker, err := markers.Get(dbcOf(authedCtx(buyer)), thread.ID, buyer)
	if err != nil {
		t.Fatalf("get marker: %v", err)
	}
	if !marker.LastReadAt.Equal(recent) {
		t.Fatalf("marker moved backwards: %v, want %v", marker.LastReadAt, recent)
	}
}

func TestMarkReadClampsFutureTimestamps(t *testing.T) {
	rs, _, threads, markers := newReadStateFixture(t)

	buyer := uuid.New()
	thread := activeThread(threads, buyer, uuid.New(), chat.ContextOrder)

	if err := rs.MarkRead(authedCtx(buyer), thread.ID, time.Now().UTC().Add(time.Hour)); err != nil {
		t.Fatalf("mark read: %v", err)
	}
	marker, err := markers.Get(dbcOf(authedCtx(buyer)), thread.ID, buyer)
	if err != nil {
		t.Fatalf("get marker: %v", err)
	}
	if marker.LastReadAt.After(time.Now().UTC().Add(time.Second)) {
		t.Fatalf("future timestamp not clamped: %v", marker.LastReadAt)
	}
}
