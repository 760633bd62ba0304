package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/dealgrid/dealgrid-backend/internal/domain/chat"
	"github.com/dealgrid/dealgrid-backend/internal/domain/notification"
)

type fakeFeed struct {
	events []notification.Event
}

func (f *fakeFeed) Publish(ctx context.Context, ev notification.Event) error {
	f.events = append(f.events, ev)
	return nil
}

func (f *fakeFeed) Close() error { return nil }

type fakePresence struct {
	online map[uuid.UUID]bool
}

func (p *fakePresence) Present(channel string, userID uuid.UUID) bool {
	return p.online[userID]
}

func bridgeThread(buyer, seller uuid.UUID, support *uuid.UUID) *chat.Thread {
	return &chat.Thread{
		ID:           uuid.New(),
		ContextType:  chat.ContextOrder,
		ContextID:    "ORD-42",
		ContextTitle: "Order #42",
		PartyA:       buyer,
		PartyB:       seller,
		SupportUser:  support,
		Status:       chat.StatusActive,
	}
}

func TestBridgeMessageCreatedSkipsActorAndPresent(t *testing.T) {
	buyer := uuid.New()
	seller := uuid.New()
	support := uuid.New()
	thread := bridgeThread(buyer, seller, &support)

	feed := &fakeFeed{}
	presence := &fakePresence{online: map[uuid.UUID]bool{seller: true}}
	bridge := NewNotificationBridge(testLogger(t), feed, presence)

	msg := &chat.Message{
		ID:        uuid.New(),
		ThreadID:  thread.ID,
		SenderID:  &buyer,
		Kind:      chat.KindUser,
		Body:      "is this still available?",
		CreatedAt: time.Now().UTC(),
	}
	bridge.MessageCreated(context.Background(), thread, msg, buyer)

	// Buyer is the actor, seller is watching the thread: only support is left.
	if len(feed.events) != 1 {
		t.Fatalf("events = %d, want 1", len(feed.events))
	}
	ev := feed.events[0]
	if ev.UserID != support {
		t.Fatalf("recipient = %s, want support user", ev.UserID)
	}
	if ev.Event != notification.EventNewMessage {
		t.Fatalf("event = %s, want %s", ev.Event, notification.EventNewMessage)
	}
	if ev.DedupeKey != notification.DedupeKey(thread.ID, notification.EventNewMessage, support) {
		t.Fatalf("wrong dedupe key")
	}
}

func TestBridgeStatusChangedIgnoresPresence(t *testing.T) {
	buyer := uuid.New()
	seller := uuid.New()
	thread := bridgeThread(buyer, seller, nil)
	thread.Status = chat.StatusDisputed

	feed := &fakeFeed{}
	presence := &fakePresence{online: map[uuid.UUID]bool{seller: true}}
	bridge := NewNotificationBridge(testLogger(t), feed, presence)

	bridge.StatusChanged(context.Background(), thread, buyer)

	if len(feed.events) != 1 {
		t.Fatalf("events = %d, want 1", len(feed.events))
	}
	if feed.events[0].UserID != seller {
		t.Fatalf("recipient = %s, want seller", feed.events[0].UserID)
	}
	if feed.events[0].Priority != notification.PriorityHigh {
		t.Fatalf("priority = %s, want high", feed.events[0].Priority)
	}
}

func TestBridgeSupportRequested(t *testing.T) {
	buyer := uuid.New()
	support := uuid.New()
	thread := bridgeThread(buyer, uuid.New(), &support)

	feed := &fakeFeed{}
	bridge := NewNotificationBridge(testLogger(t), feed, &fakePresence{})

	bridge.SupportRequested(context.Background(), thread, buyer)
	if len(feed.events) != 1 || feed.events[0].UserID != support {
		t.Fatalf("expected one event toward support, got %+v", feed.events)
	}

	// No support user assigned: nothing to page.
	feed.events = nil
	thread.SupportUser = nil
	bridge.SupportRequested(context.Background(), thread, buyer)
	if len(feed.events) != 0 {
		t.Fatalf("expected no events, got %+v", feed.events)
	}
}
